package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/cstq/pkg/config"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a cstq configuration file for syntax errors and invalid values.

Examples:
  cstq config validate                  # Validates default config locations
  cstq -c cstq.toml config validate     # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file, as TOML.

Examples:
  cstq config show               # Show effective config
  cstq -c cstq.yaml config show  # Show config from specific file`,
				Action: runConfigShow,
			},
		},
	}
}

// configSource is the file loadConfig reads, or "" when only defaults apply.
func configSource(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	return config.Find(".")
}

func runConfigValidate(c *cli.Context) error {
	source := configSource(c)
	if _, err := loadConfig(c); err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return err
	}

	if source != "" {
		color.Green("Configuration valid: %s", source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if source := configSource(c); source != "" {
		fmt.Fprintf(c.App.Writer, "# Configuration from: %s\n\n", source)
	} else {
		fmt.Fprintln(c.App.Writer, "# Default configuration (no config file found)")
	}

	content, err := cfg.Encode("cstq.toml")
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, string(content))
	return nil
}
