package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/cstq/pkg/config"
	"github.com/urfave/cli/v2"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new cstq configuration file",
		Description: `Creates a configuration file with the default settings. The extension
of --output picks the format: .toml (default), .yaml, .yml, or .json.

Examples:
  cstq init                     # Creates cstq.toml in current directory
  cstq init -o .cstq/cstq.yaml  # Creates a YAML config in .cstq
  cstq init --force             # Overwrite existing config file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "cstq.toml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInit,
	}
}

func runInit(c *cli.Context) error {
	outputPath := c.String("output")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := defaultConfigFile(outputPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Fprintln(c.App.Writer, "Edit this file to customize analysis settings.")
	return nil
}

// defaultConfigFile renders the defaults, with a comment header where the
// format allows one.
func defaultConfigFile(path string) ([]byte, error) {
	content, err := config.DefaultConfig().Encode(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return content, nil
	}

	var buf bytes.Buffer
	buf.WriteString("# cstq configuration\n\n")
	buf.Write(content)
	return buf.Bytes(), nil
}
