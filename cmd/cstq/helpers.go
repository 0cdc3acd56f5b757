package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/cstq/internal/output"
	"github.com/panbanda/cstq/pkg/config"
	"github.com/panbanda/cstq/pkg/parser"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func getLogger(c *cli.Context) *zap.Logger {
	if logger, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newFormatter honors --format over the configured format.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color && !color.NoColor)
}

// parseArg parses the single file argument of a query command.
func parseArg(c *cli.Context) (*parser.ParseResult, error) {
	if c.Args().Len() != 1 {
		return nil, fmt.Errorf("%s expects exactly one file, got %d", c.Command.Name, c.Args().Len())
	}
	return parsePath(c.Args().First())
}

func parsePath(path string) (*parser.ParseResult, error) {
	psr := parser.New()
	defer psr.Close()
	return psr.ParseFile(path)
}
