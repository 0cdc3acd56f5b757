package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

const loggerKey = "logger"

func newApp() *cli.App {
	return &cli.App{
		Name:     "cstq",
		Usage:    "Query concrete syntax trees and measure code complexity",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `cstq parses source files with tree-sitter and answers structural
questions about them: which nodes of a kind exist, what encloses a position,
how deeply a construct is nested, and how complex each function is.

Supports: Go, Rust, Python, TypeScript, TSX, JavaScript, Java, C, C++, C#, Ruby, PHP, Bash`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CSTQ_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, toon (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if c.Bool("verbose") {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.App.Metadata[loggerKey] = logger
			return nil
		},
		After: func(c *cli.Context) error {
			if logger, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			treeCmd(),
			findCmd(),
			pathCmd(),
			ancestorsCmd(),
			complexityCmd(),
			watchCmd(),
			mcpCmd(),
			initCmd(),
			configCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
