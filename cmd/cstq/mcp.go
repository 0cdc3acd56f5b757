package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panbanda/cstq/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes cstq's queries
as tools that LLMs can invoke.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "cstq": {
        "command": "cstq",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - syntax_tree         Dump the syntax tree of a file
  - find_nodes          Nodes of given kinds in source order
  - node_path           Follow child kinds down from the root
  - node_ancestors      Enclosing nodes of a position, with counts
  - analyze_complexity  Cyclomatic and cognitive complexity`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP registry manifest (server.json)",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(data))
					return nil
				},
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mcpserver.NewServer(version, cfg, getLogger(c)).Run(ctx)
}
