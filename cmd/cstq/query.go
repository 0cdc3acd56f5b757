package main

import (
	"errors"
	"fmt"

	"github.com/panbanda/cstq/internal/output"
	"github.com/panbanda/cstq/internal/query"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// render writes lines as text and data as JSON or TOON.
func render(c *cli.Context, title string, lines []string, data any) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(&output.Lines{Title: title, Lines: lines, Data: data})
}

func treeCmd() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Print the syntax tree of a file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "named",
				Usage: "Show only named nodes",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Maximum depth to print (-1 for all)",
				Value: -1,
			},
		},
		Action: runTree,
	}
}

func runTree(c *cli.Context) error {
	res, err := parseArg(c)
	if err != nil {
		return err
	}
	getLogger(c).Debug("parsed", zap.String("path", res.Path), zap.Int("nodes", res.Tree.Len()))

	infos := query.Tree(res, c.Bool("named"), c.Int("depth"))
	return render(c, "", query.Lines(infos), infos)
}

func findCmd() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "List nodes of the given kinds in pre-order",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "kind",
				Aliases:  []string{"k"},
				Usage:    "Node kind to match (repeatable)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "first",
				Usage: "Stop at the first match",
			},
		},
		Action: runFind,
	}
}

func runFind(c *cli.Context) error {
	res, err := parseArg(c)
	if err != nil {
		return err
	}
	infos, err := query.Find(res, c.StringSlice("kind"), c.Bool("first"))
	if err != nil {
		return err
	}
	return render(c, fmt.Sprintf("%d matches", len(infos)), query.Lines(infos), infos)
}

func pathCmd() *cli.Command {
	return &cli.Command{
		Name:      "path",
		Usage:     "Follow a chain of child kinds down from the root",
		ArgsUsage: "<file> <kind>...",
		Action:    runPath,
	}
}

func runPath(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return errors.New("path expects a file followed by node kinds")
	}
	res, err := parsePath(c.Args().First())
	if err != nil {
		return err
	}

	info, ok, err := query.Path(res, c.Args().Tail())
	if err != nil {
		return err
	}
	if !ok {
		return render(c, "no match", nil, []query.NodeInfo{})
	}
	infos := []query.NodeInfo{info}
	return render(c, "", query.Lines(infos), infos)
}

func ancestorsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ancestors",
		Usage:     "Show the nodes enclosing a position and count nesting",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:     "line",
				Aliases:  []string{"l"},
				Usage:    "One-based line",
				Required: true,
			},
			&cli.UintFlag{
				Name:  "col",
				Usage: "One-based column",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "named",
				Usage: "Start from the deepest named node",
			},
			&cli.StringSliceFlag{
				Name:  "count",
				Usage: "Ancestor kinds to count (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "stop",
				Usage: "Kinds that end the count (default: the language's functions)",
			},
		},
		Action: runAncestors,
	}
}

func runAncestors(c *cli.Context) error {
	res, err := parseArg(c)
	if err != nil {
		return err
	}
	result, err := query.Ancestors(res, query.AncestorsRequest{
		Line:  uint32(c.Uint("line")),
		Col:   uint32(c.Uint("col")),
		Named: c.Bool("named"),
		Count: c.StringSlice("count"),
		Stop:  c.StringSlice("stop"),
	})
	if err != nil {
		return err
	}
	return render(c, "", result.Lines(), result)
}
