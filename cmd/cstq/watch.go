package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/panbanda/cstq/internal/output"
	"github.com/panbanda/cstq/pkg/analyzer/complexity"
	"github.com/panbanda/cstq/pkg/watch"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and re-analyze complexity",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "How long a file must stay unchanged before it is analyzed",
			},
			&cli.IntFlag{
				Name:  "cyclomatic-threshold",
				Usage: "Cyclomatic complexity limit (default from config)",
			},
			&cli.IntFlag{
				Name:  "cognitive-threshold",
				Usage: "Cognitive complexity limit (default from config)",
			},
			&cli.IntFlag{
				Name:  "nesting-threshold",
				Usage: "Nesting depth limit (default from config)",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	log := getLogger(c)
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	thresholds := thresholdsFrom(c, cfg)
	analyzer, err := newAnalyzer(c, cfg, thresholds, log)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	watcher, err := watch.NewWatcher(absPath, cfg, onChange(formatter, analyzer, thresholds, log),
		watch.WithDebounce(c.Duration("debounce")),
		watch.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter.Info("Watching %s (Ctrl+C to stop)", absPath)
	err = watcher.Start(ctx)
	if errors.Is(err, context.Canceled) {
		formatter.Info("Stopping watch...")
		return nil
	}
	return err
}

// onChange analyzes each settled batch and prints its table and violations.
func onChange(f *output.Formatter, analyzer *complexity.Analyzer, t complexity.Thresholds, log *zap.Logger) watch.Callback {
	return func(ctx context.Context, paths []string) {
		result, err := analyzer.Analyze(ctx, paths, nil)
		if err != nil {
			reportFailures(f, log, err)
		}
		if result == nil || len(result.Files) == 0 {
			return
		}
		if err := f.Output(complexityTable(result, t, true, f.Colored())); err != nil {
			f.Error("%v", err)
			return
		}
		if f.Format() == output.FormatText {
			printViolations(f, result)
		}
	}
}
