package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/panbanda/cstq/internal/cache"
	"github.com/panbanda/cstq/internal/fileproc"
	"github.com/panbanda/cstq/internal/output"
	"github.com/panbanda/cstq/internal/progress"
	"github.com/panbanda/cstq/internal/scanner"
	"github.com/panbanda/cstq/pkg/analyzer/complexity"
	"github.com/panbanda/cstq/pkg/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Analyze cyclomatic and cognitive complexity",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
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
			&cli.BoolFlag{
				Name:  "functions-only",
				Usage: "Show one row per function instead of per file",
			},
			&cli.BoolFlag{
				Name:  "fail-on-violation",
				Usage: "Exit with status 2 when any limit is exceeded",
			},
		},
		Action: runComplexity,
	}
}

// thresholdsFrom merges threshold flags over the configured limits.
func thresholdsFrom(c *cli.Context, cfg *config.Config) complexity.Thresholds {
	t := complexity.Thresholds{
		MaxCyclomatic: uint32(cfg.Thresholds.Cyclomatic),
		MaxCognitive:  uint32(cfg.Thresholds.Cognitive),
		MaxNesting:    cfg.Thresholds.Nesting,
	}
	if c.IsSet("cyclomatic-threshold") {
		t.MaxCyclomatic = uint32(max(c.Int("cyclomatic-threshold"), 0))
	}
	if c.IsSet("cognitive-threshold") {
		t.MaxCognitive = uint32(max(c.Int("cognitive-threshold"), 0))
	}
	if c.IsSet("nesting-threshold") {
		t.MaxNesting = max(c.Int("nesting-threshold"), 0)
	}
	return t
}

func runComplexity(c *cli.Context) error {
	log := getLogger(c)
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := scanner.NewScanner(cfg, log).Scan(getPaths(c))
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if len(files) == 0 {
		formatter.Warning("No source files found")
		return nil
	}

	thresholds := thresholdsFrom(c, cfg)
	analyzer, err := newAnalyzer(c, cfg, thresholds, log)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	tracker := progress.NewTracker("Analyzing complexity...", len(files))
	result, err := analyzer.Analyze(c.Context, files, tracker.Tick)
	tracker.FinishSuccess()
	if err != nil {
		reportFailures(formatter, log, err)
	}

	if err := formatter.Output(complexityTable(result, thresholds, c.Bool("functions-only"), formatter.Colored())); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		printViolations(formatter, result)
	}
	if c.Bool("fail-on-violation") && result.Summary.ViolationCount > 0 {
		return cli.Exit(fmt.Sprintf("%d complexity violations", result.Summary.ViolationCount), 2)
	}
	return nil
}

// newAnalyzer builds a complexity analyzer from cfg, caching unless disabled.
func newAnalyzer(c *cli.Context, cfg *config.Config, thresholds complexity.Thresholds, log *zap.Logger) (*complexity.Analyzer, error) {
	ch, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTLDuration(),
		cfg.Cache.Enabled && !c.Bool("no-cache"),
		cache.WithNamespace(complexity.CacheNamespace),
		cache.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return complexity.New(
		complexity.WithMaxFileSize(cfg.Analysis.MaxFileSize),
		complexity.WithWorkers(cfg.Analysis.Workers),
		complexity.WithThresholds(thresholds),
		complexity.WithCache(ch),
		complexity.WithLogger(log),
	), nil
}

// reportFailures warns about files the analysis left out.
func reportFailures(f *output.Formatter, log *zap.Logger, err error) {
	var errs *fileproc.ProcessingErrors
	if !errors.As(err, &errs) {
		f.Warning("%v", err)
		return
	}
	skipped := 0
	for _, pe := range errs.Errors {
		if complexity.IsSkipped(pe.Err) {
			skipped++
			log.Debug("skipped", zap.String("path", pe.Path))
			continue
		}
		f.Warning("%s", pe.Error())
	}
	if skipped > 0 {
		f.Warning("Skipped %d files larger than the size limit", skipped)
	}
}

func complexityTable(result *complexity.Analysis, t complexity.Thresholds, functionsOnly, colored bool) *output.Table {
	sev := func(v, limit uint32) string {
		text := fmt.Sprintf("%d", v)
		if !colored {
			return text
		}
		return output.SeverityColor(v, limit, text)
	}

	var headers []string
	var rows [][]string

	if functionsOnly {
		headers = []string{"File", "Function", "Line", "Cyclomatic", "Cognitive", "Nesting"}
		for _, fr := range result.Files {
			for _, fn := range fr.Functions {
				name := fn.Name
				if fn.HasError {
					name += " (parse error)"
				}
				rows = append(rows, []string{
					fr.Path,
					name,
					fmt.Sprintf("%d", fn.StartLine),
					sev(fn.Metrics.Cyclomatic, t.MaxCyclomatic),
					sev(fn.Metrics.Cognitive, t.MaxCognitive),
					sev(uint32(fn.Metrics.MaxNesting), uint32(t.MaxNesting)),
				})
			}
		}
	} else {
		headers = []string{"File", "Functions", "Avg Cyclomatic", "Avg Cognitive", "Max Cyclomatic", "Max Cognitive"}
		for _, fr := range result.Files {
			rows = append(rows, []string{
				fr.Path,
				fmt.Sprintf("%d", len(fr.Functions)),
				fmt.Sprintf("%.1f", fr.AvgCyclomatic),
				fmt.Sprintf("%.1f", fr.AvgCognitive),
				sev(fr.MaxCyclomatic, t.MaxCyclomatic),
				sev(fr.MaxCognitive, t.MaxCognitive),
			})
		}
	}

	s := result.Summary
	footer := make([]string, len(headers))
	footer[0] = fmt.Sprintf("Files: %d  Functions: %d", s.TotalFiles, s.TotalFunctions)
	footer[1] = fmt.Sprintf("P50 %d/%d  P90 %d/%d  P95 %d/%d",
		s.P50Cyclomatic, s.P50Cognitive, s.P90Cyclomatic, s.P90Cognitive, s.P95Cyclomatic, s.P95Cognitive)
	footer[len(footer)-1] = fmt.Sprintf("Max %d/%d", s.MaxCyclomatic, s.MaxCognitive)

	return output.NewTable("Complexity Analysis", headers, rows, footer, result)
}

// printViolations lists functions over a limit, most complex first.
func printViolations(f *output.Formatter, result *complexity.Analysis) {
	var fns []complexity.FunctionResult
	for _, fr := range result.Files {
		for _, fn := range fr.Functions {
			if len(fn.Violations) > 0 {
				fns = append(fns, fn)
			}
		}
	}
	if len(fns) == 0 {
		return
	}
	sort.SliceStable(fns, func(i, j int) bool {
		return fns[i].Metrics.ComplexityScore() > fns[j].Metrics.ComplexityScore()
	})

	w := f.Writer()
	if f.Colored() {
		color.New(color.FgYellow).Fprintf(w, "Violations (%d):\n", len(fns))
	} else {
		fmt.Fprintf(w, "Violations (%d):\n", len(fns))
	}
	for _, fn := range fns {
		fmt.Fprintf(w, "  - %s:%d %s:", fn.File, fn.StartLine, fn.Name)
		for i, v := range fn.Violations {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, " %s", v)
		}
		fmt.Fprintln(w)
	}
}
