// Package complexity computes cyclomatic and cognitive complexity of
// functions using the language-agnostic node queries.
package complexity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/panbanda/cstq/internal/cache"
	"github.com/panbanda/cstq/internal/fileproc"
	"github.com/panbanda/cstq/pkg/checker"
	"github.com/panbanda/cstq/pkg/parser"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// CacheNamespace keys cached FileResults; bump it when FileResult or scoring changes.
const CacheNamespace = "complexity/v1"

// Analyzer computes cyclomatic and cognitive complexity.
// AnalyzeFile and AnalyzeSource share one parser and must not be called
// concurrently; Analyze parses with one parser per worker.
type Analyzer struct {
	parser      *parser.Parser
	maxFileSize int64
	workers     int
	thresholds  Thresholds
	cache       *cache.Cache
	log         *zap.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithWorkers caps the goroutines used by Analyze (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithThresholds sets the limits reported as violations.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithCache reuses results for files whose content has not changed.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(a *Analyzer) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:     parser.New(),
		thresholds: DefaultThresholds(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// AnalyzeFile analyzes complexity for a single file.
func (a *Analyzer) AnalyzeFile(path string) (*FileResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return a.analyze(a.parser, path, source)
}

// AnalyzeSource analyzes source as the given language.
func (a *Analyzer) AnalyzeSource(source []byte, lang parser.Language, path string) (*FileResult, error) {
	return a.analyzeLang(a.parser, path, source, lang)
}

// Analyze analyzes files in parallel. Files that fail are left out of the
// result and reported through the returned error, a *fileproc.ProcessingErrors;
// the Analysis is valid either way. onProgress may be nil.
func (a *Analyzer) Analyze(ctx context.Context, files []string, onProgress fileproc.ProgressFunc) (*Analysis, error) {
	opts := fileproc.Options{
		Workers:     a.workers,
		MaxFileSize: a.maxFileSize,
		OnProgress:  onProgress,
		Logger:      a.log,
	}
	results, errs := fileproc.MapFiles(ctx, files, opts, func(psr *parser.Parser, path string, content []byte) (FileResult, error) {
		fr, err := a.analyze(psr, path, content)
		if err != nil {
			return FileResult{}, err
		}
		return *fr, nil
	})

	analysis := buildAnalysis(results)
	a.log.Info("complexity analysis finished",
		zap.Int("files", analysis.Summary.TotalFiles),
		zap.Int("functions", analysis.Summary.TotalFunctions),
		zap.Int("violations", analysis.Summary.ViolationCount),
	)
	if errs.HasErrors() {
		return analysis, errs
	}
	return analysis, nil
}

func (a *Analyzer) analyze(psr *parser.Parser, path string, source []byte) (*FileResult, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return nil, fmt.Errorf("%w for file: %s", parser.ErrUnsupportedLanguage, path)
	}
	return a.analyzeLang(psr, path, source, lang)
}

func (a *Analyzer) analyzeLang(psr *parser.Parser, path string, source []byte, lang parser.Language) (*FileResult, error) {
	if a.maxFileSize > 0 && int64(len(source)) > a.maxFileSize {
		return nil, fmt.Errorf("%w: %s", fileproc.ErrFileTooLarge, path)
	}

	hash := cache.HashBytes(append([]byte(lang+"\x00"), source...))
	var cached FileResult
	if a.cache.Get(path, hash, &cached) {
		a.log.Debug("cache hit", zap.String("path", path))
		a.applyThresholds(&cached)
		return &cached, nil
	}

	c, err := checker.For(lang)
	if err != nil {
		return nil, err
	}
	res, err := psr.Parse(source, lang, path)
	if err != nil {
		return nil, err
	}

	fr := analyzeParseResult(res, c)
	if err := a.cache.Put(path, hash, fr); err != nil {
		a.log.Warn("failed to cache result", zap.String("path", path), zap.Error(err))
	}
	a.applyThresholds(fr)
	return fr, nil
}

// applyThresholds fills violations; cached results are stored without them
// so a threshold change does not need a fresh parse.
func (a *Analyzer) applyThresholds(fr *FileResult) {
	fr.ViolationCount = 0
	for i := range fr.Functions {
		fn := &fr.Functions[i]
		fn.Violations = a.thresholds.Check(fn.Metrics)
		fr.ViolationCount += len(fn.Violations)
	}
}

// analyzeParseResult computes per-function metrics and file totals.
func analyzeParseResult(res *parser.ParseResult, c checker.Checker) *FileResult {
	root := res.Root()
	fr := &FileResult{
		Path:      res.Path,
		Language:  string(res.Language),
		HasError:  root.HasError(),
		Functions: make([]FunctionResult, 0),
	}

	for _, fn := range Functions(root, c) {
		result := AnalyzeFunction(fn, c)
		result.File = res.Path
		fr.Functions = append(fr.Functions, result)

		fr.TotalCyclomatic += result.Metrics.Cyclomatic
		fr.TotalCognitive += result.Metrics.Cognitive
		fr.MaxCyclomatic = max(fr.MaxCyclomatic, result.Metrics.Cyclomatic)
		fr.MaxCognitive = max(fr.MaxCognitive, result.Metrics.Cognitive)
	}

	if n := len(fr.Functions); n > 0 {
		fr.AvgCyclomatic = float64(fr.TotalCyclomatic) / float64(n)
		fr.AvgCognitive = float64(fr.TotalCognitive) / float64(n)
	}
	return fr
}

// buildAnalysis constructs an Analysis from file results.
func buildAnalysis(results []FileResult) *Analysis {
	analysis := &Analysis{Files: results}
	if analysis.Files == nil {
		analysis.Files = []FileResult{}
	}
	s := &analysis.Summary
	s.TotalFiles = len(results)

	var cyc, cog []float64
	var totalCyc, totalCog uint32
	for _, fr := range results {
		s.ViolationCount += fr.ViolationCount
		for _, fn := range fr.Functions {
			cyc = append(cyc, float64(fn.Metrics.Cyclomatic))
			cog = append(cog, float64(fn.Metrics.Cognitive))
			totalCyc += fn.Metrics.Cyclomatic
			totalCog += fn.Metrics.Cognitive
			s.MaxCyclomatic = max(s.MaxCyclomatic, fn.Metrics.Cyclomatic)
			s.MaxCognitive = max(s.MaxCognitive, fn.Metrics.Cognitive)
			if fn.HasError {
				s.ErrorFunctions++
			}
		}
	}

	s.TotalFunctions = len(cyc)
	if s.TotalFunctions == 0 {
		return analysis
	}
	s.AvgCyclomatic = float64(totalCyc) / float64(s.TotalFunctions)
	s.AvgCognitive = float64(totalCog) / float64(s.TotalFunctions)

	slices.Sort(cyc)
	slices.Sort(cog)
	s.P50Cyclomatic = percentile(cyc, 0.50)
	s.P90Cyclomatic = percentile(cyc, 0.90)
	s.P95Cyclomatic = percentile(cyc, 0.95)
	s.P50Cognitive = percentile(cog, 0.50)
	s.P90Cognitive = percentile(cog, 0.90)
	s.P95Cognitive = percentile(cog, 0.95)
	return analysis
}

// percentile returns the empirical p-quantile of sorted values.
func percentile(sorted []float64, p float64) uint32 {
	if len(sorted) == 0 {
		return 0
	}
	return uint32(stat.Quantile(p, stat.Empirical, sorted, nil))
}

// IsSkipped reports whether err only records files left out by the size limit.
func IsSkipped(err error) bool {
	var errs *fileproc.ProcessingErrors
	if !errors.As(err, &errs) {
		return errors.Is(err, fileproc.ErrFileTooLarge)
	}
	for _, pe := range errs.Errors {
		if !errors.Is(pe.Err, fileproc.ErrFileTooLarge) {
			return false
		}
	}
	return true
}
