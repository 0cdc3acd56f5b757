// Package fileproc parses and processes files concurrently.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/panbanda/cstq/pkg/parser"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrFileTooLarge marks files skipped by the size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects per-file errors from a parallel run.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
	}
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of file I/O and CGO parsing.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed, successfully or not.
type ProgressFunc func()

// Options configures a parallel run.
type Options struct {
	// Workers caps concurrent goroutines; <= 0 means 2x NumCPU.
	Workers int
	// MaxFileSize skips larger files with ErrFileTooLarge; 0 means no limit.
	MaxFileSize int64
	OnProgress  ProgressFunc
	Logger      *zap.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// Func processes one file's content with a parser owned by the calling worker.
type Func[T any] func(psr *parser.Parser, path string, content []byte) (T, error)

// MapFiles reads and processes files in parallel. Results keep the order of
// files with failed entries dropped; failures are collected in the returned
// ProcessingErrors, which is nil when every file succeeded. Cancelling ctx
// stops scheduling new files and records ctx.Err() for each unprocessed one.
func MapFiles[T any](ctx context.Context, files []string, opts Options, fn Func[T]) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	log := opts.logger()
	slots := make([]T, len(files))
	ok := make([]bool, len(files))
	errs := &ProcessingErrors{}

	parsers := sync.Pool{New: func() any { return parser.New() }}
	var created []*parser.Parser
	var createdMu sync.Mutex
	get := func() *parser.Parser {
		psr := parsers.Get().(*parser.Parser)
		createdMu.Lock()
		created = append(created, psr)
		createdMu.Unlock()
		return psr
	}

	p := pool.New().WithMaxGoroutines(opts.workers()).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if opts.OnProgress != nil {
					opts.OnProgress()
				}
			}()

			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}

			content, err := readFile(path, opts.MaxFileSize)
			if err != nil {
				log.Debug("skipping file", zap.String("path", path), zap.Error(err))
				errs.Add(path, err)
				return nil
			}

			psr := get()
			result, err := fn(psr, path, content)
			parsers.Put(psr)
			if err != nil {
				log.Debug("processing failed", zap.String("path", path), zap.Error(err))
				errs.Add(path, err)
				return nil
			}

			slots[i] = result
			ok[i] = true
			return nil
		})
	}
	_ = p.Wait() // per-file errors, including ctx errors, are already in errs

	closeParsers(created)

	results := make([]T, 0, len(files))
	for i := range slots {
		if ok[i] {
			results = append(results, slots[i])
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

func readFile(path string, maxSize int64) ([]byte, error) {
	if maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > maxSize {
			return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, info.Size(), maxSize)
		}
	}
	return os.ReadFile(path)
}

// closeParsers closes each distinct parser handed out during a run.
func closeParsers(ps []*parser.Parser) {
	seen := make(map[*parser.Parser]struct{}, len(ps))
	for _, psr := range ps {
		if _, dup := seen[psr]; dup {
			continue
		}
		seen[psr] = struct{}{}
		psr.Close()
	}
}
