// Package config loads cstq settings from TOML, YAML, or JSON files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/cstq/pkg/parser"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration options for cstq.
type Config struct {
	Analysis   AnalysisConfig  `koanf:"analysis" toml:"analysis" yaml:"analysis" json:"analysis"`
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds" yaml:"thresholds" json:"thresholds"`
	Exclude    ExcludeConfig   `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`
	Cache      CacheConfig     `koanf:"cache" toml:"cache" yaml:"cache" json:"cache"`
	Output     OutputConfig    `koanf:"output" toml:"output" yaml:"output" json:"output"`
}

// AnalysisConfig controls what is parsed and how.
type AnalysisConfig struct {
	MaxFileSize int64    `koanf:"max_file_size" toml:"max_file_size" yaml:"max_file_size" json:"max_file_size"` // bytes, 0 = no limit
	Workers     int      `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`                         // 0 = 2x NumCPU
	Languages   []string `koanf:"languages" toml:"languages" yaml:"languages" json:"languages"`                 // empty = all supported
}

// ThresholdConfig defines complexity limits. Zero disables a limit.
type ThresholdConfig struct {
	Cyclomatic int `koanf:"cyclomatic" toml:"cyclomatic" yaml:"cyclomatic" json:"cyclomatic"`
	Cognitive  int `koanf:"cognitive" toml:"cognitive" yaml:"cognitive" json:"cognitive"`
	Nesting    int `koanf:"nesting" toml:"nesting" yaml:"nesting" json:"nesting"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions" yaml:"extensions" json:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs" yaml:"dirs" json:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl" json:"ttl"` // TTL in hours
}

// TTLDuration returns TTL as a duration.
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Hour
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, toon
	Color   bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MaxFileSize: 1 << 20,
		},
		Thresholds: ThresholdConfig{
			Cyclomatic: 10,
			Cognitive:  15,
			Nesting:    4,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.pb.go",
				"*_generated.go",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".cstq",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".cstq/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var p koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p = yaml.Parser()
	case ".json":
		p = json.Parser()
	default:
		p = toml.Parser()
	}

	if err := k.Load(file.Provider(path), p); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched in order within each search directory.
var configNames = []string{
	"cstq.toml",
	"cstq.yaml",
	"cstq.yml",
	"cstq.json",
	".cstq.toml",
	".cstq.yaml",
	".cstq.yml",
	".cstq.json",
}

// Find returns the first config file under root's standard locations, or "".
func Find(root string) string {
	for _, dir := range []string{".", ".cstq"} {
		for _, name := range configNames {
			path := filepath.Join(root, dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the config at path, or the first one Find locates in
// the working directory when path is empty. With nothing found it returns
// the defaults; a file that exists but does not load is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = Find(".")
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("%w: analysis.max_file_size must be >= 0", ErrInvalid))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: analysis.workers must be >= 0", ErrInvalid))
	}
	for _, name := range c.Analysis.Languages {
		if parser.ParseLanguage(name) == parser.LangUnknown {
			errs = append(errs, fmt.Errorf("%w: unknown language %q", ErrInvalid, name))
		}
	}
	if c.Thresholds.Cyclomatic < 0 || c.Thresholds.Cognitive < 0 || c.Thresholds.Nesting < 0 {
		errs = append(errs, fmt.Errorf("%w: thresholds must be >= 0", ErrInvalid))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("%w: cache.ttl must be >= 0", ErrInvalid))
	}
	if !slices.Contains([]string{"text", "json", "toon"}, c.Output.Format) {
		errs = append(errs, fmt.Errorf("%w: output.format %q is not text, json, or toon", ErrInvalid, c.Output.Format))
	}
	return errors.Join(errs...)
}

// LanguageEnabled reports whether files of lang should be analyzed.
func (c *Config) LanguageEnabled(lang parser.Language) bool {
	if len(c.Analysis.Languages) == 0 {
		return lang != parser.LangUnknown
	}
	for _, name := range c.Analysis.Languages {
		if parser.ParseLanguage(name) == lang {
			return true
		}
	}
	return false
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	ext := filepath.Ext(path)
	if slices.Contains(c.Exclude.Extensions, ext) {
		return true
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
