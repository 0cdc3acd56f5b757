package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/cstq/internal/output"
	"github.com/panbanda/cstq/pkg/analyzer/complexity"
	"github.com/panbanda/cstq/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// runText executes the app and captures what commands print to App.Writer.
func runText(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"cstq"}, args...))
	return buf.String(), err
}

func TestInitCommand(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		header bool
	}{
		{name: "toml", file: "cstq.toml", header: true},
		{name: "yaml in new directory", file: filepath.Join(".cstq", "cstq.yaml"), header: true},
		{name: "json", file: "cstq.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			_, err := runText(t, "init", "-o", path)
			require.NoError(t, err)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.header, strings.HasPrefix(string(content), "# cstq configuration"))

			cfg, err := config.Load(path)
			require.NoError(t, err)
			defaults := config.DefaultConfig()
			assert.Equal(t, defaults.Thresholds, cfg.Thresholds)
			assert.Equal(t, defaults.Exclude, cfg.Exclude)
			assert.Equal(t, defaults.Cache, cfg.Cache)
		})
	}
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cstq.toml", "[thresholds]\nnesting = 9\n")

	_, err := runText(t, "init", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runText(t, "init", "--force", "-o", path)
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Thresholds.Nesting)
}

func TestConfigShow(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cstq.yaml", "thresholds:\n  nesting: 7\n")

	out, err := runText(t, "-c", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: "+path)
	assert.Contains(t, out, "nesting = 7")
	assert.Contains(t, out, "cyclomatic = 10")
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	_, err := runText(t, "-c", writeFile(t, dir, "good.toml", "[output]\nformat = \"json\"\n"), "config", "validate")
	assert.NoError(t, err)

	_, err = runText(t, "-c", writeFile(t, dir, "bad.toml", "[output]\nformat = \"xml\"\n"), "config", "validate")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestWatchCallback(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "sample.go", sampleGo)

	var out, errs bytes.Buffer
	f := output.NewWriterFormatter(output.FormatJSON, &out, &errs, false)
	analyzer := complexity.New()
	defer analyzer.Close()

	onChange(f, analyzer, complexity.DefaultThresholds(), zap.NewNop())(context.Background(), []string{file})
	assert.Contains(t, out.String(), "branchy")
	assert.Empty(t, errs.String())

	out.Reset()
	onChange(f, analyzer, complexity.DefaultThresholds(), zap.NewNop())(context.Background(), []string{filepath.Join(dir, "gone.go")})
	assert.Empty(t, out.String(), "nothing is printed when no file could be analyzed")
	assert.NotEmpty(t, errs.String())
}

func TestMCPManifestCommand(t *testing.T) {
	out, err := runText(t, "mcp", "manifest")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "io.github.panbanda/cstq"`)
	assert.Contains(t, out, `"value": "mcp"`)
}
