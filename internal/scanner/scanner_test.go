package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/panbanda/cstq/pkg/config"
	"github.com/panbanda/cstq/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil, nil)
	assert.NotNil(t, s.config)
	assert.NotNil(t, s.log)

	cfg := config.DefaultConfig()
	assert.Same(t, cfg, NewScanner(cfg, nil).config)
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"main.go":          "package main\n",
		"lib.go":           "package lib\n",
		"util/helper.go":   "package util\n",
		"util/helper.py":   "# python\n",
		"internal/core.rs": "fn main() {}\n",
		"README.md":        "# readme\n",
	})

	result, err := NewScanner(nil, nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"internal/core.rs", "lib.go", "main.go", "util/helper.go", "util/helper.py"},
		relPaths(t, tmpDir, result))
}

func TestScanDirExclusions(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"main.go":             "package main\n",
		"vendor/x/file.go":    "package x\n",
		"node_modules/a/i.js": "module.exports = 1\n",
		"app.min.js":          "var a=1\n",
		"api/service.pb.go":   "package api\n",
		"src/deep/build/b.go": "package build\n",
		"src/deep/builder.go": "package deep\n",
	})

	result, err := NewScanner(nil, nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "src/deep/builder.go"}, relPaths(t, tmpDir, result))
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		".gitignore":       "skipme\n*.gen.go\n",
		"main.go":          "package main\n",
		"skipme/skip.go":   "package skipme\n",
		"src/app.go":       "package src\n",
		"src/model.gen.go": "package src\n",
		"src/.gitignore":   "local.py\n",
		"src/local.py":     "x = 1\n",
		"other/local.py":   "x = 1\n",
	})

	result, err := NewScanner(nil, nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "other/local.py", "src/app.go"}, relPaths(t, tmpDir, result))

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false
	result, err = NewScanner(cfg, nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, result, 6, "gitignore disabled")
}

func TestScanDirGitignoreFromRepoRoot(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0755))
	createFiles(t, repo, map[string]string{
		".gitignore":         "sub/generated\n",
		"sub/keep.go":        "package sub\n",
		"sub/generated/g.go": "package generated\n",
	})

	sub := filepath.Join(repo, "sub")
	result, err := NewScanner(nil, nil).ScanDir(sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.go"}, relPaths(t, sub, result))
}

func TestScanDirLanguages(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"a.go": "package a\n",
		"b.py": "x = 1\n",
		"c.rs": "fn main() {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Analysis.Languages = []string{"python", "rust"}
	result, err := NewScanner(cfg, nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.py", "c.rs"}, relPaths(t, tmpDir, result))
}

func TestScan(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"dir/a.go":  "package a\n",
		"dir/b.go":  "package b\n",
		"single.py": "x = 1\n",
		"notes.txt": "hello\n",
	})

	s := NewScanner(nil, nil)
	result, err := s.Scan([]string{
		filepath.Join(tmpDir, "dir"),
		filepath.Join(tmpDir, "single.py"),
		filepath.Join(tmpDir, "notes.txt"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/a.go", "dir/b.go", "single.py"}, relPaths(t, tmpDir, result))

	_, err = s.Scan([]string{filepath.Join(tmpDir, "missing")})
	assert.Error(t, err)
}

func TestScanDirEmptyDirectory(t *testing.T) {
	result, err := NewScanner(nil, nil).ScanDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestGroupByLanguage(t *testing.T) {
	groups := GroupByLanguage([]string{"a.go", "b.go", "c.py", "d.txt"})
	assert.Equal(t, map[parser.Language][]string{
		parser.LangGo:     {"a.go", "b.go"},
		parser.LangPython: {"c.py"},
	}, groups)
	assert.Empty(t, GroupByLanguage(nil))
}

func TestIsWithinRoot(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		path string
		want bool
	}{
		{root, true},
		{filepath.Join(root, "a", "b.go"), true},
		{filepath.Join(root, "..", "elsewhere"), false},
		{root + "2", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isWithinRoot(tt.path, root), tt.path)
	}
}

func TestFindGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	assert.Equal(t, "", findGitRoot(tmpDir))

	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0755))
	sub := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	assert.Equal(t, tmpDir, findGitRoot(sub))
}

func TestScanDirWithSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	realFile := filepath.Join(tmpDir, "real.go")
	require.NoError(t, os.WriteFile(realFile, []byte("package main\n"), 0644))

	if err := os.Symlink(realFile, filepath.Join(tmpDir, "link.go")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}
	if err := os.Symlink("/nonexistent/path/file.go", filepath.Join(tmpDir, "dangling.go")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "outside.go"), []byte("package outside\n"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(outside, "outside.go"), filepath.Join(tmpDir, "escape.go")))

	result, err := NewScanner(nil, nil).ScanDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"link.go", "real.go"}, relPaths(t, tmpDir, result))
}
