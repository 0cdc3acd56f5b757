// Package scanner finds the source files to analyze.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/cstq/pkg/config"
	"github.com/panbanda/cstq/pkg/parser"
	"go.uber.org/zap"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config *config.Config
	log    *zap.Logger

	// ignore matches paths relative to ignoreBase.
	ignore     gitignore.Matcher
	ignoreBase string
}

// NewScanner creates a new file scanner. A nil cfg uses the defaults and a
// nil log discards messages.
func NewScanner(cfg *config.Config, log *zap.Logger) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{config: cfg, log: log}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadIgnore reads .gitignore files from the repository containing root, or
// from root itself outside a repository.
func (s *Scanner) loadIgnore(root string) {
	s.ignore, s.ignoreBase = nil, ""
	if !s.config.Exclude.Gitignore {
		return
	}

	base := findGitRoot(root)
	if base == "" {
		base = root
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(base), nil)
	if err != nil {
		s.log.Warn("failed to read .gitignore files", zap.String("root", base), zap.Error(err))
		return
	}
	if len(patterns) == 0 {
		return
	}
	s.log.Debug("loaded gitignore patterns", zap.String("root", base), zap.Int("patterns", len(patterns)))
	s.ignore, s.ignoreBase = gitignore.NewMatcher(patterns), base
}

// isExcluded applies gitignore rules and the configured exclusions to an
// absolute path and its path relative to the scan root.
func (s *Scanner) isExcluded(abs, rel string, isDir bool) bool {
	if rel != "." {
		if isDir {
			if slices.Contains(s.config.Exclude.Dirs, filepath.Base(rel)) {
				return true
			}
		} else if s.config.ShouldExclude(rel) {
			return true
		}
	}

	if s.ignore == nil {
		return false
	}
	ignoreRel, err := filepath.Rel(s.ignoreBase, abs)
	if err != nil || ignoreRel == "." || strings.HasPrefix(ignoreRel, "..") {
		return false
	}
	return s.ignore.Match(strings.Split(ignoreRel, string(filepath.Separator)), isDir)
}

// wanted reports whether path is a source file in an enabled language.
func (s *Scanner) wanted(path string) bool {
	lang := parser.DetectLanguage(path)
	return lang != parser.LangUnknown && s.config.LanguageEnabled(lang)
}

// Scan expands a mix of files and directories into source files. Explicit
// files are kept whenever their language is supported and enabled.
func (s *Scanner) Scan(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if s.wanted(p) {
				files = append(files, p)
			}
			continue
		}
		found, err := s.ScanDir(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// ScanDir recursively scans a directory for source files. Symlinks that
// resolve outside root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadIgnore(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		abs := filepath.Join(absRoot, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(abs, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.isExcluded(abs, rel, false) && s.wanted(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// The separator keeps "/root2" from matching "/root".
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// GroupByLanguage groups files by their detected language.
func GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		if lang := parser.DetectLanguage(f); lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}
