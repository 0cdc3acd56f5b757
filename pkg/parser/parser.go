package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panbanda/cstq/pkg/node"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrUnsupportedLanguage is returned for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangTSX        Language = "tsx"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangBash       Language = "bash"
	LangUnknown    Language = "unknown"
)

// grammar pairs a language with its tree-sitter grammar, kind tables and
// file extensions.
type grammar struct {
	lang  Language
	load  func() *sitter.Language
	kinds func() *node.Grammar
	exts  []string
}

// register loads the tree-sitter grammar and its kind tables once, so
// every tree of a language shares one *sitter.Language and one
// node.Grammar.
func register(lang Language, get func() *sitter.Language, exts ...string) grammar {
	load := sync.OnceValue(get)
	return grammar{
		lang:  lang,
		load:  load,
		kinds: sync.OnceValue(func() *node.Grammar { return node.NewGrammar(load()) }),
		exts:  exts,
	}
}

// registry is ordered; Languages reports it in this order.
var registry = []grammar{
	register(LangGo, golang.GetLanguage, ".go"),
	register(LangRust, rust.GetLanguage, ".rs"),
	register(LangPython, python.GetLanguage, ".py", ".pyw", ".pyi"),
	register(LangTypeScript, typescript.GetLanguage, ".ts", ".mts", ".cts"),
	register(LangTSX, tsx.GetLanguage, ".tsx", ".jsx"), // JSX parses with the TSX grammar
	register(LangJavaScript, javascript.GetLanguage, ".js", ".mjs", ".cjs"),
	register(LangJava, java.GetLanguage, ".java"),
	register(LangC, c.GetLanguage, ".c", ".h"),
	register(LangCPP, cpp.GetLanguage, ".cpp", ".cc", ".cxx", ".hpp", ".hxx", ".hh"),
	register(LangCSharp, csharp.GetLanguage, ".cs"),
	register(LangRuby, ruby.GetLanguage, ".rb"),
	register(LangPHP, php.GetLanguage, ".php"),
	register(LangBash, bash.GetLanguage, ".sh", ".bash"),
}

var byExt = func() map[string]Language {
	m := make(map[string]Language)
	for _, g := range registry {
		for _, ext := range g.exts {
			m[ext] = g.lang
		}
	}
	return m
}()

// Languages lists every language with a grammar, in a stable order.
func Languages() []Language {
	langs := make([]Language, len(registry))
	for i, g := range registry {
		langs[i] = g.lang
	}
	return langs
}

// ParseLanguage converts a name such as "go" or "TypeScript" to a Language.
func ParseLanguage(s string) Language {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, g := range registry {
		if g.lang == lang {
			return lang
		}
	}
	return LangUnknown
}

// Parser turns source bytes into node trees. It holds one tree-sitter
// parser and is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult is one parsed source unit.
type ParseResult struct {
	Tree     *node.Tree
	Language Language
	Source   []byte
	Path     string
}

func (r *ParseResult) Root() node.Node {
	return r.Tree.Root()
}

func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// ParseFile reads path and parses it with the grammar its extension selects.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Parse(source, lang, path)
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	return p.ParseCtx(context.Background(), source, lang, path)
}

// ParseCtx is Parse with a context that can cancel a long parse.
func (p *Parser) ParseCtx(ctx context.Context, source []byte, lang Language, path string) (*ParseResult, error) {
	g, err := lookup(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(g.load())
	raw, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, errors.Join(node.ErrParse, err))
	}
	defer raw.Close()

	tree, err := node.FromSitterWithGrammar(raw, source, g.kinds())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

func lookup(lang Language) (*grammar, error) {
	for i := range registry {
		if registry[i].lang == lang {
			return &registry[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
}

// GetTreeSitterLanguage returns the tree-sitter grammar for lang.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	g, err := lookup(lang)
	if err != nil {
		return nil, err
	}
	return g.load(), nil
}

// Grammar returns the kind tables for a language.
func Grammar(lang Language) (*node.Grammar, error) {
	g, err := lookup(lang)
	if err != nil {
		return nil, err
	}
	return g.kinds(), nil
}

// DetectLanguage maps a file extension to its Language, or LangUnknown.
func DetectLanguage(path string) Language {
	if lang, ok := byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LangUnknown
}

// Close frees the tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}
