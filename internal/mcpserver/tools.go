package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/cstq/internal/cache"
	"github.com/panbanda/cstq/internal/output"
	"github.com/panbanda/cstq/internal/query"
	"github.com/panbanda/cstq/internal/scanner"
	"github.com/panbanda/cstq/pkg/analyzer/complexity"
	"github.com/panbanda/cstq/pkg/parser"
	toon "github.com/toon-format/toon-go"
	"go.uber.org/zap"
)

// FileInput is the base input for tools that query one file.
type FileInput struct {
	Path   string `json:"path" jsonschema:"Source file to parse."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// SyntaxTreeInput adds tree dump options.
type SyntaxTreeInput struct {
	FileInput
	Named    bool `json:"named,omitempty" jsonschema:"Show only named nodes."`
	MaxDepth *int `json:"max_depth,omitempty" jsonschema:"Deepest level to include. Default unlimited."`
}

// FindNodesInput adds search options.
type FindNodesInput struct {
	FileInput
	Kinds []string `json:"kinds" jsonschema:"Node kinds to match, e.g. function_declaration."`
	First bool     `json:"first,omitempty" jsonschema:"Return only the first match."`
}

// NodePathInput lists the child kinds to follow.
type NodePathInput struct {
	FileInput
	Kinds []string `json:"kinds" jsonschema:"Child kind to descend into at each step, starting at the root."`
}

// NodeAncestorsInput locates a node by position.
type NodeAncestorsInput struct {
	FileInput
	Line  uint32   `json:"line" jsonschema:"One-based line."`
	Col   uint32   `json:"col,omitempty" jsonschema:"One-based column. Default 1."`
	Named bool     `json:"named,omitempty" jsonschema:"Start from the deepest named node."`
	Count []string `json:"count,omitempty" jsonschema:"Ancestor kinds to count."`
	Stop  []string `json:"stop,omitempty" jsonschema:"Kinds that end the count. Default: the language's functions."`
}

// ComplexityInput selects files and limits for complexity analysis.
type ComplexityInput struct {
	Paths               []string `json:"paths,omitempty" jsonschema:"Files or directories to analyze. Defaults to current directory if empty."`
	Format              string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
	CyclomaticThreshold int      `json:"cyclomatic_threshold,omitempty" jsonschema:"Cyclomatic complexity limit. Default from config."`
	CognitiveThreshold  int      `json:"cognitive_threshold,omitempty" jsonschema:"Cognitive complexity limit. Default from config."`
	NestingThreshold    int      `json:"nesting_threshold,omitempty" jsonschema:"Nesting depth limit. Default from config."`
}

func getPaths(input ComplexityInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(format string) output.Format {
	if format == "json" {
		return output.FormatJSON
	}
	return output.FormatTOON
}

func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) parse(path string) (*parser.ParseResult, error) {
	psr := parser.New()
	defer psr.Close()
	res, err := psr.ParseFile(path)
	if err != nil {
		return nil, err
	}
	s.log.Debug("parsed", zap.String("path", path), zap.Int("nodes", res.Tree.Len()))
	return res, nil
}

func (s *Server) handleSyntaxTree(ctx context.Context, req *mcp.CallToolRequest, input SyntaxTreeInput) (*mcp.CallToolResult, any, error) {
	res, err := s.parse(input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	maxDepth := -1
	if input.MaxDepth != nil {
		maxDepth = *input.MaxDepth
	}
	return toolResult(query.Tree(res, input.Named, maxDepth), getFormat(input.Format))
}

func (s *Server) handleFindNodes(ctx context.Context, req *mcp.CallToolRequest, input FindNodesInput) (*mcp.CallToolResult, any, error) {
	if len(input.Kinds) == 0 {
		return toolError("kinds is required")
	}
	res, err := s.parse(input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	infos, err := query.Find(res, input.Kinds, input.First)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(infos, getFormat(input.Format))
}

func (s *Server) handleNodePath(ctx context.Context, req *mcp.CallToolRequest, input NodePathInput) (*mcp.CallToolResult, any, error) {
	res, err := s.parse(input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	info, ok, err := query.Path(res, input.Kinds)
	if err != nil {
		return toolError(err.Error())
	}
	if !ok {
		return toolResult([]query.NodeInfo{}, getFormat(input.Format))
	}
	return toolResult([]query.NodeInfo{info}, getFormat(input.Format))
}

func (s *Server) handleNodeAncestors(ctx context.Context, req *mcp.CallToolRequest, input NodeAncestorsInput) (*mcp.CallToolResult, any, error) {
	res, err := s.parse(input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	col := input.Col
	if col == 0 {
		col = 1
	}
	result, err := query.Ancestors(res, query.AncestorsRequest{
		Line:  input.Line,
		Col:   col,
		Named: input.Named,
		Count: input.Count,
		Stop:  input.Stop,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result, getFormat(input.Format))
}

func (s *Server) handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest, input ComplexityInput) (*mcp.CallToolResult, any, error) {
	files, err := scanner.NewScanner(s.cfg, s.log).Scan(getPaths(input))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	thresholds := complexity.Thresholds{
		MaxCyclomatic: uint32(s.cfg.Thresholds.Cyclomatic),
		MaxCognitive:  uint32(s.cfg.Thresholds.Cognitive),
		MaxNesting:    s.cfg.Thresholds.Nesting,
	}
	if input.CyclomaticThreshold > 0 {
		thresholds.MaxCyclomatic = uint32(input.CyclomaticThreshold)
	}
	if input.CognitiveThreshold > 0 {
		thresholds.MaxCognitive = uint32(input.CognitiveThreshold)
	}
	if input.NestingThreshold > 0 {
		thresholds.MaxNesting = input.NestingThreshold
	}

	opts := []complexity.Option{
		complexity.WithMaxFileSize(s.cfg.Analysis.MaxFileSize),
		complexity.WithWorkers(s.cfg.Analysis.Workers),
		complexity.WithThresholds(thresholds),
		complexity.WithLogger(s.log),
	}
	if s.cfg.Cache.Enabled {
		ch, err := cache.New(s.cfg.Cache.Dir, s.cfg.Cache.TTLDuration(), true,
			cache.WithNamespace(complexity.CacheNamespace),
			cache.WithLogger(s.log),
		)
		if err != nil {
			s.log.Warn("cache disabled", zap.Error(err))
		} else {
			opts = append(opts, complexity.WithCache(ch))
		}
	}

	analyzer := complexity.New(opts...)
	defer analyzer.Close()

	result, err := analyzer.Analyze(ctx, files, nil)
	if err != nil && !complexity.IsSkipped(err) {
		s.log.Warn("some files failed", zap.Error(err))
	}
	return toolResult(result, getFormat(input.Format))
}
