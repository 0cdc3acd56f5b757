// Package mcpserver exposes the syntax-tree queries and complexity analysis
// as Model Context Protocol tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/cstq/pkg/config"
	"go.uber.org/zap"
)

// Server wraps the MCP server and registers all cstq tools.
type Server struct {
	server *mcp.Server
	cfg    *config.Config
	log    *zap.Logger
}

// NewServer creates a new MCP server with all tools and prompts registered.
// A nil cfg uses the defaults and a nil log discards output.
func NewServer(version string, cfg *config.Config, log *zap.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cstq",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, cfg: cfg, log: log}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server starting", zap.String("transport", "stdio"))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "syntax_tree",
		Description: describeSyntaxTree(),
	}, s.handleSyntaxTree)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_nodes",
		Description: describeFindNodes(),
	}, s.handleFindNodes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "node_path",
		Description: describeNodePath(),
	}, s.handleNodePath)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "node_ancestors",
		Description: describeNodeAncestors(),
	}, s.handleNodeAncestors)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: describeComplexity(),
	}, s.handleAnalyzeComplexity)
}
