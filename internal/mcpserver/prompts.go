package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

type promptFrontmatter struct {
	Description string `yaml:"description"`
}

// registerPrompts adds one prompt per embedded markdown file, named after
// the file without its extension.
func (s *Server) registerPrompts() {
	files, err := fs.Glob(promptFiles, "prompts/*.md")
	if err != nil {
		s.log.Warn("no prompts", zap.Error(err))
		return
	}
	for _, file := range files {
		content, err := promptFiles.ReadFile(file)
		if err != nil {
			s.log.Warn("unreadable prompt", zap.String("file", file), zap.Error(err))
			continue
		}
		description, body := parseFrontmatter(content)
		s.server.AddPrompt(&mcp.Prompt{
			Name:        strings.TrimSuffix(path.Base(file), ".md"),
			Description: description,
		}, promptHandler(description, body))
	}
}

// parseFrontmatter splits a leading "---" YAML block from the body. Content
// without a well-formed block is all body.
func parseFrontmatter(content []byte) (description, body string) {
	rest, ok := bytes.CutPrefix(content, []byte("---\n"))
	if !ok {
		return "", string(content)
	}
	head, tail, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return "", string(content)
	}
	var fm promptFrontmatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return "", string(content)
	}
	return fm.Description, string(bytes.TrimLeft(tail, "\n"))
}

func promptHandler(description, body string) mcp.PromptHandler {
	return func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: description,
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: body},
			}},
		}, nil
	}
}
