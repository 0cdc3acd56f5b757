package mcpserver

import "encoding/json"

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the registry description of the server (server.json).
type Manifest struct {
	Schema      string         `json:"$schema"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Repository  *Repository    `json:"repository,omitempty"`
	Packages    []PackageEntry `json:"packages,omitempty"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// PackageEntry tells a registry client how to install and launch the server.
type PackageEntry struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	Version          string     `json:"version,omitempty"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        struct {
		Type string `json:"type"`
	} `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// GenerateManifest renders server.json for version, launching `cstq mcp`
// from the Go module over stdio.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" || version == "dev" {
		version = "0.0.0"
	}

	pkg := PackageEntry{
		RegistryType:     "go",
		Identifier:       "github.com/panbanda/cstq/cmd/cstq",
		Version:          version,
		PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
	}
	pkg.Transport.Type = "stdio"

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/cstq",
		Description: "Syntax-tree queries and complexity metrics over tree-sitter parses",
		Version:     version,
		Repository:  &Repository{URL: "https://github.com/panbanda/cstq", Source: "github"},
		Packages:    []PackageEntry{pkg},
	}, "", "  ")
}
