package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Encode renders c in the format implied by path's extension: YAML for
// .yaml and .yml, JSON for .json, TOML otherwise. The result loads back
// through Load unchanged.
func (c *Config) Encode(path string) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err = yaml.Marshal(c)
	case ".json":
		out, err = json.MarshalIndent(c, "", "  ")
		out = append(out, '\n')
	default:
		out, err = toml.Marshal(c)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}
