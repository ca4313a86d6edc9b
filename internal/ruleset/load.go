package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is a rule file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported rule file extension %q", filepath.Ext(path))
	}
}

// Parse decodes and validates a rule set.
func Parse(data []byte, format Format) (*Set, error) {
	var set Set

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &set)
	case FormatTOML:
		err = toml.Unmarshal(data, &set)
	case FormatJSON:
		err = sonic.Unmarshal(data, &set)
	default:
		return nil, fmt.Errorf("unsupported rule format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s parse error: %w", format, err)
	}

	result := &set
	if set.IncludeDefaults {
		result = Default().Merge(&set)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// Load reads a rule file, choosing the decoder by extension.
func Load(path string) (*Set, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	set, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// LoadOrDefault loads path, or returns the built-in set when path is empty.
func LoadOrDefault(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
