package parser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewYAML returns the YAML project parser.
func NewYAML() Parser {
	return &format{
		name:        "yaml",
		description: "Parses YAML project files",
		extensions:  []string{".yaml", ".yml"},
		decode: func(data []byte) (map[string]interface{}, error) {
			raw := make(map[string]interface{})
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("invalid YAML: %w", err)
			}
			return raw, nil
		},
	}
}

// NewJSON returns the JSON project parser.
func NewJSON() Parser {
	return &format{
		name:        "json",
		description: "Parses JSON project files",
		extensions:  []string{".json"},
		decode: func(data []byte) (map[string]interface{}, error) {
			raw := make(map[string]interface{})
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("invalid JSON: %w", err)
			}
			return raw, nil
		},
	}
}

// NewTOML returns the TOML project parser.
func NewTOML() Parser {
	return &format{
		name:        "toml",
		description: "Parses TOML project files",
		extensions:  []string{".toml"},
		decode: func(data []byte) (map[string]interface{}, error) {
			raw := make(map[string]interface{})
			if err := toml.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("invalid TOML: %w", err)
			}
			return raw, nil
		},
	}
}
