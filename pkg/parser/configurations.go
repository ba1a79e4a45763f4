package parser

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tamasfe/mosaic/pkg/module"
)

type configurationDoc struct {
	Name   string         `yaml:"name"`
	Values map[string]int `yaml:"values"`
}

type configurationsDoc struct {
	Configurations []configurationDoc `yaml:"configurations"`
}

// LoadConfigurations reads the configurations used for minimal generation.
//
// The file is either a list of configurations, or an object with a
// "configurations" list. Non-integer values are truncated.
func LoadConfigurations(path string) ([]module.Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}

	// The decoders only produce objects, so a bare list is wrapped first.
	// TOML has no top level lists.
	trimmed := strings.TrimSpace(string(b))
	if !hasExtension(path, NewTOML().(*format).extensions) && (strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "-")) {
		return decodeConfigurationList(path, b)
	}

	raw, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	doc := &configurationsDoc{}
	if err := decodeMap(raw, doc); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	return configurations(path, doc.Configurations)
}

func decodeConfigurationList(path string, b []byte) ([]module.Configuration, error) {
	var list []interface{}

	var err error
	if hasExtension(path, NewJSON().(*format).extensions) {
		err = json.Unmarshal(b, &list)
	} else {
		err = yaml.Unmarshal(b, &list)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	doc := &configurationsDoc{}
	if err := decodeMap(map[string]interface{}{"configurations": list}, doc); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	return configurations(path, doc.Configurations)
}

func configurations(path string, docs []configurationDoc) ([]module.Configuration, error) {
	configs := make([]module.Configuration, 0, len(docs))
	for i, d := range docs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("%v: configuration #%v has no name", path, i)
		}

		values := d.Values
		if values == nil {
			values = make(map[string]int)
		}

		configs = append(configs, module.Configuration{Name: name, Values: values})
	}
	return configs, nil
}
