package config

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/imdario/mergo"
	"go.uber.org/zap"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/generator"
	"github.com/tamasfe/mosaic/pkg/parser"
	"github.com/tamasfe/mosaic/pkg/transformer"
	"github.com/tamasfe/mosaic/pkg/util"
	"github.com/tamasfe/mosaic/pkg/validate"
)

// Parsers supported by the CLI.
var Parsers = []parser.Parser{
	parser.NewYAML(),
	parser.NewJSON(),
	parser.NewTOML(),
}

// Transformers supported by the CLI.
var Transformers = []transformer.Transformer{
	&transformer.Default{},
}

// Transformer groups the transformer name and its options
type Transformer struct {
	Name    string      `yaml:"name,omitempty" description:"Name of the transformer"`
	Options interface{} `yaml:"options,omitempty" description:"Options for the transformer"`
}

// MarshalYAML implements YAML Marshaler
func (t *Transformer) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(t)
}

// GenerateOptions contains options for the CLI.
type GenerateOptions struct {
	Yes          bool
	ConfigPath   string
	OutPath      string
	AllowedRoot  string
	Minimal      string
	ManifestPath string
	Watch        bool

	// Overrides are set from flags, and take precedence over the config file.
	Overrides MosaicOptions
}

// GetOptions contains options for the CLI.
type GetOptions struct {
	Force      bool
	NoComments bool
	All        bool
	Dump       bool
	OutPath    string
	ConfigPath string
}

// MosaicOptions options for Mosaic.
type MosaicOptions struct {
	FilePattern           string                 `yaml:"filePattern" description:"Pattern for generated file names, supports Go templating with sprig functions"`
	Extension             string                 `yaml:"extension" description:"Extension of the generated files"`
	Workers               int                    `yaml:"workers" description:"Number of variants generated at once, the number of CPUs if zero"`
	Timestamp             bool                   `yaml:"timestamp" description:"Add timestamp to the generated documents"`
	Comments              bool                   `yaml:"comments" description:"Add a header comment to the generated documents"`
	ShowVariants          bool                   `yaml:"showVariants" description:"Don't hide the names of variant documents"`
	HideEnablerProperties bool                   `yaml:"hideEnablerProperties" description:"Leave the enablers out of the properties block"`
	MissingProperties     string                 `yaml:"missingProperties" description:"Severity of properties missing from the properties template, error or warning"`
	Dialect               *common.Dialect        `yaml:"dialect,omitempty" description:"Shape of the generated documents, missing values are taken from the default"`
	Parsers               map[string]interface{} `yaml:"parsers,omitempty" description:"Parsers to use and their options, leave it empty to infer from the input"`
	Transformers          []*Transformer         `yaml:"transformers,omitempty" description:"Transformers to alter the project with before generation, and their options"`
}

// MarshalYAML implements YAML Marshaler
func (g *MosaicOptions) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(g)
}

// DefaultMosaicOptions returns the default config
func DefaultMosaicOptions() *MosaicOptions {
	return &MosaicOptions{
		FilePattern:       generator.DefaultFilePattern,
		Extension:         generator.DefaultExtension,
		Comments:          true,
		MissingProperties: validate.SeverityError.String(),
		Dialect:           common.DefaultDialect(),
		Parsers:           map[string]interface{}{},
		Transformers: []*Transformer{
			{Name: "default"},
		},
	}
}

// Merge fills the missing dialect values from the default dialect,
// and applies the overrides.
func Merge(opts *MosaicOptions, overrides *MosaicOptions) error {
	if opts.Dialect == nil {
		opts.Dialect = common.DefaultDialect()
	} else if err := mergo.Merge(opts.Dialect, common.DefaultDialect()); err != nil {
		return fmt.Errorf("invalid dialect: %w", err)
	}

	if overrides == nil {
		return nil
	}

	if err := mergo.Merge(opts, overrides, mergo.WithOverride); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	return nil
}

// ValidateMosaicOptions validates options
func ValidateMosaicOptions(opts *MosaicOptions) error {
	var problems []string

	if opts.Workers < 0 {
		problems = append(problems, "workers can't be negative")
	}

	if _, err := validate.ParseSeverity(opts.MissingProperties); err != nil {
		problems = append(problems, err.Error())
	}

	if _, err := template.New("filename").Funcs(sprig.TxtFuncMap()).Parse(opts.FilePattern); err != nil {
		problems = append(problems, fmt.Sprintf("invalid file pattern: %v", err))
	}

	for pName := range opts.Parsers {
		if FindParser(pName) == nil {
			problems = append(problems, fmt.Sprintf(`parser with name "%v" not found`, pName))
		}
	}

	for _, t := range opts.Transformers {
		if t == nil || FindTransformer(t.Name) == nil {
			name := ""
			if t != nil {
				name = t.Name
			}
			problems = append(problems, fmt.Sprintf(`transformer with name "%v" not found`, name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid options: %v", strings.Join(problems, "; "))
	}

	return nil
}

// NormalizeNames lowercases and trims the parser and transformer names.
func NormalizeNames(opts *MosaicOptions) {
	for pName, pVal := range opts.Parsers {
		normalizedName := strings.ToLower(strings.TrimSpace(pName))

		if normalizedName != pName {
			opts.Parsers[normalizedName] = pVal
			delete(opts.Parsers, pName)
		}
	}

	for _, t := range opts.Transformers {
		if t != nil {
			t.Name = strings.ToLower(strings.TrimSpace(t.Name))
		}
	}
}

// FindParser returns the parser with the name, or nil.
func FindParser(name string) parser.Parser {
	for _, p := range Parsers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// FindTransformer returns the transformer with the name, or nil.
func FindTransformer(name string) transformer.Transformer {
	for _, t := range Transformers {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// GeneratorOptions converts the options for the generator.
func GeneratorOptions(opts *MosaicOptions, logger *zap.Logger) (generator.Options, error) {
	severity, err := validate.ParseSeverity(opts.MissingProperties)
	if err != nil {
		return generator.Options{}, err
	}

	return generator.Options{
		Dialect:               opts.Dialect,
		Workers:               opts.Workers,
		ShowVariants:          opts.ShowVariants,
		HideEnablerProperties: opts.HideEnablerProperties,
		Comments:              opts.Comments,
		Timestamp:             opts.Timestamp,
		FilePattern:           opts.FilePattern,
		Extension:             opts.Extension,
		MissingProperties:     severity,
		Logger:                logger,
	}, nil
}
