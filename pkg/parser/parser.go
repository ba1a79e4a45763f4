package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/tamasfe/mosaic/internal/markdown"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/util"
)

// Parser parses a project file, and returns
// the project needed for generation.
type Parser interface {
	// The name of the parser.
	Name() string

	// A short description of the parser.
	Description() string

	// DefaultOptions Returns the default options of the parser, or nil if it has none.
	DefaultOptions() interface{}

	// Parse parses a project from data. Files referenced by the project
	// are resolved relative to the working directory.
	Parse(ctx context.Context, options interface{}, data []byte) (*module.Project, error)

	// ParseResources parses a project file, the rest of the paths are
	// additional module files.
	ParseResources(ctx context.Context, options interface{}, paths ...string) (*module.Project, error)
}

// FileOptions are the options shared by the file parsers.
type FileOptions struct {
	Extensions []string `yaml:"extensions" description:"File extensions the parser accepts"`
}

// MarshalYAML implements YAML Marshaler
func (o *FileOptions) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

type decodeFunc func(data []byte) (map[string]interface{}, error)

// format is a parser built on a decoder into generic maps.
type format struct {
	name        string
	description string
	extensions  []string
	decode      decodeFunc
}

// Name implements Parser
func (f *format) Name() string {
	return f.name
}

// Description implements Parser
func (f *format) Description() string {
	return f.description
}

// DescriptionMarkdown implements DescriptionMarkdown
func (f *format) DescriptionMarkdown() string {
	return "# Description\n\n" + f.description + " with the extensions " + strings.Join(f.extensions, ", ") +
		".\n\n# Options\n\n" + markdown.OptionsTable(f.DefaultOptions())
}

// DefaultOptions implements Parser
func (f *format) DefaultOptions() interface{} {
	return &FileOptions{
		Extensions: append([]string(nil), f.extensions...),
	}
}

func (f *format) options(rawOpts interface{}) (*FileOptions, error) {
	opts := f.DefaultOptions().(*FileOptions)

	err := mapstructure.Decode(rawOpts, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	return opts, nil
}

// Parse implements Parser
func (f *format) Parse(ctx context.Context, rawOpts interface{}, data []byte) (*module.Project, error) {
	if _, err := f.options(rawOpts); err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	l := newLoader()

	p, err := f.parse(ctx, l, data, wd)
	if err != nil {
		return nil, err
	}
	p.Sources = l.sources

	return p, nil
}

// ParseResources implements Parser
func (f *format) ParseResources(ctx context.Context, rawOpts interface{}, paths ...string) (*module.Project, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths supplied")
	}

	opts, err := f.options(rawOpts)
	if err != nil {
		return nil, err
	}

	if !hasExtension(paths[0], opts.Extensions) {
		return nil, fmt.Errorf(`unsupported file extension "%v"`, filepath.Ext(paths[0]))
	}

	projectPath, err := filepath.Abs(paths[0])
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(projectPath)
	if err != nil {
		return nil, err
	}

	l := newLoader()
	l.sources = append(l.sources, projectPath)

	p, err := f.parse(ctx, l, b, filepath.Dir(projectPath))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", paths[0], err)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(projectPath), filepath.Ext(projectPath))
	}
	if p.Path == "" {
		p.Path = p.Name
	}

	for _, modPath := range paths[1:] {
		abs, err := filepath.Abs(modPath)
		if err != nil {
			return nil, err
		}

		m, err := l.moduleFile(abs)
		if err != nil {
			return nil, err
		}
		p.Modules = append(p.Modules, m)
	}

	p.Sources = l.sources

	return p, nil
}

func (f *format) parse(ctx context.Context, l *loader, data []byte, dir string) (*module.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := f.decode(data)
	if err != nil {
		return nil, err
	}

	doc := &projectDoc{}
	if err := decodeMap(raw, doc); err != nil {
		return nil, err
	}

	return l.project(doc, dir)
}

// decodeMap decodes a generic map into a document struct by its yaml tags.
func decodeMap(raw interface{}, dst interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           dst,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	return nil
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// decoderFor returns the decoder of a file by its extension.
func decoderFor(path string) (decodeFunc, error) {
	for _, f := range []*format{NewYAML().(*format), NewJSON().(*format), NewTOML().(*format)} {
		if hasExtension(path, f.extensions) {
			return f.decode, nil
		}
	}
	return nil, fmt.Errorf(`unsupported file extension "%v"`, filepath.Ext(path))
}
