package transformer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/Masterminds/sprig"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"

	"github.com/tamasfe/mosaic/internal/markdown"
	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/util"
)

// DisplayNameValues contains values for display name templates.
type DisplayNameValues struct {
	Name   string `description:"Name of the property"`
	Words  string `description:"Name of the property split into capitalized words"`
	Module string `description:"Name of the module the property belongs to, empty for project properties"`
}

// DefaultOptions alters the behaviour of the default transformer.
type DefaultOptions struct {
	Trim           bool              `yaml:"trim" description:"Trim whitespace around names, IDs and hooks"`
	DropEmptyHooks bool              `yaml:"dropEmptyHooks" description:"Remove empty hook names, so that only the default hooks are used instead"`
	HookAliases    map[string]string `yaml:"hookAliases,omitempty" description:"Rename hooks of templates and functions"`
	DisplayName    string            `yaml:"displayName" description:"Template for missing display names. Supports Go templating with sprig functions, leave empty to keep them missing"`
}

// MarshalYAML implements YAML Marshaler.
func (d *DefaultOptions) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(d)
}

// Default is the default Transformer.
type Default struct{}

// Name implements Transformer
func (d *Default) Name() string {
	return "default"
}

// Description implements Transformer
func (d *Default) Description() string {
	return "Cleans up names and hooks of a project"
}

// DescriptionMarkdown implements DescriptionMarkdown
func (d *Default) DescriptionMarkdown() string {
	desc := `
# Description

This transformer cleans up projects that were written by hand.
It trims names, renames and drops hooks, and fills in missing display names.

# Options

## List of all options

{{ .OptionsTable }}

## Example usage in Mosaic config

{{ .OptionsExample }}

### Display name template values

{{ .ValuesTable }}
`[1:]

	buf := &bytes.Buffer{}

	templ, err := template.New("desc").Parse(desc)
	if err != nil {
		panic(err)
	}

	yamlComments := util.DisableYAMLMarshalComments

	util.DisableYAMLMarshalComments = true

	err = templ.Execute(buf,
		map[string]interface{}{
			"OptionsTable": markdown.OptionsTable(d.DefaultOptions()),
			"OptionsExample": "```yaml\n" + string(util.MustMarshalYAML(
				map[string]interface{}{
					d.Name(): d.DefaultOptions(),
				},
			)) + "```\n",
			"ValuesTable": markdown.ValuesTable(DisplayNameValues{}),
		},
	)
	if err != nil {
		panic(err)
	}

	util.DisableYAMLMarshalComments = yamlComments

	return buf.String()
}

// DefaultOptions implements Transformer
func (d *Default) DefaultOptions() interface{} {
	return &DefaultOptions{
		Trim:           true,
		DropEmptyHooks: true,
		DisplayName:    "{{ .Words }}",
	}
}

// Transform implements Transformer
func (d *Default) Transform(ctx context.Context, rawOpts interface{}, p *module.Project) error {
	opts := d.DefaultOptions().(*DefaultOptions)

	err := mapstructure.Decode(rawOpts, opts)
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.Trim {
		d.TrimNames(ctx, p)
	}

	d.RenameHooks(ctx, p, opts)

	err = d.FillDisplayNames(ctx, p, opts)
	if err != nil {
		return err
	}

	return nil
}

// TrimNames trims every name, ID and hook in the project.
func (d *Default) TrimNames(ctx context.Context, p *module.Project) {
	p.Name = strings.TrimSpace(p.Name)
	p.Path = strings.TrimSpace(p.Path)

	trimProps := func(props []module.Property) {
		for i := range props {
			props[i].Name = strings.TrimSpace(props[i].Name)
			props[i].Type = strings.TrimSpace(props[i].Type)
		}
	}

	trimProps(p.Properties)

	for _, m := range p.Modules {
		m.ID = strings.TrimSpace(m.ID)
		m.Name = strings.TrimSpace(m.Name)
		trimAll(m.Dependencies)
		trimAll(m.IncompatibleWith)
		trimProps(m.Properties)

		for i := range m.Enablers {
			m.Enablers[i].Name = strings.TrimSpace(m.Enablers[i].Name)
			m.Enablers[i].Type = strings.TrimSpace(m.Enablers[i].Type)
		}

		for i := range m.Templates {
			trimAll(m.Templates[i].Hooks)
		}

		for i := range m.Functions {
			f := &m.Functions[i]
			f.Name = strings.TrimSpace(f.Name)
			f.AppendAfter = strings.TrimSpace(f.AppendAfter)
			trimAll(f.VariableHooks)
			trimAll(f.CodeHooks)

			for j := range f.UsedVariables {
				f.UsedVariables[j].Name = strings.TrimSpace(f.UsedVariables[j].Name)
				f.UsedVariables[j].Type = strings.TrimSpace(f.UsedVariables[j].Type)
			}
		}
	}
}

// RenameHooks applies the hook aliases, and drops empty hooks if needed.
func (d *Default) RenameHooks(ctx context.Context, p *module.Project, opts *DefaultOptions) {
	rename := func(hooks []string) []string {
		out := hooks[:0]
		for _, h := range hooks {
			if alias, ok := opts.HookAliases[h]; ok {
				h = alias
			}
			if opts.DropEmptyHooks && strings.TrimSpace(h) == "" {
				continue
			}
			out = append(out, h)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}

	for _, m := range p.Modules {
		for i := range m.Templates {
			m.Templates[i].Hooks = rename(m.Templates[i].Hooks)
		}

		for i := range m.Functions {
			f := &m.Functions[i]
			f.VariableHooks = rename(f.VariableHooks)
			f.CodeHooks = rename(f.CodeHooks)

			if strings.HasPrefix(f.AppendAfter, common.GlobalSigil) {
				if alias, ok := opts.HookAliases[strings.TrimPrefix(f.AppendAfter, common.GlobalSigil)]; ok {
					f.AppendAfter = common.Marker(alias)
				}
			}
		}
	}
}

// FillDisplayNames sets the display names of properties and enablers
// that don't have one.
func (d *Default) FillDisplayNames(ctx context.Context, p *module.Project, opts *DefaultOptions) error {
	if opts.DisplayName == "" {
		return nil
	}

	templ, err := template.New("displayName").Funcs(sprig.TxtFuncMap()).Parse(opts.DisplayName)
	if err != nil {
		return fmt.Errorf("invalid display name template: %w", err)
	}

	fill := func(prop *module.Property, moduleName string) error {
		if prop.DisplayName != "" || strings.TrimSpace(prop.Name) == "" {
			return nil
		}

		buf := &bytes.Buffer{}
		err := templ.Execute(buf, DisplayNameValues{
			Name:   prop.Name,
			Words:  Words(prop.Name),
			Module: moduleName,
		})
		if err != nil {
			return fmt.Errorf("display name of %v: %w", prop.Name, err)
		}

		prop.DisplayName = buf.String()
		return nil
	}

	for i := range p.Properties {
		if err := fill(&p.Properties[i], ""); err != nil {
			return err
		}
	}

	for _, m := range p.Modules {
		for i := range m.Properties {
			if err := fill(&m.Properties[i], m.Label()); err != nil {
				return err
			}
		}
		for i := range m.Enablers {
			if err := fill(&m.Enablers[i].Property, m.Label()); err != nil {
				return err
			}
		}
	}

	return nil
}

// Words splits an identifier into capitalized words,
// e.g. "_OutlineWidth" becomes "Outline Width".
func Words(name string) string {
	parts := strings.Split(strcase.ToSnake(strings.TrimLeft(name, "_")), "_")

	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		words = append(words, string(unicode.ToUpper(r))+part[size:])
	}

	return strings.Join(words, " ")
}

func trimAll(values []string) {
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
}
