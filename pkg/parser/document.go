package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tamasfe/mosaic/pkg/errs"
	"github.com/tamasfe/mosaic/pkg/module"
)

type propertyDoc struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"displayName"`
	Type        string   `yaml:"type"`
	Default     string   `yaml:"default"`
	Attributes  []string `yaml:"attributes"`
}

func (d propertyDoc) property() module.Property {
	return module.Property{
		Name:         d.Name,
		DisplayName:  d.DisplayName,
		Type:         d.Type,
		DefaultValue: d.Default,
		Attributes:   d.Attributes,
	}
}

type enablerDoc struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"displayName"`
	Type        string   `yaml:"type"`
	Default     string   `yaml:"default"`
	Attributes  []string `yaml:"attributes"`
	Value       int      `yaml:"value"`
}

type variableDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type templateDoc struct {
	Template     string   `yaml:"template"`
	File         string   `yaml:"file"`
	Hooks        []string `yaml:"hooks"`
	NeedsVariant bool     `yaml:"needsVariant"`
	Queue        *int     `yaml:"queue"`
}

type functionDoc struct {
	Name          string        `yaml:"name"`
	AppendAfter   string        `yaml:"appendAfter"`
	Queue         *int          `yaml:"queue"`
	Body          string        `yaml:"body"`
	File          string        `yaml:"file"`
	UsedVariables []variableDoc `yaml:"usedVariables"`
	VariableHooks []string      `yaml:"variableHooks"`
	CodeHooks     []string      `yaml:"codeHooks"`
}

type moduleDoc struct {
	ID               string        `yaml:"id"`
	Name             string        `yaml:"name"`
	Version          string        `yaml:"version"`
	Author           string        `yaml:"author"`
	Description      string        `yaml:"description"`
	Enablers         []enablerDoc  `yaml:"enablers"`
	Dependencies     []string      `yaml:"dependencies"`
	IncompatibleWith []string      `yaml:"incompatibleWith"`
	Properties       []propertyDoc `yaml:"properties"`
	Templates        []templateDoc `yaml:"templates"`
	Functions        []functionDoc `yaml:"functions"`
}

type projectDoc struct {
	Name                      string        `yaml:"name"`
	Path                      string        `yaml:"path"`
	Template                  string        `yaml:"template"`
	TemplateFile              string        `yaml:"templateFile"`
	UseTemplatesForProperties bool          `yaml:"useTemplatesForProperties"`
	PropertiesTemplate        string        `yaml:"propertiesTemplate"`
	PropertiesTemplateFile    string        `yaml:"propertiesTemplateFile"`
	CustomEditor              string        `yaml:"customEditor"`
	Properties                []propertyDoc `yaml:"properties"`
	Modules                   []moduleDoc   `yaml:"modules"`
	ModuleFiles               []string      `yaml:"moduleFiles"`
}

// loader turns documents into the model, reading referenced files.
type loader struct {
	files   map[string]string
	sources []string
}

func newLoader() *loader {
	return &loader{files: make(map[string]string)}
}

func (l *loader) project(doc *projectDoc, dir string) (*module.Project, error) {
	p := &module.Project{
		Name:                      doc.Name,
		Path:                      doc.Path,
		UseTemplatesForProperties: doc.UseTemplatesForProperties,
		CustomEditor:              doc.CustomEditor,
	}

	var err error

	p.Template, _, err = l.text(doc.Template, doc.TemplateFile, dir)
	if err != nil {
		return nil, fmt.Errorf("root template: %w", err)
	}

	p.PropertiesTemplate, _, err = l.text(doc.PropertiesTemplate, doc.PropertiesTemplateFile, dir)
	if err != nil {
		return nil, fmt.Errorf("properties template: %w", err)
	}

	if p.Path == "" {
		p.Path = p.Name
	}

	for _, prop := range doc.Properties {
		p.Properties = append(p.Properties, prop.property())
	}

	for i := range doc.Modules {
		m, err := l.module(&doc.Modules[i], dir)
		if err != nil {
			return nil, err
		}
		p.Modules = append(p.Modules, m)
	}

	for _, f := range doc.ModuleFiles {
		if !filepath.IsAbs(f) {
			f = filepath.Join(dir, f)
		}
		m, err := l.moduleFile(f)
		if err != nil {
			return nil, err
		}
		p.Modules = append(p.Modules, m)
	}

	return p, nil
}

func (l *loader) moduleFile(path string) (*module.Module, error) {
	decode, err := decoderFor(path)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l.sources = append(l.sources, path)

	raw, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	doc := &moduleDoc{}
	if err := decodeMap(raw, doc); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	m, err := l.module(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	return m, nil
}

func (l *loader) module(doc *moduleDoc, dir string) (*module.Module, error) {
	if strings.TrimSpace(doc.ID) == "" {
		return nil, errs.ErrMissing("module id", doc.Name)
	}

	m := &module.Module{
		ID:               doc.ID,
		Name:             doc.Name,
		Version:          doc.Version,
		Author:           doc.Author,
		Description:      doc.Description,
		Dependencies:     doc.Dependencies,
		IncompatibleWith: doc.IncompatibleWith,
	}

	for _, e := range doc.Enablers {
		m.Enablers = append(m.Enablers, module.Enabler{
			Property: propertyDoc{
				Name:        e.Name,
				DisplayName: e.DisplayName,
				Type:        e.Type,
				Default:     e.Default,
				Attributes:  e.Attributes,
			}.property(),
			Value: e.Value,
		})
	}

	for _, prop := range doc.Properties {
		m.Properties = append(m.Properties, prop.property())
	}

	for i, t := range doc.Templates {
		body, file, err := l.text(t.Template, t.File, dir)
		if err != nil {
			return nil, fmt.Errorf("module %v template #%v: %w", doc.ID, i, err)
		}

		m.Templates = append(m.Templates, module.Template{
			Body:         body,
			File:         file,
			Hooks:        t.Hooks,
			NeedsVariant: t.NeedsVariant,
			Queue:        queue(t.Queue),
		})
	}

	for _, fn := range doc.Functions {
		if strings.TrimSpace(fn.Name) == "" {
			return nil, errs.ErrMissing("function name", "module "+doc.ID)
		}

		body, file, err := l.text(fn.Body, fn.File, dir)
		if err != nil {
			return nil, fmt.Errorf("module %v function %v: %w", doc.ID, fn.Name, err)
		}

		f := module.Function{
			Name:          fn.Name,
			AppendAfter:   fn.AppendAfter,
			Queue:         queue(fn.Queue),
			Body:          body,
			File:          file,
			VariableHooks: fn.VariableHooks,
			CodeHooks:     fn.CodeHooks,
		}
		for _, v := range fn.UsedVariables {
			f.UsedVariables = append(f.UsedVariables, module.Variable{Name: v.Name, Type: v.Type})
		}

		m.Functions = append(m.Functions, f)
	}

	return m, nil
}

// text returns the inline text, or the content of the referenced file.
//
// A reference of the form "file#NAME" selects a section of a template
// collection.
func (l *loader) text(inline, ref, dir string) (string, string, error) {
	if ref == "" {
		return inline, "", nil
	}
	if inline != "" {
		return "", "", fmt.Errorf(`both inline text and file "%v" are given`, ref)
	}

	path, section := ref, ""
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		path, section = ref[:i], ref[i+1:]
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	content, ok := l.files[path]
	if !ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		content = string(b)
		l.files[path] = content
		l.sources = append(l.sources, path)
	}

	if section == "" {
		return content, path, nil
	}

	templates := SplitCollection(content)
	body, ok := templates[section]
	if !ok {
		return "", "", errs.ErrMissing(fmt.Sprintf(`template "%v"`, section), path)
	}

	return body, path + "#" + section, nil
}

func queue(q *int) int {
	if q == nil {
		return module.DefaultQueue
	}
	return *q
}
