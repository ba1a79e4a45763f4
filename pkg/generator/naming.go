package generator

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/google/uuid"

	"github.com/tamasfe/mosaic/pkg/errs"
	"github.com/tamasfe/mosaic/pkg/module"
)

type fileNameValues struct {
	// Name is the project name.
	Name string

	// Variant is the variant code, empty for the base variant.
	Variant string

	Extension string
}

type namer struct {
	tmpl      *template.Template
	extension string
}

func newNamer(pattern, extension string) (*namer, error) {
	tmpl, err := template.New("filename").Funcs(sprig.TxtFuncMap()).Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern: %w", err)
	}
	return &namer{tmpl: tmpl, extension: extension}, nil
}

// FileName returns the sanitized file name of a variant.
func (n *namer) FileName(p *module.Project, code string) (string, error) {
	buf := &bytes.Buffer{}

	err := n.tmpl.Execute(buf, &fileNameValues{
		Name:      BaseName(p),
		Variant:   code,
		Extension: n.extension,
	})
	if err != nil {
		return "", fmt.Errorf("invalid file pattern: %w", err)
	}

	return SanitizeFileName(buf.String()), nil
}

// FileName returns the file name of a variant of the project.
func (g *Generator) FileName(p *module.Project, code string) (string, error) {
	n, err := newNamer(g.options.FilePattern, g.options.Extension)
	if err != nil {
		return "", &errs.ConfigurationError{Reason: err.Error()}
	}
	return n.FileName(p, code)
}

// BaseName returns the name files of the project are named after.
func BaseName(p *module.Project) string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	if p.Path != "" {
		return path.Base(p.Path)
	}
	return "document"
}

// SanitizeFileName replaces the characters that are not allowed in file
// names with underscores.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
}

// DocumentName returns the name written in the header of a variant document.
//
// The base variant always has the project path as its name.
func DocumentName(projectPath, code string, hidden bool) string {
	if code == "" {
		return projectPath
	}
	if hidden {
		return "Hidden/" + projectPath + "-v" + code
	}
	return projectPath + "-v" + code
}

// MinimalDocumentName returns the hidden document name of a minimal variant.
//
// The id is derived from the path and the variant code, so the name is the
// same on every run.
func MinimalDocumentName(projectPath, code string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(projectPath+"#"+code))
	return "Hidden/" + projectPath + "-g-" + id.String()
}
