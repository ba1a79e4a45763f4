package generator

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tamasfe/mosaic/pkg/assemble"
	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/normalize"
	"github.com/tamasfe/mosaic/pkg/splice"
	"github.com/tamasfe/mosaic/pkg/weave"
)

// GenerationContext holds everything needed to build a single document.
//
// Contexts only read the project, each one owns its buffer, so
// any number of them can run at once.
type GenerationContext struct {
	Project      *module.Project
	Assignment   module.Assignment
	DocumentName string

	// Entries are the active modules with their runtime checked enablers.
	Entries []splice.Entry

	// Dynamic are the enablers of the active modules checked at runtime.
	Dynamic []module.Enabler

	// Minimal documents only declare the properties of the active modules,
	// without the enablers.
	Minimal bool

	options Options
	dialect *common.Dialect
	logger  *zap.Logger
	now     func() time.Time

	buffer  *splice.Buffer
	splicer *splice.Splicer
	weaver  *weave.Weaver

	diagnostics []string
}

// NewContext returns the context for a single variant of the project.
func (g *Generator) NewContext(p *module.Project, a module.Assignment, documentName string) *GenerationContext {
	logger := g.logger.With(zap.String("variant", a.String()))

	c := &GenerationContext{
		Project:      p,
		Assignment:   a,
		DocumentName: documentName,
		options:      g.options,
		dialect:      g.dialect,
		logger:       logger,
		now:          g.now,
		buffer:       splice.NewBuffer(),
	}

	seen := make(map[string]bool)
	for _, m := range p.Modules {
		if m == nil {
			continue
		}

		active, dynamic := m.Active(a)
		if !active {
			logger.Debug("module inactive", zap.String("module", m.ID))
			continue
		}

		c.Entries = append(c.Entries, splice.Entry{Module: m, Dynamic: dynamic})

		for _, e := range dynamic {
			if !seen[e.Name] {
				seen[e.Name] = true
				c.Dynamic = append(c.Dynamic, e)
			}
		}
	}

	c.splicer = splice.NewSplicer(c.buffer, c.dialect, logger)
	c.weaver = weave.New(c.Entries, c.dialect, logger)

	return c
}

// Run builds the document and returns its normalized text.
func (c *GenerationContext) Run() string {
	d := c.dialect
	p := c.Project

	if c.options.Comments {
		comment := "Generated by Mosaic."
		if c.options.Timestamp {
			comment = fmt.Sprintf("Generated by Mosaic at %v.", c.now().Format(time.RFC1123))
		}
		c.buffer.Append(d.LineComment + " " + comment + "\n")
	}

	c.buffer.Append(fmt.Sprintf(d.DocumentHeader, c.DocumentName) + "\n{\n")
	c.buffer.Append(c.propertiesBlock())

	c.buffer.Append(d.BodyHeader + "\n{\n")
	c.buffer.Append(p.Template)
	c.buffer.Append("\n}\n")

	c.splicer.Splice(c.Entries)
	c.splicer.Finish()
	c.diagnostics = append(c.diagnostics, c.splicer.Diagnostics()...)

	c.weaver.Weave(c.buffer)
	emitted := c.weaver.Emitted()

	functions, diagnostics := assemble.Functions(emitted)
	c.diagnostics = append(c.diagnostics, diagnostics...)
	for _, b := range functions {
		c.insert(b)
	}

	for _, b := range assemble.Variables(emitted, c.Dynamic, d) {
		c.insert(b)
	}

	if strings.TrimSpace(p.CustomEditor) != "" {
		c.buffer.Append(fmt.Sprintf(d.Footer, p.CustomEditor) + "\n")
	}
	c.buffer.Append("}\n")

	return normalize.Normalize(c.buffer.String(), d)
}

func (c *GenerationContext) propertiesBlock() string {
	if !c.Minimal {
		return assemble.PropertiesBlock(c.Project, c.Project.Modules, !c.options.HideEnablerProperties, c.dialect)
	}

	modules := make([]*module.Module, 0, len(c.Entries))
	for _, e := range c.Entries {
		modules = append(modules, e.Module)
	}
	return assemble.PropertiesBlock(c.Project, modules, false, c.dialect)
}

func (c *GenerationContext) insert(b assemble.Block) {
	if c.buffer.InsertBefore(b.Marker(), b.Code) == 0 {
		c.logger.Debug("no marker for block", zap.String("hook", b.Hook))
	}
}

// Diagnostics returns the problems found during Run.
func (c *GenerationContext) Diagnostics() []string {
	return c.diagnostics
}

// Outline splices the templates of a variant, and returns the hook
// keywords left in the body and the call trees anchored at them.
func (g *Generator) Outline(p *module.Project, a module.Assignment) ([]string, string) {
	c := g.NewContext(p, a, "")

	c.buffer.Append(p.Template + "\n")
	c.splicer.Splice(c.Entries)
	c.splicer.Finish()

	text := c.buffer.String()

	return splice.Keywords(text), c.weaver.Tree(text)
}
