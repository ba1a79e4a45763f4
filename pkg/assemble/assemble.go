// Package assemble renders the declaration blocks of a document.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
)

// Block is code that goes to a hook.
type Block struct {
	Hook string
	Code string
}

// Marker returns the marker the block is inserted at.
func (b Block) Marker() string {
	return common.Marker(b.Hook)
}

type buckets struct {
	order []string
	items map[string][]module.Variable
}

func (b *buckets) add(hook string, v ...module.Variable) {
	if b.items == nil {
		b.items = make(map[string][]module.Variable)
	}
	if _, ok := b.items[hook]; !ok {
		b.order = append(b.order, hook)
		b.items[hook] = nil
	}
	b.items[hook] = append(b.items[hook], v...)
}

// Variables returns the variable declarations of the emitted functions,
// one block per variable hook.
//
// Every enabler that is checked at runtime gets a variable in each block.
// Variables are unique by name and sorted by type, then by name.
func Variables(emitted []module.Function, dynamic []module.Enabler, d *common.Dialect) []Block {
	if d == nil {
		d = common.DefaultDialect()
	}

	var b buckets

	for _, fn := range emitted {
		hooks := fn.VariableHooks
		if len(hooks) == 0 {
			hooks = []string{common.DefaultVariablesKeyword}
		}
		for _, h := range hooks {
			b.add(h, fn.UsedVariables...)
		}
	}

	if len(b.order) == 0 && len(dynamic) > 0 {
		b.add(common.DefaultVariablesKeyword)
	}

	for _, e := range dynamic {
		if !e.Named() {
			continue
		}
		for _, h := range b.order {
			b.add(h, e.ToVariable())
		}
	}

	blocks := make([]Block, 0, len(b.order))
	for _, h := range b.order {
		vars := unique(b.items[h])

		sort.SliceStable(vars, func(i, j int) bool {
			if vars[i].Type != vars[j].Type {
				return vars[i].Type < vars[j].Type
			}
			return vars[i].Name < vars[j].Name
		})

		var sb strings.Builder
		for _, v := range vars {
			sb.WriteString(fmt.Sprintf(d.Declaration, v.Type, v.Name))
			sb.WriteString("\n")
			if d.IsTexture(v.Type) {
				sb.WriteString(fmt.Sprintf(d.ScaleOffset, v.Name))
				sb.WriteString("\n")
			}
		}

		blocks = append(blocks, Block{Hook: h, Code: sb.String()})
	}

	return blocks
}

func unique(vars []module.Variable) []module.Variable {
	seen := make(map[string]bool, len(vars))
	out := make([]module.Variable, 0, len(vars))
	for _, v := range vars {
		if strings.TrimSpace(v.Name) == "" || seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		out = append(out, v)
	}
	return out
}

// Functions returns the bodies of the emitted functions, one block per
// code hook.
//
// Functions without a body are left out, each one is reported in the
// returned diagnostics.
func Functions(emitted []module.Function) ([]Block, []string) {
	var (
		order       []string
		bodies      = make(map[string][]string)
		diagnostics []string
	)

	for _, fn := range emitted {
		if strings.TrimSpace(fn.Body) == "" {
			diagnostics = append(diagnostics, fmt.Sprintf(`Function "%v" has no body, only its call is generated.`, fn.Name))
			continue
		}

		hooks := fn.CodeHooks
		if len(hooks) == 0 {
			hooks = []string{common.DefaultCodeKeyword}
		}

		body := fn.Body
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}

		for _, h := range hooks {
			if _, ok := bodies[h]; !ok {
				order = append(order, h)
			}
			bodies[h] = append(bodies[h], body)
		}
	}

	blocks := make([]Block, 0, len(order))
	for _, h := range order {
		blocks = append(blocks, Block{Hook: h, Code: strings.Join(bodies[h], "\n")})
	}

	return blocks, diagnostics
}

// PropertiesBlock renders the properties block of a document.
//
// With UseTemplatesForProperties the block holds the properties template and
// the properties hook. Otherwise it declares the project properties, then
// the properties of the modules, without duplicates.
func PropertiesBlock(p *module.Project, modules []*module.Module, includeEnablers bool, d *common.Dialect) string {
	if d == nil {
		d = common.DefaultDialect()
	}

	var b strings.Builder
	b.WriteString(d.PropertiesHeader + "\n")
	b.WriteString("{\n")

	if p.UseTemplatesForProperties {
		if p.PropertiesTemplate != "" {
			b.WriteString(p.PropertiesTemplate)
			if !strings.HasSuffix(p.PropertiesTemplate, "\n") {
				b.WriteString("\n")
			}
		}
		b.WriteString(common.Marker(common.TemplatePropertiesKeyword) + "\n")
		b.WriteString("}\n")
		return b.String()
	}

	seen := make(map[string]bool)
	write := func(prop module.Property) {
		if prop.Stub() {
			return
		}
		if prop.Name != "" {
			if seen[prop.Name] {
				return
			}
			seen[prop.Name] = true
		}
		b.WriteString(PropertyLine(prop, d) + "\n")
	}

	for _, prop := range p.Properties {
		write(prop)
	}

	for _, m := range modules {
		if m == nil {
			continue
		}
		for _, prop := range m.Properties {
			write(prop)
		}
		if includeEnablers {
			for _, e := range m.Enablers {
				if e.Named() {
					write(e.AsProperty())
				}
			}
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// PropertyLine renders a single property declaration.
//
// A property with only attributes renders as the attributes alone.
func PropertyLine(prop module.Property, d *common.Dialect) string {
	var attrs strings.Builder
	for _, a := range prop.Attributes {
		if a = strings.TrimSpace(a); a != "" {
			attrs.WriteString("[" + strings.Trim(a, "[]") + "]")
		}
	}

	if strings.TrimSpace(prop.Name) == "" {
		return attrs.String()
	}

	if strings.TrimSpace(prop.Type) == "" {
		prop.Type = "Float"
		prop.DefaultValue = "0.0"
	}

	display := prop.DisplayName
	if display == "" {
		display = prop.Name
	}

	return strings.TrimSpace(fmt.Sprintf(d.Property, attrs.String(), prop.Name, display, prop.Type, prop.DefaultValue))
}
