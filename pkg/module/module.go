// Package module contains the data model the generator works on.
//
// Everything here is authored elsewhere (project files, editors)
// and is treated as read-only while documents are generated.
package module

import (
	"strings"
)

// DefaultQueue is the queue value used for templates and functions
// that don't specify one.
const DefaultQueue = 100

// Project is the root of a generation: the root template,
// the global properties and the modules that extend it.
type Project struct {
	// Name of the project, used as the base name for generated files.
	Name string

	// Path is the name written in the document header.
	Path string

	// Template is the root template text.
	Template string

	// UseTemplatesForProperties makes the properties block come from
	// PropertiesTemplate instead of the declared properties.
	UseTemplatesForProperties bool

	// PropertiesTemplate is the user authored properties block content.
	PropertiesTemplate string

	// CustomEditor is written in the document footer if set.
	CustomEditor string

	// Properties declared by the project itself.
	Properties []Property

	// Modules in discovery order.
	Modules []*Module

	// Sources are the files the project was loaded from.
	Sources []string
}

// Module contributes templates, functions and properties to a project.
type Module struct {
	ID          string
	Name        string
	Version     string
	Author      string
	Description string

	// Enablers toggle the module on and off.
	Enablers []Enabler

	// Dependencies are the IDs of modules this module depends on.
	Dependencies []string

	// IncompatibleWith are the IDs of modules this module can't be used with.
	IncompatibleWith []string

	Properties []Property
	Templates  []Template
	Functions  []Function
}

// Label returns a human readable name for diagnostics.
func (m *Module) Label() string {
	if strings.TrimSpace(m.Name) != "" {
		return m.Name
	}
	return m.ID
}

// HasEnablers reports whether the module declares at least one named enabler.
func (m *Module) HasEnablers() bool {
	for _, e := range m.Enablers {
		if e.Named() {
			return true
		}
	}
	return false
}

// NeedsVariant reports whether any of the module's templates
// needs a separate variant.
func (m *Module) NeedsVariant() bool {
	for _, t := range m.Templates {
		if t.NeedsVariant {
			return true
		}
	}
	return false
}

// Active reports whether the module takes part in a variant with the given
// assignment, and returns the enablers that the assignment doesn't resolve.
//
// A module is active if every named enabler is either missing from the
// assignment or has its value. The missing ones are dynamic, they have to
// be checked at runtime.
func (m *Module) Active(a Assignment) (bool, []Enabler) {
	var dynamic []Enabler

	for _, e := range m.Enablers {
		if !e.Named() {
			continue
		}

		value, ok := a[e.Name]
		if !ok {
			dynamic = append(dynamic, e)
			continue
		}

		if value != e.Value {
			return false, nil
		}
	}

	return true, dynamic
}

// Enabler is a named integer switch, the module it belongs to
// is enabled when the switch has Value.
//
// Zero is always the "off" state of a switch, even if no module declares it.
type Enabler struct {
	Property

	// Value that enables the module.
	Value int
}

// Named reports whether the enabler has a usable name.
func (e Enabler) Named() bool {
	return strings.TrimSpace(e.Name) != ""
}

// AsProperty returns the enabler as a property declaration.
func (e Enabler) AsProperty() Property {
	p := e.Property
	if p.DisplayName == "" {
		p.DisplayName = p.Name
	}
	if strings.TrimSpace(p.Type) == "" {
		p.Type = "Float"
		p.DefaultValue = "0.0"
	}
	return p
}

// ToVariable returns the variable that holds the enabler's runtime value.
func (e Enabler) ToVariable() Variable {
	return Variable{Name: e.Name, Type: "float"}
}

// Property is a value exposed by the generated document.
//
// Two properties are the same if their names match.
type Property struct {
	Name         string
	DisplayName  string
	Type         string
	DefaultValue string
	Attributes   []string
}

// Stub reports whether the property has neither a name nor attributes.
func (p Property) Stub() bool {
	return strings.TrimSpace(p.Name) == "" && len(p.Attributes) == 0
}

// ToVariable converts the property into the variable that backs it.
func (p Property) ToVariable() Variable {
	v := Variable{Name: p.Name}

	switch p.Type {
	case "Float", "Int":
		v.Type = "float"
	case "Color", "Vector":
		v.Type = "float4"
	case "2D":
		v.Type = "Texture2D"
	case "3D":
		v.Type = "Texture3D"
	case "Cube":
		v.Type = "TextureCube"
	case "2DArray":
		v.Type = "Texture2DArray"
	case "CubeArray":
		v.Type = "TextureCubeArray"
	default:
		if strings.HasPrefix(p.Type, "Range") {
			v.Type = "float"
		} else {
			v.Type = p.Type
		}
	}

	return v
}

// Template is a text fragment attached to one or more hooks.
type Template struct {
	// Body is the fragment text.
	Body string

	// File is where Body was loaded from, if anywhere.
	File string

	// Hooks are the keyword names the fragment is inserted at.
	// An empty list means the default code hook.
	Hooks []string

	// NeedsVariant forces a separate document for each value of
	// the module's enablers instead of a runtime check.
	NeedsVariant bool

	// Queue orders templates, lower goes first.
	Queue int
}

// Function is a named body of code that is called from a hook
// or after another function.
type Function struct {
	Name string

	// AppendAfter is the name of the function this one is called after,
	// or a hook marker (#K#NAME) that starts a call sequence.
	AppendAfter string

	Queue int

	// Body is the function code.
	Body string

	// File is where Body was loaded from, if anywhere.
	File string

	UsedVariables []Variable

	// VariableHooks are the hooks the used variables are declared at.
	VariableHooks []string

	// CodeHooks are the hooks the function body is placed at.
	CodeHooks []string
}

// Variable is a declaration needed by a function.
//
// Two variables are the same if their names match.
type Variable struct {
	Name string
	Type string
}

// Configuration is an external object that selects enabler values,
// e.g. a material using the generated document.
type Configuration struct {
	Name   string
	Values map[string]int
}

// AllProperties returns the declared properties of the project and all of
// its modules, including enablers, without duplicates.
func (p *Project) AllProperties() []Property {
	seen := make(map[string]bool)
	props := make([]Property, 0, len(p.Properties))

	add := func(prop Property) {
		if prop.Stub() || seen[prop.Name] {
			return
		}
		seen[prop.Name] = true
		props = append(props, prop)
	}

	for _, prop := range p.Properties {
		add(prop)
	}

	for _, m := range p.Modules {
		if m == nil {
			continue
		}
		for _, prop := range m.Properties {
			add(prop)
		}
		for _, e := range m.Enablers {
			if e.Named() {
				add(e.AsProperty())
			}
		}
	}

	return props
}

// AllFunctions returns the functions of all modules.
func (p *Project) AllFunctions() []Function {
	var fns []Function
	for _, m := range p.Modules {
		if m == nil {
			continue
		}
		fns = append(fns, m.Functions...)
	}
	return fns
}
