// Package validate checks a module set before generation.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
)

// Kind is the kind of an issue.
type Kind string

// Issue kinds.
const (
	KindIncompatible      Kind = "incompatible"
	KindDuplicate         Kind = "duplicate"
	KindMissingDependency Kind = "missing dependency"
	KindMissingProperty   Kind = "missing property"
)

// Severity tells whether an issue blocks generation.
type Severity int

// Severities.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// ParseSeverity parses "error" or "warning".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	default:
		return SeverityError, fmt.Errorf(`unknown severity "%v"`, s)
	}
}

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is a single problem found in the module set.
type Issue struct {
	Kind     Kind
	Severity Severity

	ModuleID   string
	ModuleName string

	// The other module involved, if any.
	OtherID   string
	OtherName string

	// Detail is the missing dependency id or property name.
	Detail string
}

func (i Issue) String() string {
	switch i.Kind {
	case KindIncompatible:
		return fmt.Sprintf(`Module "%v" is incompatible with module "%v".`, i.OtherName, i.ModuleName)
	case KindDuplicate:
		return fmt.Sprintf(`Module "%v" is duplicate.`, i.ModuleName)
	case KindMissingDependency:
		return fmt.Sprintf(`Module "%v" has missing dependency id "%v".`, i.ModuleName, i.Detail)
	case KindMissingProperty:
		if i.ModuleID == "" {
			return fmt.Sprintf(`Property "%v" is missing from the properties template.`, i.Detail)
		}
		return fmt.Sprintf(`Property "%v" of module "%v" is missing from the properties template.`, i.Detail, i.ModuleName)
	default:
		return fmt.Sprintf(`Module "%v": %v %v`, i.ModuleName, i.Kind, i.Detail)
	}
}

// Audit checks every pair of modules and returns all the issues found.
//
// For each ordered pair (i, j) it reports j being incompatible with i,
// i and j sharing an id, and, after all pairs of i were checked,
// the dependencies of i that no module provides.
func Audit(modules []*module.Module) []Issue {
	var issues []Issue

	for i, mi := range modules {
		if mi == nil {
			continue
		}

		dependencies := append([]string(nil), mi.Dependencies...)

		for j, mj := range modules {
			if mj == nil {
				continue
			}

			if contains(mj.IncompatibleWith, mi.ID) {
				issues = append(issues, Issue{
					Kind:       KindIncompatible,
					ModuleID:   mi.ID,
					ModuleName: mi.Label(),
					OtherID:    mj.ID,
					OtherName:  mj.Label(),
				})
			}

			if i != j && mi.ID == mj.ID {
				issues = append(issues, Issue{
					Kind:       KindDuplicate,
					ModuleID:   mi.ID,
					ModuleName: mi.Label(),
					OtherID:    mj.ID,
					OtherName:  mj.Label(),
				})
			}

			dependencies = remove(dependencies, mj.ID)
		}

		for _, d := range dependencies {
			issues = append(issues, Issue{
				Kind:       KindMissingDependency,
				ModuleID:   mi.ID,
				ModuleName: mi.Label(),
				Detail:     d,
			})
		}
	}

	return issues
}

// Verdict returns the first issue of the module set, if there is one.
func Verdict(modules []*module.Module) (Issue, bool) {
	ids := make(map[string]int, len(modules))
	for i, m := range modules {
		if m == nil {
			continue
		}
		if _, ok := ids[m.ID]; !ok {
			ids[m.ID] = i
		}
	}

	for i, mi := range modules {
		if mi == nil {
			continue
		}

		for _, mj := range modules {
			if mj != nil && contains(mj.IncompatibleWith, mi.ID) {
				return Issue{
					Kind:       KindIncompatible,
					ModuleID:   mi.ID,
					ModuleName: mi.Label(),
					OtherID:    mj.ID,
					OtherName:  mj.Label(),
				}, true
			}
		}

		if first := ids[mi.ID]; first != i {
			return Issue{
				Kind:       KindDuplicate,
				ModuleID:   mi.ID,
				ModuleName: mi.Label(),
				OtherID:    modules[first].ID,
				OtherName:  modules[first].Label(),
			}, true
		}

		for _, d := range mi.Dependencies {
			if _, ok := ids[d]; !ok {
				return Issue{
					Kind:       KindMissingDependency,
					ModuleID:   mi.ID,
					ModuleName: mi.Label(),
					Detail:     d,
				}, true
			}
		}
	}

	return Issue{}, false
}

// MissingProperties reports the declared properties that don't appear in the
// properties template when the project uses templates for properties.
//
// A property appears in the template only where its name is a whole
// identifier followed by the opening parenthesis of a declaration.
//
// Module templates hooked to the properties keyword count as part of the
// properties template.
func MissingProperties(p *module.Project, severity Severity) []Issue {
	if !p.UseTemplatesForProperties {
		return nil
	}

	var text strings.Builder
	text.WriteString(p.PropertiesTemplate)
	for _, m := range p.Modules {
		if m == nil {
			continue
		}
		for _, t := range m.Templates {
			if contains(t.Hooks, common.TemplatePropertiesKeyword) {
				text.WriteString("\n")
				text.WriteString(t.Body)
			}
		}
	}
	declared := text.String()

	var issues []Issue

	check := func(m *module.Module, prop module.Property) {
		if strings.TrimSpace(prop.Name) == "" || declares(declared, prop.Name) {
			return
		}
		issue := Issue{
			Kind:     KindMissingProperty,
			Severity: severity,
			Detail:   prop.Name,
		}
		if m != nil {
			issue.ModuleID = m.ID
			issue.ModuleName = m.Label()
		}
		issues = append(issues, issue)
	}

	for _, prop := range p.Properties {
		check(nil, prop)
	}

	for _, m := range p.Modules {
		if m == nil {
			continue
		}
		for _, prop := range m.Properties {
			check(m, prop)
		}
		for _, e := range m.Enablers {
			if e.Named() {
				check(m, e.Property)
			}
		}
	}

	return issues
}

func declares(text, name string) bool {
	re := regexp.MustCompile(`(^|[^\w])` + regexp.QuoteMeta(name) + `\s*\(`)
	return re.MatchString(text)
}

// Blocking returns the issues that stop generation.
func Blocking(issues []Issue) []Issue {
	var blocking []Issue
	for _, i := range issues {
		if i.Severity == SeverityError {
			blocking = append(blocking, i)
		}
	}
	return blocking
}

// Strings converts issues to their messages.
func Strings(issues []Issue) []string {
	s := make([]string, 0, len(issues))
	for _, i := range issues {
		s = append(s, i.String())
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
