// Package docgen renders the reference documentation of parsers
// and transformers.
package docgen

import (
	"strings"

	"github.com/tamasfe/mosaic/internal/markdown"
	"github.com/tamasfe/mosaic/pkg/common"
)

// Component is a named part of Mosaic with options.
type Component interface {
	Name() string
	Description() string
}

// Section renders the documentation of the components under a heading.
//
// Components without a markdown description only get their short
// description.
func Section(title string, components []Component) string {
	var b strings.Builder

	b.WriteString("# " + title + "\n\n")

	for _, c := range components {
		b.WriteString("## " + c.Name() + "\n\n")

		md, ok := c.(common.DescriptionMarkdown)
		if !ok {
			b.WriteString(c.Description() + "\n\n")
			continue
		}

		b.WriteString(strings.TrimRight(markdown.Demote(markdown.Demote(md.DescriptionMarkdown())), "\n"))
		b.WriteString("\n\n")
	}

	return b.String()
}
