package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type plain struct{}

func (plain) Name() string        { return "plain" }
func (plain) Description() string { return "A plain component" }

type documented struct{ plain }

func (documented) Name() string { return "documented" }
func (documented) DescriptionMarkdown() string {
	return "# Options\n\n```yaml\n# comment\n```\n"
}

func TestSection(t *testing.T) {
	md := Section("Components", []Component{plain{}, documented{}})

	assert.Equal(t,
		"# Components\n\n"+
			"## plain\n\nA plain component\n\n"+
			"## documented\n\n### Options\n\n```yaml\n# comment\n```\n\n",
		md,
	)
}
