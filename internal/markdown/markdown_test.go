package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tableOptions struct {
	Workers int    `yaml:"workers" description:"Number of workers"`
	Name    string `yaml:"name,omitempty" description:"Name of the thing"`
	hidden  bool
}

func TestOptionsTable(t *testing.T) {
	table := OptionsTable(&tableOptions{Workers: 2, Name: "x"})

	assert.Contains(t, table, "| Option | Description | Type | Default Value |\n")
	assert.Contains(t, table, "name|Name of the thing.|string|<pre lang=\"yaml\">x</pre>|\n")
	assert.Contains(t, table, "workers|Number of workers.|int|<pre lang=\"yaml\">2</pre>|\n")
	assert.NotContains(t, table, "hidden")
	assert.Less(t, strings.Index(table, "name|"), strings.Index(table, "workers|"))
}

func TestValuesTable(t *testing.T) {
	type values struct {
		B string `description:"second"`
		A string `description:"first"`
	}

	assert.Equal(t, "| Value | Description |\n|:-----:|-------------|\nA|first|\nB|second|\n", ValuesTable(values{}))
}

func TestDemote(t *testing.T) {
	assert.Equal(t, "## A\ntext\n```\n# not a heading\n```\n### B", Demote("# A\ntext\n```\n# not a heading\n```\n## B"))
}
