package util

import (
	"strings"
	"testing"

	"gopkg.in/go-playground/assert.v1"
	"gopkg.in/yaml.v3"
)

type describedOptions struct {
	Workers int    `yaml:"workers" description:"Number of variants generated at once"`
	Output  string `yaml:"output"`
}

func TestMarshalYAMLWithDescriptions(t *testing.T) {
	node, err := MarshalYAMLWithDescriptions(&describedOptions{Workers: 2, Output: "out"})
	assert.Equal(t, err, nil)

	b, err := yaml.Marshal(node)
	assert.Equal(t, err, nil)
	assert.Equal(t, strings.Contains(string(b), "Number of variants generated at once.\nworkers: 2\n"), true)
	assert.Equal(t, strings.HasSuffix(string(b), "\noutput: out\n"), true)

	_, err = MarshalYAMLWithDescriptions("nope")
	assert.NotEqual(t, err, nil)
}

func TestIndent(t *testing.T) {
	assert.Equal(t, IndentLines([]string{"a", "b"}, " ", 2), []string{"  a", "  b"})
	assert.Equal(t, IndentText("a\n\nb\n", "\t", 1), "\ta\n\n\tb")
}
