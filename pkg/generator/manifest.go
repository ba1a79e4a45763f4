package generator

import (
	"gopkg.in/yaml.v3"
)

// ManifestEntry tells which document a configuration uses.
type ManifestEntry struct {
	File     string `yaml:"file"`
	Document string `yaml:"document"`
	Variant  string `yaml:"variant,omitempty"`
}

// Manifest returns the YAML mapping of configuration names to the documents
// generated for them in minimal mode.
func Manifest(artifacts []*Artifact) ([]byte, error) {
	entries := make(map[string]ManifestEntry)

	for _, a := range artifacts {
		if a == nil || a.Err != nil {
			continue
		}
		for _, c := range a.Configurations {
			entries[c] = ManifestEntry{
				File:     a.FileName,
				Document: a.DocumentName,
				Variant:  a.Assignment.String(),
			}
		}
	}

	return yaml.Marshal(entries)
}
