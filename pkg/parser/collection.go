package parser

import (
	"regexp"
	"strings"
)

// CollectionSigil starts a template in a template collection.
const CollectionSigil = "#T#"

var collectionHeader = regexp.MustCompile(`^\s*` + regexp.QuoteMeta(CollectionSigil) + `(\w+)`)

// SplitCollection splits a template collection into its templates.
//
// Every line starting with #T#NAME starts a new template that lasts until
// the next one. Text before the first header is ignored.
func SplitCollection(text string) map[string]string {
	templates := make(map[string]string)

	var (
		name    string
		current []string
	)

	flush := func() {
		if name != "" {
			templates[name] = strings.TrimRight(strings.Join(current, "\n"), "\n")
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := collectionHeader.FindStringSubmatch(line); m != nil {
			flush()
			name = m[1]
			current = nil
			continue
		}
		current = append(current, line)
	}
	flush()

	return templates
}
