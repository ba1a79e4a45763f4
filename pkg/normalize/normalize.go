// Package normalize cleans up generated documents.
package normalize

import (
	"regexp"
	"strings"

	"github.com/tamasfe/mosaic/pkg/common"
)

var markerRe = regexp.MustCompile(
	`(?:` + regexp.QuoteMeta(common.InstanceSigil) + `|` + regexp.QuoteMeta(common.GlobalSigil) + `)\w*`,
)

// StripMarkers removes every hook marker from text.
func StripMarkers(text string) string {
	return markerRe.ReplaceAllString(text, "")
}

// Normalize strips the remaining markers and re-indents text by brace depth.
//
// Lines are trimmed, runs of blank lines are collapsed into one and the
// result ends with a single line break. The properties block keeps a fixed
// indentation, its content is never re-indented by the braces it contains.
func Normalize(text string, d *common.Dialect) string {
	if d == nil {
		d = common.DefaultDialect()
	}

	text = StripMarkers(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var (
		b     strings.Builder
		depth int
		blank = true

		properties      bool
		propertiesDepth int
		propertiesOpen  bool
	)

	emit := func(line string, indent int) {
		if line == "" {
			if !blank {
				b.WriteString("\n")
			}
			blank = true
			return
		}
		b.WriteString(strings.Repeat(d.Indent, indent))
		b.WriteString(line)
		b.WriteString("\n")
		blank = false
	}

	for i, line := range lines {
		if line == "" {
			emit(line, 0)
			continue
		}

		if properties {
			switch {
			case line == "{" && !propertiesOpen:
				propertiesOpen = true
				emit(line, propertiesDepth)
				continue
			case strings.HasPrefix(line, "}") && closesProperties(lines[i+1:], d):
				properties = false
				emit(line, propertiesDepth)
				continue
			case isHeader(line, d.BodyHeader):
				properties = false
				depth = propertiesDepth
			default:
				emit(line, propertiesDepth+1)
				continue
			}
		}

		if isHeader(line, d.PropertiesHeader) {
			properties = true
			propertiesDepth = depth
			propertiesOpen = strings.HasSuffix(line, "{")
			emit(line, depth)
			continue
		}

		if strings.HasPrefix(line, "}") && depth > 0 {
			depth--
		}

		emit(line, depth)

		if !d.IsComment(line) && (strings.HasPrefix(line, "{") || strings.HasSuffix(line, "{")) {
			depth++
		}
	}

	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// closesProperties reports whether a closing brace ends the properties
// block, that is the next content line is the body header or there is none.
func closesProperties(rest []string, d *common.Dialect) bool {
	for _, l := range rest {
		if l == "" {
			continue
		}
		return isHeader(l, d.BodyHeader)
	}
	return true
}

func isHeader(line, header string) bool {
	if header == "" || !strings.HasPrefix(line, header) {
		return false
	}
	rest := line[len(header):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '{'
}
