package util

import "strings"

// IndentLines indents all the lines with spaces
func IndentLines(lines []string, char string, count int) []string {
	for i := range lines {
		lines[i] = strings.Repeat(char, count) + lines[i]
	}
	return lines
}

// IndentText indents every non-empty line of text.
func IndentText(text string, char string, count int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = strings.Repeat(char, count) + l
	}
	return strings.Join(lines, "\n")
}
