package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || !unicode.IsControl(r) {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, s)
}

// TrimAndNormalize trims s and collapses every whitespace run to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if !unicode.IsControl(r) {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// SanitizeName is used for room names, locations and ride endpoints.
func SanitizeName(input string) string {
	return TrimAndNormalize(input)
}

// SanitizeNotes keeps paragraph structure but normalizes each line.
func SanitizeNotes(input string) string {
	p := Pipeline{
		func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") },
		dropControl,
		func(s string) string {
			lines := strings.Split(s, "\n")
			for i, line := range lines {
				lines[i] = TrimAndNormalize(line)
			}
			return strings.Join(lines, "\n")
		},
		func(s string) string { return strings.Trim(s, "\n") },
	}
	return p.Apply(input)
}

func SanitizeID(input string) string {
	return strings.TrimSpace(input)
}
