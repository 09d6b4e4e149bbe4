// Package normalize cleans user-entered text before it reaches the store.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Text trims surrounding whitespace, drops null bytes and composes the string
// to NFC so that visually identical book titles group together.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(strings.TrimSpace(s))
}

// Tags trims every tag and drops the empty ones. Order and duplicates are kept.
// The result is never nil.
func Tags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = Text(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTags parses a comma separated tag list: "sci-fi, classic" -> [sci-fi classic].
func SplitTags(list string) []string {
	if strings.TrimSpace(list) == "" {
		return []string{}
	}
	return Tags(strings.Split(list, ","))
}

// SearchTerm lower-cases and trims a collection search query.
func SearchTerm(s string) string {
	return strings.ToLower(Text(s))
}

// Slug converts a string to a file-name-safe slug.
// "Dune Messiah" -> "dune-messiah".
// "Les Misérables" -> "les-miserables".
func Slug(s string) string {
	// Decompose accented characters, then drop the combining marks.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
