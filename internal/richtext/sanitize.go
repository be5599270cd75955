package richtext

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var inlineTags = map[string]struct{}{
	"strong": {}, "b": {}, "em": {}, "i": {}, "u": {}, "span": {},
	"a": {}, "mark": {}, "code": {}, "sup": {}, "sub": {}, "br": {},
}

var (
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	tagName     = regexp.MustCompile(`^</?\s*([a-zA-Z][a-zA-Z0-9]*)`)
	lineBreak   = regexp.MustCompile(`(?i)<br\s*/?>`)
	whitespace  = regexp.MustCompile(`\s+`)
	blankSpaces = regexp.MustCompile(`[ \t\f\r]+`)
)

// decodeEntities resolves named and numeric character references.
// Non-breaking spaces become plain spaces.
func decodeEntities(s string) string {
	return strings.ReplaceAll(html.UnescapeString(s), "\u00a0", " ")
}

// sanitizeInline removes every tag outside the inline allowlist, decodes
// entities and trims the result.
func sanitizeInline(s string) string {
	stripped := anyTag.ReplaceAllStringFunc(s, func(tag string) string {
		m := tagName.FindStringSubmatch(tag)
		if m == nil {
			return ""
		}
		if _, ok := inlineTags[strings.ToLower(m[1])]; ok {
			return tag
		}
		return ""
	})
	return strings.TrimSpace(decodeEntities(stripped))
}

// sanitizeText reduces markup to plain text. Source whitespace collapses to
// single spaces while <br> survives as a newline.
func sanitizeText(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	s = lineBreak.ReplaceAllString(s, "\n")
	s = decodeEntities(anyTag.ReplaceAllString(s, ""))

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(blankSpaces.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

func escapeAttribute(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", " ")
}
