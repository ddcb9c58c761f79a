package notif

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// namedEntities mirrors fnott's decode_html_entities() table in notification.c.
var namedEntities = map[string]rune{
	"nbsp":  ' ',
	"lt":    '<',
	"gt":    '>',
	"amp":   '&',
	"quot":  '"',
	"apos":  '\'',
	"cent":  '¢',
	"pound": '£',
	"yen":   '¥',
	"euro":  '€',
	"copy":  '©',
	"reg":   '®',
}

var entityPattern = regexp.MustCompile(`&(#x[0-9a-fA-F]+|#[0-9]+|[a-zA-Z]+);`)

// DecodeHTMLEntities runs a single regular-expression pass over s, expanding
// named entities, decimal codepoints (&#D;) and hex codepoints (&#xH;).
// Non-matching regions pass through verbatim. Unknown named entities and
// malformed numeric entities are left untouched.
func DecodeHTMLEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityPattern.ReplaceAllStringFunc(s, func(match string) string {
		body := match[1 : len(match)-1]
		switch {
		case strings.HasPrefix(body, "#x") || strings.HasPrefix(body, "#X"):
			v, err := strconv.ParseInt(body[2:], 16, 32)
			if err != nil {
				return match
			}
			return string(rune(v))
		case strings.HasPrefix(body, "#"):
			v, err := strconv.ParseInt(body[1:], 10, 32)
			if err != nil {
				return match
			}
			return string(rune(v))
		default:
			if r, ok := namedEntities[body]; ok {
				return string(r)
			}
			return match
		}
	})
}

// EntityTableString renders the named-entity table for diagnostics.
func EntityTableString() string {
	var b strings.Builder
	for name, r := range namedEntities {
		fmt.Fprintf(&b, "%s=%U ", name, r)
	}
	return b.String()
}
