// Package layout implements the TextLayoutEngine: format-string expansion,
// inline-markup scanning, run shaping with a content-hash-keyed cache, and
// word-wrap layout (spec §4.2).
package layout

import "strings"

// Fields supplies the substitution values for format-string expansion.
type Fields struct {
	App        string
	Summary    string
	Body       string
	HasActions bool
}

type expandState int

const (
	stateNone expandState = iota
	stateAfterPercent
	stateAfterBackslash
)

// Expand implements the format template scanner described in spec §4.2 and
// §9 ("implement as a small two-state scanner"): %a, %s, %b, %A, %%, and \n
// are recognized; any other backslash/percent sequence is unspecified and
// dropped silently along with its marker character.
func Expand(template string, f Fields) string {
	var out strings.Builder
	state := stateNone

	for _, r := range template {
		switch state {
		case stateNone:
			switch r {
			case '%':
				state = stateAfterPercent
			case '\\':
				state = stateAfterBackslash
			default:
				out.WriteRune(r)
			}
		case stateAfterPercent:
			switch r {
			case 'a':
				out.WriteString(f.App)
			case 's':
				out.WriteString(f.Summary)
			case 'b':
				out.WriteString(f.Body)
			case 'A':
				if f.HasActions {
					out.WriteByte('*')
				}
			case '%':
				out.WriteByte('%')
			default:
				// unspecified sequence: ignored
			}
			state = stateNone
		case stateAfterBackslash:
			switch r {
			case 'n':
				out.WriteByte('\n')
			default:
				// unspecified sequence: ignored
			}
			state = stateNone
		}
	}
	return out.String()
}
