package layout

import "strings"

// Variant selects which of the four font faces (regular, bold, italic,
// bold-italic) is active at a given position (spec §4.2 "Font set").
type Variant int

const (
	VariantRegular Variant = iota
	VariantBold
	VariantItalic
	VariantBoldItalic
)

func variantFor(bold, italic bool) Variant {
	switch {
	case bold && italic:
		return VariantBoldItalic
	case bold:
		return VariantBold
	case italic:
		return VariantItalic
	default:
		return VariantRegular
	}
}

// Span is a run of runes sharing one font variant, with tags stripped.
type Span struct {
	Text    string
	Variant Variant
}

// ScanMarkup recognizes <b></b>, <i></i>, <u></u> case-insensitively,
// additive and nestable (bold+italic selects the bold-italic variant).
// Unknown tags are passed through as literal text. Underlined runs are
// reported via the parallel underline slice (one bool per returned span).
func ScanMarkup(s string) (spans []Span, underline []bool) {
	bold, italic, underline_ := 0, 0, 0
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		spans = append(spans, Span{Text: cur.String(), Variant: variantFor(bold > 0, italic > 0)})
		underline = append(underline, underline_ > 0)
		cur.Reset()
	}

	i := 0
	n := len(s)
	for i < n {
		if s[i] == '<' {
			if tag, closing, width, ok := matchTag(s[i:]); ok {
				flush()
				delta := 1
				if closing {
					delta = -1
				}
				switch tag {
				case "b":
					bold += delta
				case "i":
					italic += delta
				case "u":
					underline_ += delta
				}
				i += width
				continue
			}
		}
		cur.WriteByte(s[i])
		i++
	}
	flush()
	return spans, underline
}

// matchTag recognizes <b>, </b>, <i>, </i>, <u>, </u> case-insensitively at
// the start of s, returning the lowercase tag name, whether it is a closing
// tag, and the byte width consumed.
func matchTag(s string) (tag string, closing bool, width int, ok bool) {
	if len(s) < 3 || s[0] != '<' {
		return "", false, 0, false
	}
	rest := s[1:]
	if len(rest) > 0 && rest[0] == '/' {
		closing = true
		rest = rest[1:]
	}
	if len(rest) < 2 {
		return "", false, 0, false
	}
	c := rest[0] | 0x20 // lowercase
	if c != 'b' && c != 'i' && c != 'u' {
		return "", false, 0, false
	}
	if rest[1] != '>' {
		return "", false, 0, false
	}
	width = 3
	if closing {
		width = 4
	}
	return string(c), closing, width, true
}
