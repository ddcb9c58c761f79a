package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

func TestExpandFormatString(t *testing.T) {
	f := Fields{App: "mail", Summary: "Hello", Body: "World", HasActions: true}
	require.Equal(t, "mail: Hello - World *", Expand(`%a: %s - %b %A`, f))
	require.Equal(t, "100%", Expand(`%b%%`, Fields{Body: "100"}))
	require.Equal(t, "a\nb", Expand(`a\nb`, Fields{}))
}

func TestExpandUnknownSequenceIgnored(t *testing.T) {
	require.Equal(t, "x", Expand(`x%q`, Fields{}))
}

func TestScanMarkupAdditiveNesting(t *testing.T) {
	spans, underline := ScanMarkup("plain <b>bold <i>bi</i></b> end")
	require.Len(t, spans, 4)
	require.Equal(t, "plain ", spans[0].Text)
	require.Equal(t, VariantRegular, spans[0].Variant)
	require.Equal(t, "bold ", spans[1].Text)
	require.Equal(t, VariantBold, spans[1].Variant)
	require.Equal(t, "bi", spans[2].Text)
	require.Equal(t, VariantBoldItalic, spans[2].Variant)
	require.False(t, underline[0])
}

func TestScanMarkupUnknownTagLiteral(t *testing.T) {
	spans, _ := ScanMarkup("<x>hi</x>")
	require.Len(t, spans, 1)
	require.Equal(t, "<x>hi</x>", spans[0].Text)
}

func TestSDBMHashDeterministic(t *testing.T) {
	require.Equal(t, sdbmHash("hello"), sdbmHash("hello"))
	require.NotEqual(t, sdbmHash("hello"), sdbmHash("world"))
}

func TestWordWrapScenario(t *testing.T) {
	handle := FontHandle(1)
	fs := NewFontSet(handle, basicfont.Face7x13, basicfont.Face7x13, basicfont.Face7x13, basicfont.Face7x13, 13, false, 1)
	cache := NewRunCache()
	cfg := Config{MaxWidth: 100, LineHeight: 16}

	res := Layout(fs, "<b>%s</b>", Fields{Summary: "Hello world foo"}, 0, cache, cfg)
	require.Equal(t, 2, res.Lines)

	// No trailing whitespace glyph should remain at the end of line 1.
	line1Y := res.Glyphs[0].Y
	lastOnLine1 := rune(0)
	for _, g := range res.Glyphs {
		if g.Y == line1Y {
			lastOnLine1 = g.Rune
		}
	}
	require.NotEqual(t, rune(' '), lastOnLine1)
}

func TestSingleWordWiderThanMaxWidthNotRecursivelyWrapped(t *testing.T) {
	handle := FontHandle(2)
	fs := NewFontSet(handle, basicfont.Face7x13, basicfont.Face7x13, basicfont.Face7x13, basicfont.Face7x13, 13, false, 1)
	cache := NewRunCache()
	cfg := Config{MaxWidth: 10, LineHeight: 16}

	res := Layout(fs, "%s", Fields{Summary: "supercalifragilistic"}, 0, cache, cfg)
	require.Equal(t, 1, res.Lines)
}
