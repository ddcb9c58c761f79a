package layout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSet holds the four resolved variants (regular/bold/italic/bold-italic)
// for one logical role (app, summary, body, or action) at a configured size,
// DPI-corrected when dpi_aware is set (spec §4.2 "Font set").
type FontSet struct {
	handle   FontHandle
	faces    [4]font.Face
	sizePx   int
	dpiAware bool
	scale    float64
}

// NewFontSet builds a FontSet from already-loaded faces. A production build
// would resolve family names through fontconfig; this daemon accepts
// pre-opened font.Face values (golang.org/x/image/font) and falls back to
// basicfont.Face7x13 for any unset variant so layout always has metrics to
// work with even before a real font backend is wired in.
func NewFontSet(handle FontHandle, regular, bold, italic, boldItalic font.Face, sizePx int, dpiAware bool, scale float64) *FontSet {
	fs := &FontSet{handle: handle, sizePx: sizePx, dpiAware: dpiAware, scale: scale}
	fallback := font.Face(basicfont.Face7x13)
	faces := [4]font.Face{regular, bold, italic, boldItalic}
	for i, f := range faces {
		if f == nil {
			f = fallback
		}
		fs.faces[i] = f
	}
	return fs
}

func (fs *FontSet) Face(v Variant) font.Face { return fs.faces[v] }
func (fs *FontSet) Handle() FontHandle        { return fs.handle }

// correctedSize applies DPI or scale correction per spec §4.2.
func (fs *FontSet) correctedSize(dpi float64) int {
	if fs.dpiAware {
		return int(float64(fs.sizePx) * dpi / 96.0)
	}
	return int(float64(fs.sizePx) * fs.scale)
}

// glyphAdvance returns the pixel advance of rendering r with face.
func glyphAdvance(face font.Face, r rune) int {
	adv, ok := face.GlyphAdvance(r)
	if !ok {
		return 0
	}
	return adv.Round()
}

func textAdvance(face font.Face, s string) int {
	total := fixed.I(0)
	prev := rune(-1)
	for _, r := range s {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		total += adv
		if prev >= 0 {
			total += face.Kern(prev, r)
		}
		prev = r
	}
	return total.Round()
}
