package layout

import (
	"unicode"

	"golang.org/x/image/font"
)

// Config carries the geometry inputs to Layout (spec §4.2, §6 per-urgency keys).
type Config struct {
	MaxWidth   int
	MinWidth   int
	MaxHeight  int
	LeftPad    int
	RightPad   int
	LineHeight int
	Subpixel   SubpixelOrder
	DPI        float64
}

// Result is the flat glyph list plus the measured bounding box (spec §4.2
// "Output" and §4.6 "Geometry").
type Result struct {
	Glyphs []Glyph
	Width  int
	Height int
	Lines  int
}

// Layout expands template against fields, scans inline markup, shapes each
// same-variant span (cached in cache), and places the resulting glyphs with
// word-wrap honoring cfg.MaxWidth/MaxHeight.
func Layout(fonts *FontSet, template string, fields Fields, colorRef uint32, cache *RunCache, cfg Config) Result {
	text := Expand(template, fields)
	spans, underline := ScanMarkup(text)

	var flat []Glyph
	clusterOffset := 0
	for i, span := range spans {
		face := fonts.Face(span.Variant)
		key := NewRunKey(span.Text, fonts.Handle(), cfg.Subpixel, clusterOffset)
		run := cache.GetOrShape(key, func() *ShapedRun { return shapeRun(face, span.Text, colorRef, underline[i]) })
		flat = append(flat, run.Glyphs...)
		clusterOffset += len(span.Glyphs(run))
	}

	return wrapPlace(flat, cfg)
}

// Glyphs is a convenience so clusterOffset advances by rune count of a span.
func (s Span) Glyphs(run *ShapedRun) []Glyph { return run.Glyphs }

// shapeRun rasterizes/measures one contiguous same-variant span. Per spec
// §4.2, a shaping-capable backend would shape the whole span as one run;
// this backend (golang.org/x/image/font.Face) has no cluster shaping, so it
// falls back to per-codepoint measurement, still cached as a single run.
func shapeRun(face font.Face, text string, colorRef uint32, underline bool) *ShapedRun {
	run := &ShapedRun{}
	prev := rune(-1)
	x := 0
	for _, r := range text {
		adv, ok := face.GlyphAdvance(r)
		advPx := 0
		if ok {
			advPx = adv.Round()
		}
		if prev >= 0 {
			x += face.Kern(prev, r).Round()
		}
		run.Glyphs = append(run.Glyphs, Glyph{
			Rune:      r,
			ColorRef:  colorRef,
			X:         x,
			AdvanceX:  advPx,
			Underline: underline,
		})
		x += advPx
		prev = r
	}
	run.Advance = x
	return run
}

// wrapPlace implements spec §4.2's word-wrap rule: track, for the first
// glyph of each whitespace-delimited word, the pixel advance of the whole
// word; wrap before a word's first glyph when the whole word would exceed
// max_width and at least one glyph is already on the line, or on a literal
// newline. Glyphs inside a word never trigger a wrap, so a single word wider
// than max_width stays on one line. Trailing whitespace at a wrap boundary
// is dropped. Lines beyond MaxHeight are clipped.
func wrapPlace(glyphs []Glyph, cfg Config) Result {
	maxWidth := cfg.MaxWidth
	if maxWidth <= 0 {
		maxWidth = 1 << 30
	}
	lineHeight := cfg.LineHeight
	if lineHeight <= 0 {
		lineHeight = 16
	}

	wordRemaining := computeWordRemaining(glyphs)

	out := make([]Glyph, 0, len(glyphs))
	penX := cfg.LeftPad
	penY := cfg.LineHeight
	line := 1
	maxLineWidth := 0
	clipped := false

	flushLineWidth := func() {
		if penX > maxLineWidth {
			maxLineWidth = penX
		}
	}

	dropTrailingWhitespace := func() {
		for len(out) > 0 && unicode.IsSpace(out[len(out)-1].Rune) && out[len(out)-1].Rune != '\n' {
			out = out[:len(out)-1]
		}
	}

	for i, g := range glyphs {
		atLineStart := penX <= cfg.LeftPad
		wordStart := !unicode.IsSpace(g.Rune) && (i == 0 || unicode.IsSpace(glyphs[i-1].Rune))
		needsWrap := g.Rune == '\n' ||
			(wordStart && !atLineStart && penX+g.AdvanceX+wordRemaining[i]+cfg.RightPad > maxWidth)

		if needsWrap {
			flushLineWidth()
			dropTrailingWhitespace()
			if cfg.MaxHeight > 0 && (line+1)*lineHeight > cfg.MaxHeight {
				clipped = true
				break
			}
			line++
			penX = cfg.LeftPad
			penY += lineHeight
			if g.Rune == '\n' {
				continue // newline itself is not rendered
			}
		}

		placed := g
		placed.X = penX
		placed.Y = penY
		placed.UnderlineY = penY + 2
		placed.UnderlineThickness = 1
		out = append(out, placed)
		penX += g.AdvanceX
	}
	if !clipped {
		flushLineWidth()
	}

	height := line * lineHeight
	if cfg.MaxHeight > 0 && height > cfg.MaxHeight {
		height = cfg.MaxHeight
	}

	return Result{Glyphs: out, Width: maxLineWidth, Height: height, Lines: line}
}

// computeWordRemaining returns, for each glyph index, the pixel advance
// still owed by the rest of the whitespace-delimited word it belongs to
// (spec §4.2: "the pixel advance of the entire word" measured from the
// first glyph of each word).
func computeWordRemaining(glyphs []Glyph) []int {
	remaining := make([]int, len(glyphs))
	i := 0
	for i < len(glyphs) {
		if unicode.IsSpace(glyphs[i].Rune) {
			remaining[i] = 0
			i++
			continue
		}
		j := i
		total := 0
		for j < len(glyphs) && !unicode.IsSpace(glyphs[j].Rune) {
			total += glyphs[j].AdvanceX
			j++
		}
		running := total
		for k := i; k < j; k++ {
			running -= glyphs[k].AdvanceX
			remaining[k] = running
		}
		i = j
	}
	return remaining
}
