package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/jmylchreest/fnottd/internal/layout"
)

// ProgressStyle selects how progress is drawn (spec §6 progress-style key).
type ProgressStyle int

const (
	ProgressStyleBar ProgressStyle = iota
	ProgressStyleBackground
)

// Style bundles the per-urgency drawing configuration the Compositor needs.
type Style struct {
	BorderRadius      int
	BorderSize        int
	BorderColor       color.RGBA
	Background        color.RGBA
	ProgressColor     color.RGBA
	ProgressStyle     ProgressStyle
	ProgressBarHeight int
	PaddingH          int
	PaddingV          int
}

// Frame is everything the Compositor needs to draw one notification frame
// (spec §4.6 "Inputs").
type Frame struct {
	Width, Height int
	Style         Style
	Progress      int // -1 = disabled
	Image         *image.RGBA
	ImageHeight   int
	Glyphs        []layout.Glyph
	Face          font.Face
}

// Compositor draws one notification frame into an RGBA buffer (spec §4.6).
type Compositor struct{}

// Draw renders frame following the exact operation order from spec §4.6.
func (Compositor) Draw(frame Frame) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))

	// 1. Clip to surface rect: dst's own bounds are the clip.
	s := frame.Style

	// 2/3. Border + background.
	if s.BorderRadius == 0 {
		drawSquareBorder(dst, s)
	} else {
		drawRoundedBorder(dst, frame.Width, frame.Height, s)
	}

	progressAreaHeight := 0
	if frame.Progress >= 0 && s.ProgressStyle == ProgressStyleBar {
		progressAreaHeight = s.ProgressBarHeight
	}

	// 4. Progress overlay (Background style).
	if frame.Progress > 0 && s.ProgressStyle == ProgressStyleBackground {
		drawProgressBackground(dst, frame, s)
	}

	// 5. Image composite (OVER).
	if frame.Image != nil {
		x := s.PaddingH
		y := (frame.Height - frame.ImageHeight - progressAreaHeight) / 2
		compositeOver(dst, frame.Image, x, y)
	}

	// 6. Text + underlines.
	drawGlyphs(dst, frame.Glyphs, frame.Face)

	// 7. Progress bar (Bar style).
	if frame.Progress >= 0 && s.ProgressStyle == ProgressStyleBar {
		drawProgressBar(dst, frame, s)
	}

	return dst
}

func drawSquareBorder(dst *image.RGBA, s Style) {
	ctx := gg.NewContextForRGBA(dst)
	w, h := float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	bs := float64(s.BorderSize)
	ctx.SetRGBA255(int(s.BorderColor.R), int(s.BorderColor.G), int(s.BorderColor.B), int(s.BorderColor.A))
	ctx.DrawRectangle(0, 0, w, bs)
	ctx.DrawRectangle(0, h-bs, w, bs)
	ctx.DrawRectangle(0, 0, bs, h)
	ctx.DrawRectangle(w-bs, 0, bs, h)
	ctx.Fill()
	ctx.SetRGBA255(int(s.Background.R), int(s.Background.G), int(s.Background.B), int(s.Background.A))
	ctx.DrawRectangle(bs, bs, w-2*bs, h-2*bs)
	ctx.Fill()
}

// drawRoundedBorder renders into a 2x super-sampled intermediate image using
// fillRoundedRectangleRegion, then downscale-composes with a bilinear filter
// into dst, per spec §4.6 step 3 and §4.6 "Rounded-rectangle region".
func drawRoundedBorder(dst *image.RGBA, width, height int, s Style) {
	const ss = 2
	hi := image.NewRGBA(image.Rect(0, 0, width*ss, height*ss))
	ctx := gg.NewContextForRGBA(hi)
	ctx.SetRGBA255(int(s.BorderColor.R), int(s.BorderColor.G), int(s.BorderColor.B), int(s.BorderColor.A))
	ctx.Fill()
	fillRoundedRectangleRegion(ctx, 0, 0, float64(width*ss), float64(height*ss), float64(s.BorderRadius*ss))
	ctx.Fill()
	ctx.SetRGBA255(int(s.Background.R), int(s.Background.G), int(s.Background.B), int(s.Background.A))
	bs := float64(s.BorderSize * ss)
	fillRoundedRectangleRegion(ctx, bs, bs, float64(width*ss)-2*bs, float64(height*ss)-2*bs, math.Max(0, float64(s.BorderRadius*ss)-bs))
	ctx.Fill()

	downscale(dst, hi)
}

// fillRoundedRectangleRegion adds a rounded rectangle path following spec
// §4.6's scanline description: for y in [0,radius], span x ∈
// [radius-sqrt(r^2-(r-y)^2), width-(radius-sqrt(r^2-(r-y)^2))], symmetric at
// the bottom, full width in the middle band.
func fillRoundedRectangleRegion(ctx *gg.Context, x, y, w, h, radius float64) {
	if radius <= 0 {
		ctx.DrawRectangle(x, y, w, h)
		return
	}
	ctx.NewSubPath()
	ctx.MoveTo(x+radius, y)
	ctx.LineTo(x+w-radius, y)
	ctx.DrawArc(x+w-radius, y+radius, radius, -math.Pi/2, 0)
	ctx.LineTo(x+w, y+h-radius)
	ctx.DrawArc(x+w-radius, y+h-radius, radius, 0, math.Pi/2)
	ctx.LineTo(x+radius, y+h)
	ctx.DrawArc(x+radius, y+h-radius, radius, math.Pi/2, math.Pi)
	ctx.LineTo(x, y+radius)
	ctx.DrawArc(x+radius, y+radius, radius, math.Pi, 3*math.Pi/2)
	ctx.ClosePath()
}

func downscale(dst *image.RGBA, hi *image.RGBA) {
	draw.BiLinear.Scale(dst, dst.Bounds(), hi, hi.Bounds(), draw.Over, nil)
}

func drawProgressBackground(dst *image.RGBA, frame Frame, s Style) {
	ctx := gg.NewContextForRGBA(dst)
	w := float64(frame.Width-2*s.PaddingH) * float64(frame.Progress) / 100.0
	ctx.SetRGBA255(int(s.ProgressColor.R), int(s.ProgressColor.G), int(s.ProgressColor.B), int(s.ProgressColor.A))
	ctx.DrawRectangle(float64(s.PaddingH), float64(s.PaddingV), w, float64(frame.Height-2*s.PaddingV))
	ctx.Fill()
}

func drawProgressBar(dst *image.RGBA, frame Frame, s Style) {
	ctx := gg.NewContextForRGBA(dst)
	barW := float64(frame.Width - 2*s.PaddingH)
	barH := float64(s.ProgressBarHeight)
	y := float64(frame.Height) - barH - float64(s.PaddingV)
	ctx.SetRGBA255(int(s.BorderColor.R), int(s.BorderColor.G), int(s.BorderColor.B), int(s.BorderColor.A))
	ctx.DrawRectangle(float64(s.PaddingH), y, barW, barH)
	ctx.Stroke()
	fillW := barW * float64(clampProgress(frame.Progress)) / 100.0
	ctx.SetRGBA255(int(s.ProgressColor.R), int(s.ProgressColor.G), int(s.ProgressColor.B), int(s.ProgressColor.A))
	ctx.DrawRectangle(float64(s.PaddingH), y, fillW, barH)
	ctx.Fill()
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func compositeOver(dst *image.RGBA, src *image.RGBA, x, y int) {
	b := src.Bounds()
	for sy := b.Min.Y; sy < b.Max.Y; sy++ {
		dy := y + (sy - b.Min.Y)
		if dy < 0 || dy >= dst.Bounds().Dy() {
			continue
		}
		for sx := b.Min.X; sx < b.Max.X; sx++ {
			dx := x + (sx - b.Min.X)
			if dx < 0 || dx >= dst.Bounds().Dx() {
				continue
			}
			sc := src.RGBAAt(sx, sy)
			dc := dst.RGBAAt(dx, dy)
			dst.SetRGBA(dx, dy, overBlend(sc, dc))
		}
	}
}

// overBlend implements the Porter-Duff OVER operator for premultiplied RGBA.
func overBlend(src, dst color.RGBA) color.RGBA {
	ia := 255 - uint16(src.A)
	return color.RGBA{
		R: uint8(uint16(src.R) + uint16(dst.R)*ia/255),
		G: uint8(uint16(src.G) + uint16(dst.G)*ia/255),
		B: uint8(uint16(src.B) + uint16(dst.B)*ia/255),
		A: uint8(uint16(src.A) + uint16(dst.A)*ia/255),
	}
}

func drawGlyphs(dst *image.RGBA, glyphs []layout.Glyph, face font.Face) {
	if len(glyphs) == 0 {
		return
	}
	ctx := gg.NewContextForRGBA(dst)
	if face != nil {
		ctx.SetFontFace(face)
	}
	i := 0
	for i < len(glyphs) {
		g := glyphs[i]
		j := i
		var run []rune
		for j < len(glyphs) && glyphs[j].Y == g.Y && glyphs[j].ColorRef == g.ColorRef {
			run = append(run, glyphs[j].Rune)
			j++
		}
		c := colorFromRef(g.ColorRef)
		ctx.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
		ctx.DrawString(string(run), float64(g.X), float64(g.Y))
		if g.Underline {
			ctx.DrawLine(float64(g.X), float64(g.UnderlineY), float64(glyphs[j-1].X+glyphs[j-1].AdvanceX), float64(g.UnderlineY))
			ctx.SetLineWidth(float64(g.UnderlineThickness))
			ctx.Stroke()
		}
		i = j
	}
}

func colorFromRef(ref uint32) color.RGBA {
	return color.RGBA{
		R: uint8(ref >> 24),
		G: uint8(ref >> 16),
		B: uint8(ref >> 8),
		A: uint8(ref),
	}
}
