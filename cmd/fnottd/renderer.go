package main

import (
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/jmylchreest/fnottd/internal/config"
	"github.com/jmylchreest/fnottd/internal/layout"
	"github.com/jmylchreest/fnottd/internal/notif"
	"github.com/jmylchreest/fnottd/internal/render"
	"github.com/jmylchreest/fnottd/internal/schedule"
)

// logSurface stands in for the out-of-scope compositor/surface-server
// client (spec §1): it acknowledges every commit immediately, inside Commit,
// instead of waiting on a real Wayland frame callback, which is enough to drive
// FrameScheduler's pending/in-flight bookkeeping end to end.
type logSurface struct {
	logger *slog.Logger
	id     uint32
}

func (s logSurface) Commit(buf any, onFrameDone func()) {
	s.logger.Debug("frame committed", "id", s.id)
	onFrameDone()
}

// frameRenderer implements manager.Renderer by driving TextLayoutEngine +
// ImagePipeline + Compositor + FrameScheduler for one notification per
// refresh pass (spec §2 data-flow row, §4.6).
type frameRenderer struct {
	mu     sync.RWMutex
	cfg    config.Config
	logger *slog.Logger
	frames *schedule.FrameScheduler
	images render.ImagePipeline
	comp   render.Compositor
}

func newFrameRenderer(cfg config.Config, frames *schedule.FrameScheduler, logger *slog.Logger) *frameRenderer {
	return &frameRenderer{
		cfg:    cfg,
		logger: logger,
		frames: frames,
		images: render.ImagePipeline{Filter: cfg.Main.ScalingFilter, MaxSize: cfg.Main.MaxIconSize},
	}
}

// SetConfig swaps in newly reloaded configuration (see config.Watcher).
func (r *frameRenderer) SetConfig(cfg config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.images = render.ImagePipeline{Filter: cfg.Main.ScalingFilter, MaxSize: cfg.Main.MaxIconSize}
}

// textBlock pairs one of the three independently-configurable text spans
// (title/summary/body, spec §4.2's TextLayoutEngine) with its own format
// string and color.
type textBlock struct {
	format string
	color  color.RGBA
}

// RenderNotification implements manager.Renderer.
func (r *frameRenderer) RenderNotification(n *notif.Notification, y int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uc := r.cfg.ByUrgency(int(n.Urgency))

	var img *image.RGBA
	imgWidth, imgHeight := 0, 0
	if n.Image != nil {
		img = &image.RGBA{
			Pix:    n.Image.Data,
			Stride: n.Image.Width * 4,
			Rect:   image.Rect(0, 0, n.Image.Width, n.Image.Height),
		}
		imgWidth, imgHeight = n.Image.Width, n.Image.Height
	}

	// Text indents past the icon when one is present (original's
	// notif_show_bordered_background indent variable).
	indent := uc.PaddingHorizontal
	if img != nil {
		indent += imgWidth + uc.PaddingHorizontal
	}

	maxWidth := r.cfg.Main.MaxWidth
	if maxWidth <= 0 {
		maxWidth = 300
	}
	wrapWidth := maxWidth - indent - uc.PaddingHorizontal

	fonts := layout.NewFontSet(layout.FontHandle{}, nil, nil, nil, nil, 12, r.cfg.Main.DPIAware, 1.0)
	fields := layoutFields(n)

	blocks := [3]textBlock{
		{uc.TitleFormat, uc.TitleColor},
		{uc.SummaryFormat, uc.SummaryColor},
		{uc.BodyFormat, uc.BodyColor},
	}

	var glyphs []layout.Glyph
	layoutWidth := 0
	textHeight := 0
	for _, b := range blocks {
		if b.format == "" {
			continue
		}
		blockMaxHeight := 0
		if r.cfg.Main.MaxHeight > 0 {
			blockMaxHeight = r.cfg.Main.MaxHeight - uc.PaddingVertical - textHeight
			if blockMaxHeight <= 0 {
				break
			}
		}
		result := layout.Layout(fonts, b.format, fields, colorToRef(b.color), n.RunCache, layout.Config{
			MaxWidth: wrapWidth, MaxHeight: blockMaxHeight,
			LeftPad: indent, RightPad: uc.PaddingHorizontal,
			LineHeight: 16, DPI: 96,
		})
		if len(result.Glyphs) == 0 {
			continue
		}
		for i := range result.Glyphs {
			result.Glyphs[i].Y += textHeight
			result.Glyphs[i].UnderlineY += textHeight
		}
		glyphs = append(glyphs, result.Glyphs...)
		if result.Width > layoutWidth {
			layoutWidth = result.Width
		}
		textHeight += result.Height
	}
	// wrapPlace's maxLineWidth only tracks the pen position, which already
	// includes LeftPad but not RightPad (spec §4.6 Geometry layout_width).
	if layoutWidth > 0 {
		layoutWidth += uc.PaddingHorizontal
	}

	progressAreaHeight := 0
	if n.Progress >= 0 && uc.ProgressStyle == render.ProgressStyleBar {
		progressAreaHeight = uc.ProgressBarHeight
	}

	// spec §4.6 Geometry: final width = max(min_width, max(layout_width,
	// padding + image_width + padding)).
	width := layoutWidth
	if imageWidthCandidate := uc.PaddingHorizontal + imgWidth + uc.PaddingHorizontal; imageWidthCandidate > width {
		width = imageWidthCandidate
	}
	if r.cfg.Main.MinWidth > width {
		width = r.cfg.Main.MinWidth
	}

	// final height = padding + text_height + (image_height if needed) +
	// (progress_area if bar) + padding, clamped to max_height.
	height := uc.PaddingVertical + textHeight
	if imgHeight > 0 {
		if imageHeightCandidate := uc.PaddingVertical + imgHeight + uc.PaddingVertical; imageHeightCandidate > height {
			height = imageHeightCandidate
		}
	}
	height += progressAreaHeight
	height += uc.PaddingVertical
	if r.cfg.Main.MaxHeight > 0 && height > r.cfg.Main.MaxHeight {
		height = r.cfg.Main.MaxHeight
	}

	frame := render.Frame{
		Width:  width,
		Height: height,
		Style: render.Style{
			BorderRadius: uc.BorderRadius, BorderSize: uc.BorderSize,
			BorderColor: uc.BorderColor, Background: uc.Background,
			ProgressColor: uc.ProgressColor, ProgressStyle: uc.ProgressStyle,
			ProgressBarHeight: uc.ProgressBarHeight, PaddingH: uc.PaddingHorizontal, PaddingV: uc.PaddingVertical,
		},
		Progress:    n.Progress,
		ImageHeight: imgHeight,
		Glyphs:      glyphs,
		Face:        fonts.Face(layout.VariantRegular),
	}
	if img != nil {
		frame.Image = r.images.Rescale(img)
	}

	buf := r.comp.Draw(frame)

	n.SurfaceState = notif.AwaitingFrame
	r.frames.Submit(n.ID, logSurface{logger: r.logger, id: n.ID}, buf)
	n.SurfaceState = notif.Committed

	return height + r.cfg.Main.NotificationMargin
}

func layoutFields(n *notif.Notification) layout.Fields {
	return layout.Fields{App: n.App, Summary: n.Summary, Body: n.Body, HasActions: n.HasActions()}
}

func colorToRef(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}
