// Package render implements the ImagePipeline and Compositor (spec §2, §4.6).
package render

import (
	"fmt"
	"image"
	"image/color"
	"net/url"
	"os"
	"strings"

	"golang.org/x/image/draw"
)

// ScalingFilter selects the rescale algorithm (spec §6 scaling-filter key).
type ScalingFilter int

const (
	FilterNone ScalingFilter = iota
	FilterNearest
	FilterBilinear
	FilterCubic
	FilterLanczos3
)

func ParseScalingFilter(s string) ScalingFilter {
	switch strings.ToLower(s) {
	case "nearest":
		return FilterNearest
	case "cubic":
		return FilterCubic
	case "lanczos3":
		return FilterLanczos3
	case "none":
		return FilterNone
	default:
		return FilterBilinear
	}
}

func (f ScalingFilter) scaler() draw.Scaler {
	switch f {
	case FilterNearest:
		return draw.NearestNeighbor
	case FilterCubic:
		return draw.CatmullRom
	case FilterLanczos3:
		return draw.CatmullRom // x/image/draw has no lanczos3; CatmullRom is the closest high-quality kernel it ships
	case FilterNone:
		return draw.NearestNeighbor
	default:
		return draw.BiLinear
	}
}

// RawImage is the hint-delivered pixel buffer shape from spec §6
// (image-data/image_data/icon_data): ABGR-packed, premultiplied by the
// engine, 8 bits per sample, 3 or 4 channels supported.
type RawImage struct {
	Width, Height  int
	Rowstride      int
	HasAlpha       bool
	BitsPerSample  int
	Channels       int
	Data           []byte
}

// ImageSource is the sum type from spec §9: images may arrive as a raw
// pixel buffer, a file path, or a URI.
type ImageSource struct {
	Raw  *RawImage
	Path string
	URI  string
}

// ErrUnsupportedFormat is returned for combinations §6 says to ignore with
// a warning (anything other than 8bpp with 3 or 4 channels).
var ErrUnsupportedFormat = fmt.Errorf("unsupported image format")

// ImagePipeline accepts an ImageSource and rescales it to fit maxSize with
// the configured filter (spec §2 ImagePipeline row).
type ImagePipeline struct {
	Filter  ScalingFilter
	MaxSize int
}

// Load decodes src into an *image.RGBA without rescaling.
func (p *ImagePipeline) Load(src ImageSource) (*image.RGBA, error) {
	switch {
	case src.Raw != nil:
		return decodeRaw(src.Raw)
	case src.Path != "":
		return loadPath(src.Path)
	case src.URI != "":
		return loadURI(src.URI)
	default:
		return nil, fmt.Errorf("empty image source")
	}
}

// Rescale fits img within p.MaxSize x p.MaxSize, preserving aspect ratio.
func (p *ImagePipeline) Rescale(img *image.RGBA) *image.RGBA {
	if p.MaxSize <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= p.MaxSize && h <= p.MaxSize {
		return img
	}
	scale := float64(p.MaxSize) / float64(w)
	if hs := float64(p.MaxSize) / float64(h); hs < scale {
		scale = hs
	}
	nw := maxInt(1, int(float64(w)*scale))
	nh := maxInt(1, int(float64(h)*scale))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	p.Filter.scaler().Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Flatten packs img's pixels into a tightly-strided RGBA byte slice (width,
// height, stride == width*4), the shape notif.Image stores.
func Flatten(img *image.RGBA) (width, height int, data []byte) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		srcOff := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*w*4:(y+1)*w*4], img.Pix[srcOff:srcOff+w*4])
	}
	return w, h, out
}

// decodeRaw converts the ABGR, premultiplied-alpha raw buffer described in
// spec §6 into an *image.RGBA. Only 8bpp with 3 or 4 channels is supported;
// everything else is ErrUnsupportedFormat so the caller can log a warning
// and ignore the hint rather than fail the whole Notify call.
func decodeRaw(r *RawImage) (*image.RGBA, error) {
	if r.BitsPerSample != 8 || (r.Channels != 3 && r.Channels != 4) {
		return nil, ErrUnsupportedFormat
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		rowStart := y * r.Rowstride
		for x := 0; x < r.Width; x++ {
			off := rowStart + x*r.Channels
			if off+r.Channels > len(r.Data) {
				break
			}
			a, bb, g, rr := byte(255), r.Data[off], r.Data[off+1], r.Data[off+2]
			if r.Channels == 4 {
				a = r.Data[off+3]
			}
			img.SetRGBA(x, y, premultiply(color.RGBA{R: rr, G: g, B: bb, A: a}))
		}
	}
	return img, nil
}

// premultiply computes premultiplied alpha, matching spec §6's "alpha is
// premultiplied by the engine".
func premultiply(c color.RGBA) color.RGBA {
	if c.A == 255 {
		return c
	}
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(c.A) / 255),
		G: uint8(uint16(c.G) * uint16(c.A) / 255),
		B: uint8(uint16(c.B) * uint16(c.A) / 255),
		A: c.A,
	}
}

func loadPath(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return decodeImageFile(f)
}

// loadURI handles file:// URIs with a localhost (or empty) host by
// resolving to a local path, per spec §6's image-path hint semantics.
func loadURI(uri string) (*image.RGBA, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse image uri %s: %w", uri, err)
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return nil, fmt.Errorf("unsupported image uri scheme: %s", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return nil, fmt.Errorf("unsupported image uri host: %s", u.Host)
	}
	path := u.Path
	if path == "" {
		path = uri
	}
	return loadPath(path)
}
