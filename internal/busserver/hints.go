package busserver

import (
	"net/url"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/fnottd/internal/notif"
)

// ParsedHints is the subset of Notify's hints dict the daemon acts on
// (spec §6 "Hints consumed").
type ParsedHints struct {
	Urgency   notif.Urgency
	HasUrgency bool
	SyncTag   string
	Progress  int // -1 if absent
	ImagePath string
	ImageData *notif.Image
}

// ParseHints extracts spec §6's exact hint set, tolerating absent or
// mistyped entries by simply ignoring them (spec §7 "Protocol" covers only
// malformed top-level Notify arguments, not individual hint variants).
func ParseHints(hints map[string]dbus.Variant) ParsedHints {
	out := ParsedHints{Progress: -1}

	if v, ok := hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			out.Urgency = notif.ParseUrgency(b)
			out.HasUrgency = true
		}
	}
	if v, ok := hints["x-canonical-private-synchronous"]; ok {
		if s, ok := v.Value().(string); ok {
			out.SyncTag = s
		}
	}
	if v, ok := hints["value"]; ok {
		if p, ok := asInt(v.Value()); ok {
			out.Progress = clampProgress(p)
		}
	}

	if path, ok := imagePathHint(hints); ok {
		out.ImagePath = path
	}
	if img, ok := imageDataHint(hints); ok {
		out.ImageData = img
	}

	return out
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int:
		return n, true
	case uint32:
		return int(n), true
	}
	return 0, false
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

// imagePathHint resolves image-path/image_path to a filesystem path,
// honoring file:// URIs with a localhost (empty) host (spec §6).
func imagePathHint(hints map[string]dbus.Variant) (string, bool) {
	v, ok := hints["image-path"]
	if !ok {
		v, ok = hints["image_path"]
	}
	if !ok {
		return "", false
	}
	s, ok := v.Value().(string)
	if !ok || s == "" {
		return "", false
	}
	if !strings.HasPrefix(s, "file://") {
		return s, true
	}
	u, err := url.Parse(s)
	if err != nil || (u.Host != "" && u.Host != "localhost") {
		return "", false
	}
	return u.Path, true
}

// rawImageHint is the wire shape of image-data/image_data/icon_data:
// (width:i32, height:i32, rowstride:i32, has_alpha:bool,
// bits_per_sample:i32, channels:i32, data:array<byte>) (spec §6).
type rawImageHint struct {
	Width, Height, Rowstride int32
	HasAlpha                 bool
	BitsPerSample, Channels  int32
	Data                     []byte
}

func imageDataHint(hints map[string]dbus.Variant) (*notif.Image, bool) {
	var v dbus.Variant
	var ok bool
	for _, key := range []string{"image-data", "image_data", "icon_data"} {
		if v, ok = hints[key]; ok {
			break
		}
	}
	if !ok {
		return nil, false
	}

	raw, ok := decodeRawImageHint(v.Value())
	if !ok {
		return nil, false
	}
	if raw.BitsPerSample != 8 || (raw.Channels != 3 && raw.Channels != 4) {
		return nil, false
	}

	rgba := abgrToPremultipliedRGBA(raw)
	return &notif.Image{Width: int(raw.Width), Height: int(raw.Height), Data: rgba, IsCustom: true}, true
}

// decodeRawImageHint accepts either a pre-typed rawImageHint (constructed by
// tests) or the []interface{} shape godbus hands back for an untyped dbus
// struct signature.
func decodeRawImageHint(v interface{}) (rawImageHint, bool) {
	if r, ok := v.(rawImageHint); ok {
		return r, true
	}
	fields, ok := v.([]interface{})
	if !ok || len(fields) != 7 {
		return rawImageHint{}, false
	}
	var r rawImageHint
	var okAll bool
	r.Width, okAll = field32(fields[0])
	if !okAll {
		return r, false
	}
	h, ok := field32(fields[1])
	r.Height = h
	okAll = okAll && ok
	rs, ok := field32(fields[2])
	r.Rowstride = rs
	okAll = okAll && ok
	if b, ok := fields[3].(bool); ok {
		r.HasAlpha = b
	} else {
		okAll = false
	}
	bps, ok := field32(fields[4])
	r.BitsPerSample = bps
	okAll = okAll && ok
	ch, ok := field32(fields[5])
	r.Channels = ch
	okAll = okAll && ok
	if data, ok := fields[6].([]byte); ok {
		r.Data = data
	} else {
		okAll = false
	}
	return r, okAll
}

func field32(v interface{}) (int32, bool) {
	switch n := v.(type) {
	case int32:
		return n, true
	case uint32:
		return int32(n), true
	case int:
		return int32(n), true
	}
	return 0, false
}

// abgrToPremultipliedRGBA converts the ABGR-packed source (spec §6: "Image
// data is treated as ABGR packed") into premultiplied-alpha RGBA rows,
// dropping any rowstride padding beyond width*channels.
func abgrToPremultipliedRGBA(raw rawImageHint) []byte {
	channels := int(raw.Channels)
	width, height := int(raw.Width), int(raw.Height)
	rowstride := int(raw.Rowstride)
	out := make([]byte, width*height*4)

	for y := 0; y < height; y++ {
		rowStart := y * rowstride
		for x := 0; x < width; x++ {
			off := rowStart + x*channels
			if off+channels > len(raw.Data) {
				continue
			}
			a, b, g, r := byte(255), raw.Data[off], raw.Data[off+1], raw.Data[off+2]
			if channels == 4 {
				a = raw.Data[off+3]
			}
			di := (y*width + x) * 4
			out[di+0] = premul(r, a)
			out[di+1] = premul(g, a)
			out[di+2] = premul(b, a)
			out[di+3] = a
		}
	}
	return out
}

func premul(c, a byte) byte {
	return byte((uint16(c) * uint16(a)) / 255)
}
