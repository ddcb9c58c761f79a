package busserver

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/fnottd/internal/notif"
)

func TestParseHintsDefaults(t *testing.T) {
	out := ParseHints(map[string]dbus.Variant{})
	assert.False(t, out.HasUrgency)
	assert.Equal(t, -1, out.Progress)
	assert.Empty(t, out.SyncTag)
	assert.Empty(t, out.ImagePath)
	assert.Nil(t, out.ImageData)
}

func TestParseHintsUrgencySyncTagProgress(t *testing.T) {
	out := ParseHints(map[string]dbus.Variant{
		"urgency":                         dbus.MakeVariant(byte(2)),
		"x-canonical-private-synchronous": dbus.MakeVariant("mytag"),
		"value":                           dbus.MakeVariant(int32(150)),
	})
	require.True(t, out.HasUrgency)
	assert.Equal(t, notif.UrgencyCritical, out.Urgency)
	assert.Equal(t, "mytag", out.SyncTag)
	assert.Equal(t, 100, out.Progress, "progress should clamp to 100")
}

func TestParseHintsProgressClampsNegative(t *testing.T) {
	out := ParseHints(map[string]dbus.Variant{"value": dbus.MakeVariant(int32(-5))})
	assert.Equal(t, 0, out.Progress)
}

func TestImagePathHintPlainPath(t *testing.T) {
	out := ParseHints(map[string]dbus.Variant{"image-path": dbus.MakeVariant("/tmp/icon.png")})
	assert.Equal(t, "/tmp/icon.png", out.ImagePath)
}

func TestImagePathHintFileURILocalhost(t *testing.T) {
	out := ParseHints(map[string]dbus.Variant{"image_path": dbus.MakeVariant("file:///tmp/icon.png")})
	assert.Equal(t, "/tmp/icon.png", out.ImagePath)
}

func TestImagePathHintFileURIRemoteHostRejected(t *testing.T) {
	out := ParseHints(map[string]dbus.Variant{"image-path": dbus.MakeVariant("file://otherhost/tmp/icon.png")})
	assert.Empty(t, out.ImagePath)
}

func TestImageDataHintDecodesOpaqueRGB(t *testing.T) {
	raw := rawImageHint{
		Width: 2, Height: 1, Rowstride: 6,
		HasAlpha: false, BitsPerSample: 8, Channels: 3,
		Data: []byte{
			10, 20, 30, // pixel 0: B=10 G=20 R=30
			40, 50, 60, // pixel 1
		},
	}
	out := ParseHints(map[string]dbus.Variant{"image-data": dbus.MakeVariant(raw)})
	require.NotNil(t, out.ImageData)
	assert.Equal(t, 2, out.ImageData.Width)
	assert.Equal(t, 1, out.ImageData.Height)
	assert.True(t, out.ImageData.IsCustom)
	// opaque (a=255): premultiplication is a no-op.
	assert.Equal(t, []byte{30, 20, 10, 255, 60, 50, 40, 255}, out.ImageData.Data)
}

func TestImageDataHintRejectsUnsupportedBitDepth(t *testing.T) {
	raw := rawImageHint{Width: 1, Height: 1, Rowstride: 4, BitsPerSample: 16, Channels: 4, Data: make([]byte, 4)}
	out := ParseHints(map[string]dbus.Variant{"icon_data": dbus.MakeVariant(raw)})
	assert.Nil(t, out.ImageData)
}

func TestAbgrToPremultipliedRGBAAppliesAlpha(t *testing.T) {
	raw := rawImageHint{
		Width: 1, Height: 1, Rowstride: 4, HasAlpha: true, BitsPerSample: 8, Channels: 4,
		Data: []byte{0, 0, 255, 128}, // B=0 G=0 R=255 A=128
	}
	got := abgrToPremultipliedRGBA(raw)
	want := []byte{premul(255, 128), premul(0, 128), premul(0, 128), 128}
	assert.Equal(t, want, got)
}
