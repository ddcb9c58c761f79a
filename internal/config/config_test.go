package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/fnottd/internal/render"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/fnott.ini")
	require.NoError(t, err)
	assert.Equal(t, Default().Main.MaxWidth, cfg.Main.MaxWidth)
}

func TestLoadBroadcastsMainIntoUrgencySections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	content := "[main]\nmax-width = 400\nbackground = #112233FF\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Main.MaxWidth)
	assert.Equal(t, cfg.Low.Background, cfg.Normal.Background)
	assert.Equal(t, cfg.Low.Background, cfg.Critical.Background)
}

func TestLoadUrgencySectionOverridesMain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	content := "[main]\nborder-radius = 5\n\n[critical]\nborder-radius = 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Low.BorderRadius)
	assert.Equal(t, 5, cfg.Normal.BorderRadius)
	assert.Equal(t, 0, cfg.Critical.BorderRadius)
}

func TestLoadUnknownKeyIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	content := "[main]\nnot-a-real-key = yes\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadUnknownKeyInUrgencySectionIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	content := "[critical]\nbogus = 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadStackingOrderEnum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	content := "[main]\nstacking-order = top-down\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StackingTopDown, cfg.Main.StackingOrder)

	content = "[main]\nstacking-order = sideways\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestParseHexColorPremultipliesAlpha(t *testing.T) {
	c, err := ParseHexColor("FF000080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)
	assert.Less(t, c.R, uint8(0xff))
}

func TestParseHexColorRejectsWrongLength(t *testing.T) {
	_, err := ParseHexColor("FF0000")
	assert.Error(t, err)
}

func TestByUrgencySelectsSection(t *testing.T) {
	cfg := Default()
	cfg.Critical.DefaultTimeout = 0
	assert.Equal(t, &cfg.Low, cfg.ByUrgency(0))
	assert.Equal(t, &cfg.Normal, cfg.ByUrgency(1))
	assert.Equal(t, &cfg.Critical, cfg.ByUrgency(2))
}

func TestScalingFilterDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, render.FilterBilinear, cfg.Main.ScalingFilter)
}
