// Package config loads the daemon's INI-style configuration (spec §6):
// sections main/low/normal/critical, main broadcasting to all three
// urgency sections unless a section overrides a key, unknown keys fatal.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/mvo5/goconfigparser"

	"github.com/jmylchreest/fnottd/internal/render"
)

// Anchor selects the screen corner/center notifications stack from.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
)

// StackingOrder mirrors manager.StackingOrder without importing it, keeping
// config a low dependency leaf package.
type StackingOrder string

const (
	StackingBottomUp StackingOrder = "bottom-up"
	StackingTopDown  StackingOrder = "top-down"
)

// Main holds the `main` section keys (spec §6), broadcast to all urgency
// sections before per-section overrides are applied.
type Main struct {
	Output                           string
	MinWidth                         int
	MaxWidth                         int
	MaxHeight                        int
	DPIAware                         bool
	IconTheme                        string
	MaxIconSize                      int
	StackingOrder                    StackingOrder
	Anchor                           Anchor
	EdgeMarginVertical                int
	EdgeMarginHorizontal              int
	NotificationMargin               int
	SelectionHelper                  string
	SelectionHelperUsesNullSeparator bool
	PlaySound                        bool
	ScalingFilter                    render.ScalingFilter
}

// Urgency holds one urgency section's keys (spec §6 "Per-urgency"),
// fully resolved after broadcast-then-override.
type Urgency struct {
	Layer             string
	Background        color.RGBA
	BorderColor       color.RGBA
	BorderRadius      int
	BorderSize        int
	PaddingVertical   int
	PaddingHorizontal int
	TitleFont         string
	SummaryFont       string
	BodyFont          string
	ActionFont        string
	TitleColor        color.RGBA
	SummaryColor      color.RGBA
	BodyColor         color.RGBA
	ActionColor       color.RGBA
	TitleFormat       string
	SummaryFormat     string
	BodyFormat        string
	ProgressColor     color.RGBA
	ProgressBarHeight int
	ProgressStyle     render.ProgressStyle
	MaxTimeout        int32
	DefaultTimeout    int32
	IdleTimeout       int32
	SoundFile         string
	Icon              string
}

// Config is the fully resolved daemon configuration (spec §6).
type Config struct {
	Main            Main
	Low             Urgency
	Normal          Urgency
	Critical        Urgency
}

// ByUrgency returns the section for urgency 0=low/1=normal/2=critical,
// matching notif.Urgency's iota ordering without importing notif.
func (c *Config) ByUrgency(urgency int) *Urgency {
	switch urgency {
	case 0:
		return &c.Low
	case 2:
		return &c.Critical
	default:
		return &c.Normal
	}
}

// knownMainKeys and knownUrgencyKeys gate "unknown keys are fatal" (spec §7
// Configuration error: "unknown key ... fail startup with diagnostic").
var knownMainKeys = map[string]bool{
	"output": true, "min-width": true, "max-width": true, "max-height": true,
	"dpi-aware": true, "icon-theme": true, "max-icon-size": true,
	"stacking-order": true, "anchor": true,
	"edge-margin-vertical": true, "edge-margin-horizontal": true,
	"notification-margin": true, "selection-helper": true,
	"selection-helper-uses-null-separator": true, "play-sound": true,
	"scaling-filter": true,
}

var knownUrgencyKeys = map[string]bool{
	"layer": true, "background": true, "border-color": true, "border-radius": true,
	"border-size": true, "padding-vertical": true, "padding-horizontal": true,
	"title-font": true, "summary-font": true, "body-font": true, "action-font": true,
	"title-color": true, "summary-color": true, "body-color": true, "action-color": true,
	"title-format": true, "summary-format": true, "body-format": true,
	"progress-color": true, "progress-bar-height": true, "progress-style": true,
	"max-timeout": true, "default-timeout": true, "idle-timeout": true,
	"sound-file": true, "icon": true,
}

// Default returns the built-in configuration used when no file is present
// or a key is left unset.
func Default() Config {
	var c Config
	c.Main = Main{
		MinWidth: 300, MaxWidth: 300, MaxHeight: 100,
		MaxIconSize: 64, StackingOrder: StackingBottomUp, Anchor: AnchorTopRight,
		EdgeMarginVertical: 10, EdgeMarginHorizontal: 10, NotificationMargin: 5,
		ScalingFilter: render.FilterBilinear,
	}
	u := Urgency{
		Layer: "top", Background: color.RGBA{0x22, 0x22, 0x22, 0xff},
		BorderColor: color.RGBA{0x55, 0x55, 0x55, 0xff}, BorderRadius: 5, BorderSize: 1,
		PaddingVertical: 8, PaddingHorizontal: 8,
		TitleColor: color.RGBA{0xff, 0xff, 0xff, 0xff}, SummaryColor: color.RGBA{0xff, 0xff, 0xff, 0xff},
		BodyColor: color.RGBA{0xcc, 0xcc, 0xcc, 0xff}, ActionColor: color.RGBA{0x88, 0x88, 0xff, 0xff},
		TitleFormat: "<i>%a%A</i>", SummaryFormat: "<b>%s</b>\\n", BodyFormat: "%b",
		ProgressColor: color.RGBA{0x55, 0xaa, 0xff, 0xff}, ProgressBarHeight: 4,
		MaxTimeout: 0, DefaultTimeout: 5000, IdleTimeout: 0,
	}
	c.Low, c.Normal, c.Critical = u, u, u
	c.Critical.DefaultTimeout = 0
	c.Critical.BorderColor = color.RGBA{0xff, 0x44, 0x44, 0xff}
	return c
}

// Path returns the default config file location, honoring XDG_CONFIG_HOME.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir + "/fnott/fnott.ini"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.config/fnott/fnott.ini"
}

// Load reads and validates the configuration at path (spec §6). A missing
// file yields Default() unchanged; any other read error, unknown key, or
// malformed value fails startup with a diagnostic (spec §7 "Configuration").
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	p := goconfigparser.New()
	if err := p.ReadFile(path); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	sections := sectionSet(p)

	if err := applyMain(&cfg, p); err != nil {
		return Config{}, err
	}
	for _, name := range []string{"main", "low", "normal", "critical"} {
		if !sections[name] {
			continue
		}
		keys, err := p.Options(name)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		for _, k := range keys {
			known := knownUrgencyKeys[k]
			if name == "main" {
				known = known || knownMainKeys[k]
			}
			if !known {
				return Config{}, fmt.Errorf("%s: section [%s]: unknown key %q", path, name, k)
			}
		}
	}

	// Broadcast main's urgency keys onto each urgency section's own
	// defaults, then apply that section's keys so an urgency section
	// always wins over main (spec §6: "Keys set in main broadcast to all
	// three urgency sections; keys set in an urgency section override").
	for _, section := range []struct {
		name string
		dst  *Urgency
	}{{"low", &cfg.Low}, {"normal", &cfg.Normal}, {"critical", &cfg.Critical}} {
		if err := applyUrgency(section.dst, p, "main"); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		if err := applyUrgency(section.dst, p, section.name); err != nil {
			return Config{}, fmt.Errorf("%s: section [%s]: %w", path, section.name, err)
		}
	}

	return cfg, nil
}

func applyMain(cfg *Config, p *goconfigparser.ConfigParser) error {
	get := func(key string) (string, bool) {
		v, err := p.Get("main", key)
		return v, err == nil && v != ""
	}
	if v, ok := get("output"); ok {
		cfg.Main.Output = v
	}
	if v, ok := get("min-width"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("min-width: %w", err)
		}
		cfg.Main.MinWidth = n
	}
	if v, ok := get("max-width"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("max-width: %w", err)
		}
		cfg.Main.MaxWidth = n
	}
	if v, ok := get("max-height"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("max-height: %w", err)
		}
		cfg.Main.MaxHeight = n
	}
	if v, ok := get("dpi-aware"); ok {
		cfg.Main.DPIAware = parseBool(v)
	}
	if v, ok := get("icon-theme"); ok {
		cfg.Main.IconTheme = v
	}
	if v, ok := get("max-icon-size"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("max-icon-size: %w", err)
		}
		cfg.Main.MaxIconSize = n
	}
	if v, ok := get("stacking-order"); ok {
		if v != string(StackingBottomUp) && v != string(StackingTopDown) {
			return fmt.Errorf("stacking-order: invalid value %q", v)
		}
		cfg.Main.StackingOrder = StackingOrder(v)
	}
	if v, ok := get("anchor"); ok {
		cfg.Main.Anchor = Anchor(v)
	}
	if v, ok := get("edge-margin-vertical"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("edge-margin-vertical: %w", err)
		}
		cfg.Main.EdgeMarginVertical = n
	}
	if v, ok := get("edge-margin-horizontal"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("edge-margin-horizontal: %w", err)
		}
		cfg.Main.EdgeMarginHorizontal = n
	}
	if v, ok := get("notification-margin"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("notification-margin: %w", err)
		}
		cfg.Main.NotificationMargin = n
	}
	if v, ok := get("selection-helper"); ok {
		cfg.Main.SelectionHelper = v
	}
	if v, ok := get("selection-helper-uses-null-separator"); ok {
		cfg.Main.SelectionHelperUsesNullSeparator = parseBool(v)
	}
	if v, ok := get("play-sound"); ok {
		cfg.Main.PlaySound = parseBool(v)
	}
	if v, ok := get("scaling-filter"); ok {
		cfg.Main.ScalingFilter = render.ParseScalingFilter(v)
	}
	return nil
}

// applyUrgency applies section's keys onto dst, used both for main's
// broadcast pass (section="main", applying any urgency keys set under
// main) and for low/normal/critical's own override pass.
func applyUrgency(dst *Urgency, p *goconfigparser.ConfigParser, section string) error {
	get := func(key string) (string, bool) {
		v, err := p.Get(section, key)
		return v, err == nil && v != ""
	}
	if v, ok := get("layer"); ok {
		dst.Layer = v
	}
	if v, ok := get("background"); ok {
		c, err := ParseHexColor(v)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		dst.Background = c
	}
	if v, ok := get("border-color"); ok {
		c, err := ParseHexColor(v)
		if err != nil {
			return fmt.Errorf("border-color: %w", err)
		}
		dst.BorderColor = c
	}
	if v, ok := get("border-radius"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("border-radius: %w", err)
		}
		dst.BorderRadius = n
	}
	if v, ok := get("border-size"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("border-size: %w", err)
		}
		dst.BorderSize = n
	}
	if v, ok := get("padding-vertical"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("padding-vertical: %w", err)
		}
		dst.PaddingVertical = n
	}
	if v, ok := get("padding-horizontal"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("padding-horizontal: %w", err)
		}
		dst.PaddingHorizontal = n
	}
	if v, ok := get("title-font"); ok {
		dst.TitleFont = v
	}
	if v, ok := get("summary-font"); ok {
		dst.SummaryFont = v
	}
	if v, ok := get("body-font"); ok {
		dst.BodyFont = v
	}
	if v, ok := get("action-font"); ok {
		dst.ActionFont = v
	}
	if v, ok := get("title-color"); ok {
		c, err := ParseHexColor(v)
		if err != nil {
			return fmt.Errorf("title-color: %w", err)
		}
		dst.TitleColor = c
	}
	if v, ok := get("summary-color"); ok {
		c, err := ParseHexColor(v)
		if err != nil {
			return fmt.Errorf("summary-color: %w", err)
		}
		dst.SummaryColor = c
	}
	if v, ok := get("body-color"); ok {
		c, err := ParseHexColor(v)
		if err != nil {
			return fmt.Errorf("body-color: %w", err)
		}
		dst.BodyColor = c
	}
	if v, ok := get("action-color"); ok {
		c, err := ParseHexColor(v)
		if err != nil {
			return fmt.Errorf("action-color: %w", err)
		}
		dst.ActionColor = c
	}
	if v, ok := get("title-format"); ok {
		dst.TitleFormat = v
	}
	if v, ok := get("summary-format"); ok {
		dst.SummaryFormat = v
	}
	if v, ok := get("body-format"); ok {
		dst.BodyFormat = v
	}
	if v, ok := get("progress-color"); ok {
		c, err := ParseHexColor(v)
		if err != nil {
			return fmt.Errorf("progress-color: %w", err)
		}
		dst.ProgressColor = c
	}
	if v, ok := get("progress-bar-height"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("progress-bar-height: %w", err)
		}
		dst.ProgressBarHeight = n
	}
	if v, ok := get("progress-style"); ok {
		switch v {
		case "bar":
			dst.ProgressStyle = render.ProgressStyleBar
		case "background":
			dst.ProgressStyle = render.ProgressStyleBackground
		default:
			return fmt.Errorf("progress-style: invalid value %q", v)
		}
	}
	if v, ok := get("max-timeout"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("max-timeout: %w", err)
		}
		dst.MaxTimeout = int32(n)
	}
	if v, ok := get("default-timeout"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("default-timeout: %w", err)
		}
		dst.DefaultTimeout = int32(n)
	}
	if v, ok := get("idle-timeout"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("idle-timeout: %w", err)
		}
		dst.IdleTimeout = int32(n)
	}
	if v, ok := get("sound-file"); ok {
		dst.SoundFile = v
	}
	if v, ok := get("icon"); ok {
		dst.Icon = v
	}
	return nil
}

func sectionSet(p *goconfigparser.ConfigParser) map[string]bool {
	out := make(map[string]bool)
	for _, s := range p.Sections() {
		out[s] = true
	}
	return out
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// ParseHexColor parses an RRGGBBAA hex string (spec §6: "Colors are
// RRGGBBAA hex; premultiplied alpha is computed by the loader") and returns
// a premultiplied color.RGBA.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want RRGGBBAA", s)
	}
	b, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r := byte(b >> 24)
	g := byte(b >> 16)
	bl := byte(b >> 8)
	a := byte(b)
	return color.RGBA{
		R: premultiply(r, a),
		G: premultiply(g, a),
		B: premultiply(bl, a),
		A: a,
	}, nil
}

func premultiply(c, a byte) byte {
	return byte((uint16(c) * uint16(a)) / 255)
}
