package main

import (
	"log/slog"

	"github.com/jmylchreest/fnottd/internal/iconindex"
	"github.com/jmylchreest/fnottd/internal/notif"
	"github.com/jmylchreest/fnottd/internal/render"
)

// defaultIconLoader implements manager.DefaultIconLoader by resolving an
// icon name against the icon-theme index, then decoding and rescaling it
// through the same ImagePipeline the Notify path uses (busserver.Adapter's
// loadImage), matching original_source's notif_reload_default_icon calling
// icon_load with the configured icon theme.
type defaultIconLoader struct {
	icons  *iconindex.Index
	images *render.ImagePipeline
	logger *slog.Logger
}

func newDefaultIconLoader(icons *iconindex.Index, images *render.ImagePipeline, logger *slog.Logger) *defaultIconLoader {
	return &defaultIconLoader{icons: icons, images: images, logger: logger}
}

// LoadDefaultIcon resolves icon through the theme index and decodes it.
func (l *defaultIconLoader) LoadDefaultIcon(icon string) (*notif.Image, bool) {
	if l.icons == nil || l.images == nil {
		return nil, false
	}
	path, ok := l.icons.Resolve(icon)
	if !ok {
		l.logger.Debug("default icon not found", "icon", icon)
		return nil, false
	}
	img, err := l.images.Load(render.ImageSource{Path: path})
	if err != nil {
		l.logger.Warn("failed to load default icon", "icon", icon, "path", path, "error", err)
		return nil, false
	}
	img = l.images.Rescale(img)
	w, h, data := render.Flatten(img)
	return &notif.Image{Width: w, Height: h, Data: data, IsCustom: false}, true
}
