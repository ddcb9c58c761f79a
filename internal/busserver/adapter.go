package busserver

import (
	"log/slog"

	"github.com/jmylchreest/fnottd/internal/iconindex"
	"github.com/jmylchreest/fnottd/internal/manager"
	"github.com/jmylchreest/fnottd/internal/notif"
	"github.com/jmylchreest/fnottd/internal/render"
)

// NotifManager is the subset of *manager.Manager the adapter drives.
type NotifManager interface {
	CreateNotif(replacesID uint32, syncTag string) *notif.Notification
	SetApplication(id uint32, app string)
	SetSummary(id uint32, summary string)
	SetBody(id uint32, body string)
	SetUrgency(id uint32, urgency notif.Urgency)
	SetProgress(id uint32, progress int)
	SetImage(id uint32, img *notif.Image)
	SetTimeout(id uint32, timeoutMs int32)
	SetActions(id uint32, actions []notif.Action)
	CloseByRequest(id uint32) manager.Result
}

// Adapter turns a parsed Request into the sequence of Manager calls spec
// §4.1/§6 imply for Notify, following the teacher's thin-adapter pattern
// (internal/daemon/notifier.go) rather than letting Server itself know
// about notification semantics.
type Adapter struct {
	mgr    NotifManager
	icons  *iconindex.Index
	images *render.ImagePipeline
	logger *slog.Logger
}

// NewAdapter builds an Adapter. icons and images may be nil, in which case
// image-path and app_icon hints are left unresolved (spec §1 places the
// icon-theme lookup itself out of core scope; when supplied, the adapter
// still exercises it to fill in the default icon).
func NewAdapter(mgr NotifManager, icons *iconindex.Index, images *render.ImagePipeline, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{mgr: mgr, icons: icons, images: images, logger: logger}
}

// HandleNotify implements NotifyHandler.
func (a *Adapter) HandleNotify(req Request) uint32 {
	hints := ParseHints(req.Hints)

	n := a.mgr.CreateNotif(req.ReplacesID, hints.SyncTag)
	a.mgr.SetApplication(n.ID, req.AppName)
	a.mgr.SetSummary(n.ID, req.Summary)
	a.mgr.SetBody(n.ID, req.Body)

	if hints.HasUrgency {
		a.mgr.SetUrgency(n.ID, hints.Urgency)
	}
	if hints.Progress != -1 {
		a.mgr.SetProgress(n.ID, hints.Progress)
	}
	switch {
	case hints.ImageData != nil:
		a.mgr.SetImage(n.ID, hints.ImageData)
	case hints.ImagePath != "":
		if img := a.loadImage(n.ID, render.ImageSource{Path: hints.ImagePath}, true); img != nil {
			a.mgr.SetImage(n.ID, img)
		}
	case req.AppIcon != "":
		if path, ok := a.resolveIcon(req.AppIcon); ok {
			if img := a.loadImage(n.ID, render.ImageSource{Path: path}, false); img != nil {
				a.mgr.SetImage(n.ID, img)
			}
		}
	}

	a.mgr.SetTimeout(n.ID, req.ExpireTimeout)
	a.mgr.SetActions(n.ID, decodeActions(req.Actions))

	return n.ID
}

// resolveIcon looks app_icon up against the icon-theme index (spec §6
// app_icon parameter), accepting it as-is when it already names an
// absolute file path.
func (a *Adapter) resolveIcon(appIcon string) (string, bool) {
	if a.icons == nil {
		return "", false
	}
	return a.icons.Resolve(appIcon)
}

// loadImage decodes src through the image pipeline and flattens it into a
// tightly packed notif.Image, logging and returning nil on any failure so a
// bad icon/image hint never fails the whole Notify call (spec §7 scopes
// hint-level errors out of the Notify error row).
func (a *Adapter) loadImage(id uint32, src render.ImageSource, isCustom bool) *notif.Image {
	if a.images == nil {
		return nil
	}
	img, err := a.images.Load(src)
	if err != nil {
		a.logger.Debug("failed to load notification image", "id", id, "error", err)
		return nil
	}
	img = a.images.Rescale(img)
	w, h, data := render.Flatten(img)
	return &notif.Image{Width: w, Height: h, Data: data, IsCustom: isCustom}
}

// HandleClose implements CloseHandler.
func (a *Adapter) HandleClose(id uint32) error {
	a.mgr.CloseByRequest(id)
	return nil
}

// decodeActions turns the flat [id0, label0, id1, label1, ...] wire array
// (spec §6 Notify's actions parameter) into Action pairs, ignoring a
// trailing unpaired id (spec is silent; fnott's own parser does the same).
func decodeActions(flat []string) []notif.Action {
	out := make([]notif.Action, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out = append(out, notif.Action{ID: flat[i], Label: flat[i+1]})
	}
	return out
}
