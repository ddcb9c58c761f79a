package notif

import "github.com/jmylchreest/fnottd/internal/layout"

// Action is one (id, label) pair; Label is the raw byte-string form,
// DecodedLabel the HTML-entity-decoded form (spec §3: "label retained in
// both byte-string and decoded-text forms").
type Action struct {
	ID           string
	Label        string
	DecodedLabel string
}

// Image is the post-rescale raster attached to a notification (spec §3).
type Image struct {
	Width, Height int
	Data          []byte // RGBA, premultiplied
	IsCustom      bool   // false = resolved default icon
}

// SurfaceHandles holds the opaque compositor surface references a
// Notification carries while attached (spec §3 surface_state). The
// concrete type is supplied by the out-of-scope compositor client; the
// Manager only needs to know whether one is present.
type SurfaceHandles struct {
	Surface any
}

// Notification is the per-notification state owned exclusively by the
// Manager (spec §3). Each field here is named to match spec §3 directly.
type Notification struct {
	ID       uint32
	SyncTag  string
	App      string
	Summary  string
	Body     string
	Urgency  Urgency
	Progress int // -1 = no progress, else 0..100
	TimeoutMs int32
	Actions  []Action

	Image *Image

	DeferredDismissal DeferredState
	DeferredExpiry    DeferredState

	SurfaceState SurfaceState
	Surface      SurfaceHandles

	RunCache *layout.RunCache
}

// New creates a fresh Notification with defaults matching spec §3/§4.1:
// urgency defaults to Normal, progress to "disabled", timeout to "server
// default".
func New(id uint32) *Notification {
	return &Notification{
		ID:        id,
		Urgency:   UrgencyNormal,
		Progress:  -1,
		TimeoutMs: -1,
		RunCache:  layout.NewRunCache(),
	}
}

// HasActions reports whether %A should expand to "*" (spec §4.2).
func (n *Notification) HasActions() bool { return len(n.Actions) > 0 }
