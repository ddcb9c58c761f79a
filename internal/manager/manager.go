// Package manager implements the NotificationManager (spec §4.1): identity
// resolution, urgency-ordered stacking, lookup, pause/unpause, bulk
// dismiss, and the refresh pass.
package manager

import (
	"log/slog"

	"github.com/jmylchreest/fnottd/internal/notif"
	"github.com/jmylchreest/fnottd/internal/schedule"
	"github.com/jmylchreest/fnottd/internal/selector"
)

// Result mirrors the control-socket reply codes from spec §6.
type Result int

const (
	ResultOK Result = iota
	ResultInvalidID
	ResultNoActions
	ResultError
)

// BusSignaler emits the bus signals the Manager triggers (spec §6 "Signals
// emitted").
type BusSignaler interface {
	EmitNotificationClosed(id uint32, reason notif.CloseReason)
	EmitActionInvoked(id uint32, actionKey string)
	EmitActivationToken(id uint32, token string)
}

// Renderer drives ImagePipeline + TextLayoutEngine + Compositor +
// FrameScheduler for one notification during a refresh pass (spec §2 data
// flow row). It returns the notification's total rendered height so the
// refresh pass can advance its y-cursor (spec §5 ordering guarantee).
type Renderer interface {
	RenderNotification(n *notif.Notification, y int) (height int)
}

// StackingOrder selects whether the stack grows from the top or bottom
// edge (spec §6 stacking-order key, GLOSSARY "Stack order").
type StackingOrder int

const (
	BottomUp StackingOrder = iota
	TopDown
)

// UrgencyConfig is the subset of per-urgency configuration the Manager
// consults directly (timeouts, selector command, default icon).
type UrgencyConfig struct {
	DefaultTimeoutMs int32
	MaxTimeoutMs     int32
	SelectionHelper  string
	NullSeparator    bool
	Icon             string
}

// DefaultIconLoader resolves a configured per-urgency icon name into
// rendered image data (spec §4.1 "re-selects default icon", mirroring
// original_source/notification/fnott/notification.c's notif_reload_default_icon).
type DefaultIconLoader interface {
	LoadDefaultIcon(icon string) (*notif.Image, bool)
}

// Config is the Manager's view of daemon configuration (spec §5: "The
// configuration is immutable after load").
type Config struct {
	StackingOrder      StackingOrder
	NotificationMargin int
	PerUrgency         [3]UrgencyConfig
}

// Manager owns the full ordered collection of Notifications (spec §3
// "NotificationManager owns..."). All mutation happens on one goroutine
// (Run); every exported method enqueues a closure and blocks for its
// result, which is the Go rendering of spec §5's single-threaded
// cooperative event loop without needing locks on Notification state.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	bus    BusSignaler
	render Renderer
	icons  DefaultIconLoader
	sched  *schedule.TimeoutScheduler
	frames *schedule.FrameScheduler
	sel    *selector.Selector

	inbox chan request

	notifications map[uint32]*notif.Notification
	order         []uint32 // index 0 = head of the stack
	syncIndex     map[string]uint32
	nextID        uint32
	paused        bool
	idle          [3]bool
}

type request struct {
	fn   func(*Manager)
	done chan struct{}
}

// New constructs a Manager, wiring its TimeoutScheduler's expire callback
// to m.ExpireID internally; the Selector's completion callback
// (m.handleSelectionResult, see actions.go) is passed on each Run call
// instead. bus and render may be nil and set later via
// SetBus / SetRenderer once Run is already draining the inbox.
func New(cfg Config, logger *slog.Logger, bus BusSignaler, render Renderer, sel *selector.Selector) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:           cfg,
		logger:        logger,
		bus:           bus,
		render:        render,
		frames:        schedule.NewFrameScheduler(),
		sel:           sel,
		inbox:         make(chan request),
		notifications: make(map[uint32]*notif.Notification),
		syncIndex:     make(map[string]uint32),
		nextID:        0,
	}
	m.sched = schedule.NewTimeoutScheduler(func(id uint32) { m.ExpireID(id) })
	return m
}

// Run is the Manager's single event-loop goroutine (spec §5). It must be
// started exactly once and stops when ctxDone closes.
func (m *Manager) Run(ctxDone <-chan struct{}) {
	for {
		select {
		case <-ctxDone:
			return
		case req := <-m.inbox:
			req.fn(m)
			close(req.done)
		}
	}
}

// do runs fn on the event-loop goroutine and blocks until it completes.
func (m *Manager) do(fn func(*Manager)) {
	done := make(chan struct{})
	m.inbox <- request{fn: fn, done: done}
	<-done
}

// CreateNotif implements spec §4.1's create_notif. When paused, identity
// resolution still runs (so a plausible id is always returned) but a
// brand-new notification is never enqueued into the visible stack (spec
// §4.1 "Pause semantics").
func (m *Manager) CreateNotif(replacesID uint32, syncTag string) *notif.Notification {
	var result *notif.Notification
	m.do(func(m *Manager) {
		result = m.createNotifLocked(replacesID, syncTag)
	})
	return result
}

func (m *Manager) createNotifLocked(replacesID uint32, syncTag string) *notif.Notification {
	if syncTag != "" {
		if id, ok := m.syncIndex[syncTag]; ok {
			return m.notifications[id]
		}
	}
	if replacesID != 0 {
		if n, ok := m.notifications[replacesID]; ok {
			return n
		}
	}

	m.nextID++
	id := m.nextID
	n := notif.New(id)
	n.SyncTag = syncTag
	m.notifications[id] = n
	if syncTag != "" {
		m.syncIndex[syncTag] = id
	}
	m.reloadDefaultIconLocked(n)

	if !m.paused {
		m.stackInsert(id, n.Urgency)
	}
	return n
}

// reloadDefaultIconLocked implements notif_reload_default_icon: a
// custom-image notification (one set from a Notify image hint) is left
// alone; otherwise the per-urgency configured icon is (re)resolved, or the
// image is cleared if no icon is configured or it fails to resolve.
func (m *Manager) reloadDefaultIconLocked(n *notif.Notification) {
	if n.Image != nil && n.Image.IsCustom {
		return
	}
	if m.icons == nil {
		return
	}
	icon := m.cfg.PerUrgency[n.Urgency].Icon
	if icon == "" {
		n.Image = nil
		return
	}
	img, ok := m.icons.LoadDefaultIcon(icon)
	if !ok {
		n.Image = nil
		return
	}
	n.Image = img
}

// SetApplication sets the application name (no decoding per spec §3).
func (m *Manager) SetApplication(id uint32, app string) {
	m.do(func(m *Manager) {
		if n, ok := m.notifications[id]; ok {
			n.App = app
		}
	})
}

// SetSummary decodes HTML entities before storing (spec §4.1).
func (m *Manager) SetSummary(id uint32, summary string) {
	m.do(func(m *Manager) {
		if n, ok := m.notifications[id]; ok {
			n.Summary = notif.DecodeHTMLEntities(summary)
		}
	})
}

// SetBody decodes HTML entities before storing (spec §4.1).
func (m *Manager) SetBody(id uint32, body string) {
	m.do(func(m *Manager) {
		if n, ok := m.notifications[id]; ok {
			n.Body = notif.DecodeHTMLEntities(body)
		}
	})
}

// SetUrgency re-stacks, re-arms the timer, and re-selects the default icon
// (spec §4.1: "re-stacks, re-selects fonts, re-selects default icon,
// re-arms timer"). Font reselection is left to the Renderer, which reads
// n.Urgency fresh every refresh.
func (m *Manager) SetUrgency(id uint32, urgency notif.Urgency) {
	m.do(func(m *Manager) {
		n, ok := m.notifications[id]
		if !ok {
			return
		}
		if n.Urgency == urgency {
			return
		}
		n.Urgency = urgency
		m.rearmTimerLocked(n)
		m.reloadDefaultIconLocked(n)
		if !m.paused {
			m.stackRemove(id)
			m.stackInsert(id, urgency)
		}
	})
}

// SetProgress clamps per spec §8/§9: -1 passes through, other negatives
// clamp to 0, values over 100 clamp to 100.
func (m *Manager) SetProgress(id uint32, progress int) {
	m.do(func(m *Manager) {
		if n, ok := m.notifications[id]; ok {
			n.Progress = clampProgress(progress)
		}
	})
}

func clampProgress(p int) int {
	if p == -1 {
		return -1
	}
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// SetImage stores a pre-rescaled image buffer (rescaling is ImagePipeline's
// job, invoked by the Renderer during refresh).
func (m *Manager) SetImage(id uint32, img *notif.Image) {
	m.do(func(m *Manager) {
		if n, ok := m.notifications[id]; ok {
			n.Image = img
		}
	})
}

// SetTimeout stores the requested timeout and re-arms the timer.
func (m *Manager) SetTimeout(id uint32, timeoutMs int32) {
	m.do(func(m *Manager) {
		n, ok := m.notifications[id]
		if !ok {
			return
		}
		n.TimeoutMs = timeoutMs
		m.rearmTimerLocked(n)
	})
}

// SetActions replaces the ordered action list, decoding each label's
// entity-decoded form (spec §3: "label retained in both byte-string and
// decoded-text forms").
func (m *Manager) SetActions(id uint32, actions []notif.Action) {
	m.do(func(m *Manager) {
		n, ok := m.notifications[id]
		if !ok {
			return
		}
		for i := range actions {
			actions[i].DecodedLabel = notif.DecodeHTMLEntities(actions[i].Label)
		}
		n.Actions = actions
	})
}

func (m *Manager) rearmTimerLocked(n *notif.Notification) {
	uc := m.cfg.PerUrgency[n.Urgency]
	m.sched.Reload(n.ID, schedule.TimeoutConfig{
		TimeoutMs:        n.TimeoutMs,
		DefaultTimeoutMs: uc.DefaultTimeoutMs,
		MaxTimeoutMs:     uc.MaxTimeoutMs,
		Idle:             m.idle[n.Urgency],
	})
}

// SetIdle implements the idle-pause interaction from spec §4.4 step 3 and
// the end-to-end scenario 4 ("Idle pause"): disarms timers for the given
// urgency while idle, and reloads them with the remaining configured
// duration once idle ends. Because TimeoutScheduler always recomputes
// effective_ms from TimeoutMs, "remaining configured duration" here means
// the same effective duration is simply re-derived, not tracked as wall
// clock remaining — matching fnott's own non-persistent timer reload.
func (m *Manager) SetIdle(urgency notif.Urgency, idle bool) {
	m.do(func(m *Manager) {
		m.idle[urgency] = idle
		for _, id := range m.order {
			n := m.notifications[id]
			if n.Urgency == urgency {
				m.rearmTimerLocked(n)
			}
		}
	})
}

// Frames returns the Manager's FrameScheduler, so an external Renderer can
// submit commits against the same per-notification in-flight state this
// Manager releases on destroy (spec §4.3).
func (m *Manager) Frames() *schedule.FrameScheduler {
	return m.frames
}

// SetBus late-binds the bus signaler, for callers that must start the bus
// connection (which Renderer/Signaler construction may depend on) after
// the Manager itself already exists.
func (m *Manager) SetBus(bus BusSignaler) {
	m.do(func(m *Manager) { m.bus = bus })
}

// SetRenderer late-binds the renderer, for the same construction-order
// reason as SetBus: a Renderer built around m.Frames() can only exist
// after New has already returned.
func (m *Manager) SetRenderer(render Renderer) {
	m.do(func(m *Manager) { m.render = render })
}

// SetIcons late-binds the default-icon resolver. May be left nil, in which
// case reloadDefaultIconLocked is a no-op and per-urgency icon/image
// default-icon resolution is skipped entirely (spec §1 places the
// icon-theme lookup backing it out of core scope).
func (m *Manager) SetIcons(icons DefaultIconLoader) {
	m.do(func(m *Manager) { m.icons = icons })
}

// UpdateConfig swaps in newly reloaded configuration (spec §5: "The
// configuration is immutable after load" describes one load, not a
// forbidding of reload entirely; a reload simply replaces the immutable
// snapshot every notification already reads through m.cfg).
func (m *Manager) UpdateConfig(cfg Config) {
	m.do(func(m *Manager) { m.cfg = cfg })
}

// Get returns the notification for id, or nil.
func (m *Manager) Get(id uint32) *notif.Notification {
	var n *notif.Notification
	m.do(func(m *Manager) { n = m.notifications[id] })
	return n
}

// Snapshot returns notifications in current stack order, for List (spec
// §6 control socket).
func (m *Manager) Snapshot() []*notif.Notification {
	var out []*notif.Notification
	m.do(func(m *Manager) {
		out = make([]*notif.Notification, 0, len(m.order))
		for _, id := range m.order {
			out = append(out, m.notifications[id])
		}
	})
	return out
}

// IsPaused reports the pause flag (spec §4.1 pause()/unpause()/is_paused()).
func (m *Manager) IsPaused() bool {
	var p bool
	m.do(func(m *Manager) { p = m.paused })
	return p
}

// Pause sets the paused flag (spec §4.1).
func (m *Manager) Pause() {
	m.do(func(m *Manager) { m.paused = true })
}

// Unpause clears the paused flag. Notifications created while paused were
// never enqueued, so unpausing does not retroactively display them —
// matching "create_notif MUST fail gracefully (no surface, no signal)".
func (m *Manager) Unpause() {
	m.do(func(m *Manager) { m.paused = false })
}

// destroyLocked removes n from all collections, releases its resources,
// and emits the appropriate bus signal (spec §3 "Lifecycle").
func (m *Manager) destroyLocked(n *notif.Notification, reason notif.CloseReason) {
	m.stackRemove(n.ID)
	delete(m.notifications, n.ID)
	if n.SyncTag != "" {
		delete(m.syncIndex, n.SyncTag)
	}
	m.sched.Cancel(n.ID)
	m.frames.Release(n.ID)
	if n.RunCache != nil {
		n.RunCache.Clear()
	}
	n.SurfaceState = notif.Unattached
	if m.bus != nil {
		m.bus.EmitNotificationClosed(n.ID, reason)
	}
}

// resolveID maps the control/bus id==0 convention ("targets the head of
// the list") onto a concrete id.
func (m *Manager) resolveID(id uint32) uint32 {
	if id != 0 {
		return id
	}
	if len(m.order) == 0 {
		return 0
	}
	return m.order[0]
}

// DismissID implements spec §4.1 dismiss_id / §4.3's Deferred→Delayed edge.
func (m *Manager) DismissID(id uint32) Result {
	var res Result
	m.do(func(m *Manager) { res = m.dismissOrExpireLocked(id, false) })
	return res
}

// ExpireID implements spec §4.1 expire_id.
func (m *Manager) ExpireID(id uint32) Result {
	var res Result
	m.do(func(m *Manager) { res = m.dismissOrExpireLocked(id, true) })
	return res
}

func (m *Manager) dismissOrExpireLocked(id uint32, expire bool) Result {
	id = m.resolveID(id)
	n, ok := m.notifications[id]
	if !ok {
		return ResultInvalidID
	}
	if expire {
		if n.DeferredExpiry == notif.Deferred {
			n.DeferredExpiry = notif.Delayed
			return ResultOK
		}
		m.destroyLocked(n, notif.ReasonExpired)
		return ResultOK
	}
	if n.DeferredDismissal == notif.Deferred {
		n.DeferredDismissal = notif.Delayed
		return ResultOK
	}
	m.destroyLocked(n, notif.ReasonDismissed)
	return ResultOK
}

// DismissAll implements spec §4.1 dismiss_all / end-to-end scenario 5: a
// notification with an outstanding selector is marked Delayed instead of
// destroyed immediately.
func (m *Manager) DismissAll() {
	m.do(func(m *Manager) {
		ids := append([]uint32(nil), m.order...)
		for _, id := range ids {
			n, ok := m.notifications[id]
			if !ok {
				continue
			}
			if n.DeferredDismissal == notif.Deferred {
				n.DeferredDismissal = notif.Delayed
				continue
			}
			m.destroyLocked(n, notif.ReasonDismissed)
		}
	})
}

// CloseByRequest implements CloseNotification (spec §6): always reason
// "closed (method-initiated)".
func (m *Manager) CloseByRequest(id uint32) Result {
	var res Result
	m.do(func(m *Manager) {
		n, ok := m.notifications[id]
		if !ok {
			res = ResultInvalidID
			return
		}
		if n.DeferredDismissal == notif.Deferred {
			n.DeferredDismissal = notif.Delayed
			res = ResultOK
			return
		}
		m.destroyLocked(n, notif.ReasonClosed)
		res = ResultOK
	})
	return res
}
