package manager

import (
	"github.com/jmylchreest/fnottd/internal/notif"
	"github.com/jmylchreest/fnottd/internal/selector"
)

// RequestActionSelection implements spec §4.5: sets both deferred flags to
// Deferred, then hands off to the ActionSelector. id 0 targets the head of
// the stack. Returns ResultNoActions if the notification has none,
// ResultInvalidID if it doesn't exist.
func (m *Manager) RequestActionSelection(id uint32) Result {
	var res Result
	m.do(func(m *Manager) {
		id = m.resolveID(id)
		n, ok := m.notifications[id]
		if !ok {
			res = ResultInvalidID
			return
		}
		if len(n.Actions) == 0 {
			res = ResultNoActions
			return
		}

		n.DeferredDismissal = notif.Deferred
		n.DeferredExpiry = notif.Deferred

		uc := m.cfg.PerUrgency[n.Urgency]
		actions := make([]selector.Action, len(n.Actions))
		for i, a := range n.Actions {
			actions[i] = selector.Action{ID: a.ID, Label: a.Label}
		}
		req := selector.Request{
			NotificationID: n.ID,
			Actions:        actions,
			Cmdline:        uc.SelectionHelper,
			NullSeparator:  uc.NullSeparator,
		}
		m.sel.Run(req, m.handleSelectionResult)
		res = ResultOK
	})
	return res
}

// handleSelectionResult implements spec §4.5 step 7: invoke ActionInvoked
// if chosen, then honor whichever deferred flag is Delayed, resetting both
// to Immediate. The lookup is by saved id (res.NotificationID), never a
// pointer, so a notification destroyed by a concurrent path is handled by
// simply finding nothing (spec §4.5: "chosen is still used only for
// logging").
func (m *Manager) handleSelectionResult(res selector.Result) {
	m.do(func(m *Manager) {
		n, ok := m.notifications[res.NotificationID]
		if !ok {
			m.logger.Debug("action selector completed for a destroyed notification",
				"id", res.NotificationID, "chosen_ok", res.OK, "chosen_id", res.ChosenID)
			return
		}

		if res.OK && m.bus != nil {
			m.bus.EmitActionInvoked(n.ID, res.ChosenID)
		}

		switch {
		case n.DeferredExpiry == notif.Delayed:
			n.DeferredExpiry = notif.Immediate
			n.DeferredDismissal = notif.Immediate
			m.destroyLocked(n, notif.ReasonExpired)
		case n.DeferredDismissal == notif.Delayed:
			n.DeferredDismissal = notif.Immediate
			n.DeferredExpiry = notif.Immediate
			m.destroyLocked(n, notif.ReasonDismissed)
		default:
			n.DeferredDismissal = notif.Immediate
			n.DeferredExpiry = notif.Immediate
		}
	})
}

// DismissWithDefaultAction implements the control socket's
// DismissWithDefaultActionById (spec §6): invokes the first configured
// action directly, without spawning the external selector, then dismisses.
func (m *Manager) DismissWithDefaultAction(id uint32) Result {
	var res Result
	m.do(func(m *Manager) {
		id = m.resolveID(id)
		n, ok := m.notifications[id]
		if !ok {
			res = ResultInvalidID
			return
		}
		if len(n.Actions) == 0 {
			res = ResultNoActions
			return
		}
		if m.bus != nil {
			m.bus.EmitActionInvoked(n.ID, n.Actions[0].ID)
		}
		if n.DeferredDismissal == notif.Deferred {
			n.DeferredDismissal = notif.Delayed
			res = ResultOK
			return
		}
		m.destroyLocked(n, notif.ReasonDismissed)
		res = ResultOK
	})
	return res
}

// ActionsByID reports whether id exists and has actions (ResultOK),
// ResultNoActions if it exists but has none, or ResultInvalidID.
func (m *Manager) ActionsByID(id uint32) Result {
	var res Result
	m.do(func(m *Manager) {
		n, ok := m.notifications[id]
		if !ok {
			res = ResultInvalidID
			return
		}
		if len(n.Actions) == 0 {
			res = ResultNoActions
			return
		}
		res = ResultOK
	})
	return res
}
