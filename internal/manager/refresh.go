package manager

// Refresh implements spec §4.1 refresh(): a layout/commit pass for every
// live Notification, positioned per stacking_order, each layout computed
// against a y-cursor updated after the previous one settles its height
// (spec §5 ordering guarantee).
func (m *Manager) Refresh() {
	m.do(func(m *Manager) { m.refreshLocked() })
}

func (m *Manager) refreshLocked() {
	if m.render == nil {
		return
	}
	y := 0
	ids := m.order
	if m.cfg.StackingOrder == TopDown {
		// order[0] is the head (highest urgency); TopDown visits head
		// first from the top edge, BottomUp visits it last from the
		// bottom edge. Both walk the same slice; only the visually
		// "first" position differs, which is the Renderer/surface
		// client's concern (anchor + y sign), not the Manager's.
		for i := 0; i < len(ids); i++ {
			n := m.notifications[ids[i]]
			h := m.render.RenderNotification(n, y)
			y += h + m.cfg.NotificationMargin
		}
		return
	}
	for i := len(ids) - 1; i >= 0; i-- {
		n := m.notifications[ids[i]]
		h := m.render.RenderNotification(n, y)
		y += h + m.cfg.NotificationMargin
	}
}
