package manager

import "github.com/jmylchreest/fnottd/internal/notif"

// stackInsert implements spec §4.1's urgency ranking: "scan from tail-to-
// head and place the notification immediately after the first entry whose
// urgency is ≥ its own; if none, prepend at head."
func (m *Manager) stackInsert(id uint32, urgency notif.Urgency) {
	for i := len(m.order) - 1; i >= 0; i-- {
		if m.notifications[m.order[i]].Urgency >= urgency {
			m.order = append(m.order, 0)
			copy(m.order[i+2:], m.order[i+1:])
			m.order[i+1] = id
			return
		}
	}
	m.order = append([]uint32{id}, m.order...)
}

// stackRemove deletes id from the order slice, if present.
func (m *Manager) stackRemove(id uint32) {
	for i, cur := range m.order {
		if cur == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
