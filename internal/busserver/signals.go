package busserver

import (
	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/fnottd/internal/notif"
)

// Signaler implements manager.BusSignaler against a live connection,
// emitting the three signals spec §6 lists under "Signals emitted". It is
// built separately from Server because the Manager only needs to emit, not
// dispatch incoming method calls. It reads srv.conn lazily on every emit
// rather than snapshotting it, since callers construct a Signaler before
// Server.Start has dialed the bus.
type Signaler struct {
	srv *Server
}

func NewSignaler(s *Server) *Signaler {
	return &Signaler{srv: s}
}

func (s *Signaler) EmitNotificationClosed(id uint32, reason notif.CloseReason) {
	s.emit("NotificationClosed", id, uint32(reason))
}

func (s *Signaler) EmitActionInvoked(id uint32, actionKey string) {
	s.emit("ActionInvoked", id, actionKey)
}

func (s *Signaler) EmitActivationToken(id uint32, token string) {
	if token == "" {
		return
	}
	s.emit("ActivationToken", id, token)
}

func (s *Signaler) emit(name string, args ...interface{}) {
	if s.srv.conn == nil {
		return
	}
	_ = s.srv.conn.Emit(dbus.ObjectPath(ObjectPath), InterfaceName+"."+name, args...)
}
