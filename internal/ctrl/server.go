package ctrl

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/jmylchreest/fnottd/internal/manager"
)

// SocketPath resolves the control socket location (spec §6): prefers
// `$XDG_RUNTIME_DIR/fnott-$WAYLAND_DISPLAY.sock`, falls back to
// `$XDG_RUNTIME_DIR/fnott.sock`, then `/tmp/fnott.sock`.
func SocketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir != "" {
		if wd := os.Getenv("WAYLAND_DISPLAY"); wd != "" {
			return fmt.Sprintf("%s/fnott-%s.sock", runtimeDir, wd)
		}
		return runtimeDir + "/fnott.sock"
	}
	return "/tmp/fnott.sock"
}

// Server accepts control connections and dispatches one request/reply pair
// per connection (spec §6 control socket), following the teacher's
// single-dispatch-goroutine shape from the bus server.
type Server struct {
	mgr    *manager.Manager
	logger *slog.Logger
	ln     net.Listener
	quit   chan struct{}
}

func NewServer(mgr *manager.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{mgr: mgr, logger: logger, quit: make(chan struct{})}
}

// Listen binds the unix socket at path (or SocketPath() if empty), removing
// a stale socket file left behind by an unclean shutdown first.
func (s *Server) Listen(path string) error {
	if path == "" {
		path = SocketPath()
	}
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", path, err)
	}
	s.ln = ln
	return nil
}

// Serve accepts connections until Close is called or the quit signal (Quit
// command) fires; quitFn is invoked once when CmdQuit is received.
func (s *Server) Serve(quitFn func()) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("control socket accept failed", "error", err)
			continue
		}
		go s.handle(conn, quitFn)
	}
}

func (s *Server) Close() {
	close(s.quit)
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

func (s *Server) handle(conn net.Conn, quitFn func()) {
	defer conn.Close()

	req, err := ReadRequest(conn)
	if err != nil {
		s.logger.Debug("control request read failed", "error", err)
		return
	}

	switch req.Cmd {
	case CmdQuit:
		_ = WriteReply(conn, ResultOK)
		if quitFn != nil {
			quitFn()
		}
	case CmdList:
		s.handleList(conn)
	case CmdPause:
		s.mgr.Pause()
		_ = WriteReply(conn, ResultOK)
	case CmdUnpause:
		s.mgr.Unpause()
		_ = WriteReply(conn, ResultOK)
	case CmdDismissByID:
		_ = WriteReply(conn, fromManagerResult(s.mgr.DismissID(req.ID)))
	case CmdDismissAll:
		s.mgr.DismissAll()
		_ = WriteReply(conn, ResultOK)
	case CmdActionsByID:
		_ = WriteReply(conn, fromManagerResult(s.mgr.RequestActionSelection(req.ID)))
	case CmdDismissWithDefaultActionByID:
		_ = WriteReply(conn, fromManagerResult(s.mgr.DismissWithDefaultAction(req.ID)))
	default:
		_ = WriteReply(conn, ResultError)
	}
}

func (s *Server) handleList(conn net.Conn) {
	snap := s.mgr.Snapshot()
	if err := WriteReply(conn, ResultOK); err != nil {
		return
	}
	entries := make([]ListEntry, len(snap))
	for i, n := range snap {
		entries[i] = ListEntry{ID: n.ID, Summary: n.Summary}
	}
	if err := WriteListReply(conn, entries); err != nil {
		s.logger.Warn("control list write failed", "error", err)
	}
}

func fromManagerResult(r manager.Result) Result {
	switch r {
	case manager.ResultOK:
		return ResultOK
	case manager.ResultInvalidID:
		return ResultInvalidID
	case manager.ResultNoActions:
		return ResultNoActions
	default:
		return ResultError
	}
}
