package ctrl

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/fnottd/internal/manager"
	"github.com/jmylchreest/fnottd/internal/selector"
)

func newTestServer(t *testing.T) (*Server, *manager.Manager, string) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	mgr := manager.New(manager.Config{}, nil, nil, nil, selector.New(nil))
	go mgr.Run(done)

	srv := NewServer(mgr, nil)
	path := filepath.Join(t.TempDir(), "fnott.sock")
	require.NoError(t, srv.Listen(path))
	go srv.Serve(func() {})
	t.Cleanup(srv.Close)

	return srv, mgr, path
}

func TestClientPauseUnpauseRoundTrip(t *testing.T) {
	_, mgr, path := newTestServer(t)
	c := NewClient(path)

	result, _, err := c.Do(Request{Cmd: CmdPause})
	require.NoError(t, err)
	assert.Equal(t, ResultOK, result)
	assert.True(t, mgr.IsPaused())

	result, _, err = c.Do(Request{Cmd: CmdUnpause})
	require.NoError(t, err)
	assert.Equal(t, ResultOK, result)
	assert.False(t, mgr.IsPaused())
}

func TestClientDismissByIDReturnsInvalidID(t *testing.T) {
	_, _, path := newTestServer(t)
	c := NewClient(path)

	result, _, err := c.Do(Request{Cmd: CmdDismissByID, ID: 999})
	require.NoError(t, err)
	assert.Equal(t, ResultInvalidID, result)
}

func TestClientListReturnsEmptySnapshot(t *testing.T) {
	_, _, path := newTestServer(t)
	c := NewClient(path)

	result, entries, err := c.Do(Request{Cmd: CmdList})
	require.NoError(t, err)
	assert.Equal(t, ResultOK, result)
	assert.Empty(t, entries)
}

func TestClientQuitInvokesCallback(t *testing.T) {
	mgr := manager.New(manager.Config{}, nil, nil, nil, selector.New(nil))
	done := make(chan struct{})
	defer close(done)
	go mgr.Run(done)

	srv := NewServer(mgr, nil)
	path := filepath.Join(t.TempDir(), "fnott.sock")
	require.NoError(t, srv.Listen(path))

	quit := make(chan struct{})
	go srv.Serve(func() { close(quit) })
	defer srv.Close()

	c := NewClient(path)
	result, _, err := c.Do(Request{Cmd: CmdQuit})
	require.NoError(t, err)
	assert.Equal(t, ResultOK, result)

	select {
	case <-quit:
	case <-time.After(2 * time.Second):
		t.Fatal("quit callback was not invoked")
	}
}
