package schedule

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSurface struct {
	mu        sync.Mutex
	committed []any
	hold      bool
	pendingFn func()
}

func (f *fakeSurface) Commit(buf any, onFrameDone func()) {
	f.mu.Lock()
	f.committed = append(f.committed, buf)
	hold := f.hold
	f.mu.Unlock()
	if hold {
		f.pendingFn = onFrameDone
		return
	}
	onFrameDone()
}

func (f *fakeSurface) release() {
	f.mu.Lock()
	fn := f.pendingFn
	f.pendingFn = nil
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func TestFrameSchedulerSubmitCommitsImmediatelyWhenIdle(t *testing.T) {
	f := NewFrameScheduler()
	s := &fakeSurface{}
	f.Submit(1, s, "frame-a")
	assert.Equal(t, []any{"frame-a"}, s.committed)
}

func TestFrameSchedulerQueuesPendingBufferWhileInFlight(t *testing.T) {
	f := NewFrameScheduler()
	s := &fakeSurface{hold: true}

	f.Submit(1, s, "frame-a")
	f.Submit(1, s, "frame-b")
	f.Submit(1, s, "frame-c") // only the latest queued buffer should survive

	assert.Equal(t, []any{"frame-a"}, s.committed, "second/third commit should be queued, not committed yet")

	s.release()
	assert.Equal(t, []any{"frame-a", "frame-c"}, s.committed)
}

func TestFrameSchedulerReleaseDropsState(t *testing.T) {
	f := NewFrameScheduler()
	s := &fakeSurface{}
	f.Submit(1, s, "frame-a")
	f.Release(1)

	// onFrameDone for a released id is a no-op, not a panic.
	f.onFrameDone(1, s)
}
