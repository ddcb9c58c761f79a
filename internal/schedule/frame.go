package schedule

import "sync"

// Surface is the minimal external-collaborator interface the FrameScheduler
// needs from the compositor/surface-server client (out of scope per spec
// §1; the real implementation would wrap a Wayland/X11 surface handle).
type Surface interface {
	// Commit submits buf for display. The surface is expected to call the
	// supplied onFrameDone callback once the compositor acknowledges the
	// frame (spec §4.3 "frame_done").
	Commit(buf any, onFrameDone func())
}

// frameState tracks one notification's in-flight/pending buffer pair,
// implementing spec §4.3's AwaitingFrame + "later commit_buffer ⇒ pending"
// rule and the §5 ordering guarantee ("frame-done observed before any
// subsequent commit for that Notification").
type frameState struct {
	inFlight bool
	pending  any
	hasPend  bool
}

// FrameScheduler serializes surface commits to one in-flight frame per
// notification, queueing a pending buffer when a new one arrives mid-flight
// (spec §2 FrameScheduler row, §4.3 surface state machine).
type FrameScheduler struct {
	mu     sync.Mutex
	states map[uint32]*frameState
}

func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{states: make(map[uint32]*frameState)}
}

// Submit commits buf to surface for id, or queues it as pending if a frame
// for id is already in flight.
func (f *FrameScheduler) Submit(id uint32, surface Surface, buf any) {
	f.mu.Lock()
	st, ok := f.states[id]
	if !ok {
		st = &frameState{}
		f.states[id] = st
	}
	if st.inFlight {
		st.pending = buf
		st.hasPend = true
		f.mu.Unlock()
		return
	}
	st.inFlight = true
	f.mu.Unlock()

	surface.Commit(buf, func() { f.onFrameDone(id, surface) })
}

// onFrameDone commits any pending buffer queued while the previous frame
// was in flight (spec §4.3: "on frame_done, commit pending").
func (f *FrameScheduler) onFrameDone(id uint32, surface Surface) {
	f.mu.Lock()
	st, ok := f.states[id]
	if !ok {
		f.mu.Unlock()
		return
	}
	st.inFlight = false
	if !st.hasPend {
		f.mu.Unlock()
		return
	}
	buf := st.pending
	st.pending = nil
	st.hasPend = false
	st.inFlight = true
	f.mu.Unlock()

	surface.Commit(buf, func() { f.onFrameDone(id, surface) })
}

// Release drops all scheduling state for id (spec §4.3: "Any ── closed
// signal ──► Unattached (drop all handles)").
func (f *FrameScheduler) Release(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, id)
}
