// Package schedule implements the TimeoutScheduler and FrameScheduler
// (spec §4.4, §2 FrameScheduler row).
package schedule

import (
	"sync"
	"time"
)

// TimeoutConfig is the per-notification/per-urgency timing input to
// reload_timeout (spec §4.4).
type TimeoutConfig struct {
	TimeoutMs        int32 // -1 = server default, 0 = never
	DefaultTimeoutMs int32
	MaxTimeoutMs     int32 // 0 = unlimited
	Idle             bool
}

// EffectiveMs computes effective_ms per spec §4.4 step 1.
func EffectiveMs(c TimeoutConfig) int32 {
	effective := c.TimeoutMs
	if effective == -1 {
		effective = c.DefaultTimeoutMs
	}
	if c.MaxTimeoutMs > 0 {
		if effective == 0 {
			return c.MaxTimeoutMs
		}
		if effective > c.MaxTimeoutMs {
			return c.MaxTimeoutMs
		}
	}
	return effective
}

// TimeoutScheduler owns one timer per notification id (spec §4.4: "each
// Notification owns at most one timer").
type TimeoutScheduler struct {
	mu      sync.Mutex
	timers  map[uint32]*time.Timer
	expire  func(id uint32)
}

func NewTimeoutScheduler(expire func(id uint32)) *TimeoutScheduler {
	return &TimeoutScheduler{timers: make(map[uint32]*time.Timer), expire: expire}
}

// Reload implements reload_timeout (spec §4.4 steps 2-5): cancel any
// existing timer, then arm a new one unless idle or effective_ms == 0.
func (s *TimeoutScheduler) Reload(id uint32, cfg TimeoutConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(id)

	if cfg.Idle {
		return
	}
	effective := EffectiveMs(cfg)
	if effective == 0 {
		return
	}

	d := time.Duration(effective) * time.Millisecond
	s.timers[id] = time.AfterFunc(d, func() { s.expire(id) })
}

// Cancel disarms the timer for id, if any (called on notification destroy).
func (s *TimeoutScheduler) Cancel(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)
}

func (s *TimeoutScheduler) cancelLocked(id uint32) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Armed reports whether id currently has an active timer (used by the
// "no-timer xor armed-timer" invariant in spec §8).
func (s *TimeoutScheduler) Armed(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}
