package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveMsUsesDefaultWhenUnset(t *testing.T) {
	got := EffectiveMs(TimeoutConfig{TimeoutMs: -1, DefaultTimeoutMs: 5000})
	assert.EqualValues(t, 5000, got)
}

func TestEffectiveMsClampsToMax(t *testing.T) {
	got := EffectiveMs(TimeoutConfig{TimeoutMs: 9000, MaxTimeoutMs: 3000})
	assert.EqualValues(t, 3000, got)
}

func TestEffectiveMsMaxAppliesToDefaultZero(t *testing.T) {
	got := EffectiveMs(TimeoutConfig{TimeoutMs: 0, MaxTimeoutMs: 3000})
	assert.EqualValues(t, 3000, got)
}

func TestEffectiveMsNeverExpiresWhenZeroAndNoMax(t *testing.T) {
	got := EffectiveMs(TimeoutConfig{TimeoutMs: 0})
	assert.EqualValues(t, 0, got)
}

func TestTimeoutSchedulerReloadArmsTimer(t *testing.T) {
	var mu sync.Mutex
	var expired uint32
	done := make(chan struct{})
	s := NewTimeoutScheduler(func(id uint32) {
		mu.Lock()
		expired = id
		mu.Unlock()
		close(done)
	})

	s.Reload(7, TimeoutConfig{TimeoutMs: -1, DefaultTimeoutMs: 10})
	assert.True(t, s.Armed(7))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	mu.Lock()
	assert.EqualValues(t, 7, expired)
	mu.Unlock()
}

func TestTimeoutSchedulerReloadIdleDoesNotArm(t *testing.T) {
	s := NewTimeoutScheduler(func(uint32) { t.Fatal("should not expire while idle") })
	s.Reload(1, TimeoutConfig{TimeoutMs: -1, DefaultTimeoutMs: 10, Idle: true})
	assert.False(t, s.Armed(1))
	time.Sleep(50 * time.Millisecond)
}

func TestTimeoutSchedulerReloadZeroNeverExpires(t *testing.T) {
	s := NewTimeoutScheduler(func(uint32) { t.Fatal("should not expire") })
	s.Reload(1, TimeoutConfig{TimeoutMs: 0})
	assert.False(t, s.Armed(1))
}

func TestTimeoutSchedulerCancelDisarms(t *testing.T) {
	s := NewTimeoutScheduler(func(uint32) { t.Fatal("should not expire after cancel") })
	s.Reload(1, TimeoutConfig{TimeoutMs: -1, DefaultTimeoutMs: 50})
	s.Cancel(1)
	assert.False(t, s.Armed(1))
	time.Sleep(100 * time.Millisecond)
}

func TestTimeoutSchedulerReloadReplacesExistingTimer(t *testing.T) {
	fired := make(chan uint32, 2)
	s := NewTimeoutScheduler(func(id uint32) { fired <- id })

	s.Reload(1, TimeoutConfig{TimeoutMs: -1, DefaultTimeoutMs: 10000})
	s.Reload(1, TimeoutConfig{TimeoutMs: -1, DefaultTimeoutMs: 10})

	select {
	case id := <-fired:
		assert.EqualValues(t, 1, id)
	case <-time.After(2 * time.Second):
		t.Fatal("replacement timer never fired")
	}

	select {
	case <-fired:
		t.Fatal("stale timer fired a second time")
	case <-time.After(100 * time.Millisecond):
	}
}
