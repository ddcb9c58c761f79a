package manager

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/fnottd/internal/notif"
	"github.com/jmylchreest/fnottd/internal/selector"
)

type fakeBus struct {
	mu      sync.Mutex
	closed  []notif.CloseReason
	actions []string
}

func (f *fakeBus) EmitNotificationClosed(id uint32, reason notif.CloseReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, reason)
}
func (f *fakeBus) EmitActionInvoked(id uint32, actionKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, actionKey)
}
func (f *fakeBus) EmitActivationToken(id uint32, token string) {}

type noopRenderer struct{}

func (noopRenderer) RenderNotification(n *notif.Notification, y int) int { return 10 }

func newTestManager(bus BusSignaler) *Manager {
	cfg := Config{}
	for i := range cfg.PerUrgency {
		cfg.PerUrgency[i] = UrgencyConfig{DefaultTimeoutMs: 0, MaxTimeoutMs: 0}
	}
	m := New(cfg, nil, bus, noopRenderer{}, selector.New(nil))
	done := make(chan struct{})
	go m.Run(done)
	return m
}

func TestCreateNotifNewAllocatesID(t *testing.T) {
	m := newTestManager(&fakeBus{})
	n := m.CreateNotif(0, "")
	require.Equal(t, uint32(1), n.ID)
}

func TestCreateNotifByReplacesID(t *testing.T) {
	m := newTestManager(&fakeBus{})
	n1 := m.CreateNotif(0, "")
	n2 := m.CreateNotif(99, "") // nonexistent -> allocates new
	require.NotEqual(t, n1.ID, n2.ID)
	n3 := m.CreateNotif(n2.ID, "")
	require.Same(t, n2, n3)
}

func TestCreateNotifBySyncTag(t *testing.T) {
	m := newTestManager(&fakeBus{})
	n1 := m.CreateNotif(0, "up")
	n2 := m.CreateNotif(0, "up")
	require.Same(t, n1, n2)
}

func TestReplaceBySyncTagScenario(t *testing.T) {
	m := newTestManager(&fakeBus{})
	n := m.CreateNotif(0, "up")
	m.SetBody(n.ID, "1%")
	m.SetProgress(n.ID, 1)
	require.Equal(t, uint32(1), n.ID)

	n2 := m.CreateNotif(0, "up")
	require.Equal(t, n.ID, n2.ID)
	m.SetBody(n2.ID, "50%")
	m.SetProgress(n2.ID, 50)

	got := m.Get(n.ID)
	require.Equal(t, "50%", got.Body)
	require.Equal(t, 50, got.Progress)
}

func TestDismissIDTwiceSecondInvalid(t *testing.T) {
	m := newTestManager(&fakeBus{})
	n := m.CreateNotif(0, "")
	require.Equal(t, ResultOK, m.DismissID(n.ID))
	require.Equal(t, ResultInvalidID, m.DismissID(n.ID))
}

func TestProgressClampBoundaries(t *testing.T) {
	m := newTestManager(&fakeBus{})
	n := m.CreateNotif(0, "")
	m.SetProgress(n.ID, -1)
	require.Equal(t, -1, m.Get(n.ID).Progress)
	m.SetProgress(n.ID, -5)
	require.Equal(t, 0, m.Get(n.ID).Progress)
	m.SetProgress(n.ID, 150)
	require.Equal(t, 100, m.Get(n.ID).Progress)
	m.SetProgress(n.ID, 100)
	require.Equal(t, 100, m.Get(n.ID).Progress)
}

func TestUrgencyStackOrdering(t *testing.T) {
	m := newTestManager(&fakeBus{})
	low := m.CreateNotif(0, "")
	m.SetUrgency(low.ID, notif.UrgencyLow)
	normal := m.CreateNotif(0, "")
	critical := m.CreateNotif(0, "")
	m.SetUrgency(critical.ID, notif.UrgencyCritical)

	snap := m.Snapshot()
	urgencies := make([]notif.Urgency, len(snap))
	for i, n := range snap {
		urgencies[i] = n.Urgency
	}
	for i := 1; i < len(urgencies); i++ {
		require.GreaterOrEqual(t, int(urgencies[i-1]), int(urgencies[i]))
	}
	_ = normal
}

func TestBulkDismissWithSelectorOutstanding(t *testing.T) {
	bus := &fakeBus{}
	m := newTestManager(bus)
	withSelector := m.CreateNotif(0, "")
	m.SetActions(withSelector.ID, []notif.Action{{ID: "open", Label: "Open"}})
	plain := m.CreateNotif(0, "")

	res := m.RequestActionSelection(withSelector.ID)
	require.Equal(t, ResultOK, res)
	// selector cmdline empty -> no argv, selector fails -> async goroutine will
	// eventually call back; give it a moment, but first perform DismissAll
	// while (potentially) still in flight to exercise the Delayed path.
	m.DismissAll()

	require.Equal(t, ResultInvalidID, m.DismissID(plain.ID))

	require.Eventually(t, func() bool {
		return m.Get(withSelector.ID) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestRequestActionSelectionNoActions(t *testing.T) {
	m := newTestManager(&fakeBus{})
	n := m.CreateNotif(0, "")
	require.Equal(t, ResultNoActions, m.RequestActionSelection(n.ID))
}

func TestPauseSuppressesDisplay(t *testing.T) {
	m := newTestManager(&fakeBus{})
	m.Pause()
	require.True(t, m.IsPaused())
	n := m.CreateNotif(0, "")
	require.Empty(t, m.Snapshot())
	m.Unpause()
	require.False(t, m.IsPaused())
	// still resolvable/dismissable even though suppressed
	require.Equal(t, ResultOK, m.DismissID(n.ID))
}

type fakeIconLoader struct {
	byIcon map[string]*notif.Image
}

func (f *fakeIconLoader) LoadDefaultIcon(icon string) (*notif.Image, bool) {
	img, ok := f.byIcon[icon]
	return img, ok
}

func TestDefaultIconResolvedOnCreateAndUrgencyChange(t *testing.T) {
	m := newTestManager(&fakeBus{})
	cfg := Config{}
	for i := range cfg.PerUrgency {
		cfg.PerUrgency[i] = UrgencyConfig{}
	}
	cfg.PerUrgency[notif.UrgencyNormal] = UrgencyConfig{Icon: "mail-unread"}
	cfg.PerUrgency[notif.UrgencyCritical] = UrgencyConfig{Icon: "dialog-error"}
	m.UpdateConfig(cfg)
	m.SetIcons(&fakeIconLoader{byIcon: map[string]*notif.Image{
		"mail-unread": {Width: 1, Height: 1, Data: []byte{0, 0, 0, 0}},
		"dialog-error": {Width: 2, Height: 2, Data: []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	}})

	n := m.CreateNotif(0, "")
	got := m.Get(n.ID)
	require.NotNil(t, got.Image)
	require.False(t, got.Image.IsCustom)
	require.Equal(t, 1, got.Image.Width)

	m.SetUrgency(n.ID, notif.UrgencyCritical)
	got = m.Get(n.ID)
	require.NotNil(t, got.Image)
	require.Equal(t, 2, got.Image.Width)
}

func TestDefaultIconLeavesCustomImageAlone(t *testing.T) {
	m := newTestManager(&fakeBus{})
	cfg := Config{}
	cfg.PerUrgency[notif.UrgencyCritical] = UrgencyConfig{Icon: "dialog-error"}
	m.UpdateConfig(cfg)
	m.SetIcons(&fakeIconLoader{byIcon: map[string]*notif.Image{
		"dialog-error": {Width: 9, Height: 9, Data: make([]byte, 9*9*4)},
	}})

	n := m.CreateNotif(0, "")
	custom := &notif.Image{Width: 5, Height: 5, Data: make([]byte, 5*5*4), IsCustom: true}
	m.SetImage(n.ID, custom)

	m.SetUrgency(n.ID, notif.UrgencyCritical)
	got := m.Get(n.ID)
	require.Same(t, custom, got.Image)
}
