package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/fnottd/internal/config"
	"github.com/jmylchreest/fnottd/internal/notif"
	"github.com/jmylchreest/fnottd/internal/schedule"
)

func newTestRenderer(cfg config.Config) *frameRenderer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newFrameRenderer(cfg, schedule.NewFrameScheduler(), logger)
}

func TestRenderNotificationRendersAllThreeTextBlocks(t *testing.T) {
	cfg := config.Default()
	n := notif.New(1)
	n.App = "mail"
	n.Summary = "New message"
	n.Body = "hello there"
	uc := cfg.ByUrgency(int(n.Urgency))
	uc.TitleFormat = "%a"
	uc.SummaryFormat = "%s"
	uc.BodyFormat = "%b"

	r := newTestRenderer(cfg)
	height := r.RenderNotification(n, 0)
	require.Greater(t, height, 0)
}

func TestRenderNotificationMinWidthAboveMaxWidth(t *testing.T) {
	cfg := config.Default()
	cfg.Main.MinWidth = 500
	cfg.Main.MaxWidth = 300
	r := newTestRenderer(cfg)

	n := notif.New(1)
	n.App = "a"
	n.Summary = "b"

	height := r.RenderNotification(n, 0)
	require.Greater(t, height, 0)
}

func TestRenderNotificationSkipsEmptyFormat(t *testing.T) {
	cfg := config.Default()
	uc := &cfg.Low
	uc.TitleFormat = ""
	uc.SummaryFormat = ""
	uc.BodyFormat = ""
	r := newTestRenderer(cfg)

	n := notif.New(1)
	n.Urgency = notif.UrgencyLow
	n.App, n.Summary, n.Body = "a", "s", "b"

	height := r.RenderNotification(n, 0)
	require.Greater(t, height, 0)
}
