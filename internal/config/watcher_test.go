package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	require.NoError(t, os.WriteFile(path, []byte("[main]\nmax-width = 300\n"), 0644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	reloaded := make(chan Config, 1)
	w.SetReloadCallback(func(cfg Config) { reloaded <- cfg })

	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[main]\nmax-width = 500\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 500, cfg.Main.MaxWidth)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	require.NoError(t, os.WriteFile(path, []byte("[main]\nmax-width = 300\n"), 0644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	reloaded := make(chan Config, 1)
	w.SetReloadCallback(func(cfg Config) { reloaded <- cfg })

	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("noise"), 0644))

	select {
	case <-reloaded:
		t.Fatal("reload fired for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherKeepsPreviousConfigOnReloadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnott.ini")
	require.NoError(t, os.WriteFile(path, []byte("[main]\nmax-width = 300\n"), 0644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	errs := make(chan error, 1)
	w.SetErrorCallback(func(err error) { errs <- err })
	w.SetReloadCallback(func(Config) { t.Fatal("reload callback should not fire on a failed load") })

	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[main]\nnot-a-real-key = yes\n"), 0644))

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}
}
