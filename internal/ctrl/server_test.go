package ctrl

import "testing"

func TestSocketPathPrefersWaylandDisplay(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")
	got := SocketPath()
	want := "/run/user/1000/fnott-wayland-1.sock"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSocketPathFallsBackWithoutWayland(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")
	got := SocketPath()
	want := "/run/user/1000/fnott.sock"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSocketPathFallsBackToTmp(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	got := SocketPath()
	want := "/tmp/fnott.sock"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
