// Package main provides the CLI entrypoint for fnottctl, the control-socket
// client for fnottd (spec §6 "Control socket").
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/fnottd/internal/ctrl"
)

var version = "dev"

var globalOpts struct {
	socket string
}

var rootCmd = &cobra.Command{
	Use:     "fnottctl",
	Short:   "Control client for fnottd",
	Version: version,
	Long: `fnottctl talks to a running fnottd over its control socket, to list
active notifications, dismiss them, pause/unpause popups, or ask the daemon
to quit.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.socket, "socket", "",
		"control socket path (default: $XDG_RUNTIME_DIR/fnott-$WAYLAND_DISPLAY.sock, else $XDG_RUNTIME_DIR/fnott.sock, else /tmp/fnott.sock)")
}

func client() *ctrl.Client {
	path := globalOpts.socket
	if path == "" {
		path = ctrl.SocketPath()
	}
	return ctrl.NewClient(path)
}

// resultName renders a Result the way a CLI user should see it.
func resultName(r ctrl.Result) string {
	switch r {
	case ctrl.ResultOK:
		return "ok"
	case ctrl.ResultInvalidID:
		return "invalid id"
	case ctrl.ResultNoActions:
		return "no actions"
	default:
		return "error"
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
