// Package logging builds the daemon's structured logger (spec §1 lists
// "logging" among the ambient external collaborators the core consumes
// but does not implement itself).
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Options controls logger construction.
type Options struct {
	Level   slog.Level
	NoColor bool
	Output  io.Writer
}

// New builds a logger writing tint's colorized, level-aware lines to
// stderr when attached to a terminal, falling back to tint's own
// NoColor mode otherwise (tint always produces the same structured
// fields either way, unlike switching to a different handler entirely).
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	noColor := opts.NoColor
	if f, ok := out.(*os.File); ok && !noColor {
		if fi, err := f.Stat(); err == nil {
			noColor = (fi.Mode() & os.ModeCharDevice) == 0
		}
	}

	handler := tint.NewHandler(out, &tint.Options{
		Level:      opts.Level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})
	return slog.New(handler)
}
