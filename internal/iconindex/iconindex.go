// Package iconindex is a stub for the icon-theme index spec §1 explicitly
// places out of core scope ("the icon-theme lookup (directory walking
// against a freedesktop-icon-theme spec)"). It exists only so the Manager
// has a concrete read-only collaborator to hold a reference to (spec §3:
// "a reference to an icon-theme index (read-only)"), with a lookup good
// enough to resolve common default icons without implementing the full
// freedesktop icon-theme inheritance/size-matching algorithm.
package iconindex

import (
	"os"
	"path/filepath"
)

// Index resolves an icon name to a file path within a theme's directory
// tree. It is read-only after New (spec §5 "Shared resources").
type Index struct {
	theme string
	dirs  []string
}

// New builds an Index for themeName, searching the standard XDG icon
// directories plus any extra search paths supplied by the caller (tests
// pass a temp dir directly).
func New(themeName string, extraDirs ...string) *Index {
	dirs := append([]string{}, extraDirs...)
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local/share/icons", themeName))
		dirs = append(dirs, filepath.Join(home, ".icons", themeName))
	}
	dirs = append(dirs,
		filepath.Join("/usr/share/icons", themeName),
		filepath.Join("/usr/local/share/icons", themeName),
		"/usr/share/pixmaps",
	)
	return &Index{theme: themeName, dirs: dirs}
}

// Resolve searches the theme's directories (shallow, not honoring the full
// size/context subdirectory inheritance rules) for a file named
// "<name>.png" or "<name>.svg", returning the first hit.
func (idx *Index) Resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name, true
		}
		return "", false
	}

	for _, dir := range idx.dirs {
		for _, ext := range []string{".png", ".svg"} {
			candidate := filepath.Join(dir, name+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
		found, ok := walkShallow(dir, name)
		if ok {
			return found, true
		}
	}
	return "", false
}

// walkShallow checks each immediate subdirectory of dir (the usual
// "<size>/<context>/" layout) for name.png/name.svg, one level deep only.
func walkShallow(dir, name string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		inner, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, f := range inner {
			if f.IsDir() {
				continue
			}
			if f.Name() == name+".png" || f.Name() == name+".svg" {
				return filepath.Join(sub, f.Name()), true
			}
		}
	}
	return "", false
}
