// Package fsutil provides the deterministic filesystem primitives crunch's
// hash engine and bitmap loader need: a sorted recursive directory walk
// (so identical trees hash identically regardless of the host's native
// enumeration order), and a path bridging layer whose only real work
// happens on Windows, where paths are natively UTF-16.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry describes one directory entry discovered by ReadDirSorted.
type Entry struct {
	Name  string // base name, as returned by the filesystem
	Path  string // full path (root joined with Name)
	Ext   string // extension without the leading dot, lowercased
	IsDir bool
}

// ReadDirSorted lists root's immediate children sorted by name, skipping
// "." and "..". Sorting here (rather than trusting the OS) is what makes
// chash.Files produce the same hash on every platform.
func ReadDirSorted(root string) ([]Entry, error) {
	raw, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("fsutil: reading %s: %w", root, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, de := range raw {
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		entries = append(entries, Entry{
			Name:  name,
			Path:  filepath.Join(root, name),
			Ext:   strings.ToLower(ext),
			IsDir: de.IsDir(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Subdirectories returns the names of root's immediate subdirectories,
// sorted, used by split-build mode to discover per-subdirectory builds.
func Subdirectories(root string) ([]string, error) {
	entries, err := ReadDirSorted(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir {
			dirs = append(dirs, e.Name)
		}
	}
	return dirs, nil
}
