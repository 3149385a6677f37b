// Package walker lists the package files of a mods directory.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// WalkerOption configures List.
type WalkerOption func(*walker)

// WithSkipFiles replaces the default skip list. Entries are file names or globs.
func WithSkipFiles(names ...string) WalkerOption {
	return func(w *walker) {
		w.skipFiles = names
	}
}

// WithHidden includes dot files.
func WithHidden() WalkerOption {
	return func(w *walker) {
		w.includeHidden = true
	}
}

type walker struct {
	skipFiles     []string
	includeHidden bool
}

// List returns the absolute paths of the package files directly inside dir, sorted by
// file name. The order is the discovery order used to break load-order ties, so it must
// not depend on the file system's directory order.
func List(dir string, opts ...WalkerOption) ([]string, error) {
	w := &walker{skipFiles: DefaultSkipFiles}
	for _, opt := range opts {
		opt(w)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s; %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read mods directory; %w", err)
	}

	filter := NewFilter(w.skipFiles, w.includeHidden)
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() && e.Type()&os.ModeSymlink == 0 {
			continue
		}
		if !filter.ShouldProcessFile(e.Name()) {
			continue
		}

		path := filepath.Join(abs, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		paths = append(paths, path)
	}

	slices.SortFunc(paths, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(filepath.Base(a)), strings.ToLower(filepath.Base(b))); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return paths, nil
}
