package walker

import (
	"path/filepath"
	"strings"
)

// PackageExt is the extension of package files.
const PackageExt = ".pak"

// DefaultSkipFiles are packages found in mods directories that are not mods.
var DefaultSkipFiles = []string{"ModFixer.pak"}

// Filter determines whether a file in the mods directory should be scanned.
type Filter struct {
	skipFiles     []string
	includeHidden bool
}

// NewFilter creates a Filter that skips the given file names or glob patterns.
func NewFilter(skipFiles []string, includeHidden bool) *Filter {
	return &Filter{skipFiles: skipFiles, includeHidden: includeHidden}
}

// ShouldProcessFile returns true if the file should be processed.
func (f *Filter) ShouldProcessFile(path string) bool {
	name := filepath.Base(path)

	if !strings.EqualFold(filepath.Ext(name), PackageExt) {
		return false
	}
	if !f.includeHidden && strings.HasPrefix(name, ".") {
		return false
	}

	for _, skip := range f.skipFiles {
		if matchPattern(skip, name) {
			return false
		}
	}
	return true
}

// matchPattern matches a pattern against a name, case-insensitively.
// Supports simple glob patterns with * wildcard.
func matchPattern(pattern, name string) bool {
	if strings.EqualFold(pattern, name) {
		return true
	}

	if strings.Contains(pattern, "*") {
		matched, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(name))
		if err == nil && matched {
			return true
		}
	}

	return false
}
