package cmdutil

import (
	"path/filepath"

	"github.com/leefowlercu/modorder/internal/config"
)

// ResolvePath expands "~" and returns an absolute, cleaned path.
// Empty input returns an empty string.
func ResolvePath(path string) (string, error) {
	expanded := config.ExpandPath(path)
	if expanded == "" {
		return "", nil
	}

	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}

	return filepath.Clean(absPath), nil
}

// AnnotationConfigOptional marks commands that still run, on defaults, when the config
// file cannot be loaded.
const AnnotationConfigOptional = "modorder/config-optional"
