package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/leefowlercu/modorder/internal/cache"
	"github.com/leefowlercu/modorder/internal/config"
	"github.com/leefowlercu/modorder/internal/metrics"
	"github.com/leefowlercu/modorder/internal/modsettings"
	"github.com/leefowlercu/modorder/internal/resolver"
	"github.com/leefowlercu/modorder/internal/scan"
	"github.com/leefowlercu/modorder/internal/walker"
)

var (
	// ErrNoModsPath means neither an argument nor mods_path names a mods directory.
	ErrNoModsPath = errors.New("no mods directory; pass one as an argument or set mods_path")
	// ErrNoProfilePath means no settings file location is known.
	ErrNoProfilePath = errors.New("no profile directory; set profile_path or pass --output")
)

// ModsDir returns the directory named by the first argument, falling back to the
// configured mods_path.
func ModsDir(args []string) (string, error) {
	dir := config.Get().ModsPath
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return "", ErrNoModsPath
	}
	return ResolvePath(dir)
}

// SettingsPath returns override when set, otherwise modsettings.lsx inside the
// configured profile_path.
func SettingsPath(override string) (string, error) {
	if override != "" {
		return ResolvePath(override)
	}
	profile := config.Get().ProfilePath
	if profile == "" {
		return "", ErrNoProfilePath
	}
	dir, err := ResolvePath(profile)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, modsettings.FileName), nil
}

// ScanMods lists the packages in dir and scans them with the configured worker count,
// skip list and descriptor cache. A cache that cannot be opened is logged and skipped.
func ScanMods(ctx context.Context, dir string) (*scan.Report, error) {
	cfg := config.Get()
	logger := slog.Default()

	walkOpts := []walker.WalkerOption{walker.WithSkipFiles(cfg.Scan.SkipFiles...)}
	if cfg.Scan.Hidden {
		walkOpts = append(walkOpts, walker.WithHidden())
	}
	paths, err := walker.List(dir, walkOpts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("packages discovered", "dir", dir, "count", len(paths))

	scanOpts := []scan.ScannerOption{
		scan.WithWorkers(cfg.Scan.Workers),
		scan.WithLogger(logger.With("component", "scan")),
	}
	if cfg.Cache.Enabled {
		c, err := cache.Open(ctx, config.ExpandPath(cfg.Cache.Path))
		if err != nil {
			logger.Warn("descriptor cache unavailable; continuing without it", "error", err)
		} else {
			defer c.Close()
			scanOpts = append(scanOpts, scan.WithCache(c))
		}
	}

	return scan.New(scanOpts...).Scan(ctx, paths)
}

// Resolve computes the load order of the mods a scan registered, treating the configured
// builtin modules as always present.
func Resolve(report *scan.Report) (*resolver.Result, error) {
	start := time.Now()
	reg := report.Registry

	result, err := resolver.Resolve(reg.BuildGraph(), reg.Order(),
		resolver.WithBuiltins(config.Get().Resolve.BuiltinModules...))

	var missing, outdated int
	if result != nil {
		missing, outdated = len(result.Missing), len(result.Outdated)
	}
	metrics.RecordResolve(time.Since(start), reg.Len(), missing, outdated, err)

	return result, err
}

// FlushMetrics writes the metrics textfile when one is configured.
func FlushMetrics() error {
	path := config.Get().Metrics.Textfile
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(config.ExpandPath(path)); err != nil {
		return fmt.Errorf("failed to export metrics; %w", err)
	}
	return nil
}
