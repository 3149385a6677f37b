// Package scan opens a list of packages concurrently, extracts their descriptors, and
// registers the mods in input order.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leefowlercu/modorder/internal/cache"
	"github.com/leefowlercu/modorder/internal/fsutil"
	"github.com/leefowlercu/modorder/internal/metrics"
	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/pak"
	"github.com/leefowlercu/modorder/internal/registry"
)

// DefaultWorkers is the number of packages processed at once.
const DefaultWorkers = 4

// Cache stores extraction results across runs.
type Cache interface {
	Get(ctx context.Context, key string) (*cache.Entry, error)
	Put(ctx context.Context, key string, entry *cache.Entry) error
}

// PackageError is a package that could not be read.
type PackageError struct {
	Path string
	Err  error
}

func (e PackageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e PackageError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal problem found in a package's descriptor.
type Warning struct {
	Path    string
	Message string
}

// Report is the outcome of a scan.
type Report struct {
	Registry *registry.Registry
	// Errors lists packages that are corrupt or whose descriptor is unusable.
	Errors []PackageError
	// AssetOnly lists packages without a descriptor.
	AssetOnly []string
	// Unsupported lists packages with an unknown format version.
	Unsupported []PackageError
	Duplicates  []*registry.DuplicateError
	Warnings    []Warning
	// Packages is the number of paths scanned.
	Packages int
}

// Problems returns the number of packages that did not yield a mod for a reason other
// than being asset-only.
func (r *Report) Problems() int {
	return len(r.Errors) + len(r.Unsupported) + len(r.Duplicates)
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithWorkers sets the number of packages processed concurrently.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCache enables the descriptor cache.
func WithCache(c Cache) ScannerOption {
	return func(s *Scanner) {
		s.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scanner turns package paths into registered mods.
type Scanner struct {
	workers int
	cache   Cache
	logger  *slog.Logger
}

// New creates a Scanner.
func New(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: DefaultWorkers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// outcome is the result of processing one path.
type outcome struct {
	mod       *modmeta.Mod
	warnings  []string
	assetOnly bool
	err       error
}

// Scan processes paths concurrently and registers the discovered mods in the order of
// paths, so the registry's order is independent of which package finished first. A bad
// package is reported in the Report and never stops the scan; only ctx cancellation does.
func (s *Scanner) Scan(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()
	outcomes := make([]outcome, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.process(gCtx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted; %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted; %w", err)
	}

	report := &Report{Registry: registry.New(), Packages: len(paths)}
	for i, path := range paths {
		s.merge(report, path, outcomes[i])
	}

	metrics.RecordScan(time.Since(start))
	s.logger.Info("scan complete",
		"packages", report.Packages,
		"mods", report.Registry.Len(),
		"asset_only", len(report.AssetOnly),
		"problems", report.Problems(),
		"duration", time.Since(start))

	return report, nil
}

func (s *Scanner) merge(report *Report, path string, o outcome) {
	for _, msg := range o.warnings {
		report.Warnings = append(report.Warnings, Warning{Path: path, Message: msg})
	}

	switch {
	case errors.Is(o.err, pak.ErrUnsupportedVersion):
		report.Unsupported = append(report.Unsupported, PackageError{Path: path, Err: o.err})
	case o.err != nil:
		report.Errors = append(report.Errors, PackageError{Path: path, Err: o.err})
	case o.assetOnly:
		report.AssetOnly = append(report.AssetOnly, path)
	default:
		err := report.Registry.Register(o.mod)
		var dup *registry.DuplicateError
		switch {
		case errors.As(err, &dup):
			s.logger.Warn("duplicate mod", "uuid", dup.UUID, "kept", dup.Existing, "rejected", dup.Rejected)
			report.Duplicates = append(report.Duplicates, dup)
		case err != nil:
			report.Errors = append(report.Errors, PackageError{Path: path, Err: err})
		}
	}
}

func (s *Scanner) process(ctx context.Context, path string) outcome {
	start := time.Now()
	o := s.extract(ctx, path)

	result := metrics.ResultMod
	switch {
	case errors.Is(o.err, pak.ErrUnsupportedVersion):
		result = metrics.ResultUnsupported
	case o.err != nil:
		result = metrics.ResultError
	case o.assetOnly:
		result = metrics.ResultAssetOnly
	}
	metrics.RecordPackage(result, time.Since(start))

	if o.err != nil {
		s.logger.Warn("package skipped", "path", path, "error", o.err)
	} else {
		s.logger.Debug("package scanned", "path", path, "result", result, "duration", time.Since(start))
	}
	return o
}

func (s *Scanner) extract(ctx context.Context, path string) outcome {
	pkg, err := pak.Open(path)
	if err != nil {
		return outcome{err: err}
	}
	defer pkg.Close()

	key := s.cacheKey(path)
	if key != "" {
		entry, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			metrics.RecordCacheAccess(true)
			return fromEntry(entry, path)
		case errors.Is(err, cache.ErrCacheMiss), errors.Is(err, cache.ErrVersionMismatch):
			metrics.RecordCacheAccess(false)
		default:
			metrics.RecordCacheAccess(false)
			s.logger.Warn("cache lookup failed", "path", path, "error", err)
		}
	}

	mod, warnings, err := modmeta.Extract(pkg)
	switch {
	case errors.Is(err, modmeta.ErrNoMetadata):
		s.store(ctx, key, &cache.Entry{Source: path})
		return outcome{assetOnly: true}
	case err != nil:
		return outcome{warnings: warnings, err: err}
	}

	s.store(ctx, key, &cache.Entry{Mod: mod, Warnings: warnings, Source: path})
	return outcome{mod: mod, warnings: warnings}
}

func (s *Scanner) store(ctx context.Context, key string, entry *cache.Entry) {
	if key == "" {
		return
	}
	if err := s.cache.Put(ctx, key, entry); err != nil {
		s.logger.Warn("cache store failed", "path", entry.Source, "error", err)
	}
}

// cacheKey identifies the package by a SHA-256 of its bytes. The header MD5 is not used:
// packers fill it in inconsistently and nothing ties it to the data. The key is empty when
// caching is disabled or the file cannot be hashed.
func (s *Scanner) cacheKey(path string) string {
	if s.cache == nil {
		return ""
	}

	sum, err := fsutil.HashFile(path)
	if err != nil {
		s.logger.Debug("failed to hash package", "path", path, "error", err)
		return ""
	}
	return "sha256:" + sum
}

// fromEntry rebuilds an outcome from a cached entry. The cached mod is copied so the
// source reflects where the package lives now.
func fromEntry(entry *cache.Entry, path string) outcome {
	if entry.Mod == nil {
		return outcome{assetOnly: true, warnings: entry.Warnings}
	}
	mod := *entry.Mod
	mod.Source = path
	return outcome{mod: &mod, warnings: entry.Warnings}
}
