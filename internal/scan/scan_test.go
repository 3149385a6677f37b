package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/leefowlercu/modorder/internal/cache"
	"github.com/leefowlercu/modorder/internal/fsutil"
	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/pak"
	"github.com/leefowlercu/modorder/internal/registry"
	"github.com/leefowlercu/modorder/internal/testutil"
)

func modUUID(i int) string {
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", i, i)
}

func writeMod(t *testing.T, dir string, i int, version uint32, deps ...string) string {
	t.Helper()
	d := testutil.ModDescriptor{UUID: modUUID(i), Name: fmt.Sprintf("Mod%02d", i)}
	for _, dep := range deps {
		d.Dependencies = append(d.Dependencies, testutil.DependencyDescriptor{UUID: dep, Name: dep})
	}
	return testutil.WritePackage(t, dir, fmt.Sprintf("Mod%02d.pak", i), version, testutil.ModPackage(d, testutil.CompressLZ4)...)
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]*cache.Entry
	gets    int
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*cache.Entry)}
}

func (c *memCache) Get(_ context.Context, key string) (*cache.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	e, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return e, nil
}

func (c *memCache) Put(_ context.Context, key string, e *cache.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[key] = e
	return nil
}

func TestScanPreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	var want []string
	for i := 30; i > 0; i-- {
		paths = append(paths, writeMod(t, dir, i, uint32(15+i%4)))
		want = append(want, modUUID(i))
	}

	report, err := New(WithWorkers(8)).Scan(context.Background(), paths)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if got := report.Registry.Order(); !slices.Equal(got, want) {
		t.Errorf("Order() = %v, want %v", got, want)
	}
	if report.Packages != 30 || report.Problems() != 0 {
		t.Errorf("report = %+v", report)
	}
	if m, _ := report.Registry.Get(modUUID(7)); m.Source != paths[30-7] {
		t.Errorf("Source = %q, want %q", m.Source, paths[30-7])
	}
}

func TestScanIsolatesBadPackages(t *testing.T) {
	dir := t.TempDir()

	good := writeMod(t, dir, 1, 18)
	garbage := filepath.Join(dir, "garbage.pak")
	if err := os.WriteFile(garbage, []byte("definitely not a package"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := filepath.Join(dir, "future.pak")
	if err := os.WriteFile(future, testutil.BuildPackage(t, 19, testutil.ModPackage(testutil.ModDescriptor{UUID: modUUID(2), Name: "Future"}, 0)...), 0o644); err != nil {
		t.Fatal(err)
	}
	assets := testutil.WritePackage(t, dir, "assets.pak", 16, testutil.PackageFile{Name: "Public/Textures/a.dds", Data: []byte("dds")})
	noName := testutil.WritePackage(t, dir, "noname.pak", 17, testutil.ModPackage(testutil.ModDescriptor{UUID: modUUID(3), Folder: "NoName"}, 0)...)
	missing := filepath.Join(dir, "missing.pak")
	duplicate := testutil.WritePackage(t, dir, "dup.pak", 15, testutil.ModPackage(testutil.ModDescriptor{UUID: modUUID(1), Name: "Copy"}, 0)...)

	paths := []string{good, garbage, future, assets, noName, missing, duplicate}
	report, err := New().Scan(context.Background(), paths)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if report.Registry.Len() != 1 {
		t.Errorf("Registry.Len() = %d, want 1", report.Registry.Len())
	}
	if m, _ := report.Registry.Get(modUUID(1)); m.Source != good {
		t.Errorf("kept %s, want %s", m.Source, good)
	}

	if len(report.Unsupported) != 1 || report.Unsupported[0].Path != future {
		t.Errorf("Unsupported = %v", report.Unsupported)
	}
	if !slices.Equal(report.AssetOnly, []string{assets}) {
		t.Errorf("AssetOnly = %v", report.AssetOnly)
	}
	if len(report.Duplicates) != 1 || report.Duplicates[0].Rejected != duplicate || !errors.Is(report.Duplicates[0], registry.ErrDuplicateUUID) {
		t.Errorf("Duplicates = %v", report.Duplicates)
	}

	if len(report.Errors) != 3 {
		t.Fatalf("Errors = %v, want 3", report.Errors)
	}
	checks := []struct {
		path string
		want error
	}{
		{garbage, pak.ErrNotAPackage},
		{noName, modmeta.ErrIncompleteMetadata},
		{missing, os.ErrNotExist},
	}
	for i, c := range checks {
		got := report.Errors[i]
		if got.Path != c.path || !errors.Is(got, c.want) {
			t.Errorf("Errors[%d] = %v, want %s with %v", i, got, c.path, c.want)
		}
	}
	if report.Problems() != 5 {
		t.Errorf("Problems() = %d, want 5", report.Problems())
	}
}

func TestScanCollectsWarnings(t *testing.T) {
	dir := t.TempDir()
	d := testutil.ModDescriptor{
		UUID:         modUUID(1),
		Name:         "Warned",
		Dependencies: []testutil.DependencyDescriptor{{Name: "NoUUID"}},
	}
	path := testutil.WritePackage(t, dir, "warned.pak", 18, testutil.ModPackage(d, 0)...)

	report, err := New().Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Path != path {
		t.Errorf("Warnings = %+v", report.Warnings)
	}
}

func TestScanUsesCache(t *testing.T) {
	dir := t.TempDir()
	c := newMemCache()
	paths := []string{writeMod(t, dir, 1, 18), writeMod(t, dir, 2, 16)}

	if _, err := New(WithCache(c)).Scan(context.Background(), paths); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if c.puts != 2 {
		t.Fatalf("puts = %d, want 2", c.puts)
	}

	// Rewrite the cached mod so a hit is observable.
	for _, e := range c.entries {
		if e.Mod.UUID == modUUID(1) {
			e.Mod = &modmeta.Mod{UUID: e.Mod.UUID, Name: "FromCache", Source: "/elsewhere.pak"}
		}
	}

	report, err := New(WithCache(c)).Scan(context.Background(), paths)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if c.puts != 2 {
		t.Errorf("puts = %d after cached scan, want 2", c.puts)
	}
	m, _ := report.Registry.Get(modUUID(1))
	if m.Name != "FromCache" || m.Source != paths[0] {
		t.Errorf("mod = %+v, want cached name with current source", m)
	}
}

func TestScanCacheIgnoresHeaderMD5(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rebuilt.pak")
	md5 := [16]byte{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}

	write := func(files ...testutil.PackageFile) {
		t.Helper()
		data := testutil.BuildPackageSpec(t, testutil.PackageSpec{Version: 18, MD5: md5, Files: files})
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := newMemCache()
	write(testutil.ModPackage(testutil.ModDescriptor{UUID: modUUID(1), Name: "Original"}, testutil.CompressLZ4)...)
	if _, err := New(WithCache(c)).Scan(context.Background(), []string{path}); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// Same header MD5, different contents with a descriptor whose declared size is wrong.
	files := testutil.ModPackage(testutil.ModDescriptor{UUID: modUUID(2), Name: "Rebuilt"}, testutil.CompressLZ4)
	for i := range files {
		files[i].DeclaredSize = uint64(len(files[i].Data)) + 7
	}
	write(files...)

	cached, err := New(WithCache(c)).Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	fresh, err := New().Scan(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if cached.Registry.Len() != fresh.Registry.Len() || len(cached.Errors) != len(fresh.Errors) {
		t.Errorf("cached scan = %d mods, %v; uncached = %d mods, %v",
			cached.Registry.Len(), cached.Errors, fresh.Registry.Len(), fresh.Errors)
	}
	if len(cached.Errors) != 1 || !errors.Is(cached.Errors[0], pak.ErrPayloadSizeMismatch) {
		t.Errorf("Errors = %v, want a payload size mismatch", cached.Errors)
	}
	if _, ok := cached.Registry.Get(modUUID(1)); ok {
		t.Error("cached scan returned the mod from the previous build")
	}
}

func TestScanCacheKeyIsContentHash(t *testing.T) {
	dir := t.TempDir()
	path := writeMod(t, dir, 1, 18)

	c := newMemCache()
	if _, err := New(WithCache(c)).Scan(context.Background(), []string{path}); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	sum, err := fsutil.HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.entries["sha256:"+sum]; !ok {
		t.Errorf("cache keys = %v, want sha256:%s", c.entries, sum)
	}
}

func TestScanCachesAssetOnly(t *testing.T) {
	dir := t.TempDir()
	c := newMemCache()
	path := testutil.WritePackage(t, dir, "assets.pak", 18, testutil.PackageFile{Name: "Public/a.dds", Data: []byte("x")})

	for range 2 {
		report, err := New(WithCache(c)).Scan(context.Background(), []string{path})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(report.AssetOnly) != 1 {
			t.Errorf("AssetOnly = %v", report.AssetOnly)
		}
	}
	if c.puts != 1 {
		t.Errorf("puts = %d, want 1", c.puts)
	}
}

func TestScanWithSQLiteCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.Open(ctx, filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	defer c.Close()

	dir := t.TempDir()
	paths := []string{writeMod(t, dir, 1, 18, modUUID(2)), writeMod(t, dir, 2, 17)}

	for range 2 {
		report, err := New(WithCache(c), WithWorkers(2)).Scan(ctx, paths)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		m, ok := report.Registry.Get(modUUID(1))
		if !ok || len(m.Dependencies) != 1 || m.Dependencies[0].UUID != modUUID(2) {
			t.Errorf("mod = %+v", m)
		}
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Entries != 2 || stats.Hits != 2 {
		t.Errorf("Stats() = %+v, want 2 entries and 2 hits", stats)
	}
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeMod(t, dir, 1, 18)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Scan(ctx, paths); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}

func TestScanEmpty(t *testing.T) {
	report, err := New().Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if report.Registry.Len() != 0 || report.Packages != 0 {
		t.Errorf("report = %+v", report)
	}
}
