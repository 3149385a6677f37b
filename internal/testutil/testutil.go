// Package testutil provides testing utilities: isolated config environments and
// builders for package and descriptor fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/modorder/internal/config"
)

// TestEnv provides an isolated test environment with its own config, mods and profile
// directories.
type TestEnv struct {
	t          *testing.T
	ConfigDir  string
	ModsDir    string
	ProfileDir string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths, so nothing outside t.TempDir is
// read or written. Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()
	env := &TestEnv{
		t:          t,
		ConfigDir:  filepath.Join(root, "config"),
		ModsDir:    filepath.Join(root, "Mods"),
		ProfileDir: filepath.Join(root, "PlayerProfiles", "Public"),
	}
	for _, dir := range []string{env.ConfigDir, env.ModsDir, env.ProfileDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create test dir %s: %v", dir, err)
		}
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv("HOME", root)
	t.Setenv(config.EnvConfigDir, env.ConfigDir)
	t.Setenv("MODORDER_LOG_FILE", filepath.Join(env.ConfigDir, "modorder.log"))
	t.Setenv("MODORDER_MODS_PATH", env.ModsDir)
	t.Setenv("MODORDER_PROFILE_PATH", env.ProfileDir)
	t.Setenv("MODORDER_CACHE_PATH", env.CachePath())
	t.Setenv("MODORDER_METRICS_TEXTFILE", "")

	env.Reload()
	t.Cleanup(config.Reset)

	return env
}

// Reload resets the config subsystem and initializes it again, picking up env vars or a
// config file set after NewTestEnv.
func (e *TestEnv) Reload() {
	e.t.Helper()
	config.Reset()
	if err := config.Init(); err != nil {
		e.t.Fatalf("failed to initialize test config: %v", err)
	}
}

// CachePath returns the path where the test cache database will be created.
func (e *TestEnv) CachePath() string {
	return filepath.Join(e.ConfigDir, "cache.db")
}

// SettingsPath returns the modsettings.lsx path inside the profile directory.
func (e *TestEnv) SettingsPath() string {
	return filepath.Join(e.ProfileDir, "modsettings.lsx")
}

// WriteConfig writes content as the config file and reloads the configuration.
func (e *TestEnv) WriteConfig(content string) string {
	e.t.Helper()
	path := filepath.Join(e.ConfigDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		e.t.Fatalf("failed to write config: %v", err)
	}
	e.Reload()
	return path
}

// AddMod writes a single-descriptor package into the mods directory.
func (e *TestEnv) AddMod(name string, version uint32, d ModDescriptor) string {
	e.t.Helper()
	return WritePackage(e.t, e.ModsDir, name, version, ModPackage(d, CompressLZ4)...)
}
