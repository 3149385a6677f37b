package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadFromPath_ValidConfig_ReturnsTypedConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `log_level: debug
log_file: /var/log/modorder.log
mods_path: /games/bg3/Mods
profile_path: /games/bg3/PlayerProfiles/Public
scan:
  workers: 8
  skip_files: [ModFixer.pak, "Old*.pak"]
  hidden: true
resolve:
  builtin_modules:
    - 28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8
cache:
  enabled: false
  path: /tmp/cache.db
metrics:
  textfile: /var/lib/node_exporter/modorder.prom
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config; %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogFile != "/var/log/modorder.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.ModsPath != "/games/bg3/Mods" || cfg.ProfilePath != "/games/bg3/PlayerProfiles/Public" {
		t.Errorf("paths = %q, %q", cfg.ModsPath, cfg.ProfilePath)
	}
	if cfg.Scan.Workers != 8 || !cfg.Scan.Hidden {
		t.Errorf("Scan = %+v", cfg.Scan)
	}
	if want := []string{"ModFixer.pak", "Old*.pak"}; !slices.Equal(cfg.Scan.SkipFiles, want) {
		t.Errorf("Scan.SkipFiles = %v, want %v", cfg.Scan.SkipFiles, want)
	}
	if len(cfg.Resolve.BuiltinModules) != 1 {
		t.Errorf("Resolve.BuiltinModules = %v", cfg.Resolve.BuiltinModules)
	}
	if cfg.Cache.Enabled || cfg.Cache.Path != "/tmp/cache.db" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/modorder.prom" {
		t.Errorf("Metrics.Textfile = %q", cfg.Metrics.Textfile)
	}
}

func TestLoadFromPath_InvalidConfig_ReturnsValidationError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: shouty\n"), 0600); err != nil {
		t.Fatalf("failed to write test config; %v", err)
	}

	_, err := LoadFromPath(configPath)
	if !IsValidationError(err) {
		t.Errorf("LoadFromPath() error = %v, want validation error", err)
	}
}

func TestLoadFromPath_MissingFile_ReturnsError(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFromPath() expected error for missing file")
	}
}

func TestLoadFromPath_InvalidYAML_ReturnsError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("scan: [unterminated"), 0600); err != nil {
		t.Fatalf("failed to write test config; %v", err)
	}

	if _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath() expected error for invalid YAML")
	}
}

func TestLoadFromPath_UsesDefaults_WhenKeysNotInFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("mods_path: /mods\n"), 0600); err != nil {
		t.Fatalf("failed to write test config; %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Scan.Workers != DefaultScanWorkers {
		t.Errorf("Scan.Workers = %d, want default %d", cfg.Scan.Workers, DefaultScanWorkers)
	}
	if !slices.Equal(cfg.Scan.SkipFiles, DefaultSkipFiles) {
		t.Errorf("Scan.SkipFiles = %v, want defaults", cfg.Scan.SkipFiles)
	}
	if cfg.Cache.Enabled != DefaultCacheEnabled {
		t.Errorf("Cache.Enabled = %v, want default", cfg.Cache.Enabled)
	}
}

func TestLoad_NoConfigFile_ReturnsErrNoConfigFile(t *testing.T) {
	isolate(t)

	if _, err := Load(); !errors.Is(err, ErrNoConfigFile) {
		t.Errorf("Load() error = %v, want ErrNoConfigFile", err)
	}
}

func TestLoad_FindsConfigInEnvDir(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "profile_path: /profile\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ProfilePath != "/profile" {
		t.Errorf("ProfilePath = %q, want /profile", cfg.ProfilePath)
	}
}
