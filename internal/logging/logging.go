package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	MaxFileSizeMB  = 10
	MaxFileBackups = 3
	MaxFileAgeDays = 28
)

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and use it for all logging.
type Manager struct {
	handler *SwappableHandler
	logger  *slog.Logger
	stderr  io.Writer
	rotator *lumberjack.Logger
	level   *slog.LevelVar
	mu      sync.Mutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithStderr sends console output to w instead of os.Stderr.
func WithStderr(w io.Writer) ManagerOption {
	return func(m *Manager) {
		if w != nil {
			m.stderr = w
		}
	}
}

// NewManager creates a logging manager in bootstrap mode.
// Bootstrap mode writes only to stderr using text format.
// Call Upgrade() after config is available to enable file logging.
func NewManager(opts ...ManagerOption) *Manager {
	level := new(slog.LevelVar)
	level.Set(DefaultLevel)

	m := &Manager{stderr: os.Stderr, level: level}
	for _, opt := range opts {
		opt(m)
	}

	bootstrap := slog.NewTextHandler(m.stderr, &slog.HandlerOptions{Level: level})
	m.handler = NewSwappableHandler(bootstrap)
	m.logger = slog.New(m.handler)
	return m
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade transitions from bootstrap mode (stderr-only) to full mode
// (stderr text + size-rotated JSON file). An empty path only applies the level.
// Returns error if the log file cannot be created.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.level.Set(level)
	if logFilePath == "" {
		return nil
	}

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	// lumberjack opens lazily; open it now so an unusable path fails here rather than
	// on the first log call.
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	_ = f.Close()

	if m.rotator != nil {
		_ = m.rotator.Close()
	}
	m.rotator = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    MaxFileSizeMB,
		MaxBackups: MaxFileBackups,
		MaxAge:     MaxFileAgeDays,
	}

	opts := &slog.HandlerOptions{Level: m.level}
	m.handler.Swap(slogmulti.Fanout(
		slog.NewTextHandler(m.stderr, opts),
		slog.NewJSONHandler(m.rotator, opts),
	))

	return nil
}

// SetLevel changes the log level at runtime.
// Applies immediately to all future log calls.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Level returns the current log level.
func (m *Manager) Level() slog.Level {
	return m.level.Level()
}

// Close cleanly shuts down the logger, closing any open file handles.
// Should be called during application shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rotator != nil {
		err := m.rotator.Close()
		m.rotator = nil
		return err
	}
	return nil
}
