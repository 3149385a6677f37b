// Package cache stores extracted mod descriptors in SQLite, keyed by package content hash,
// so unchanged packages are not decompressed again on the next run.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leefowlercu/modorder/internal/modmeta"

	_ "modernc.org/sqlite"
)

var (
	// ErrCacheMiss is returned when an entry is not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrVersionMismatch is returned when the entry was written by another extractor version.
	ErrVersionMismatch = errors.New("version mismatch")
)

// ExtractorVersion identifies the descriptor extraction rules. Bump it whenever a change
// to pak or modmeta could alter the result for the same package bytes.
const ExtractorVersion = 1

// Entry is the cached outcome of extracting one package.
type Entry struct {
	// Mod is nil for asset-only packages.
	Mod      *modmeta.Mod
	Warnings []string
	// Source is the path the entry was extracted from.
	Source string
}

// Stats summarises the cache contents.
type Stats struct {
	Entries   int
	AssetOnly int
	Stale     int
	Hits      int64
	Path      string
}

// SQLiteCache is the SQLite implementation of the descriptor cache.
type SQLiteCache struct {
	db      *sql.DB
	path    string
	version int
}

// Open creates a new SQLiteCache with the given database path.
func Open(ctx context.Context, dbPath string) (*SQLiteCache, error) {
	return open(ctx, dbPath, ExtractorVersion)
}

func open(ctx context.Context, dbPath string, version int) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory; %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database; %w", err)
	}

	// Scan workers write concurrently; WAL plus a busy timeout keeps them from failing on locks.
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q; %w", pragma, err)
		}
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations; %w", err)
	}

	return &SQLiteCache{db: db, path: dbPath, version: version}, nil
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Get returns the entry stored under key.
func (c *SQLiteCache) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		version      int
		source       sql.NullString
		modJSON      sql.NullString
		warningsJSON sql.NullString
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT extractor_version, source_path, mod_json, warnings_json FROM mod_cache WHERE content_key = ?`,
		key,
	).Scan(&version, &source, &modJSON, &warningsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache; %w", err)
	}
	if version != c.version {
		return nil, fmt.Errorf("entry %s has extractor version %d, want %d; %w", key, version, c.version, ErrVersionMismatch)
	}

	entry := &Entry{Source: source.String}
	if modJSON.Valid {
		entry.Mod = &modmeta.Mod{}
		if err := json.Unmarshal([]byte(modJSON.String), entry.Mod); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached mod; %w", err)
		}
	}
	if warningsJSON.Valid {
		if err := json.Unmarshal([]byte(warningsJSON.String), &entry.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached warnings; %w", err)
		}
	}

	if _, err := c.db.ExecContext(ctx,
		`UPDATE mod_cache SET hit_count = hit_count + 1, last_hit_at = ? WHERE content_key = ?`,
		time.Now(), key,
	); err != nil {
		return nil, fmt.Errorf("failed to record cache hit; %w", err)
	}

	return entry, nil
}

// Put stores entry under key, replacing any previous entry.
func (c *SQLiteCache) Put(ctx context.Context, key string, entry *Entry) error {
	if entry == nil {
		return errors.New("cannot cache nil entry")
	}

	var modJSON, modUUID *string
	if entry.Mod != nil {
		data, err := json.Marshal(entry.Mod)
		if err != nil {
			return fmt.Errorf("failed to marshal mod; %w", err)
		}
		s := string(data)
		modJSON = &s
		modUUID = &entry.Mod.UUID
	}

	var warningsJSON *string
	if len(entry.Warnings) > 0 {
		data, err := json.Marshal(entry.Warnings)
		if err != nil {
			return fmt.Errorf("failed to marshal warnings; %w", err)
		}
		s := string(data)
		warningsJSON = &s
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO mod_cache (content_key, extractor_version, source_path, mod_uuid, mod_json, warnings_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_key) DO UPDATE SET
			extractor_version = excluded.extractor_version,
			source_path = excluded.source_path,
			mod_uuid = excluded.mod_uuid,
			mod_json = excluded.mod_json,
			warnings_json = excluded.warnings_json,
			updated_at = excluded.updated_at
	`, key, c.version, entry.Source, modUUID, modJSON, warningsJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store cache entry; %w", err)
	}
	return nil
}

// Delete removes the entry stored under key.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM mod_cache WHERE content_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry; %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected; %w", err)
	}
	if rows == 0 {
		return ErrCacheMiss
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (c *SQLiteCache) Clear(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM mod_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache; %w", err)
	}
	return result.RowsAffected()
}

// Stats reports entry counts for the cache.
func (c *SQLiteCache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: c.path}
	err := c.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN mod_json IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN extractor_version != ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(hit_count), 0)
		FROM mod_cache
	`, c.version).Scan(&stats.Entries, &stats.AssetOnly, &stats.Stale, &stats.Hits)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query cache stats; %w", err)
	}
	return stats, nil
}
