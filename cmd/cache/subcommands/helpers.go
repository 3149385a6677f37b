package subcommands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/leefowlercu/modorder/internal/cache"
	"github.com/leefowlercu/modorder/internal/config"
)

// errNoCache means the cache database has not been created yet.
var errNoCache = errors.New("no descriptor cache")

// cachePath returns the configured cache database path.
func cachePath() string {
	return config.ExpandPath(config.Get().Cache.Path)
}

// openExisting opens the cache database without creating one.
func openExisting(ctx context.Context) (*cache.SQLiteCache, error) {
	path := cachePath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", errNoCache, path)
		}
		return nil, fmt.Errorf("failed to stat cache; %w", err)
	}
	return cache.Open(ctx, path)
}
