// Package cache provides the cache parent command and subcommands.
package cache

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/cmd/cache/subcommands"
)

// CacheCmd is the parent command for descriptor cache maintenance.
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the descriptor cache",
	Long: "Inspect and clear the descriptor cache.\n\n" +
		"Scans store each package's extracted descriptor in a SQLite database keyed " +
		"by the package contents, so unchanged packages are not decompressed again. " +
		"The database lives at cache.path (~/.config/modorder/cache.db by default).",
}

func init() {
	CacheCmd.AddCommand(subcommands.StatsCmd)
	CacheCmd.AddCommand(subcommands.ClearCmd)
}
