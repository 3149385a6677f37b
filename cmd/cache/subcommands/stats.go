package subcommands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/config"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

var statsJSON bool

// StatsCmd reports the size and hit count of the descriptor cache.
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show descriptor cache statistics",
	Long: "Show descriptor cache statistics.\n\n" +
		"Reports the number of cached packages, how many of them are asset-only, " +
		"how many were written by an older extractor and will be refreshed on the " +
		"next scan, and how many lookups the cache has answered.",
	Example: `  # Show cache statistics
  modorder cache stats`,
	Args:    cobra.NoArgs,
	PreRunE: validateStats,
	RunE:    runStats,
}

func init() {
	StatsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output JSON")
}

func validateStats(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

type statsOutput struct {
	Path      string `json:"path"`
	Enabled   bool   `json:"enabled"`
	Entries   int    `json:"entries"`
	AssetOnly int    `json:"asset_only"`
	Stale     int    `json:"stale"`
	Hits      int64  `json:"hits"`
}

func runStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	o := statsOutput{Path: cachePath(), Enabled: config.Get().Cache.Enabled}

	c, err := openExisting(cmd.Context())
	switch {
	case errors.Is(err, errNoCache):
	case err != nil:
		return err
	default:
		defer c.Close()
		stats, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}
		o.Entries, o.AssetOnly, o.Stale, o.Hits = stats.Entries, stats.AssetOnly, stats.Stale, stats.Hits
	}

	if statsJSON {
		return cmdutil.WriteJSON(out, o)
	}

	label := func(name string) string { return styles.Label.Render(name) + strings.Repeat(" ", 11-len(name)) }
	fmt.Fprintln(out, styles.Header.Render("Descriptor cache"))
	fmt.Fprintf(out, "%s %s\n", label("Path:"), o.Path)
	fmt.Fprintf(out, "%s %t\n", label("Enabled:"), o.Enabled)
	fmt.Fprintf(out, "%s %d\n", label("Entries:"), o.Entries)
	fmt.Fprintf(out, "%s %d\n", label("Asset-only:"), o.AssetOnly)
	fmt.Fprintf(out, "%s %d\n", label("Stale:"), o.Stale)
	fmt.Fprintf(out, "%s %d\n", label("Hits:"), o.Hits)
	return nil
}
