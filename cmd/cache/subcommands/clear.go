package subcommands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/tui/styles"
)

// ClearCmd removes every entry from the descriptor cache.
var ClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached descriptor",
	Long: "Remove every cached descriptor.\n\n" +
		"The next scan extracts every package again and refills the cache.",
	Example: `  # Clear the cache
  modorder cache clear`,
	Args:    cobra.NoArgs,
	PreRunE: validateClear,
	RunE:    runClear,
}

func validateClear(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	c, err := openExisting(cmd.Context())
	if errors.Is(err, errNoCache) {
		fmt.Fprintln(out, styles.OK("cache is already empty"))
		return nil
	}
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, styles.OK("removed %d cached descriptors", n))
	return nil
}
