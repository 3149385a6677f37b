// Package status implements the status command, which lists the enabled mods.
package status

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

var (
	statusSettings string
	statusJSON     bool
)

// StatusCmd lists the mods enabled in modsettings.lsx in load order.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the enabled mods in load order",
	Long: "List the enabled mods in load order.\n\n" +
		"Reads modsettings.lsx from profile_path (or the file named by --settings) " +
		"and prints the enabled mods in the order the game loads them. Positions " +
		"start at 0 with the base game module; move --to uses the same numbering.",
	Example: `  # Show the enabled mods
  modorder status

  # Inspect another settings file
  modorder status --settings ./modsettings.lsx --json`,
	Args:    cobra.NoArgs,
	PreRunE: validateStatus,
	RunE:    runStatus,
}

func init() {
	StatusCmd.Flags().StringVar(&statusSettings, "settings", "", "Settings file to read instead of the profile's modsettings.lsx")
	StatusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output JSON")
}

func validateStatus(cmd *cobra.Command, args []string) error {
	if _, err := cmdutil.SettingsPath(statusSettings); err != nil {
		return err
	}
	cmd.SilenceUsage = true
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path, err := cmdutil.SettingsPath(statusSettings)
	if err != nil {
		return err
	}
	mods, err := cmdutil.LoadEnabled(path, false)
	if err != nil {
		return err
	}

	if statusJSON {
		return cmdutil.WriteJSON(out, mods)
	}

	fmt.Fprintln(out, styles.Title.Render(fmt.Sprintf("Enabled mods (%d):", len(mods))))
	for i, m := range mods {
		fmt.Fprintf(out, "%4d. %-40s %s %s\n", i, m.Name, styles.MutedText.Render(m.UUID), m.Version)
	}
	return nil
}
