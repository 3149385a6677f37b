// Package disable implements the disable command.
package disable

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/modsettings"
)

var (
	disableSettings string
	disableDryRun   bool
)

// DisableCmd removes enabled mods whose name matches a pattern from the load order.
var DisableCmd = &cobra.Command{
	Use:   "disable <pattern>",
	Short: "Disable enabled mods by name",
	Long: "Disable enabled mods by name.\n\n" +
		"Removes every enabled mod whose name matches the pattern from " +
		"modsettings.lsx. Matching follows the same rules as enable. The base game " +
		"modules are never removed.",
	Example: `  # Disable every mod with "Camp" in its name
  modorder disable camp`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateDisable,
	RunE:    runDisable,
}

func init() {
	DisableCmd.Flags().StringVar(&disableSettings, "settings", "", "Settings file to edit instead of the profile's modsettings.lsx")
	DisableCmd.Flags().BoolVar(&disableDryRun, "dry-run", false, "Show the change without writing it")
}

func validateDisable(cmd *cobra.Command, args []string) error {
	if _, err := modsettings.CompilePattern(args[0]); err != nil {
		return err
	}
	if _, err := cmdutil.SettingsPath(disableSettings); err != nil {
		return err
	}
	cmd.SilenceUsage = true
	return nil
}

func runDisable(cmd *cobra.Command, args []string) error {
	pattern, err := modsettings.CompilePattern(args[0])
	if err != nil {
		return err
	}
	path, err := cmdutil.SettingsPath(disableSettings)
	if err != nil {
		return err
	}

	enabled, err := cmdutil.LoadEnabled(path, false)
	if err != nil {
		return err
	}

	result, removed := modsettings.Disable(enabled, pattern)
	return cmdutil.SaveEnabled(cmd.OutOrStdout(), path, result, removed, "disabled", disableDryRun)
}
