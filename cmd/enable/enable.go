// Package enable implements the enable command.
package enable

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/modsettings"
)

var (
	enableDir      string
	enableSettings string
	enableDryRun   bool
)

// EnableCmd adds installed mods whose name matches a pattern to the end of the load order.
var EnableCmd = &cobra.Command{
	Use:   "enable <pattern>",
	Short: "Enable installed mods by name",
	Long: "Enable installed mods by name.\n\n" +
		"Scans the mods directory and appends every mod whose name matches the " +
		"pattern, and that is not already enabled, to the end of the load order in " +
		"modsettings.lsx. Matching ignores case and may hit anywhere in the name; " +
		"\"*\" matches one or more characters. A missing settings file is created " +
		"with the base game module at its head.",
	Example: `  # Enable every mod with "Camp" in its name
  modorder enable camp

  # Preview the change
  modorder enable "Better*UI" --dry-run`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateEnable,
	RunE:    runEnable,
}

func init() {
	EnableCmd.Flags().StringVar(&enableDir, "dir", "", "Mods directory to search instead of mods_path")
	EnableCmd.Flags().StringVar(&enableSettings, "settings", "", "Settings file to edit instead of the profile's modsettings.lsx")
	EnableCmd.Flags().BoolVar(&enableDryRun, "dry-run", false, "Show the change without writing it")
}

func modsArgs() []string {
	if enableDir == "" {
		return nil
	}
	return []string{enableDir}
}

func validateEnable(cmd *cobra.Command, args []string) error {
	if _, err := modsettings.CompilePattern(args[0]); err != nil {
		return err
	}
	if _, err := cmdutil.ModsDir(modsArgs()); err != nil {
		return err
	}
	if _, err := cmdutil.SettingsPath(enableSettings); err != nil {
		return err
	}
	cmd.SilenceUsage = true
	return nil
}

func runEnable(cmd *cobra.Command, args []string) error {
	pattern, err := modsettings.CompilePattern(args[0])
	if err != nil {
		return err
	}
	dir, err := cmdutil.ModsDir(modsArgs())
	if err != nil {
		return err
	}
	path, err := cmdutil.SettingsPath(enableSettings)
	if err != nil {
		return err
	}

	enabled, err := cmdutil.LoadEnabled(path, true)
	if err != nil {
		return err
	}
	report, err := cmdutil.ScanMods(cmd.Context(), dir)
	if err != nil {
		return err
	}

	result, added := modsettings.Enable(enabled, report.Registry.Mods(), pattern)
	return cmdutil.SaveEnabled(cmd.OutOrStdout(), path, result, added, "enabled", enableDryRun)
}
