// Package move implements the move command.
package move

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/modsettings"
)

var (
	moveTo       int
	moveSettings string
	moveDryRun   bool
)

// MoveCmd relocates enabled mods whose name matches a pattern within the load order.
var MoveCmd = &cobra.Command{
	Use:   "move <pattern> --to <position>",
	Short: "Move enabled mods to a position in the load order",
	Long: "Move enabled mods to a position in the load order.\n\n" +
		"Moves every enabled mod whose name matches the pattern so the first of " +
		"them sits at the given position, keeping their relative order. Positions " +
		"are numbered as status prints them. The base game module stays at the " +
		"head of the list, so positions before 1 are raised to 1 and positions " +
		"past the end place the mods last.",
	Example: `  # Load a framework mod right after the base game
  modorder move "Script Extender*" --to 1`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateMove,
	RunE:    runMove,
}

func init() {
	MoveCmd.Flags().IntVar(&moveTo, "to", -1, "Target position (required)")
	MoveCmd.Flags().StringVar(&moveSettings, "settings", "", "Settings file to edit instead of the profile's modsettings.lsx")
	MoveCmd.Flags().BoolVar(&moveDryRun, "dry-run", false, "Show the change without writing it")
}

func validateMove(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("to") {
		return errors.New("--to is required")
	}
	if _, err := modsettings.CompilePattern(args[0]); err != nil {
		return err
	}
	if _, err := cmdutil.SettingsPath(moveSettings); err != nil {
		return err
	}
	cmd.SilenceUsage = true
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	pattern, err := modsettings.CompilePattern(args[0])
	if err != nil {
		return err
	}
	path, err := cmdutil.SettingsPath(moveSettings)
	if err != nil {
		return err
	}

	enabled, err := cmdutil.LoadEnabled(path, false)
	if err != nil {
		return err
	}

	result, moved := modsettings.Move(enabled, pattern, moveTo)
	return cmdutil.SaveEnabled(cmd.OutOrStdout(), path, result, moved, "moved", moveDryRun)
}
