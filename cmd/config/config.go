// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage modorder configuration",
	Long: "Manage modorder configuration.\n\n" +
		"The config command shows, creates, and validates the modorder " +
		"configuration. Configuration is stored in a YAML file located at " +
		"~/.config/modorder/config.yaml by default, and every key can be " +
		"overridden with a MODORDER_ environment variable.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.InitCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
