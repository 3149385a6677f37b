package subcommands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/config"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

// ErrInvalidConfig is returned when the config file fails validation.
var ErrInvalidConfig = errors.New("configuration is invalid")

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Long: "Validate the current configuration.\n\n" +
		"Checks the configuration file for syntax errors and validates that all " +
		"settings have valid values. Returns exit code 0 if valid, 1 if invalid.",
	Example: `  # Validate the configuration
  modorder config validate`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{cmdutil.AnnotationConfigOptional: "true"},
	PreRunE:     validateValidate,
	RunE:        runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	if !config.ConfigExistsAt(configPath) {
		fmt.Fprintf(out, "No configuration file found at %s\n", configPath)
		fmt.Fprintln(out, "Using default configuration values.")
		return nil
	}

	// Loading validates
	if _, err := config.LoadFromPath(configPath); err != nil {
		fmt.Fprintln(out, styles.Fail("configuration validation failed:"))
		fmt.Fprintf(out, "  %v\n", err)
		return ErrInvalidConfig
	}

	fmt.Fprintln(out, styles.OK("configuration is valid: %s", configPath))
	return nil
}
