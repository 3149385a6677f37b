package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/config"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

var (
	initForce       bool
	initModsPath    string
	initProfilePath string
)

// InitCmd writes a config file populated with defaults.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with default values",
	Long: "Create a configuration file with default values.\n\n" +
		"Writes config.yaml to the config directory (~/.config/modorder, or " +
		"MODORDER_CONFIG_DIR when set). The mods and profile directories can be " +
		"given as flags; everything else starts at its default. An existing file " +
		"is only replaced with --force.",
	Example: `  # Create a config file
  modorder config init --mods-path ~/Games/BG3/Mods --profile-path ~/Games/BG3/PlayerProfiles/Public

  # Replace an existing config file
  modorder config init --force`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{cmdutil.AnnotationConfigOptional: "true"},
	PreRunE:     validateInit,
	RunE:        runInit,
}

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	InitCmd.Flags().StringVar(&initModsPath, "mods-path", "", "Directory holding the installed .pak files")
	InitCmd.Flags().StringVar(&initProfilePath, "profile-path", "", "Player profile directory holding modsettings.lsx")
}

func validateInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	if config.ConfigExistsAt(path) && !initForce {
		return fmt.Errorf("config file already exists at %s; use --force to replace it", path)
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.NewDefaultConfig()
	cfg.ModsPath = initModsPath
	cfg.ProfilePath = initProfilePath

	if err := config.Validate(&cfg); err != nil {
		return err
	}

	path := config.DefaultConfigPath()
	if err := config.Write(&cfg, path); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.OK("wrote %s", path))
	return nil
}
