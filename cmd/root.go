package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cachecmd "github.com/leefowlercu/modorder/cmd/cache"
	configcmd "github.com/leefowlercu/modorder/cmd/config"
	"github.com/leefowlercu/modorder/cmd/disable"
	"github.com/leefowlercu/modorder/cmd/enable"
	"github.com/leefowlercu/modorder/cmd/info"
	"github.com/leefowlercu/modorder/cmd/move"
	"github.com/leefowlercu/modorder/cmd/resolve"
	"github.com/leefowlercu/modorder/cmd/scan"
	"github.com/leefowlercu/modorder/cmd/status"
	versioncmd "github.com/leefowlercu/modorder/cmd/version"
	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/config"
	"github.com/leefowlercu/modorder/internal/logging"
	"github.com/leefowlercu/modorder/internal/metrics"
	"github.com/leefowlercu/modorder/internal/version"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var rootCmd = &cobra.Command{
	Use:   "modorder",
	Short: "Compute a dependency-respecting load order for game mods",
	Long: "modorder reads the .pak mod packages in a mods directory, extracts each mod's " +
		"descriptor, and computes a load order in which every mod loads after the mods " +
		"it depends on.\n\n" +
		"The order is deterministic: mods with no ordering constraint between them keep " +
		"the order they were discovered in. The result can be written to the game's " +
		"modsettings.lsx, and the enabled set can be edited in place with enable, " +
		"disable and move.",
	Version:           version.Get().Short(),
	PersistentPreRunE: runInitialize,
}

func init() {
	// Bootstrap mode logs to stderr until the config names a log file
	logManager = logging.NewManager()

	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(resolve.ResolveCmd)
	rootCmd.AddCommand(info.InfoCmd)
	rootCmd.AddCommand(status.StatusCmd)
	rootCmd.AddCommand(enable.EnableCmd)
	rootCmd.AddCommand(disable.DisableCmd)
	rootCmd.AddCommand(move.MoveCmd)
	rootCmd.AddCommand(cachecmd.CacheCmd)
	rootCmd.AddCommand(configcmd.ConfigCmd)
	rootCmd.AddCommand(versioncmd.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	// Initialize config subsystem
	if err := config.Init(); err != nil {
		if cmd.Annotations[cmdutil.AnnotationConfigOptional] != "true" {
			return err
		}
		logger.Warn("failed to load config, continuing with defaults", "error", err)
	}

	logFile := config.GetPath("log_file")
	levelStr := config.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
		}
	}

	if err := logManager.Upgrade(logFile, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		// Don't return error - continue with bootstrap mode
	}
	slog.SetDefault(logManager.Logger())

	metrics.SetBuildInfo(version.Get().Version)
	return nil
}

func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	// Ensure logging is properly closed on exit
	defer func() { _ = logManager.Close() }()

	err := rootCmd.Execute()

	// Metrics describe failed runs too
	if ferr := cmdutil.FlushMetrics(); ferr != nil {
		logManager.Logger().Warn("failed to write metrics", "error", ferr)
	}

	if err != nil {
		cmd, _, _ := rootCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = rootCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintln(os.Stderr)
			cmd.SetOut(os.Stderr)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
