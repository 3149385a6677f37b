// Package resolve implements the resolve command, which computes a load order and
// optionally writes it to modsettings.lsx.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/config"
	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/modsettings"
	"github.com/leefowlercu/modorder/internal/registry"
	"github.com/leefowlercu/modorder/internal/resolver"
	"github.com/leefowlercu/modorder/internal/tui/styles"
	"github.com/leefowlercu/modorder/internal/walker"
	"github.com/leefowlercu/modorder/internal/watcher"
)

// Flag variables for the resolve command.
var (
	resolveWrite   bool
	resolveOutput  string
	resolveJSON    bool
	resolveVerbose bool
	resolveWatch   bool
)

// ResolveCmd computes a load order for the mods in a mods directory.
var ResolveCmd = &cobra.Command{
	Use:   "resolve [dir]",
	Short: "Compute a load order for the installed mods",
	Long: "Compute a load order for the installed mods.\n\n" +
		"Scans the mods directory (mods_path when no directory is given) and sorts " +
		"the mods so that every mod loads after the mods it depends on. Mods with " +
		"no ordering constraint between them keep the order they were discovered in. " +
		"Dependencies that are not installed, or installed at an older version than " +
		"required, are reported as warnings.\n\n" +
		"With --write the order is saved to modsettings.lsx in profile_path, with " +
		"GustavDev at its head. A dependency cycle is an error and nothing is written.\n\n" +
		"With --watch the command keeps running and computes the order again, " +
		"writing it when --write is set, whenever packages are added to, changed " +
		"in, or removed from the mods directory. A cycle found while watching is " +
		"reported and watching continues.",
	Example: `  # Show the computed order
  modorder resolve

  # Write the order to the profile's modsettings.lsx
  modorder resolve --write

  # Write the order somewhere else
  modorder resolve --output ./modsettings.lsx

  # Keep modsettings.lsx in step with the mods directory
  modorder resolve --write --watch`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateResolve,
	RunE:    runResolve,
}

func init() {
	ResolveCmd.Flags().BoolVarP(&resolveWrite, "write", "w", false, "Write the order to modsettings.lsx")
	ResolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Write the order to this file instead of the profile's modsettings.lsx")
	ResolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output JSON")
	ResolveCmd.Flags().BoolVarP(&resolveVerbose, "verbose", "v", false, "Show asset-only packages")
	ResolveCmd.Flags().BoolVar(&resolveWatch, "watch", false, "Compute the order again whenever the mods directory changes")
	ResolveCmd.MarkFlagsMutuallyExclusive("watch", "json")
}

func validateResolve(cmd *cobra.Command, args []string) error {
	if _, err := cmdutil.ModsDir(args); err != nil {
		return err
	}
	if resolveWrite || resolveOutput != "" {
		if _, err := cmdutil.SettingsPath(resolveOutput); err != nil {
			return err
		}
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

// resolveOutputJSON is the JSON form of a computed order.
type resolveOutputJSON struct {
	Order    []*modmeta.Mod               `json:"order"`
	Missing  []resolver.MissingDependency `json:"missing,omitempty"`
	Outdated []resolver.VersionMismatch   `json:"outdated,omitempty"`
	Written  string                       `json:"written,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	dir, err := cmdutil.ModsDir(args)
	if err != nil {
		return err
	}

	if err := resolveOnce(cmd.Context(), cmd.OutOrStdout(), dir); err != nil && !resolveWatch {
		return err
	}
	if !resolveWatch {
		return nil
	}
	return watch(cmd.Context(), cmd.OutOrStdout(), dir)
}

// watch computes the order again after every batch of package changes until interrupted.
func watch(ctx context.Context, out io.Writer, dir string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	w, err := watcher.New(dir,
		watcher.WithFilter(walker.NewFilter(cfg.Scan.SkipFiles, cfg.Scan.Hidden)),
		watcher.WithLogger(slog.Default().With("component", "watcher")))
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.MutedText.Render(fmt.Sprintf("Watching %s for changes; press Ctrl+C to stop.", w.Dir())))

	return w.Run(ctx, func(ctx context.Context, changes []watcher.Change) error {
		fmt.Fprintln(out)
		for _, c := range changes {
			fmt.Fprintln(out, styles.Bullet("%s %s", c.Type, filepath.Base(c.Path)))
		}
		return resolveOnce(ctx, out, dir)
	})
}

// resolveOnce scans dir, computes the order and prints it, writing the settings file
// when requested.
func resolveOnce(ctx context.Context, out io.Writer, dir string) error {
	report, err := cmdutil.ScanMods(ctx, dir)
	if err != nil {
		return err
	}
	if !resolveJSON {
		cmdutil.PrintScanProblems(out, report, resolveVerbose)
	}

	result, err := cmdutil.Resolve(report)
	if err != nil {
		var cycle *resolver.CycleError
		if errors.As(err, &cycle) && !resolveJSON {
			fmt.Fprintln(out, styles.Fail("order computation failed: %v", err))
			printCycle(out, report.Registry, cycle)
		}
		return err
	}

	ordered := orderedMods(report.Registry, result.Order)

	var written string
	if resolveWrite || resolveOutput != "" {
		written, err = writeSettings(ordered)
		if err != nil {
			return err
		}
	}

	if resolveJSON {
		return cmdutil.WriteJSON(out, resolveOutputJSON{
			Order:    ordered,
			Missing:  result.Missing,
			Outdated: result.Outdated,
			Written:  written,
		})
	}

	printOrder(out, ordered)
	if result.Warnings() > 0 {
		fmt.Fprintln(out)
		cmdutil.PrintResolveWarnings(out, report.Registry, result)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.OK("order computed, %d warnings", result.Warnings()))
	if written != "" {
		fmt.Fprintln(out, styles.OK("wrote %s", written))
	}
	return nil
}

func orderedMods(reg *registry.Registry, order []string) []*modmeta.Mod {
	mods := make([]*modmeta.Mod, 0, len(order))
	for _, id := range order {
		if m, ok := reg.Get(id); ok {
			mods = append(mods, m)
		}
	}
	return mods
}

// writeSettings saves mods, headed by GustavDev, to the settings file.
func writeSettings(mods []*modmeta.Mod) (string, error) {
	path, err := cmdutil.SettingsPath(resolveOutput)
	if err != nil {
		return "", err
	}

	settings := mods
	if !containsGustavDev(mods) {
		settings = append([]*modmeta.Mod{modsettings.GustavDev}, mods...)
	}
	if err := modsettings.WriteFile(path, settings); err != nil {
		return "", err
	}

	slog.Info("load order written", "path", path, "mods", len(settings))
	return path, nil
}

func containsGustavDev(mods []*modmeta.Mod) bool {
	for _, m := range mods {
		if strings.EqualFold(m.UUID, modsettings.GustavDev.UUID) {
			return true
		}
	}
	return false
}

func printOrder(out io.Writer, mods []*modmeta.Mod) {
	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods found.")
		return
	}
	fmt.Fprintln(out, styles.Title.Render("Load order:"))
	for i, m := range mods {
		fmt.Fprintf(out, "%4d. %s %s\n", i+1, m.Name, styles.MutedText.Render(m.UUID))
	}
}

func printCycle(out io.Writer, reg *registry.Registry, cycle *resolver.CycleError) {
	for _, id := range cycle.Cycle {
		fmt.Fprintln(out, styles.Section.Render(styles.Bullet("on cycle: %s", cmdutil.ModLabel(reg, id))))
	}
	for _, id := range cycle.Blocked {
		fmt.Fprintln(out, styles.Section.Render(styles.Bullet("blocked: %s", cmdutil.ModLabel(reg, id))))
	}
}
