// Package scan implements the scan command for listing the mods in a mods directory.
package scan

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/scan"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

// Flag variables for the scan command.
var (
	scanVerbose bool
	scanJSON    bool
)

// ScanCmd lists the mods found in a mods directory.
var ScanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "List the mods in a mods directory",
	Long: "List the mods in a mods directory.\n\n" +
		"Opens every .pak file in the directory (mods_path when no directory is " +
		"given), reads its mod descriptor, and lists the mods in discovery order. " +
		"Packages that are corrupt, use an unsupported format version, or repeat " +
		"another package's mod are reported and skipped.",
	Example: `  # Scan the configured mods directory
  modorder scan

  # Scan a specific directory and include asset-only packages
  modorder scan ~/Games/BG3/Mods --verbose

  # Emit machine-readable output
  modorder scan --json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateScan,
	RunE:    runScan,
}

func init() {
	ScanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Show dependencies and asset-only packages")
	ScanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output JSON")
}

func validateScan(cmd *cobra.Command, args []string) error {
	if _, err := cmdutil.ModsDir(args); err != nil {
		return err
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

// problem is one package that did not yield a mod.
type problem struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// scanOutput is the JSON form of a scan.
type scanOutput struct {
	Mods        []*modmeta.Mod `json:"mods"`
	AssetOnly   []string       `json:"asset_only,omitempty"`
	Errors      []problem      `json:"errors,omitempty"`
	Unsupported []problem      `json:"unsupported,omitempty"`
	Duplicates  []problem      `json:"duplicates,omitempty"`
	Warnings    []problem      `json:"warnings,omitempty"`
	Packages    int            `json:"packages"`
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dir, err := cmdutil.ModsDir(args)
	if err != nil {
		return err
	}

	report, err := cmdutil.ScanMods(cmd.Context(), dir)
	if err != nil {
		return err
	}

	if scanJSON {
		return cmdutil.WriteJSON(out, toOutput(report))
	}

	printMods(out, report)
	return nil
}

func printMods(out io.Writer, report *scan.Report) {
	mods := report.Registry.Mods()
	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods found.")
	} else {
		fmt.Fprintln(out, styles.Title.Render(fmt.Sprintf("Mods (%d):", len(mods))))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-4s %-32s %-36s %s\n", "#", "NAME", "UUID", "VERSION")
		for i, m := range mods {
			fmt.Fprintf(out, "%-4d %-32s %-36s %s\n", i+1, truncate(m.Name, 32), m.UUID, m.Version)
			if scanVerbose {
				for _, d := range m.Dependencies {
					fmt.Fprintln(out, styles.Section.Render(styles.Bullet("requires %s", dependencyLabel(d))))
				}
			}
		}
	}

	if report.Problems() > 0 || len(report.Warnings) > 0 || (scanVerbose && len(report.AssetOnly) > 0) {
		fmt.Fprintln(out)
		cmdutil.PrintScanProblems(out, report, scanVerbose)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d packages: %d mods, %d asset-only, %d skipped\n",
		report.Packages, len(mods), len(report.AssetOnly), report.Problems())
}

func dependencyLabel(d modmeta.Dependency) string {
	label := d.UUID
	if d.Name != "" {
		label = fmt.Sprintf("%s (%s)", d.Name, d.UUID)
	}
	if d.MinVersion != nil {
		label += " >= " + d.MinVersion.String()
	}
	return label
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func toOutput(report *scan.Report) scanOutput {
	o := scanOutput{
		Mods:      report.Registry.Mods(),
		AssetOnly: report.AssetOnly,
		Packages:  report.Packages,
	}
	for _, e := range report.Errors {
		o.Errors = append(o.Errors, problem{Path: e.Path, Error: e.Err.Error()})
	}
	for _, e := range report.Unsupported {
		o.Unsupported = append(o.Unsupported, problem{Path: e.Path, Error: e.Err.Error()})
	}
	for _, d := range report.Duplicates {
		o.Duplicates = append(o.Duplicates, problem{Path: d.Rejected, Error: d.Error()})
	}
	for _, w := range report.Warnings {
		o.Warnings = append(o.Warnings, problem{Path: w.Path, Error: w.Message})
	}
	if o.Mods == nil {
		o.Mods = []*modmeta.Mod{}
	}
	return o
}
