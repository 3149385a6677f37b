package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leefowlercu/modorder/internal/registry"
	"github.com/leefowlercu/modorder/internal/resolver"
	"github.com/leefowlercu/modorder/internal/scan"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON; %w", err)
	}
	return nil
}

// ModLabel names a mod for display: its name and UUID when registered, the UUID alone
// otherwise.
func ModLabel(reg *registry.Registry, uuid string) string {
	if m, ok := reg.Get(uuid); ok && m.Name != "" {
		return fmt.Sprintf("%s (%s)", m.Name, styles.UUIDText.Render(uuid))
	}
	return styles.UUIDText.Render(uuid)
}

// PrintScanProblems lists the packages of a scan that did not yield a mod, plus
// descriptor warnings. Asset-only packages are listed only when verbose is set.
func PrintScanProblems(w io.Writer, report *scan.Report, verbose bool) {
	for _, e := range report.Errors {
		fmt.Fprintln(w, styles.Fail("%s: %v", e.Path, e.Err))
	}
	for _, e := range report.Unsupported {
		fmt.Fprintln(w, styles.Fail("%s: %v", e.Path, e.Err))
	}
	for _, d := range report.Duplicates {
		fmt.Fprintln(w, styles.Warn("duplicate mod %s in %s; keeping %s", d.UUID, d.Rejected, d.Existing))
	}
	for _, warn := range report.Warnings {
		fmt.Fprintln(w, styles.Warn("%s: %s", warn.Path, warn.Message))
	}
	if verbose {
		for _, p := range report.AssetOnly {
			fmt.Fprintln(w, styles.Bullet("%s: no mod descriptor", p))
		}
	}
}

// PrintResolveWarnings lists missing and outdated dependencies.
func PrintResolveWarnings(w io.Writer, reg *registry.Registry, result *resolver.Result) {
	for _, m := range result.Missing {
		dep := m.Dependency
		if m.Name != "" {
			dep = fmt.Sprintf("%s (%s)", m.Name, m.Dependency)
		}
		fmt.Fprintln(w, styles.Warn("%s requires %s, which is not installed", ModLabel(reg, m.Mod), dep))
	}
	for _, o := range result.Outdated {
		fmt.Fprintln(w, styles.Warn("%s requires %s %s or newer; installed %s",
			ModLabel(reg, o.Mod), ModLabel(reg, o.Dependency), o.Required, o.Installed))
	}
}
