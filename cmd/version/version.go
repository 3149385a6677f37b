package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/version"
)

var (
	versionShort bool
	versionJSON  bool
)

// VersionCmd displays version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Long: "Display version and build information.\n\n" +
		"Shows the semantic version, git commit hash, build date and Go toolchain " +
		"of the current modorder binary. This information is useful " +
		"for troubleshooting and verifying the installed version.",
	Example: `  # Display version information
  modorder version

  # Display only the version and commit
  modorder version --short`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{cmdutil.AnnotationConfigOptional: "true"},
	PreRunE:     validateVersion,
	RunE:        runVersion,
}

func init() {
	VersionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version and commit")
	VersionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output JSON")
	VersionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

func validateVersion(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

// versionOutput is the JSON form of the build information.
type versionOutput struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	switch {
	case versionJSON:
		return cmdutil.WriteJSON(out, versionOutput{
			Version:   info.Version,
			GitCommit: info.GitCommit,
			BuildDate: info.BuildDate,
			GoVersion: info.GoVersion,
		})
	case versionShort:
		fmt.Fprintln(out, info.Short())
	default:
		fmt.Fprintln(out, info.String())
	}
	return nil
}
