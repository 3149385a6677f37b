// Package info implements the info command, which describes a single package.
package info

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/cmdutil"
	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/pak"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

var (
	infoEntries bool
	infoJSON    bool
)

// InfoCmd prints the header, descriptor and optionally the file list of a package.
var InfoCmd = &cobra.Command{
	Use:   "info <file.pak>",
	Short: "Describe a single mod package",
	Long: "Describe a single mod package.\n\n" +
		"Prints the package format version, header digest and part count, then the " +
		"mod descriptor found inside it. Packages without a descriptor are reported " +
		"as asset-only. With --entries the stored file list is printed as well.",
	Example: `  # Show a package's mod descriptor
  modorder info ~/Games/BG3/Mods/MyMod.pak

  # Include every stored file
  modorder info MyMod.pak --entries --json`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{cmdutil.AnnotationConfigOptional: "true"},
	PreRunE:     validateInfo,
	RunE:        runInfo,
}

func init() {
	InfoCmd.Flags().BoolVar(&infoEntries, "entries", false, "List the files stored in the package")
	InfoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output JSON")
}

func validateInfo(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

type entryOutput struct {
	Name             string `json:"name"`
	Compression      string `json:"compression"`
	CompressedSize   uint64 `json:"compressed_size"`
	UncompressedSize uint64 `json:"uncompressed_size"`
	Part             uint32 `json:"part"`
}

type infoOutput struct {
	Path     string        `json:"path"`
	Version  uint32        `json:"version"`
	MD5      string        `json:"md5,omitempty"`
	Parts    uint16        `json:"parts"`
	Files    int           `json:"files"`
	Mod      *modmeta.Mod  `json:"mod,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Entries  []entryOutput `json:"entries,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	path, err := cmdutil.ResolvePath(args[0])
	if err != nil {
		return err
	}

	pkg, err := pak.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open package; %w", err)
	}
	defer pkg.Close()

	mod, warnings, err := modmeta.Extract(pkg)
	if err != nil && !errors.Is(err, modmeta.ErrNoMetadata) {
		return err
	}

	h := pkg.Header()
	o := infoOutput{
		Path:     path,
		Version:  h.Version,
		Parts:    h.NumParts,
		Files:    len(pkg.Entries()),
		Mod:      mod,
		Warnings: warnings,
	}
	if h.HasMD5() {
		o.MD5 = hex.EncodeToString(h.MD5[:])
	}
	if infoEntries {
		for _, e := range pkg.Entries() {
			o.Entries = append(o.Entries, entryOutput{
				Name:             e.Name,
				Compression:      e.Compression.String(),
				CompressedSize:   e.CompressedSize,
				UncompressedSize: e.UncompressedSize,
				Part:             e.Part,
			})
		}
	}

	out := cmd.OutOrStdout()
	if infoJSON {
		return cmdutil.WriteJSON(out, o)
	}
	printInfo(out, o)
	return nil
}

func printInfo(out io.Writer, o infoOutput) {
	label := func(name string) string { return styles.Label.Render(name) + strings.Repeat(" ", 13-len(name)) }

	fmt.Fprintln(out, styles.Header.Render("Package"))
	fmt.Fprintf(out, "%s %s\n", label("Path:"), o.Path)
	fmt.Fprintf(out, "%s %d\n", label("Format:"), o.Version)
	if o.MD5 != "" {
		fmt.Fprintf(out, "%s %s\n", label("MD5:"), o.MD5)
	}
	fmt.Fprintf(out, "%s %d\n", label("Parts:"), o.Parts)
	fmt.Fprintf(out, "%s %d\n", label("Files:"), o.Files)
	fmt.Fprintln(out)

	if o.Mod == nil {
		fmt.Fprintln(out, styles.MutedText.Render("No mod descriptor; asset-only package."))
	} else {
		m := o.Mod
		fmt.Fprintln(out, styles.Header.Render("Mod"))
		fmt.Fprintf(out, "%s %s\n", label("Name:"), m.Name)
		fmt.Fprintf(out, "%s %s\n", label("UUID:"), styles.UUIDText.Render(m.UUID))
		fmt.Fprintf(out, "%s %s\n", label("Version:"), m.Version)
		if m.Folder != "" {
			fmt.Fprintf(out, "%s %s\n", label("Folder:"), m.Folder)
		}
		if m.Author != "" {
			fmt.Fprintf(out, "%s %s\n", label("Author:"), m.Author)
		}
		if m.Description != "" {
			fmt.Fprintf(out, "%s %s\n", label("Description:"), m.Description)
		}
		if len(m.Dependencies) > 0 {
			fmt.Fprintf(out, "%s\n", label("Dependencies:"))
			for _, d := range m.Dependencies {
				line := fmt.Sprintf("%s (%s)", d.Name, d.UUID)
				if d.MinVersion != nil {
					line += " >= " + d.MinVersion.String()
				}
				fmt.Fprintln(out, styles.Section.Render(styles.Bullet("%s", line)))
			}
		}
	}
	for _, w := range o.Warnings {
		fmt.Fprintln(out, styles.Warn("%s", w))
	}

	if len(o.Entries) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.Header.Render("Entries"))
		for _, e := range o.Entries {
			fmt.Fprintf(out, "%-60s %-5s %10d %10d\n", e.Name, e.Compression, e.CompressedSize, e.UncompressedSize)
		}
	}
}
