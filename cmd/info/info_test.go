package info

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/pak"
	"github.com/leefowlercu/modorder/internal/testutil"
)

const uuidA = "aaaaaaaa-0000-4000-8000-000000000001"

func createTestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     InfoCmd.Use,
		Args:    InfoCmd.Args,
		PreRunE: InfoCmd.PreRunE,
		RunE:    InfoCmd.RunE,
	}
	cmd.Flags().BoolVar(&infoEntries, "entries", false, "")
	cmd.Flags().BoolVar(&infoJSON, "json", false, "")
	return cmd
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	infoEntries, infoJSON = false, false

	buf := new(bytes.Buffer)
	cmd := createTestCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func writeModPackage(t *testing.T) string {
	t.Helper()
	d := testutil.ModDescriptor{
		UUID:         uuidA,
		Name:         "Alpha",
		Author:       "Someone",
		Version64:    "36028797018963968",
		Dependencies: []testutil.DependencyDescriptor{{UUID: "bbbbbbbb-0000-4000-8000-000000000002", Name: "Beta"}},
	}
	return testutil.WritePackage(t, t.TempDir(), "Alpha.pak", 18, testutil.ModPackage(d, testutil.CompressZstd)...)
}

func TestInfoShowsDescriptor(t *testing.T) {
	path := writeModPackage(t)

	output, err := runCommand(t, path)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{path, "18", "Alpha", uuidA, "1.0.0.0", "Someone", "Beta"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Armor.txt") {
		t.Errorf("entries listed without --entries:\n%s", output)
	}
}

func TestInfoEntriesJSON(t *testing.T) {
	path := writeModPackage(t)

	output, err := runCommand(t, path, "--entries", "--json")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}

	var got infoOutput
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if got.Version != 18 || got.Files != 2 || len(got.Entries) != 2 {
		t.Errorf("JSON = %+v", got)
	}
	if got.Mod == nil || got.Mod.UUID != uuidA || got.Mod.Version != (modmeta.Version{Major: 1}) {
		t.Errorf("mod = %+v", got.Mod)
	}

	compression := map[string]string{}
	for _, e := range got.Entries {
		compression[e.Name] = e.Compression
	}
	if compression["Public/Alpha/Stats/Generated/Data/Armor.txt"] != "zstd" || compression["Mods/Alpha/meta.lsx"] != "zstd" {
		t.Errorf("entries = %+v", got.Entries)
	}
}

func TestInfoAssetOnly(t *testing.T) {
	path := testutil.WritePackage(t, t.TempDir(), "Textures.pak", 16, testutil.PackageFile{Name: "Public/a.dds", Data: []byte("dds")})

	output, err := runCommand(t, path)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.Contains(output, "asset-only") {
		t.Errorf("output = %q", output)
	}
}

func TestInfoErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pak")
	if err := os.WriteFile(garbage, []byte("not a package at all"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"not a package", garbage, pak.ErrNotAPackage},
		{"missing file", filepath.Join(dir, "absent.pak"), os.ErrNotExist},
		{"incomplete descriptor", testutil.WritePackage(t, dir, "noname.pak", 17, testutil.ModPackage(testutil.ModDescriptor{UUID: uuidA, Folder: "NoName"}, 0)...), modmeta.ErrIncompleteMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCommand(t, tt.path); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
