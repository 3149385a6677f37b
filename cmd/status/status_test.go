package status

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
	"github.com/leefowlercu/modorder/internal/modsettings"
	"github.com/leefowlercu/modorder/internal/testutil"
)

func createTestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     StatusCmd.Use,
		Args:    StatusCmd.Args,
		PreRunE: StatusCmd.PreRunE,
		RunE:    StatusCmd.RunE,
	}
	cmd.Flags().StringVar(&statusSettings, "settings", "", "")
	cmd.Flags().BoolVar(&statusJSON, "json", false, "")
	return cmd
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	statusSettings, statusJSON = "", false

	buf := new(bytes.Buffer)
	cmd := createTestCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

var enabled = []*modmeta.Mod{
	modsettings.GustavDev,
	{UUID: "aaaaaaaa-0000-4000-8000-000000000001", Name: "Alpha", Folder: "Alpha", Version: modmeta.Version{Major: 2}},
	{UUID: "bbbbbbbb-0000-4000-8000-000000000002", Name: "Beta", Folder: "Beta"},
}

func TestStatusListsEnabledMods(t *testing.T) {
	env := testutil.NewTestEnv(t)
	if err := modsettings.WriteFile(env.SettingsPath(), enabled); err != nil {
		t.Fatal(err)
	}

	output, err := runCommand(t)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(output, "Enabled mods (3)") {
		t.Errorf("output missing count:\n%s", output)
	}
	gustav, alpha, beta := strings.Index(output, "0. GustavDev"), strings.Index(output, "1. Alpha"), strings.Index(output, "2. Beta")
	if gustav < 0 || alpha < gustav || beta < alpha {
		t.Errorf("output not in load order:\n%s", output)
	}
	if !strings.Contains(output, "2.0.0.0") {
		t.Errorf("output missing version:\n%s", output)
	}
}

func TestStatusSettingsOverrideJSON(t *testing.T) {
	testutil.NewTestEnv(t)
	path := filepath.Join(t.TempDir(), "other.lsx")
	if err := modsettings.WriteFile(path, enabled[:2]); err != nil {
		t.Fatal(err)
	}

	output, err := runCommand(t, "--settings", path, "--json")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	var got []modmeta.Mod
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if len(got) != 2 || got[1].Name != "Alpha" || got[1].Version != (modmeta.Version{Major: 2}) {
		t.Errorf("JSON = %+v", got)
	}
}

func TestStatusMissingSettings(t *testing.T) {
	testutil.NewTestEnv(t)

	if _, err := runCommand(t); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}
