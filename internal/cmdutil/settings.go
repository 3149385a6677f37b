package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/modsettings"
	"github.com/leefowlercu/modorder/internal/tui/styles"
)

// LoadEnabled returns the mods enabled in the settings file at path, in load order. When
// allowMissing is set, a missing file counts as a fresh profile holding only GustavDev.
func LoadEnabled(path string, allowMissing bool) ([]*modmeta.Mod, error) {
	s, err := modsettings.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && allowMissing {
		slog.Debug("settings file not found; starting from the base game", "path", path)
		return []*modmeta.Mod{modsettings.GustavDev}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Mods(), nil
}

// SaveEnabled writes mods to the settings file at path unless dryRun is set, then reports
// which mods changed under verb.
func SaveEnabled(w io.Writer, path string, mods, changed []*modmeta.Mod, verb string, dryRun bool) error {
	if len(changed) == 0 {
		fmt.Fprintln(w, styles.Warn("no mods %s", verb))
		return nil
	}
	for _, m := range changed {
		fmt.Fprintln(w, styles.Bullet("%s %s %s", verb, m.Name, styles.MutedText.Render(m.UUID)))
	}
	if dryRun {
		fmt.Fprintln(w, styles.MutedText.Render("dry run; settings not written"))
		return nil
	}

	if err := modsettings.WriteFile(path, mods); err != nil {
		return err
	}
	slog.Info("settings updated", "path", path, "action", verb, "changed", len(changed), "mods", len(mods))
	fmt.Fprintln(w, styles.OK("wrote %s", path))
	return nil
}
