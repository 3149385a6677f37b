package modsettings

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leefowlercu/modorder/internal/modmeta"
)

// protected names the base game modules an edit never removes or moves.
var protected = map[string]bool{
	"Gustav":    true,
	"GustavDev": true,
}

// Pattern selects mods by name. Matching is case-insensitive and unanchored; "*" matches
// one or more characters.
type Pattern struct {
	re *regexp.Regexp
}

// CompilePattern compiles a name pattern.
func CompilePattern(pattern string) (*Pattern, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty mod name pattern")
	}
	expr := strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".+")
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q; %w", pattern, err)
	}
	return &Pattern{re: re}, nil
}

// Match reports whether name matches the pattern.
func (p *Pattern) Match(name string) bool {
	return p.re.MatchString(name)
}

// Mods returns the Mods entries as descriptors, in ModOrder order. Entries missing from
// ModOrder follow in document order.
func (s *Settings) Mods() []*modmeta.Mod {
	rank := make(map[string]int, len(s.Order))
	for i, id := range s.Order {
		if _, ok := rank[strings.ToLower(id)]; !ok {
			rank[strings.ToLower(id)] = i
		}
	}

	ordered := make([]*modmeta.Mod, len(s.Order))
	var rest []*modmeta.Mod
	for _, m := range s.Modules {
		mod := &modmeta.Mod{UUID: m.UUID, Name: m.Name, Folder: m.Folder, MD5: m.MD5, Version: m.Version}
		if i, ok := rank[strings.ToLower(m.UUID)]; ok && ordered[i] == nil {
			ordered[i] = mod
			continue
		}
		rest = append(rest, mod)
	}

	mods := make([]*modmeta.Mod, 0, len(s.Modules))
	for _, m := range ordered {
		if m != nil {
			mods = append(mods, m)
		}
	}
	return append(mods, rest...)
}

// Enable appends the available mods whose name matches p and that are not already
// enabled. It returns the new list and the mods it added.
func Enable(enabled, available []*modmeta.Mod, p *Pattern) (result, added []*modmeta.Mod) {
	present := make(map[string]bool, len(enabled))
	for _, m := range enabled {
		present[strings.ToLower(m.UUID)] = true
	}

	for _, m := range available {
		id := strings.ToLower(m.UUID)
		if present[id] || !p.Match(m.Name) {
			continue
		}
		present[id] = true
		added = append(added, m)
	}

	result = append(append(make([]*modmeta.Mod, 0, len(enabled)+len(added)), enabled...), added...)
	return result, added
}

// Disable removes the enabled mods whose name matches p. Base game modules are kept.
func Disable(enabled []*modmeta.Mod, p *Pattern) (result, removed []*modmeta.Mod) {
	for _, m := range enabled {
		if selectable(m, p) {
			removed = append(removed, m)
			continue
		}
		result = append(result, m)
	}
	return result, removed
}

// Move relocates the enabled mods whose name matches p so the first of them sits at
// position, keeping their relative order. Position is clamped so base game modules at
// the head of the list stay first.
func Move(enabled []*modmeta.Mod, p *Pattern, position int) (result, moved []*modmeta.Mod) {
	var rest []*modmeta.Mod
	for _, m := range enabled {
		if selectable(m, p) {
			moved = append(moved, m)
			continue
		}
		rest = append(rest, m)
	}
	if len(moved) == 0 {
		return enabled, nil
	}

	at := max(1, min(position, len(rest)))
	if len(rest) == 0 {
		at = 0
	}

	result = make([]*modmeta.Mod, 0, len(enabled))
	result = append(result, rest[:at]...)
	result = append(result, moved...)
	result = append(result, rest[at:]...)
	return result, moved
}

func selectable(m *modmeta.Mod, p *Pattern) bool {
	return !protected[m.Name] && p.Match(m.Name)
}
