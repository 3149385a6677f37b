package modmeta

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedMetadata means the descriptor is not well-formed XML.
var ErrMalformedMetadata = errors.New("malformed mod metadata")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Node ids of interest in an LSX document.
const (
	nodeModuleInfo   = "ModuleInfo"
	nodeDependencies = "Dependencies"
	nodeShortDesc    = "ModuleShortDesc"
)

// attrs collects the attribute id/value pairs of one LSX node.
type attrs map[string]string

// version returns the preferred version attribute of a node and its id.
func (a attrs) version() (id, value string, ok bool) {
	if v, ok := a["Version64"]; ok {
		return "Version64", v, true
	}
	if v, ok := a["Version"]; ok {
		return "Version", v, true
	}
	return "", "", false
}

// Parse decodes an LSX mod descriptor.
func Parse(doc []byte) (*Mod, []string, error) {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(doc, utf8BOM)))

	var (
		stack    []string
		info     attrs
		deps     []attrs
		current  attrs
		warnings []string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%v; %w", err, ErrMalformedMetadata)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "node":
				id := attrValue(t, "id")
				parent := top(stack)
				stack = append(stack, id)

				switch {
				case id == nodeModuleInfo && info == nil:
					info = attrs{}
				case id == nodeShortDesc && parent == nodeDependencies:
					current = attrs{}
				}
			case "attribute":
				id := attrValue(t, "id")
				value := attrValue(t, "value")
				switch top(stack) {
				case nodeModuleInfo:
					if info != nil && len(stack) > 0 {
						info[id] = value
					}
				case nodeShortDesc:
					if current != nil {
						current[id] = value
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local != "node" || len(stack) == 0 {
				continue
			}
			if top(stack) == nodeShortDesc && current != nil {
				deps = append(deps, current)
				current = nil
			}
			stack = stack[:len(stack)-1]
		}
	}

	if info == nil {
		return nil, nil, fmt.Errorf("no %s node; %w", nodeModuleInfo, ErrIncompleteMetadata)
	}

	mod, err := buildMod(info, &warnings)
	if err != nil {
		return nil, warnings, err
	}
	mod.Dependencies = buildDependencies(mod, deps, &warnings)

	return mod, warnings, nil
}

func buildMod(info attrs, warnings *[]string) (*Mod, error) {
	var missing []string
	rawUUID := strings.TrimSpace(info["UUID"])
	if rawUUID == "" {
		missing = append(missing, "UUID")
	}
	name := strings.TrimSpace(info["Name"])
	if name == "" {
		missing = append(missing, "Name")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing %s; %w", strings.Join(missing, ", "), ErrIncompleteMetadata)
	}

	id, ok := canonicalUUID(rawUUID)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("mod %q has non-standard UUID %q", name, rawUUID))
	}

	mod := &Mod{
		UUID:        id,
		Name:        name,
		Folder:      info["Folder"],
		Author:      info["Author"],
		Description: info["Description"],
		MD5:         info["MD5"],
	}

	if attrID, value, ok := info.version(); ok {
		v, err := ParseVersion(attrID, value)
		if err != nil {
			return nil, fmt.Errorf("mod %q; %w", name, err)
		}
		mod.Version = v
	}

	return mod, nil
}

func buildDependencies(mod *Mod, raw []attrs, warnings *[]string) []Dependency {
	deps := make([]Dependency, 0, len(raw))
	for _, a := range raw {
		name := a["Name"]
		rawUUID := strings.TrimSpace(a["UUID"])
		if rawUUID == "" {
			*warnings = append(*warnings, fmt.Sprintf("mod %q: dependency %q has no UUID; skipped", mod.Name, name))
			continue
		}
		id, _ := canonicalUUID(rawUUID)

		dep := Dependency{UUID: id, Name: name, Folder: a["Folder"]}
		if attrID, value, ok := a.version(); ok {
			v, err := ParseVersion(attrID, value)
			switch {
			case err != nil:
				*warnings = append(*warnings, fmt.Sprintf("mod %q: dependency %q has unreadable version %q; constraint ignored", mod.Name, name, value))
			case !v.IsZero():
				dep.MinVersion = &v
			}
		}
		deps = append(deps, dep)
	}
	return deps
}

// canonicalUUID lower-cases and normalises s when it is a valid UUID. Otherwise s is
// returned unchanged with ok=false.
func canonicalUUID(s string) (string, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		return s, false
	}
	return u.String(), true
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func top(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}
