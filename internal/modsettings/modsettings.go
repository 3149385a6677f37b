// Package modsettings reads and writes the game's modsettings.lsx, which records the
// enabled mods and the order they load in.
package modsettings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/leefowlercu/modorder/internal/fsutil"
	"github.com/leefowlercu/modorder/internal/modmeta"
)

// FileName is the settings file name inside the profile directory.
const FileName = "modsettings.lsx"

// ErrMalformedSettings means the settings file is not well-formed XML.
var ErrMalformedSettings = errors.New("malformed mod settings")

// GustavDev is the base game module the game expects at the head of the load order.
var GustavDev = &modmeta.Mod{
	UUID:    "28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8",
	Name:    "GustavDev",
	Folder:  "GustavDev",
	Version: modmeta.Version{Major: 1},
}

// settingsTemplate is the template for the modsettings.lsx file.
const settingsTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<save>
    <version major="4" minor="0" revision="10" build="400"/>
    <region id="ModuleSettings">
        <node id="root">
            <children>
                <node id="ModOrder">
                    <children>
{{- range .}}
                        <node id="Module">
                            <attribute id="UUID" type="FixedString" value="{{xml .UUID}}"/>
                        </node>
{{- end}}
                    </children>
                </node>
                <node id="Mods">
                    <children>
{{- range .}}
                        <node id="ModuleShortDesc">
                            <attribute id="Folder" type="LSString" value="{{xml .Folder}}"/>
                            <attribute id="MD5" type="LSString" value="{{xml .MD5}}"/>
                            <attribute id="Name" type="LSString" value="{{xml .Name}}"/>
                            <attribute id="UUID" type="FixedString" value="{{xml .UUID}}"/>
                            <attribute id="Version64" type="int64" value="{{.Version.Int64}}"/>
                        </node>
{{- end}}
                    </children>
                </node>
            </children>
        </node>
    </region>
</save>
`

var tmpl = template.Must(template.New("modsettings").Funcs(template.FuncMap{"xml": escape}).Parse(settingsTemplate))

func escape(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write renders mods, in order, as a modsettings.lsx document.
func Write(w io.Writer, mods []*modmeta.Mod) error {
	for i, m := range mods {
		if m == nil {
			return fmt.Errorf("mod %d is nil", i)
		}
	}
	if err := tmpl.Execute(w, mods); err != nil {
		return fmt.Errorf("failed to execute settings template; %w", err)
	}
	return nil
}

// WriteFile renders mods into path, replacing any existing file atomically.
func WriteFile(path string, mods []*modmeta.Mod) error {
	var buf bytes.Buffer
	if err := Write(&buf, mods); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s; %w", path, err)
	}
	return nil
}

// Module is one Mods/ModuleShortDesc entry of a settings file.
type Module struct {
	UUID    string
	Name    string
	Folder  string
	MD5     string
	Version modmeta.Version
}

// Settings is the parsed content of a settings file.
type Settings struct {
	// Order lists the UUIDs under ModOrder.
	Order []string
	// Modules lists the Mods section in document order.
	Modules []Module
}

// Module returns the Mods entry for uuid.
func (s *Settings) Module(uuid string) (Module, bool) {
	for _, m := range s.Modules {
		if strings.EqualFold(m.UUID, uuid) {
			return m, true
		}
	}
	return Module{}, false
}

// Read parses a settings document. Mods entries without a UUID are ignored.
func Read(r io.Reader) (*Settings, error) {
	dec := xml.NewDecoder(r)
	settings := &Settings{}

	var (
		stack []string
		attrs map[string]string
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%v; %w", err, ErrMalformedSettings)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "node":
				stack = append(stack, attr(t, "id"))
				attrs = map[string]string{}
			case "attribute":
				if attrs != nil {
					attrs[attr(t, "id")] = attr(t, "value")
				}
			}
		case xml.EndElement:
			if t.Name.Local != "node" || len(stack) < 2 {
				stack = trim(stack, t)
				continue
			}
			id, parent := stack[len(stack)-1], stack[len(stack)-2]
			switch {
			case id == "Module" && parent == "ModOrder" && attrs["UUID"] != "":
				settings.Order = append(settings.Order, attrs["UUID"])
			case id == "ModuleShortDesc" && parent == "Mods" && attrs["UUID"] != "":
				settings.Modules = append(settings.Modules, module(attrs))
			}
			stack = stack[:len(stack)-1]
			attrs = nil
		}
	}
	return settings, nil
}

// ReadOrder returns the UUIDs listed under ModOrder.
func ReadOrder(r io.Reader) ([]string, error) {
	s, err := Read(r)
	if err != nil {
		return nil, err
	}
	return s.Order, nil
}

func module(attrs map[string]string) Module {
	m := Module{
		UUID:   attrs["UUID"],
		Name:   attrs["Name"],
		Folder: attrs["Folder"],
		MD5:    attrs["MD5"],
	}
	if raw, ok := attrs["Version64"]; ok {
		// An unreadable version leaves the zero value; the order is still usable.
		m.Version, _ = modmeta.ParseVersion("Version64", raw)
	}
	return m
}

func trim(stack []string, t xml.EndElement) []string {
	if t.Name.Local == "node" && len(stack) > 0 {
		return stack[:len(stack)-1]
	}
	return stack
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// ReadFile parses the settings file at path.
func ReadFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings; %w", err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s; %w", path, err)
	}
	return s, nil
}
