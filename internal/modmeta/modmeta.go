// Package modmeta extracts mod descriptors (meta.lsx) from LSPK packages.
package modmeta

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/leefowlercu/modorder/internal/pak"
)

var (
	// ErrNoMetadata means the package has no descriptor; it is an asset-only package.
	ErrNoMetadata = errors.New("package has no mod metadata")

	// ErrIncompleteMetadata means the descriptor lacks a UUID or a name.
	ErrIncompleteMetadata = errors.New("incomplete mod metadata")

	// ErrInvalidVersion means a version attribute could not be decoded.
	ErrInvalidVersion = errors.New("invalid version")
)

// MetaPattern matches the descriptor entry inside a package.
const MetaPattern = "Mods/*/meta.lsx"

const metaFileName = "meta.lsx"

// Mod is one mod's identity as declared by its descriptor.
type Mod struct {
	UUID         string       `json:"uuid"`
	Name         string       `json:"name"`
	Folder       string       `json:"folder,omitempty"`
	Author       string       `json:"author,omitempty"`
	Description  string       `json:"description,omitempty"`
	MD5          string       `json:"md5,omitempty"`
	Version      Version      `json:"version"`
	Dependencies []Dependency `json:"dependencies,omitempty"`

	// Source is the package the descriptor was read from.
	Source string `json:"source,omitempty"`
}

// Dependency is a reference to another mod that must load first.
type Dependency struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name,omitempty"`
	Folder string `json:"folder,omitempty"`
	// MinVersion is nil when the descriptor declares no usable version constraint.
	MinVersion *Version `json:"min_version,omitempty"`
}

// FindMetaEntry returns the descriptor entry of pkg. Entries under Mods/<folder>/ are
// preferred; any other */meta.lsx is accepted as a fallback.
func FindMetaEntry(pkg *pak.Package) (pak.Entry, bool) {
	var fallback *pak.Entry
	for _, e := range pkg.Entries() {
		if ok, _ := path.Match(MetaPattern, e.Name); ok {
			return e, true
		}
		if fallback == nil && strings.HasSuffix(e.Name, "/"+metaFileName) {
			fallback = &e
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return pak.Entry{}, false
}

// Extract reads and parses the descriptor of pkg. The returned warnings describe
// dependency entries that were skipped or weakened; they never prevent extraction.
func Extract(pkg *pak.Package) (*Mod, []string, error) {
	entry, ok := FindMetaEntry(pkg)
	if !ok {
		return nil, nil, ErrNoMetadata
	}

	doc, err := pkg.ExtractEntry(entry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s; %w", entry.Name, err)
	}

	mod, warnings, err := Parse(doc)
	if err != nil {
		return nil, warnings, fmt.Errorf("failed to parse %s; %w", entry.Name, err)
	}
	mod.Source = pkg.Path()
	return mod, warnings, nil
}
