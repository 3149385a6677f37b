package modmeta

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is a four-part mod version.
type Version struct {
	Major    uint32
	Minor    uint32
	Revision uint32
	Build    uint32
}

// Bit layout of the packed Version64 attribute.
const (
	v64MajorShift    = 55
	v64MinorShift    = 47
	v64RevisionShift = 31
	v64MinorMask     = 0xFF
	v64RevisionMask  = 0xFFFF
	v64BuildMask     = 0x7FFFFFFF
)

// ParseVersion decodes a version attribute. attrID selects the encoding: "Version64" is the
// 64-bit packed form, "Version" the legacy 32-bit packed form. Dotted "1.2.3.4" strings are
// accepted for either.
func ParseVersion(attrID, value string) (Version, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Version{}, fmt.Errorf("empty %s; %w", attrID, ErrInvalidVersion)
	}

	if strings.Contains(value, ".") {
		return parseDotted(value)
	}

	if attrID == "Version" {
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			// Some tools write the legacy attribute as a signed value.
			s, serr := strconv.ParseInt(value, 10, 32)
			if serr != nil {
				return Version{}, fmt.Errorf("%s %q; %w", attrID, value, ErrInvalidVersion)
			}
			n = uint64(uint32(s))
		}
		return unpackVersion32(uint32(n)), nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return Version{}, fmt.Errorf("%s %q; %w", attrID, value, ErrInvalidVersion)
	}
	return unpackVersion64(n), nil
}

func parseDotted(value string) (Version, error) {
	parts := strings.Split(value, ".")
	if len(parts) > 4 {
		return Version{}, fmt.Errorf("%q has %d components; %w", value, len(parts), ErrInvalidVersion)
	}

	var nums [4]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("%q; %w", value, ErrInvalidVersion)
		}
		nums[i] = uint32(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Revision: nums[2], Build: nums[3]}, nil
}

func unpackVersion64(n int64) Version {
	u := uint64(n)
	return Version{
		Major:    uint32(u >> v64MajorShift),
		Minor:    uint32((u >> v64MinorShift) & v64MinorMask),
		Revision: uint32((u >> v64RevisionShift) & v64RevisionMask),
		Build:    uint32(u & v64BuildMask),
	}
}

func unpackVersion32(n uint32) Version {
	return Version{
		Major:    n >> 28,
		Minor:    (n >> 24) & 0xF,
		Revision: (n >> 16) & 0xFF,
		Build:    n & 0xFFFF,
	}
}

// Int64 packs v into the Version64 representation used by modsettings.lsx.
func (v Version) Int64() int64 {
	return int64(uint64(v.Major)<<v64MajorShift |
		uint64(v.Minor&v64MinorMask)<<v64MinorShift |
		uint64(v.Revision&v64RevisionMask)<<v64RevisionShift |
		uint64(v.Build&v64BuildMask))
}

// Compare returns -1, 0, or +1 depending on whether v sorts before, equal to, or after o.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Revision, o.Revision); c != 0 {
		return c
	}
	return cmp.Compare(v.Build, o.Build)
}

// IsZero reports whether no version was declared.
func (v Version) IsZero() bool {
	return v == Version{}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Revision, v.Build)
}

// MarshalText renders the version in dotted form so JSON output and the cache store
// "1.2.3.4" rather than a struct.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses the dotted form written by MarshalText.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := parseDotted(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
