// Package pak reads LSPK package archives (format versions 15 through 18).
//
// A package is opened once, which validates the header and decodes the file index.
// Entry payloads stay in the underlying byte source until Extract is called, at which
// point they are bounds-checked, decompressed, and verified against the declared size.
package pak

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/exp/mmap"
)

// source is a random-access byte source with a known length.
type source struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer
}

// Package is an opened LSPK archive.
type Package struct {
	header  Header
	entries []Entry
	byName  map[string]int

	main source
	// path is empty for in-memory packages, which cannot resolve extra parts.
	path string

	mu     sync.Mutex
	parts  map[uint32]source
	closed bool
}

// Open memory-maps the package at path and parses its header and index.
func Open(path string) (*Package, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open package %s; %w", path, err)
	}

	p, err := newPackage(source{r: m, size: int64(m.Len()), closer: m})
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	p.path = path
	return p, nil
}

// OpenBytes parses a package held entirely in memory. The slice must not be modified
// while the package is in use.
func OpenBytes(data []byte) (*Package, error) {
	return newPackage(source{r: bytes.NewReader(data), size: int64(len(data))})
}

// NewReader parses a package from any random-access reader of the given size.
func NewReader(r io.ReaderAt, size int64) (*Package, error) {
	return newPackage(source{r: r, size: size})
}

func newPackage(src source) (*Package, error) {
	head := make([]byte, headerSizeV16)
	n, err := src.r.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header; %w", err)
	}

	h, lay, err := parseHeader(head[:n], src.size)
	if err != nil {
		return nil, err
	}

	entries, err := readIndex(src.r, src.size, h, lay)
	if err != nil {
		return nil, err
	}

	p := &Package{
		header:  h,
		entries: entries,
		byName:  make(map[string]int, len(entries)),
		main:    src,
		parts:   make(map[uint32]source),
	}
	for i, e := range entries {
		if e.Part == 0 {
			if err := checkBounds(e, src.size); err != nil {
				return nil, err
			}
		}
		// First occurrence wins for duplicate names.
		if _, dup := p.byName[e.Name]; !dup {
			p.byName[e.Name] = i
		}
	}

	return p, nil
}

func checkBounds(e Entry, size int64) error {
	end := e.Offset + e.CompressedSize
	if end < e.Offset || end > uint64(size) {
		return fmt.Errorf("entry %q at %d+%d exceeds %d byte source; %w",
			e.Name, e.Offset, e.CompressedSize, size, ErrCorruptIndex)
	}
	return nil
}

// Version returns the format revision of the package.
func (p *Package) Version() uint32 {
	return p.header.Version
}

// Header returns the decoded package header.
func (p *Package) Header() Header {
	return p.header
}

// Path returns the file the package was opened from, or "" for in-memory packages.
func (p *Package) Path() string {
	return p.path
}

// Entries returns the file index in on-disk order.
func (p *Package) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Find looks up an entry by its exact name.
func (p *Package) Find(name string) (Entry, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Extract returns the decompressed payload of the named entry.
func (p *Package) Extract(name string) ([]byte, error) {
	e, ok := p.Find(name)
	if !ok {
		return nil, fmt.Errorf("%q; %w", name, ErrEntryNotFound)
	}
	return p.ExtractEntry(e)
}

// ExtractEntry returns the decompressed payload of e, which must come from this package's index.
func (p *Package) ExtractEntry(e Entry) ([]byte, error) {
	src, err := p.partSource(e.Part)
	if err != nil {
		return nil, err
	}
	if err := checkBounds(e, src.size); err != nil {
		return nil, err
	}

	raw := make([]byte, e.CompressedSize)
	if _, err := src.r.ReadAt(raw, int64(e.Offset)); err != nil && !(errors.Is(err, io.EOF) && e.CompressedSize == 0) {
		return nil, fmt.Errorf("failed to read entry %q; %w", e.Name, err)
	}

	data, err := decompress(e.Compression, raw, e.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %q; %w", e.Name, err)
	}
	return data, nil
}

// partSource returns the byte source holding the given archive part, opening it on first use.
func (p *Package) partSource(part uint32) (source, error) {
	if part == 0 {
		return p.main, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return source{}, fmt.Errorf("package is closed; %w", ErrMissingPart)
	}
	if s, ok := p.parts[part]; ok {
		return s, nil
	}
	if p.path == "" {
		return source{}, fmt.Errorf("part %d of in-memory package; %w", part, ErrMissingPart)
	}

	partPath := PartPath(p.path, part)
	m, err := mmap.Open(partPath)
	if err != nil {
		return source{}, fmt.Errorf("part %d (%s): %v; %w", part, partPath, err, ErrMissingPart)
	}
	s := source{r: m, size: int64(m.Len()), closer: m}
	p.parts[part] = s
	return s, nil
}

// PartPath returns the file name of an extra archive part, e.g. "Mod_1.pak" for part 1 of "Mod.pak".
func PartPath(path string, part uint32) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%d%s", base, part, ext)
}

// Close releases the byte source and any opened archive parts.
func (p *Package) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for _, s := range p.parts {
		if s.closer != nil {
			errs = append(errs, s.closer.Close())
		}
	}
	if p.main.closer != nil {
		errs = append(errs, p.main.closer.Close())
	}
	return errors.Join(errs...)
}
