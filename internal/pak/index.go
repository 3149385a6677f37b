package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// maxEntries caps the declared entry count before any allocation happens.
const maxEntries = 1 << 20

// lz4MaxRatio bounds how far an LZ4 block can expand; a list claiming more is corrupt.
const lz4MaxRatio = 255

// Entry describes one file stored in a package. Payload bytes are not loaded until extraction.
type Entry struct {
	Name             string
	Offset           uint64
	CompressedSize   uint64
	UncompressedSize uint64
	Compression      Compression
	Part             uint32
	Flags            uint32
	// CRC is the stored content checksum. Only the wide (v15/v16) layout carries one.
	CRC uint32
}

// readIndex loads and decodes the file list described by h.
func readIndex(r io.ReaderAt, size int64, h Header, lay layout) ([]Entry, error) {
	listEnd := h.FileListOffset + uint64(h.FileListSize)
	if h.FileListOffset > uint64(size) || listEnd > uint64(size) || listEnd < h.FileListOffset {
		return nil, fmt.Errorf("file list at %d+%d exceeds source size %d; %w",
			h.FileListOffset, h.FileListSize, size, ErrCorruptIndex)
	}
	if h.FileListSize < fileListHeaderSize {
		return nil, fmt.Errorf("file list size %d is smaller than its header; %w", h.FileListSize, ErrCorruptIndex)
	}

	list := make([]byte, h.FileListSize)
	if _, err := r.ReadAt(list, int64(h.FileListOffset)); err != nil {
		return nil, fmt.Errorf("failed to read file list; %v; %w", err, ErrCorruptIndex)
	}

	count := binary.LittleEndian.Uint32(list[0:4])
	compressed := binary.LittleEndian.Uint32(list[4:8])
	if uint64(compressed) > uint64(len(list)-fileListHeaderSize) {
		return nil, fmt.Errorf("compressed list size %d exceeds stored list of %d bytes; %w",
			compressed, len(list)-fileListHeaderSize, ErrCorruptIndex)
	}

	want := uint64(count) * uint64(lay.entrySize)
	if count > maxEntries || want > uint64(compressed)*lz4MaxRatio+16 {
		return nil, fmt.Errorf("entry count %d cannot fit in a %d byte list; %w", count, compressed, ErrCorruptIndex)
	}
	if count == 0 {
		return []Entry{}, nil
	}

	raw := make([]byte, want)
	n, err := lz4.UncompressBlock(list[fileListHeaderSize:fileListHeaderSize+int(compressed)], raw)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate file list; %v; %w", err, ErrCorruptIndex)
	}
	if uint64(n) != want {
		return nil, fmt.Errorf("file list inflated to %d bytes, want %d; %w", n, want, ErrCorruptIndex)
	}

	entries := make([]Entry, 0, count)
	for off := 0; off < len(raw); off += lay.entrySize {
		e := lay.decodeEntry(raw[off : off+lay.entrySize])
		if e.Compression == CompressionNone && e.UncompressedSize == 0 {
			e.UncompressedSize = e.CompressedSize
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// decodeWideEntry decodes the 296-byte entry used by v15 and v16.
func decodeWideEntry(b []byte) Entry {
	flags := binary.LittleEndian.Uint32(b[284:288])
	return Entry{
		Name:             trimName(b[:nameFieldSize]),
		Offset:           binary.LittleEndian.Uint64(b[256:264]),
		CompressedSize:   binary.LittleEndian.Uint64(b[264:272]),
		UncompressedSize: binary.LittleEndian.Uint64(b[272:280]),
		Part:             binary.LittleEndian.Uint32(b[280:284]),
		Flags:            flags,
		Compression:      compressionFromFlags(flags),
		CRC:              binary.LittleEndian.Uint32(b[288:292]),
	}
}

// decodeCompactEntry decodes the 272-byte entry used by v17 and v18.
// The offset is split into a 32-bit low word and a 16-bit high word.
func decodeCompactEntry(b []byte) Entry {
	low := uint64(binary.LittleEndian.Uint32(b[256:260]))
	high := uint64(binary.LittleEndian.Uint16(b[260:262]))
	flags := uint32(b[263])
	return Entry{
		Name:             trimName(b[:nameFieldSize]),
		Offset:           low | high<<32,
		Part:             uint32(b[262]),
		Flags:            flags,
		Compression:      compressionFromFlags(flags),
		CompressedSize:   uint64(binary.LittleEndian.Uint32(b[264:268])),
		UncompressedSize: uint64(binary.LittleEndian.Uint32(b[268:272])),
	}
}

// trimName returns the NUL-terminated prefix of a fixed-width name field.
func trimName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
