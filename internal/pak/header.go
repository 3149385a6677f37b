package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Signature is the four-byte magic at the start of every supported package.
var Signature = [4]byte{'L', 'S', 'P', 'K'}

// Supported format revisions.
const (
	MinVersion = 15
	MaxVersion = 18
)

const (
	// prefixSize covers the signature and the version field, which every revision shares.
	prefixSize = 8

	headerSizeV15 = 38
	headerSizeV16 = 40

	nameFieldSize    = 256
	wideEntrySize    = 296
	compactEntrySize = 272

	// fileListHeaderSize is the entry count plus the compressed list size.
	fileListHeaderSize = 8
)

// Header is the fixed-size package header.
type Header struct {
	Version        uint32
	FileListOffset uint64
	FileListSize   uint32
	Flags          uint8
	Priority       uint8
	MD5            [16]byte
	// NumParts is the number of archive parts; v15 predates multi-part archives and reports 1.
	NumParts uint16
}

// HasMD5 reports whether the header carries a non-zero content digest.
func (h Header) HasMD5() bool {
	return h.MD5 != [16]byte{}
}

// layout describes how one format revision lays out its header and file index.
type layout struct {
	headerSize  int
	entrySize   int
	decodeEntry func(b []byte) Entry
}

// layouts maps each supported version to its parsing strategy.
var layouts = map[uint32]layout{
	15: {headerSize: headerSizeV15, entrySize: wideEntrySize, decodeEntry: decodeWideEntry},
	16: {headerSize: headerSizeV16, entrySize: wideEntrySize, decodeEntry: decodeWideEntry},
	17: {headerSize: headerSizeV16, entrySize: compactEntrySize, decodeEntry: decodeCompactEntry},
	18: {headerSize: headerSizeV16, entrySize: compactEntrySize, decodeEntry: decodeCompactEntry},
}

// parseHeader validates the signature and version, then decodes the revision-specific header.
// size is the total length of the byte source.
func parseHeader(buf []byte, size int64) (Header, layout, error) {
	if size < prefixSize || len(buf) < prefixSize {
		return Header{}, layout{}, fmt.Errorf("source is %d bytes; %w", size, ErrNotAPackage)
	}
	if !bytes.Equal(buf[:4], Signature[:]) {
		return Header{}, layout{}, fmt.Errorf("signature %q; %w", buf[:4], ErrNotAPackage)
	}

	version := binary.LittleEndian.Uint32(buf[4:8])
	lay, ok := layouts[version]
	if !ok {
		return Header{}, layout{}, fmt.Errorf("version %d; %w", version, ErrUnsupportedVersion)
	}

	if size < int64(lay.headerSize) || len(buf) < lay.headerSize {
		return Header{}, layout{}, fmt.Errorf("truncated v%d header (%d bytes); %w", version, size, ErrCorruptIndex)
	}

	h := Header{
		Version:        version,
		FileListOffset: binary.LittleEndian.Uint64(buf[8:16]),
		FileListSize:   binary.LittleEndian.Uint32(buf[16:20]),
		Flags:          buf[20],
		Priority:       buf[21],
		NumParts:       1,
	}
	copy(h.MD5[:], buf[22:38])
	if lay.headerSize >= headerSizeV16 {
		h.NumParts = binary.LittleEndian.Uint16(buf[38:40])
	}

	return h, lay, nil
}
