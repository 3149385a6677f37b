package pak

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how an entry payload is stored.
type Compression uint8

// Compression kinds, taken from the low nibble of an entry's flags.
const (
	CompressionNone Compression = 0
	CompressionZlib Compression = 1
	CompressionLZ4  Compression = 2
	CompressionZstd Compression = 3
)

const compressionMask = 0x0F

// maxPayloadSize caps the declared uncompressed size of a single entry.
const maxPayloadSize = 1 << 31

// zstdInitialRatio sizes the first zstd output buffer relative to the compressed payload.
// DecodeAll grows it when a frame inflates further.
const zstdInitialRatio = 8

func compressionFromFlags(flags uint32) Compression {
	return Compression(flags & compressionMask)
}

// String returns a short lower-case name for the compression kind.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// zstdDecoder is shared; DecodeAll is safe for concurrent use.
var zstdDecoder, _ = zstd.NewReader(nil,
	zstd.WithDecoderConcurrency(0),
	zstd.WithDecoderMaxMemory(maxPayloadSize),
)

// decompress decodes src according to kind and checks the result against the declared size.
func decompress(kind Compression, src []byte, size uint64) ([]byte, error) {
	if size > maxPayloadSize {
		return nil, fmt.Errorf("declared size %d exceeds limit; %w", size, ErrCorruptIndex)
	}

	var (
		out []byte
		err error
	)
	switch kind {
	case CompressionNone:
		out = src
	case CompressionZlib:
		out, err = inflateZlib(src, size)
	case CompressionLZ4:
		out, err = inflateLZ4(src, size)
	case CompressionZstd:
		out, err = zstdDecoder.DecodeAll(src, make([]byte, 0, min(size, uint64(len(src))*zstdInitialRatio)))
		if err != nil {
			err = fmt.Errorf("zstd: %v; %w", err, ErrCorruptPayload)
		}
	default:
		return nil, fmt.Errorf("kind %d; %w", uint8(kind), ErrUnsupportedCompression)
	}
	if err != nil {
		return nil, err
	}

	if uint64(len(out)) != size {
		return nil, fmt.Errorf("%s payload is %d bytes, declared %d; %w", kind, len(out), size, ErrPayloadSizeMismatch)
	}
	return out, nil
}

func inflateZlib(src []byte, size uint64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("zlib: %v; %w", err, ErrCorruptPayload)
	}
	defer zr.Close()

	// Read one byte past the declared size so an oversized stream is detected, not truncated.
	out, err := io.ReadAll(io.LimitReader(zr, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("zlib: %v; %w", err, ErrCorruptPayload)
	}
	return out, nil
}

func inflateLZ4(src []byte, size uint64) ([]byte, error) {
	// No block expands past bound, so a larger declared size can never match.
	bound := uint64(len(src))*lz4MaxRatio + 16
	if size > bound {
		return nil, fmt.Errorf("lz4 payload of %d bytes cannot inflate to declared %d; %w", len(src), size, ErrPayloadSizeMismatch)
	}

	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(src, dst)
	if err == nil {
		return dst[:n], nil
	}

	// The block may be valid but larger than declared. Retry with the largest buffer the
	// block could expand into to tell a size mismatch apart from a broken stream.
	if bound == size || bound > maxPayloadSize {
		return nil, fmt.Errorf("lz4: %v; %w", err, ErrCorruptPayload)
	}
	wide := make([]byte, bound)
	n, werr := lz4.UncompressBlock(src, wide)
	if werr != nil {
		return nil, fmt.Errorf("lz4: %v; %w", err, ErrCorruptPayload)
	}
	return wide[:n], nil
}
