package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression kinds understood by the fixture builder. They mirror the on-disk flag values.
const (
	CompressNone uint8 = 0
	CompressZlib uint8 = 1
	CompressLZ4  uint8 = 2
	CompressZstd uint8 = 3
)

// PackageFile is one file placed into a fixture package.
type PackageFile struct {
	Name        string
	Data        []byte
	Compression uint8

	// DeclaredSize, when non-zero, replaces the uncompressed size written to the index.
	DeclaredSize uint64

	// Part is the archive part recorded in the index. The payload is still written to the
	// main file; tests use it to exercise part resolution.
	Part uint32
}

// PackageSpec describes a whole fixture package.
type PackageSpec struct {
	Version  uint32
	Priority uint8
	MD5      [16]byte
	NumParts uint16
	Files    []PackageFile
}

// BuildPackage returns the bytes of an LSPK package of the given version holding files.
func BuildPackage(t testing.TB, version uint32, files ...PackageFile) []byte {
	t.Helper()
	return BuildPackageSpec(t, PackageSpec{Version: version, Files: files})
}

// WritePackage builds a package and writes it to dir/name, returning the full path.
func WritePackage(t testing.TB, dir, name string, version uint32, files ...PackageFile) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildPackage(t, version, files...), 0644); err != nil {
		t.Fatalf("failed to write package %s: %v", path, err)
	}
	return path
}

// BuildPackageSpec serializes spec. Payloads follow the header; the LZ4-compressed file
// list is appended last.
func BuildPackageSpec(t testing.TB, spec PackageSpec) []byte {
	t.Helper()

	headerSize := 40
	if spec.Version == 15 {
		headerSize = 38
	}
	wide := spec.Version == 15 || spec.Version == 16

	var body bytes.Buffer
	body.Write(make([]byte, headerSize))

	var list bytes.Buffer
	for _, f := range spec.Files {
		stored := compressPayload(t, f.Compression, f.Data)
		offset := uint64(body.Len())
		body.Write(stored)

		size := uint64(len(f.Data))
		if f.DeclaredSize != 0 {
			size = f.DeclaredSize
		}

		name := make([]byte, 256)
		copy(name, f.Name)
		list.Write(name)

		if wide {
			writeLE(&list, offset)
			writeLE(&list, uint64(len(stored)))
			writeLE(&list, size)
			writeLE(&list, f.Part)
			writeLE(&list, uint32(f.Compression))
			writeLE(&list, uint32(0)) // crc
			writeLE(&list, uint32(0))
		} else {
			writeLE(&list, uint32(offset))
			writeLE(&list, uint16(offset>>32))
			list.WriteByte(byte(f.Part))
			list.WriteByte(f.Compression)
			writeLE(&list, uint32(len(stored)))
			writeLE(&list, uint32(size))
		}
	}

	compressed := compressLZ4(t, list.Bytes())
	listOffset := uint64(body.Len())
	writeLE(&body, uint32(len(spec.Files)))
	writeLE(&body, uint32(len(compressed)))
	body.Write(compressed)

	out := body.Bytes()
	copy(out[0:4], "LSPK")
	binary.LittleEndian.PutUint32(out[4:8], spec.Version)
	binary.LittleEndian.PutUint64(out[8:16], listOffset)
	binary.LittleEndian.PutUint32(out[16:20], uint32(8+len(compressed)))
	out[20] = 0
	out[21] = spec.Priority
	copy(out[22:38], spec.MD5[:])
	if headerSize == 40 {
		parts := spec.NumParts
		if parts == 0 {
			parts = 1
		}
		binary.LittleEndian.PutUint16(out[38:40], parts)
	}

	return out
}

func compressPayload(t testing.TB, kind uint8, data []byte) []byte {
	t.Helper()

	switch kind {
	case CompressZlib:
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			t.Fatalf("zlib write failed: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("zlib close failed: %v", err)
		}
		return buf.Bytes()
	case CompressLZ4:
		return compressLZ4(t, data)
	case CompressZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatalf("zstd encoder failed: %v", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil)
	default:
		// Stored and unknown kinds are written verbatim.
		return append([]byte(nil), data...)
	}
}

func compressLZ4(t testing.TB, data []byte) []byte {
	t.Helper()

	// A destination of CompressBlockBound size always receives output, even for
	// incompressible input.
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		t.Fatalf("lz4 compress failed: %v", err)
	}
	return dst[:n]
}

func writeLE(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}
