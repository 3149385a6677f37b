package pak

import "errors"

var (
	// ErrNotAPackage is returned when the source does not start with the LSPK signature.
	ErrNotAPackage = errors.New("not an LSPK package")

	// ErrUnsupportedVersion is returned for well-formed packages whose version is outside 15-18.
	// Callers usually skip such packages rather than treat them as broken.
	ErrUnsupportedVersion = errors.New("unsupported package version")

	// ErrCorruptIndex is returned when the header or file index is structurally invalid.
	ErrCorruptIndex = errors.New("corrupt package index")

	// ErrUnsupportedCompression is returned when an entry declares an unknown compression kind.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrPayloadSizeMismatch is returned when a decompressed payload differs from its declared size.
	ErrPayloadSizeMismatch = errors.New("payload size mismatch")

	// ErrCorruptPayload is returned when a compressed payload cannot be decoded.
	ErrCorruptPayload = errors.New("corrupt payload")

	// ErrEntryNotFound is returned when Extract is asked for a name missing from the index.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrMissingPart is returned when an entry lives in an archive part that cannot be opened.
	ErrMissingPart = errors.New("archive part unavailable")
)
