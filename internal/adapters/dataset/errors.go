package dataset

import "errors"

// Sentinel errors for dataset ingestion.
var (
	// ErrInvalidRecord marks a row rejected at ingestion.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrDecode wraps parser failures.
	ErrDecode = errors.New("decode dataset")
)
