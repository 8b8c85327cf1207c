package vision

import (
	"errors"
	"fmt"
)

// Sentinel errors for the camera session. Check with errors.Is.
var (
	// ErrDeviceUnavailable indicates the requested index could not be opened.
	ErrDeviceUnavailable = errors.New("camera unavailable")

	// ErrNotOpen indicates an operation that needs an open camera ran while closed.
	ErrNotOpen = errors.New("camera not open")

	// ErrReadFailure indicates the device returned no frame.
	ErrReadFailure = errors.New("failed to read frame")

	// ErrEncodeFailure indicates the encoder rejected a frame.
	ErrEncodeFailure = errors.New("encode failed")

	// ErrInvalidArgument indicates a request that cannot be carried out as given.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Compile-time verification that FilesystemError unwraps.
var _ interface{ Unwrap() error } = (*FilesystemError)(nil)

// FilesystemError indicates directory creation or a file write failed.
type FilesystemError struct {
	Op   string // "mkdir" or "write"
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	if e.Op == "mkdir" {
		return fmt.Sprintf("failed to create directory %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to write file %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// openError reports a failed open in the form callers display verbatim.
type openError struct {
	index   int
	backend string
	err     error
}

func (e *openError) Error() string {
	return fmt.Sprintf("failed to open camera index %d (backend=%s)", e.index, e.backend)
}

func (e *openError) Unwrap() []error {
	return []error{ErrDeviceUnavailable, e.err}
}
