// ABOUTME: Error taxonomy of the PCM output device
// ABOUTME: Sentinels for state/format misuse, typed errors carrying native codes
package device

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrInvalidState is returned when an operation is invoked outside the
	// device state it is valid in.
	ErrInvalidState = errors.New("device: operation invalid in current state")

	// ErrUnsupportedFormat is returned by Configure for sample widths other
	// than 1, 2 or 3 bytes.
	ErrUnsupportedFormat = errors.New("device: unsupported sample width")
)

// OpenError reports a failure to resolve or acquire a named device.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("device: open %q: %v", e.Name, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError reports a failed native write. Code carries the native error
// number when the driver reported one, 0 otherwise.
type WriteError struct {
	Code syscall.Errno
	Err  error
}

func (e *WriteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("device: write failed (errno %d): %v", int(e.Code), e.Err)
	}

	return fmt.Sprintf("device: write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func newWriteError(err error) *WriteError {
	we := &WriteError{Err: err}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		we.Code = errno
	}

	return we
}
