// ABOUTME: Capture error taxonomy
// ABOUTME: Separates transient read hiccups from terminal device failures
package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevices means the backend found no capture-capable device
	ErrNoDevices = errors.New("capture: no microphone found")

	// ErrDeviceNotFound means no device matched the requested name
	ErrDeviceNotFound = errors.New("capture: device not found")

	// ErrDeviceLost means the device stopped delivering audio (unplugged,
	// permission revoked). It is terminal.
	ErrDeviceLost = errors.New("capture: device lost")

	// ErrClosed is returned by Read after Close
	ErrClosed = errors.New("capture: source closed")

	// ErrUnsupportedBackend means the backend is unknown or not compiled in
	ErrUnsupportedBackend = errors.New("capture: unsupported backend")
)

// TransientError wraps a read failure the stream recovers from on its own
// (buffer overrun, timeout)
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("capture: transient %s error: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
