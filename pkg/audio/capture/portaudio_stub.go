//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package capture

import "fmt"

// NewPortAudio reports that PortAudio is not compiled in
func NewPortAudio() (Backend, error) {
	return nil, fmt.Errorf("%w: PortAudio support not enabled (build with -tags portaudio)", ErrUnsupportedBackend)
}
