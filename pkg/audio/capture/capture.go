// ABOUTME: Audio capture interfaces
// ABOUTME: Common Source and Backend abstractions over microphone input
package capture

import (
	"fmt"
	"strings"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

// Backend names accepted by NewBackend
const (
	BackendMalgo     = "malgo"
	BackendPortAudio = "portaudio"
	BackendTone      = "tone"
)

// Backends lists every backend name in preference order
var Backends = []string{BackendMalgo, BackendPortAudio, BackendTone}

// Device identifies a capture-capable input device
type Device struct {
	ID      string
	Name    string
	Default bool
}

// String returns the display name, marking the system default
func (d Device) String() string {
	if d.Default {
		return d.Name + " (default)"
	}
	return d.Name
}

// Source is an open microphone stream
type Source interface {
	// Read blocks until the next chunk of s16le PCM is available and copies
	// it into p. p should be ChunkBytes long. Returns the number of bytes read.
	Read(p []byte) (int, error)

	// Format returns the stream format
	Format() audio.Format

	// ChunkBytes returns the chunk size Read delivers
	ChunkBytes() int

	// Close stops the stream and releases the device
	Close() error
}

// Backend enumerates devices and opens streams on one audio API
type Backend interface {
	// Name returns the backend name
	Name() string

	// Devices lists capture-capable devices
	Devices() ([]Device, error)

	// Open starts a stream on dev delivering chunkBytes per Read
	Open(dev Device, format audio.Format, chunkBytes int) (Source, error)

	// Close releases the backend context
	Close() error
}

// NewBackend initializes the named backend
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", BackendMalgo:
		return NewMalgo()
	case BackendPortAudio:
		return NewPortAudio()
	case BackendTone:
		return NewTone(ToneConfig{Pace: true}), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedBackend, name, strings.Join(Backends, ", "))
	}
}

// FindDevice returns the device whose name equals name, or failing that the
// first one whose name contains it case-insensitively
func FindDevice(devices []Device, name string) (Device, error) {
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	needle := strings.ToLower(name)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// DefaultDevice returns the device flagged as default, or the first one
func DefaultDevice(devices []Device) (Device, error) {
	if len(devices) == 0 {
		return Device{}, ErrNoDevices
	}
	for _, d := range devices {
		if d.Default {
			return d, nil
		}
	}
	return devices[0], nil
}

func validateOpen(format audio.Format, chunkBytes int) error {
	if format.Channels != 1 || format.BitDepth != 16 {
		return fmt.Errorf("capture: unsupported format %dch/%dbit (need mono 16-bit)", format.Channels, format.BitDepth)
	}
	if format.SampleRate <= 0 {
		return fmt.Errorf("capture: invalid sample rate %d", format.SampleRate)
	}
	if chunkBytes <= 0 || chunkBytes%format.BytesPerFrame() != 0 {
		return fmt.Errorf("capture: chunk size %d is not a positive multiple of %d", chunkBytes, format.BytesPerFrame())
	}
	return nil
}
