// ABOUTME: Capture package
// ABOUTME: Documents backends, sources and error classification
// Package capture provides microphone input for the level monitor.
//
// A Backend enumerates capture devices and opens a Source on one of them.
// Every Source delivers fixed-size chunks of little-endian signed 16-bit mono
// PCM from a blocking Read.
//
// Backends:
//   - malgo: miniaudio through github.com/gen2brain/malgo (default, needs CGO)
//   - portaudio: github.com/gordonklaus/portaudio (build with -tags portaudio)
//   - tone: a synthetic sine wave, no hardware required
//
// NewReaderSource wraps any io.Reader of raw PCM, which is handy for
// piping recordings through the estimator.
//
// Example:
//
//	backend, err := capture.NewBackend(capture.BackendMalgo)
//	if err != nil {
//		return err
//	}
//	defer backend.Close()
//
//	devices, err := backend.Devices()
//	if err != nil {
//		return err
//	}
//	dev, _ := capture.DefaultDevice(devices)
//
//	format := audio.DefaultFormat()
//	src, err := backend.Open(dev, format, format.ChunkBytes(100*time.Millisecond))
//
// Read errors wrapped in TransientError are recoverable; ErrDeviceLost and
// ErrClosed are not.
package capture
