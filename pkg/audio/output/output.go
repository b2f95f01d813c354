// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

// Output represents an audio output device
type Output interface {
	// Open initializes the output device for s16le PCM
	Open(sampleRate, channels int) error

	// Write outputs PCM (blocks until written)
	Write(pcm []byte) error

	// Close releases output resources
	Close() error
}
