// ABOUTME: Audio type definitions
// ABOUTME: Defines the capture format and s16le sample conversions
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// 16-bit audio range constants
	MaxInt16 = 32767  // 2^15 - 1
	MinInt16 = -32768 // -2^15

	// Capture defaults used by every backend
	DefaultSampleRate = 44100
	DefaultChannels   = 1
	DefaultBitDepth   = 16
)

// Format describes a PCM capture stream
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns 44.1kHz mono 16-bit, the only format the monitor consumes
func DefaultFormat() Format {
	return Format{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// BytesPerFrame returns the size of one sample frame (all channels)
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// ChunkBytes returns the byte length of a chunk covering d at this format,
// rounded down to a whole frame and never less than one frame
func (f Format) ChunkBytes(d time.Duration) int {
	frames := int(int64(f.SampleRate) * int64(d) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	return frames * f.BytesPerFrame()
}

// SampleAt decodes the little-endian int16 sample at index i
func SampleAt(pcm []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(pcm[i*2:]))
}

// SamplesFromBytes decodes s16le PCM into samples. A trailing odd byte is ignored.
func SamplesFromBytes(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = SampleAt(pcm, i)
	}
	return samples
}

// BytesFromSamples encodes samples as s16le PCM
func BytesFromSamples(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
