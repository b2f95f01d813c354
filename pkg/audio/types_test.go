// ABOUTME: Tests for audio types
// ABOUTME: Tests format sizing and sample conversion functions
package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultFormat(t *testing.T) {
	f := DefaultFormat()
	require.Equal(t, 44100, f.SampleRate)
	require.Equal(t, 1, f.Channels)
	require.Equal(t, 16, f.BitDepth)
	require.Equal(t, 2, f.BytesPerFrame())
}

func TestChunkBytes(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		duration time.Duration
		expected int
	}{
		{"100ms mono", DefaultFormat(), 100 * time.Millisecond, 8820},
		{"1s mono", DefaultFormat(), time.Second, 88200},
		{"stereo", Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, 10 * time.Millisecond, 1920},
		{"never empty", DefaultFormat(), time.Nanosecond, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.format.ChunkBytes(tt.duration))
		})
	}
}

func TestSamplesFromBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []int16
	}{
		{"empty", nil, []int16{}},
		{"zero", []byte{0x00, 0x00}, []int16{0}},
		{"max", []byte{0xFF, 0x7F}, []int16{MaxInt16}},
		{"min", []byte{0x00, 0x80}, []int16{MinInt16}},
		{"minus one", []byte{0xFF, 0xFF}, []int16{-1}},
		{"odd trailing byte", []byte{0x01, 0x00, 0x7F}, []int16{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SamplesFromBytes(tt.input))
		})
	}
}

func TestBytesFromSamples(t *testing.T) {
	samples := []int16{0, 100, -100, MaxInt16, MinInt16}
	pcm := BytesFromSamples(samples)

	require.Len(t, pcm, 10)
	require.Equal(t, []byte{0xFF, 0x7F}, pcm[6:8])
	require.Equal(t, samples, SamplesFromBytes(pcm))
}
