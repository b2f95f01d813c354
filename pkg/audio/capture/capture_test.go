// ABOUTME: Tests for capture helpers and the hardware-free sources
// ABOUTME: Covers device lookup, error classification, tone and reader sources
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/micmonitor/micmonitor/pkg/audio"
	"github.com/micmonitor/micmonitor/pkg/audio/level"
)

var testDevices = []Device{
	{ID: "0", Name: "Built-in Microphone"},
	{ID: "1", Name: "USB Audio Device", Default: true},
	{ID: "2", Name: "USB"},
}

func TestFindDevice(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantID string
	}{
		{"exact beats substring", "USB", "2"},
		{"case-insensitive substring", "built-in", "0"},
		{"substring first match", "audio", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FindDevice(testDevices, tt.query)
			require.NoError(t, err)
			require.Equal(t, tt.wantID, d.ID)
		})
	}

	_, err := FindDevice(testDevices, "webcam")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestDefaultDevice(t *testing.T) {
	d, err := DefaultDevice(testDevices)
	require.NoError(t, err)
	require.Equal(t, "1", d.ID)

	d, err = DefaultDevice(testDevices[:1])
	require.NoError(t, err)
	require.Equal(t, "0", d.ID, "falls back to the first device")

	_, err = DefaultDevice(nil)
	require.ErrorIs(t, err, ErrNoDevices)
}

func TestDeviceString(t *testing.T) {
	require.Equal(t, "USB Audio Device (default)", testDevices[1].String())
	require.Equal(t, "USB", testDevices[2].String())
}

func TestIsTransient(t *testing.T) {
	overrun := &TransientError{Op: "read", Err: errors.New("input overflowed")}

	require.True(t, IsTransient(overrun))
	require.True(t, IsTransient(fmt.Errorf("wrapped: %w", overrun)))
	require.False(t, IsTransient(ErrDeviceLost))
	require.False(t, IsTransient(nil))
	require.Contains(t, overrun.Error(), "input overflowed")
}

func TestNewBackendUnknown(t *testing.T) {
	_, err := NewBackend("jack")
	require.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestNewBackendTone(t *testing.T) {
	b, err := NewBackend(BackendTone)
	require.NoError(t, err)
	require.Equal(t, BackendTone, b.Name())
	require.NoError(t, b.Close())
}

func TestValidateOpen(t *testing.T) {
	format := audio.DefaultFormat()

	require.NoError(t, validateOpen(format, 8820))
	require.Error(t, validateOpen(format, 0))
	require.Error(t, validateOpen(format, 8821), "odd chunk splits a sample")
	require.Error(t, validateOpen(audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, 8820))
	require.Error(t, validateOpen(audio.Format{SampleRate: 0, Channels: 1, BitDepth: 16}, 8820))
}

func TestToneSource(t *testing.T) {
	backend := NewTone(ToneConfig{})
	devices, err := backend.Devices()
	require.NoError(t, err)
	require.Len(t, devices, 1)

	format := audio.DefaultFormat()
	chunk := format.ChunkBytes(100 * time.Millisecond)
	require.Equal(t, 8820, chunk)

	src, err := backend.Open(devices[0], format, chunk)
	require.NoError(t, err)
	require.Equal(t, chunk, src.ChunkBytes())
	require.Equal(t, format, src.Format())

	buf := make([]byte, chunk)
	n, err := src.Read(buf)
	require.NoError(t, err)
	require.Equal(t, chunk, n)

	// half-scale sine: RMS ~0.354, times gain 200 is ~70.7
	v := level.Volume(buf)
	require.InDelta(t, 70.7, v, 1.0)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
	_, err = src.Read(buf)
	require.ErrorIs(t, err, ErrClosed)
}

func TestTonePacedReadUnblocksOnClose(t *testing.T) {
	format := audio.DefaultFormat()
	src, err := NewTone(ToneConfig{Pace: true}).Open(Device{}, format, format.ChunkBytes(10*time.Second))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := src.Read(make([]byte, src.ChunkBytes()))
		done <- err
	}()

	require.NoError(t, src.Close())
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("paced read did not return after Close")
	}
}

func TestReaderSource(t *testing.T) {
	pcm := audio.BytesFromSamples([]int16{1, 2, 3, 4, 5})
	pcm = append(pcm, 0xFF) // dangling byte

	src, err := NewReaderSource(bytes.NewReader(pcm), audio.DefaultFormat(), 4)
	require.NoError(t, err)

	buf := make([]byte, 4)
	var got []int16
	for {
		n, err := src.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, audio.SamplesFromBytes(buf[:n])...)
	}
	require.Equal(t, []int16{1, 2, 3, 4, 5}, got)

	require.NoError(t, src.Close())
	_, err = src.Read(buf)
	require.ErrorIs(t, err, ErrClosed)
}

func TestReaderSourceRejectsOddChunk(t *testing.T) {
	_, err := NewReaderSource(bytes.NewReader(nil), audio.DefaultFormat(), 3)
	require.Error(t, err)
}
