// ABOUTME: Sidetone: live playback of the captured microphone
// ABOUTME: Non-blocking tee from the monitor loop to an Output
package output

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

// sidetoneQueueDepth bounds latency; beyond it chunks are dropped
const sidetoneQueueDepth = 4

// ErrSidetoneClosed is returned by SetEnabled after Close
var ErrSidetoneClosed = errors.New("output: sidetone closed")

// Sidetone forwards captured PCM to an Output while enabled. Write never
// blocks the caller.
type Sidetone struct {
	out    Output
	format audio.Format

	enabled atomic.Bool
	volume  atomic.Int32
	dropped atomic.Int64

	// toggle serializes SetEnabled; mu guards the fields below and is never
	// held while the output opens
	toggle sync.Mutex
	mu     sync.RWMutex
	opened bool
	closed bool
	queue  chan []byte
	done   chan struct{}
}

// NewSidetone creates a disabled sidetone over out
func NewSidetone(out Output, format audio.Format) *Sidetone {
	s := &Sidetone{
		out:    out,
		format: format,
		queue:  make(chan []byte, sidetoneQueueDepth),
		done:   make(chan struct{}),
	}
	s.volume.Store(100)
	return s
}

// SetEnabled turns playback on or off. The output is opened on first enable.
func (s *Sidetone) SetEnabled(on bool) error {
	s.toggle.Lock()
	defer s.toggle.Unlock()

	s.mu.RLock()
	closed, opened := s.closed, s.opened
	s.mu.RUnlock()

	if closed {
		return ErrSidetoneClosed
	}
	if on && !opened {
		if err := s.out.Open(s.format.SampleRate, s.format.Channels); err != nil {
			return fmt.Errorf("output: open sidetone: %w", err)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = s.out.Close()
			return ErrSidetoneClosed
		}
		s.opened = true
		go s.drain()
		s.mu.Unlock()
	}
	s.enabled.Store(on)
	log.Info().Bool("enabled", on).Int("volume", s.Volume()).Msg("Sidetone toggled")
	return nil
}

// Enabled reports whether playback is on
func (s *Sidetone) Enabled() bool {
	return s.enabled.Load()
}

// SetVolume sets the playback volume (0-100)
func (s *Sidetone) SetVolume(volume int) {
	s.volume.Store(int32(min(max(volume, 0), 100)))
}

// Volume returns the playback volume
func (s *Sidetone) Volume() int {
	return int(s.volume.Load())
}

// Dropped returns how many chunks were discarded because the output lagged
func (s *Sidetone) Dropped() int64 {
	return s.dropped.Load()
}

// Write queues a copy of pcm for playback. It always reports the full length.
func (s *Sidetone) Write(pcm []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || !s.enabled.Load() {
		return len(pcm), nil
	}

	chunk := applyVolume(pcm, int(s.volume.Load()))
	select {
	case s.queue <- chunk:
	default:
		s.dropped.Add(1)
	}
	return len(pcm), nil
}

func (s *Sidetone) drain() {
	defer close(s.done)
	for chunk := range s.queue {
		if !s.enabled.Load() {
			continue
		}
		if err := s.out.Write(chunk); err != nil {
			log.Warn().Err(err).Msg("Sidetone playback failed")
			s.enabled.Store(false)
		}
	}
}

// Close stops playback and releases the output
func (s *Sidetone) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.enabled.Store(false)

	if !s.opened {
		return nil
	}

	close(s.queue)
	<-s.done
	return s.out.Close()
}

// applyVolume returns a scaled copy of s16le pcm with clipping protection
func applyVolume(pcm []byte, volume int) []byte {
	if volume >= 100 {
		out := make([]byte, len(pcm)&^1)
		copy(out, pcm)
		return out
	}

	multiplier := getVolumeMultiplier(volume)
	samples := audio.SamplesFromBytes(pcm)
	for i, sample := range samples {
		scaled := int32(float64(sample) * multiplier)

		// Clamp to 16-bit range to prevent overflow
		if scaled > audio.MaxInt16 {
			scaled = audio.MaxInt16
		} else if scaled < audio.MinInt16 {
			scaled = audio.MinInt16
		}
		samples[i] = int16(scaled)
	}
	return audio.BytesFromSamples(samples)
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int) float64 {
	if volume <= 0 {
		return 0.0
	}
	return float64(volume) / 100.0
}
