// ABOUTME: Synthetic tone capture backend
// ABOUTME: Generates a sine wave so the monitor runs without a microphone
package capture

import (
	"math"
	"sync"
	"time"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

// ToneDeviceName is the single device the tone backend exposes
const ToneDeviceName = "Test Tone"

// ToneConfig configures the synthetic tone
type ToneConfig struct {
	Frequency float64 // Hz, default 440
	Amplitude float64 // 0..1 of full scale, default 0.5
	Pace      bool    // sleep one chunk duration per Read, like real hardware
}

// Tone backend producing a sine wave
type Tone struct {
	cfg ToneConfig
}

// NewTone creates a tone backend
func NewTone(cfg ToneConfig) *Tone {
	if cfg.Frequency <= 0 {
		cfg.Frequency = 440.0 // A4 note
	}
	if cfg.Amplitude <= 0 || cfg.Amplitude > 1 {
		cfg.Amplitude = 0.5
	}
	return &Tone{cfg: cfg}
}

func (t *Tone) Name() string { return BackendTone }

func (t *Tone) Devices() ([]Device, error) {
	return []Device{{ID: "tone", Name: ToneDeviceName, Default: true}}, nil
}

func (t *Tone) Open(_ Device, format audio.Format, chunkBytes int) (Source, error) {
	if err := validateOpen(format, chunkBytes); err != nil {
		return nil, err
	}
	return &toneSource{
		cfg:        t.cfg,
		format:     format,
		chunkBytes: chunkBytes,
		closed:     make(chan struct{}),
	}, nil
}

func (t *Tone) Close() error { return nil }

type toneSource struct {
	cfg        ToneConfig
	format     audio.Format
	chunkBytes int

	mu          sync.Mutex
	sampleIndex uint64

	closed    chan struct{}
	closeOnce sync.Once
}

func (s *toneSource) Read(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, ErrClosed
	default:
	}

	n := min(len(p), s.chunkBytes)
	numSamples := n / 2

	if s.cfg.Pace {
		d := time.Duration(numSamples) * time.Second / time.Duration(s.format.SampleRate)
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-s.closed:
			timer.Stop()
			return 0, ErrClosed
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	samples := make([]int16, numSamples)
	for i := range samples {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.format.SampleRate)
		sample := math.Sin(2 * math.Pi * s.cfg.Frequency * t)
		samples[i] = int16(sample * audio.MaxInt16 * s.cfg.Amplitude)
	}
	s.sampleIndex += uint64(numSamples)

	return copy(p, audio.BytesFromSamples(samples)), nil
}

func (s *toneSource) Format() audio.Format { return s.format }
func (s *toneSource) ChunkBytes() int      { return s.chunkBytes }

func (s *toneSource) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
