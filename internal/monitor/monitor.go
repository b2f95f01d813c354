// ABOUTME: Monitoring loop: capture, estimate, render, publish
// ABOUTME: Runs until cancelled or the microphone fails, then stops for good
package monitor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/micmonitor/micmonitor/internal/observe"
	"github.com/micmonitor/micmonitor/pkg/audio/capture"
	"github.com/micmonitor/micmonitor/pkg/audio/level"
	"github.com/micmonitor/micmonitor/pkg/icon"
)

// DefaultMaxTransientErrors is how many consecutive recoverable read
// errors are tolerated
const DefaultMaxTransientErrors = 5

// ErrAlreadyRun is returned by a second call to Run
var ErrAlreadyRun = errors.New("monitor: already run")

// State of the loop
type State int32

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Update is one rendered level, posted to the host every cycle
type Update struct {
	Level float64
	Lit   int
	Image *image.RGBA
	At    time.Time
}

// Publisher receives updates on the loop goroutine. Publish must not block.
type Publisher interface {
	Publish(Update)

	// Stopped is called once if the loop ends because capture failed
	Stopped(err error)
}

// Config configures a Monitor
type Config struct {
	Source    capture.Source
	Publisher Publisher

	// Layout of the icon; zero value means icon.DefaultLayout()
	Layout icon.Layout

	// Gain of the estimator; zero means level.DefaultGain
	Gain float64

	// MaxTransientErrors tolerated in a row; zero means
	// DefaultMaxTransientErrors, negative means none
	MaxTransientErrors int

	// Metrics may be nil
	Metrics *observe.Metrics

	// Tap, if set, receives every captured chunk (sidetone). Write errors
	// are logged and otherwise ignored.
	Tap io.Writer

	// Now is the clock for Update.At
	Now func() time.Time
}

// Monitor drives one capture session
type Monitor struct {
	src        capture.Source
	pub        Publisher
	renderer   *icon.Renderer
	estimator  level.Estimator
	maxErrors  int
	chunkBytes int
	metrics    *observe.Metrics
	tap        io.Writer
	now        func() time.Time

	state   atomic.Int32
	started atomic.Bool
}

// New validates cfg and creates a monitor in the Running state
func New(cfg Config) (*Monitor, error) {
	if cfg.Source == nil {
		return nil, errors.New("monitor: source is required")
	}
	if cfg.Publisher == nil {
		return nil, errors.New("monitor: publisher is required")
	}

	layout := cfg.Layout
	if layout == (icon.Layout{}) {
		layout = icon.DefaultLayout()
	}
	renderer, err := icon.NewRenderer(layout)
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}

	gain := cfg.Gain
	if gain == 0 {
		gain = level.DefaultGain
	}
	if gain < 0 {
		return nil, fmt.Errorf("monitor: gain %.1f must be positive", gain)
	}

	chunk := cfg.Source.ChunkBytes()
	if chunk <= 0 || chunk%2 != 0 {
		return nil, fmt.Errorf("monitor: chunk size %d must be positive and even", chunk)
	}

	maxErrors := cfg.MaxTransientErrors
	switch {
	case maxErrors == 0:
		maxErrors = DefaultMaxTransientErrors
	case maxErrors < 0:
		maxErrors = 0
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.Discard()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Monitor{
		src:        cfg.Source,
		pub:        cfg.Publisher,
		renderer:   renderer,
		estimator:  level.Estimator{Gain: gain},
		maxErrors:  maxErrors,
		chunkBytes: chunk,
		metrics:    metrics,
		tap:        cfg.Tap,
		now:        now,
	}, nil
}

// State returns the current state. Safe from any goroutine.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Run loops until ctx is cancelled (returns nil) or capture fails (returns
// the cause). The source is closed either way. Run may be called once.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}

	// unblock a pending Read on cancel
	stopClose := context.AfterFunc(ctx, func() { _ = m.src.Close() })
	defer stopClose()

	log.Debug().Int("chunk_bytes", m.chunkBytes).Int("bars", m.renderer.Layout.Bars).Msg("Monitor started")

	m.publish(ctx, 0)

	buf := make([]byte, m.chunkBytes)
	transient := 0

	for {
		if ctx.Err() != nil {
			m.stop()
			log.Debug().Msg("Monitor cancelled")
			return nil
		}

		n, err := m.src.Read(buf)
		if n > 0 {
			m.process(ctx, buf[:n])
		}
		if err == nil {
			transient = 0
			continue
		}

		if ctx.Err() != nil {
			continue
		}

		if errors.Is(err, io.EOF) {
			m.stop()
			log.Info().Msg("Capture stream ended")
			return nil
		}

		if capture.IsTransient(err) {
			transient++
			m.metrics.RecordReadError(ctx, observe.KindTransient)
			if transient <= m.maxErrors {
				log.Warn().Err(err).Int("consecutive", transient).Msg("Transient capture error")
				continue
			}
			err = fmt.Errorf("%w (%d in a row)", err, transient)
		} else {
			m.metrics.RecordReadError(ctx, observe.KindFatal)
		}

		m.stop()
		log.Error().Err(err).Msg("Capture failed, monitor stopped")
		m.pub.Stopped(err)
		return fmt.Errorf("monitor: read: %w", err)
	}
}

func (m *Monitor) process(ctx context.Context, pcm []byte) {
	volume := m.estimator.Volume(pcm)
	m.metrics.RecordFrame(ctx, volume)
	m.publish(ctx, volume)

	if m.tap != nil {
		if _, err := m.tap.Write(pcm); err != nil {
			log.Debug().Err(err).Msg("Sidetone write failed")
		}
	}
}

func (m *Monitor) publish(ctx context.Context, volume float64) {
	m.pub.Publish(Update{
		Level: volume,
		Lit:   icon.LitBars(volume, m.renderer.Layout.Bars),
		Image: m.renderer.Render(volume),
		At:    m.now(),
	})
	m.metrics.IconsPublished.Add(ctx, 1)
}

func (m *Monitor) stop() {
	m.state.Store(int32(StateStopped))
	if err := m.src.Close(); err != nil {
		log.Debug().Err(err).Msg("Error closing capture source")
	}
}
