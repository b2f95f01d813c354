//go:build cgo

// ABOUTME: Malgo-based capture backend
// ABOUTME: Uses miniaudio via malgo to stream 16-bit mono microphone input
package capture

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog/log"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

// chunkQueueDepth bounds how far the callback may run ahead of Read
const chunkQueueDepth = 8

// Malgo capture backend using the malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	mu       sync.Mutex
	infos    map[string]malgo.DeviceInfo
}

// NewMalgo initializes a miniaudio context
func NewMalgo() (Backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	return &Malgo{
		malgoCtx: ctx,
		infos:    make(map[string]malgo.DeviceInfo),
	}, nil
}

// Name returns the backend name
func (m *Malgo) Name() string { return BackendMalgo }

// Devices lists capture devices known to miniaudio
func (m *Malgo) Devices() ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos, err := m.malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}
	if len(infos) == 0 {
		return nil, ErrNoDevices
	}

	devices := make([]Device, 0, len(infos))
	for i := range infos {
		id := infos[i].ID.String()
		m.infos[id] = infos[i]
		devices = append(devices, Device{
			ID:      id,
			Name:    infos[i].Name(),
			Default: infos[i].IsDefault != 0,
		})
	}
	return devices, nil
}

// Open starts a capture stream on dev
func (m *Malgo) Open(dev Device, format audio.Format, chunkBytes int) (Source, error) {
	if err := validateOpen(format, chunkBytes); err != nil {
		return nil, err
	}

	m.mu.Lock()
	info, ok := m.infos[dev.ID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (list devices first)", ErrDeviceNotFound, dev.Name)
	}

	s := &malgoSource{
		format:     format,
		chunkBytes: chunkBytes,
		chunks:     make(chan []byte, chunkQueueDepth),
		pending:    make([]byte, 0, chunkBytes*2),
		lost:       make(chan struct{}),
		closed:     make(chan struct{}),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(format.Channels)
	deviceConfig.Capture.DeviceID = info.ID.Pointer()
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(chunkBytes / format.BytesPerFrame())
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			s.dataCallback(pInputSamples)
		},
		Stop: s.stopCallback,
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize capture device %q: %w", dev.Name, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start capture device %q: %w", dev.Name, err)
	}
	s.device = device

	log.Info().
		Str("device", dev.Name).
		Int("sample_rate", format.SampleRate).
		Int("chunk_bytes", chunkBytes).
		Msg("Audio capture started (malgo/S16)")

	return s, nil
}

// Close releases the miniaudio context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx == nil {
		return nil
	}
	if err := m.malgoCtx.Uninit(); err != nil {
		log.Warn().Err(err).Msg("malgo context uninit error")
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil
	return nil
}

// malgoSource bridges the miniaudio callback thread to blocking Reads
type malgoSource struct {
	device     *malgo.Device
	format     audio.Format
	chunkBytes int

	chunks  chan []byte
	pending []byte // callback thread only

	lost      chan struct{}
	lostOnce  sync.Once
	closed    chan struct{}
	closeOnce sync.Once

	dropped atomic.Int64
}

// dataCallback is called by malgo with freshly captured samples
func (s *malgoSource) dataCallback(in []byte) {
	s.pending = append(s.pending, in...)

	for len(s.pending) >= s.chunkBytes {
		chunk := make([]byte, s.chunkBytes)
		copy(chunk, s.pending)
		s.pending = append(s.pending[:0], s.pending[s.chunkBytes:]...)
		s.enqueue(chunk)
	}
}

// enqueue never blocks the audio thread; the oldest chunk goes first
func (s *malgoSource) enqueue(chunk []byte) {
	for {
		select {
		case s.chunks <- chunk:
			return
		default:
		}
		select {
		case <-s.chunks:
			s.dropped.Add(1)
		default:
		}
	}
}

// stopCallback fires when the device stops, requested or not
func (s *malgoSource) stopCallback() {
	select {
	case <-s.closed:
		return
	default:
	}
	s.lostOnce.Do(func() { close(s.lost) })
}

func (s *malgoSource) Read(p []byte) (int, error) {
	select {
	case chunk := <-s.chunks:
		return copy(p, chunk), nil
	case <-s.closed:
		return 0, ErrClosed
	case <-s.lost:
		return 0, ErrDeviceLost
	}
}

func (s *malgoSource) Format() audio.Format { return s.format }
func (s *malgoSource) ChunkBytes() int      { return s.chunkBytes }

// Close stops and uninitializes the device
func (s *malgoSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.device != nil {
			if err := s.device.Stop(); err != nil {
				log.Warn().Err(err).Msg("capture device stop error")
			}
			s.device.Uninit()
		}
		if n := s.dropped.Load(); n > 0 {
			log.Debug().Int64("dropped_chunks", n).Msg("capture queue overruns")
		}
	})
	return nil
}
