//go:build portaudio

// ABOUTME: PortAudio capture backend
// ABOUTME: Cross-platform microphone input using PortAudio blocking reads
package capture

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog/log"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

// PortAudio capture backend
type PortAudio struct {
	mu      sync.Mutex
	devices map[string]*portaudio.DeviceInfo
}

// NewPortAudio initializes PortAudio
func NewPortAudio() (Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &PortAudio{devices: make(map[string]*portaudio.DeviceInfo)}, nil
}

// Name returns the backend name
func (p *PortAudio) Name() string { return BackendPortAudio }

// Devices lists devices with at least one input channel
func (p *PortAudio) Devices() ([]Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	var defaultName string
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	var devices []Device
	for i, info := range infos {
		if info.MaxInputChannels < 1 {
			continue
		}
		id := strconv.Itoa(i)
		p.devices[id] = info
		devices = append(devices, Device{
			ID:      id,
			Name:    info.Name,
			Default: info.Name == defaultName,
		})
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	return devices, nil
}

// Open starts a blocking input stream on dev
func (p *PortAudio) Open(dev Device, format audio.Format, chunkBytes int) (Source, error) {
	if err := validateOpen(format, chunkBytes); err != nil {
		return nil, err
	}

	p.mu.Lock()
	info, ok := p.devices[dev.ID]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (list devices first)", ErrDeviceNotFound, dev.Name)
	}

	frames := chunkBytes / format.BytesPerFrame()
	buffer := make([]int16, frames)

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = format.Channels
	params.SampleRate = float64(format.SampleRate)
	params.FramesPerBuffer = frames

	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start stream on %q: %w", dev.Name, err)
	}

	log.Info().
		Str("device", dev.Name).
		Int("sample_rate", format.SampleRate).
		Int("chunk_bytes", chunkBytes).
		Msg("Audio capture started (portaudio)")

	return &portAudioSource{
		stream:     stream,
		buffer:     buffer,
		format:     format,
		chunkBytes: chunkBytes,
	}, nil
}

// Close terminates PortAudio
func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

type portAudioSource struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	buffer     []int16
	format     audio.Format
	chunkBytes int
	closed     bool
}

func (s *portAudioSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	if err := s.stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			return 0, &TransientError{Op: "read", Err: err}
		}
		return 0, fmt.Errorf("%w: %v", ErrDeviceLost, err)
	}

	return copy(p, audio.BytesFromSamples(s.buffer)), nil
}

func (s *portAudioSource) Format() audio.Format { return s.format }
func (s *portAudioSource) ChunkBytes() int      { return s.chunkBytes }

// Close releases resources
func (s *portAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.stream.Stop(); err != nil {
		return err
	}
	return s.stream.Close()
}
