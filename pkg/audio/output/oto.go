// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams s16le PCM to the default speaker through a persistent player
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog/log"
)

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	// oto allows one context per process
	if o.otoCtx != nil {
		if o.sampleRate != sampleRate || o.channels != channels {
			log.Warn().
				Int("sample_rate", sampleRate).
				Int("channels", channels).
				Msg("oto cannot be reinitialized, keeping existing format")
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels

	// Create pipe for continuous streaming
	o.pipeReader, o.pipeWriter = io.Pipe()

	// Create persistent player that reads from the pipe
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	log.Info().Int("sample_rate", sampleRate).Int("channels", channels).Msg("Audio output initialized")

	return nil
}

// Write feeds the player (blocks until the player has consumed it)
func (o *Oto) Write(pcm []byte) error {
	if o.pipeWriter == nil {
		return errors.New("output not initialized")
	}

	if _, err := o.pipeWriter.Write(pcm); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			return err
		}
	}
	return nil
}
