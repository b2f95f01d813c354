// ABOUTME: Offline probe for the level pipeline
// ABOUTME: Feeds raw s16le PCM from a file or stdin through the monitor and prints each level
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/micmonitor/micmonitor/internal/logging"
	"github.com/micmonitor/micmonitor/internal/monitor"
	"github.com/micmonitor/micmonitor/pkg/audio"
	"github.com/micmonitor/micmonitor/pkg/audio/capture"
	"github.com/micmonitor/micmonitor/pkg/icon"
)

var (
	input      = flag.String("in", "-", "Raw s16le PCM file (- for stdin)")
	sampleRate = flag.Int("rate", audio.DefaultSampleRate, "Sample rate")
	channels   = flag.Int("channels", audio.DefaultChannels, "Channel count")
	chunkMs    = flag.Int("chunk-ms", 100, "Chunk length in milliseconds")
	bars       = flag.Int("bars", icon.DefaultBars, "Bars in the text meter")
	tone       = flag.Bool("tone", false, "Use the test tone instead of PCM input")
	count      = flag.Int("count", 20, "Chunks to read from the test tone")
	logLevel   = flag.String("log-level", "warn", "Log level")
)

// printer writes one line per update
type printer struct {
	out  io.Writer
	bars int
	n    int
	max  int
	stop context.CancelFunc
}

func (p *printer) Publish(u monitor.Update) {
	lit := icon.LitBars(u.Level, p.bars)
	fmt.Fprintf(p.out, "%5d  %6.2f  [%s%s]\n", p.n, u.Level,
		strings.Repeat("#", lit), strings.Repeat(".", p.bars-lit))
	p.n++
	if p.max > 0 && p.n > p.max {
		p.stop()
	}
}

func (p *printer) Stopped(err error) {
	fmt.Fprintf(p.out, "stopped: %v\n", err)
}

func main() {
	flag.Parse()

	if _, err := logging.Setup(logging.Options{Level: *logLevel, Console: true}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	format := audio.Format{SampleRate: *sampleRate, Channels: *channels, BitDepth: audio.DefaultBitDepth}
	chunk := format.ChunkBytes(time.Duration(*chunkMs) * time.Millisecond)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, limit, err := openSource(format, chunk)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open input")
	}

	p := &printer{out: os.Stdout, bars: *bars, max: limit, stop: cancel}
	mon, err := monitor.New(monitor.Config{
		Source:    src,
		Publisher: p,
		Layout:    icon.Layout{Width: icon.DefaultWidth, Height: icon.DefaultHeight, Bars: *bars},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create monitor")
	}

	if err := mon.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Probe failed")
		os.Exit(1)
	}
}

func openSource(format audio.Format, chunk int) (capture.Source, int, error) {
	if *tone {
		src, err := capture.NewTone(capture.ToneConfig{}).Open(capture.Device{}, format, chunk)
		return src, *count, err
	}

	var r io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			return nil, 0, err
		}
		r = f
	}
	src, err := capture.NewReaderSource(r, format, chunk)
	return src, 0, err
}
