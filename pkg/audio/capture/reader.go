// ABOUTME: Raw PCM reader source
// ABOUTME: Wraps an io.Reader of s16le mono PCM as a capture Source
package capture

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

// ReaderSource delivers fixed-size chunks from a raw PCM stream such as
// stdin or a file. A short final chunk is returned as-is; the read after it
// reports io.EOF.
type ReaderSource struct {
	r          io.Reader
	format     audio.Format
	chunkBytes int

	closed atomic.Bool
}

// NewReaderSource wraps r. chunkBytes must be a positive multiple of the frame size.
func NewReaderSource(r io.Reader, format audio.Format, chunkBytes int) (*ReaderSource, error) {
	if err := validateOpen(format, chunkBytes); err != nil {
		return nil, err
	}
	return &ReaderSource{r: r, format: format, chunkBytes: chunkBytes}, nil
}

func (s *ReaderSource) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	n, err := io.ReadFull(s.r, p[:min(len(p), s.chunkBytes)])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		// drop a dangling half sample
		return n &^ 1, nil
	}
	return n, err
}

func (s *ReaderSource) Format() audio.Format { return s.format }
func (s *ReaderSource) ChunkBytes() int      { return s.chunkBytes }

// Close closes the underlying reader when it is an io.Closer
func (s *ReaderSource) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
