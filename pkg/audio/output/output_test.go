// ABOUTME: Sidetone and output tests
// ABOUTME: Uses a recording Output in place of a speaker
package output

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/micmonitor/micmonitor/pkg/audio"
)

func TestOtoImplementsOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
}

func TestOtoWriteBeforeOpen(t *testing.T) {
	require.Error(t, NewOto().Write([]byte{0, 0}))
	require.NoError(t, NewOto().Close())
}

type fakeOutput struct {
	mu      sync.Mutex
	opens   int
	writes  [][]byte
	closed  bool
	openErr error
	block   chan struct{}
	written chan struct{}

	// opening and openGate, when set, hold Open until the test releases it
	opening  chan struct{}
	openGate chan struct{}
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{written: make(chan struct{}, 64)}
}

func (f *fakeOutput) Open(sampleRate, channels int) error {
	if f.openGate != nil {
		close(f.opening)
		<-f.openGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	return f.openErr
}

func (f *fakeOutput) Write(pcm []byte) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.writes = append(f.writes, pcm)
	f.mu.Unlock()
	f.written <- struct{}{}
	return nil
}

func (f *fakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeOutput) snapshot() (int, [][]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens, append([][]byte(nil), f.writes...), f.closed
}

func waitWritten(t *testing.T, f *fakeOutput) {
	t.Helper()
	select {
	case <-f.written:
	case <-time.After(2 * time.Second):
		t.Fatal("no write reached the output")
	}
}

func TestSidetoneDisabledDiscards(t *testing.T) {
	out := newFakeOutput()
	st := NewSidetone(out, audio.DefaultFormat())

	n, err := st.Write([]byte{1, 0, 2, 0})
	require.NoError(t, err)
	require.Equal(t, 4, n)

	opens, writes, _ := out.snapshot()
	require.Zero(t, opens, "output stays closed until enabled")
	require.Empty(t, writes)
	require.NoError(t, st.Close())
}

func TestSidetoneForwardsWhenEnabled(t *testing.T) {
	out := newFakeOutput()
	st := NewSidetone(out, audio.DefaultFormat())

	require.NoError(t, st.SetEnabled(true))
	require.True(t, st.Enabled())

	pcm := audio.BytesFromSamples([]int16{100, -100})
	_, err := st.Write(pcm)
	require.NoError(t, err)
	waitWritten(t, out)

	require.NoError(t, st.SetEnabled(false))
	require.NoError(t, st.SetEnabled(true))

	require.NoError(t, st.Close())
	opens, writes, closed := out.snapshot()
	require.Equal(t, 1, opens)
	require.Equal(t, [][]byte{pcm}, writes)
	require.True(t, closed)

	require.ErrorIs(t, st.SetEnabled(true), ErrSidetoneClosed)
	n, err := st.Write(pcm)
	require.NoError(t, err)
	require.Equal(t, len(pcm), n)
}

func TestSidetoneOpenFailure(t *testing.T) {
	out := newFakeOutput()
	out.openErr = errors.New("no speaker")
	st := NewSidetone(out, audio.DefaultFormat())

	require.Error(t, st.SetEnabled(true))
	require.False(t, st.Enabled())
	require.NoError(t, st.Close())
}

func TestSidetoneDropsWhenOutputLags(t *testing.T) {
	out := newFakeOutput()
	out.block = make(chan struct{})
	st := NewSidetone(out, audio.DefaultFormat())
	require.NoError(t, st.SetEnabled(true))

	pcm := []byte{1, 0}
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			_, _ = st.Write(pcm)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Write blocked on a stalled output")
	}
	require.Positive(t, st.Dropped())

	close(out.block)
	require.NoError(t, st.Close())
}

func TestSidetoneWriteDuringSlowOpen(t *testing.T) {
	out := newFakeOutput()
	out.opening = make(chan struct{})
	out.openGate = make(chan struct{})
	st := NewSidetone(out, audio.DefaultFormat())

	enabled := make(chan error, 1)
	go func() { enabled <- st.SetEnabled(true) }()
	<-out.opening

	wrote := make(chan struct{})
	go func() {
		_, _ = st.Write([]byte{1, 0})
		close(wrote)
	}()
	select {
	case <-wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("Write waited for the output to open")
	}
	require.False(t, st.Enabled())

	close(out.openGate)
	require.NoError(t, <-enabled)
	require.True(t, st.Enabled())
	require.NoError(t, st.Close())
}

func TestSidetoneCloseDuringSlowOpen(t *testing.T) {
	out := newFakeOutput()
	out.opening = make(chan struct{})
	out.openGate = make(chan struct{})
	st := NewSidetone(out, audio.DefaultFormat())

	enabled := make(chan error, 1)
	go func() { enabled <- st.SetEnabled(true) }()
	<-out.opening

	require.NoError(t, st.Close())
	close(out.openGate)

	require.ErrorIs(t, <-enabled, ErrSidetoneClosed)
	_, _, closed := out.snapshot()
	require.True(t, closed, "an output opened after Close is released")
}

func TestSidetoneVolume(t *testing.T) {
	st := NewSidetone(newFakeOutput(), audio.DefaultFormat())
	require.Equal(t, 100, st.Volume())

	st.SetVolume(150)
	require.Equal(t, 100, st.Volume())
	st.SetVolume(-3)
	require.Equal(t, 0, st.Volume())
}

func TestApplyVolume(t *testing.T) {
	pcm := audio.BytesFromSamples([]int16{1000, -1000, audio.MaxInt16, audio.MinInt16})

	tests := []struct {
		name   string
		volume int
		want   []int16
	}{
		{"full", 100, []int16{1000, -1000, audio.MaxInt16, audio.MinInt16}},
		{"half", 50, []int16{500, -500, 16383, -16384}},
		{"mute", 0, []int16{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := audio.SamplesFromBytes(applyVolume(pcm, tt.volume))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestApplyVolumeCopies(t *testing.T) {
	pcm := audio.BytesFromSamples([]int16{42})
	out := applyVolume(pcm, 100)
	out[0] = 0
	require.Equal(t, int16(42), audio.SampleAt(pcm, 0))
}
