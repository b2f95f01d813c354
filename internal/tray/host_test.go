// ABOUTME: Tests for the tray host event loop
package tray

import (
	"bytes"
	"errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/micmonitor/micmonitor/internal/monitor"
	"github.com/micmonitor/micmonitor/pkg/icon"
)

type fakeSurface struct {
	mu       sync.Mutex
	icons    [][]byte
	tooltips []string
	statuses []string
	listen   []bool
	quit     chan struct{}
	changed  chan struct{}
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{quit: make(chan struct{}), changed: make(chan struct{}, 100)}
}

func (f *fakeSurface) record(fn func()) {
	f.mu.Lock()
	fn()
	f.mu.Unlock()
	f.changed <- struct{}{}
}

func (f *fakeSurface) SetIcon(data []byte)    { f.record(func() { f.icons = append(f.icons, data) }) }
func (f *fakeSurface) SetTooltip(text string) { f.record(func() { f.tooltips = append(f.tooltips, text) }) }
func (f *fakeSurface) SetStatus(text string)  { f.record(func() { f.statuses = append(f.statuses, text) }) }
func (f *fakeSurface) SetListen(on bool)      { f.record(func() { f.listen = append(f.listen, on) }) }
func (f *fakeSurface) Quit()                  { close(f.quit) }

// waitFor polls cond after each surface change
func (f *fakeSurface) waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		ok := cond()
		f.mu.Unlock()
		if ok {
			return
		}
		select {
		case <-f.changed:
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
}

type fakeNotifier struct {
	mu     sync.Mutex
	infos  []string
	alerts []string
	stops  []error
}

func (n *fakeNotifier) Info(m string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, m)
}

func (n *fakeNotifier) Alert(m string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, m)
}

func (n *fakeNotifier) MonitorStopped(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stops = append(n.stops, err)
}

type fakeToggle struct {
	on  bool
	err error
}

func (f *fakeToggle) SetEnabled(on bool) error {
	if f.err != nil {
		return f.err
	}
	f.on = on
	return nil
}

func (f *fakeToggle) Enabled() bool { return f.on }

type harness struct {
	host   *Host
	s      *fakeSurface
	links  []chan struct{}
	listen chan struct{}
	quit   chan struct{}
	done   chan struct{}
}

func start(t *testing.T, cfg Config, nLinks int) *harness {
	t.Helper()
	h := &harness{
		host:   NewHost(cfg),
		s:      newFakeSurface(),
		listen: make(chan struct{}),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	ev := menuEvents{listen: h.listen, quit: h.quit}
	for i := 0; i < nLinks; i++ {
		ch := make(chan struct{})
		h.links = append(h.links, ch)
		ev.links = append(ev.links, ch)
	}
	go func() {
		h.host.loop(h.s, ev)
		close(h.done)
	}()
	t.Cleanup(func() {
		h.host.Close()
		<-h.done
	})
	return h
}

func TestHostPaintsUpdates(t *testing.T) {
	h := start(t, Config{Title: "Mic", Device: "USB", GOOS: "linux"}, 0)

	h.host.Publish(monitor.Update{Level: 100, Lit: 7, Image: icon.Render(100, icon.DefaultLayout())})

	h.s.waitFor(t, func() bool { return len(h.s.icons) == 1 })
	img, err := png.Decode(bytes.NewReader(h.s.icons[0]))
	require.NoError(t, err)
	require.Equal(t, 32, img.Bounds().Dx())

	require.Equal(t, "Mic - USB", h.s.tooltips[0])
	require.Equal(t, "Listening: USB", h.s.statuses[0])
}

func TestHostEncodesICOOnWindows(t *testing.T) {
	h := start(t, Config{Title: "Mic", GOOS: "windows"}, 0)

	h.host.Publish(monitor.Update{Image: icon.Render(50, icon.DefaultLayout())})

	h.s.waitFor(t, func() bool { return len(h.s.icons) == 1 })
	require.Equal(t, []byte{0, 0, 1, 0}, h.s.icons[0][:4])
}

func TestHostStoppedKeepsTray(t *testing.T) {
	n := &fakeNotifier{}
	h := start(t, Config{Title: "Mic", Notifier: n}, 0)

	h.host.Stopped(errors.New("capture: device lost"))

	h.s.waitFor(t, func() bool { return len(h.s.statuses) == 2 })
	require.Equal(t, "Stopped: capture: device lost", h.s.statuses[1])
	require.Contains(t, h.s.tooltips[len(h.s.tooltips)-1], "device lost")

	select {
	case <-h.done:
		t.Fatal("tray must stay up after a monitor failure")
	default:
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.stops, 1)
}

func TestHostQuit(t *testing.T) {
	quitCalled := make(chan struct{})
	h := start(t, Config{Title: "Mic", OnQuit: func() { close(quitCalled) }}, 0)

	h.quit <- struct{}{}

	select {
	case <-quitCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("OnQuit not called")
	}
	<-h.done
	<-h.s.quit
}

func TestHostCloseQuitsSurface(t *testing.T) {
	h := start(t, Config{Title: "Mic"}, 0)
	h.host.Close()
	<-h.done
	<-h.s.quit
}

func TestHostLinks(t *testing.T) {
	n := &fakeNotifier{}
	opened := make(chan string, 3)
	cfg := Config{
		Title:    "Mic",
		Notifier: n,
		Links: []Link{
			{Title: "GitHub", URL: "https://github.com/x"},
			{Title: "Blog", URL: ""},
			{Title: "Broken", URL: "https://broken.example"},
		},
		Open: func(url string) error {
			opened <- url
			if err := checkURL(url); err != nil {
				return err
			}
			if url == "https://broken.example" {
				return errors.New("no browser")
			}
			return nil
		},
	}
	h := start(t, cfg, 3)

	for i := range h.links {
		h.links[i] <- struct{}{}
		select {
		case <-opened:
		case <-time.After(2 * time.Second):
			t.Fatalf("link %d not opened", i)
		}
	}

	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.infos) == 1 && len(n.alerts) == 1
	}, 2*time.Second, 10*time.Millisecond)

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Contains(t, n.infos[0], "Blog")
	require.Contains(t, n.alerts[0], "Broken")
}

func TestHostListenToggle(t *testing.T) {
	toggle := &fakeToggle{}
	h := start(t, Config{Title: "Mic", Sidetone: toggle}, 0)

	h.listen <- struct{}{}
	h.s.waitFor(t, func() bool { return len(h.s.listen) == 1 })
	h.listen <- struct{}{}
	h.s.waitFor(t, func() bool { return len(h.s.listen) == 2 })

	require.Equal(t, []bool{true, false}, h.s.listen)
}

func TestHostListenFailure(t *testing.T) {
	n := &fakeNotifier{}
	toggle := &fakeToggle{err: errors.New("no speaker")}
	h := start(t, Config{Title: "Mic", Sidetone: toggle, Notifier: n}, 0)

	h.listen <- struct{}{}
	h.s.waitFor(t, func() bool { return len(h.s.listen) == 1 })
	require.Equal(t, []bool{false}, h.s.listen)

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.alerts, 1)
}

func TestHostPublishNeverBlocks(t *testing.T) {
	host := NewHost(Config{Title: "Mic"})
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			host.Publish(monitor.Update{Level: float64(i)})
		}
		host.Stopped(errors.New("a"))
		host.Stopped(errors.New("b"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked without a running tray")
	}
}

func TestTooltip(t *testing.T) {
	h := NewHost(Config{Title: "Mic"})
	require.Equal(t, "Mic", h.tooltip(nil))
	require.Equal(t, "Mic - stopped: boom", h.tooltip(errors.New("boom")))
}

func TestShowIdle(t *testing.T) {
	h := NewHost(Config{Title: "Mic", Device: "USB Audio", GOOS: "linux"})
	s := newFakeSurface()

	h.showIdle(s)

	require.Len(t, s.icons, 1)
	img, err := png.Decode(bytes.NewReader(s.icons[0]))
	require.NoError(t, err)
	require.Equal(t, icon.Render(0, icon.DefaultLayout()).Bounds(), img.Bounds())
	require.Equal(t, []string{"Mic - USB Audio"}, s.tooltips)
	require.Empty(t, s.statuses)
}
