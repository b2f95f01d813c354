// ABOUTME: Tray host for the level icon
// ABOUTME: Receives monitor updates and paints them on the UI goroutine
package tray

import (
	"context"
	"errors"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/micmonitor/micmonitor/internal/handoff"
	"github.com/micmonitor/micmonitor/internal/monitor"
	"github.com/micmonitor/micmonitor/internal/observe"
	"github.com/micmonitor/micmonitor/pkg/icon"
)

// Link is a menu entry that opens a URL
type Link struct {
	Title string
	URL   string
}

// Notifier shows desktop notifications
type Notifier interface {
	Info(message string)
	Alert(message string)
	MonitorStopped(err error)
}

// Toggle is the sidetone switch behind the Listen item
type Toggle interface {
	SetEnabled(on bool) error
	Enabled() bool
}

// Config configures a Host
type Config struct {
	Title  string
	Device string
	Links  []Link

	// Notifier may be nil
	Notifier Notifier

	// Sidetone may be nil, which hides the Listen item
	Sidetone Toggle

	// Metrics may be nil
	Metrics *observe.Metrics

	// OnQuit runs when the user picks Quit, before the tray is torn down
	OnQuit func()

	// Layout of the placeholder icon shown before the first update
	Layout icon.Layout

	// GOOS selects the icon container; empty means runtime.GOOS
	GOOS string

	// Open launches a link; nil means OpenURL
	Open func(url string) error
}

// surface is the part of the tray the event loop paints on
type surface interface {
	SetIcon(data []byte)
	SetTooltip(text string)
	SetStatus(text string)
	SetListen(checked bool)
	Quit()
}

// menuEvents carries clicks from the tray menu
type menuEvents struct {
	links  []<-chan struct{}
	listen <-chan struct{}
	quit   <-chan struct{}
}

// Host owns the notification-area icon. Publish and Stopped may be called
// from any goroutine; everything else runs on the tray's goroutines.
type Host struct {
	cfg     Config
	slot    *handoff.Slot[monitor.Update]
	failed  chan error
	metrics *observe.Metrics
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewHost creates a host; Run shows it
func NewHost(cfg Config) *Host {
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	if cfg.Open == nil {
		cfg.Open = OpenURL
	}
	if cfg.OnQuit == nil {
		cfg.OnQuit = func() {}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		cfg:     cfg,
		slot:    handoff.New[monitor.Update](),
		failed:  make(chan error, 1),
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Publish hands an update to the tray without blocking
func (h *Host) Publish(u monitor.Update) {
	if h.slot.Offer(u) {
		h.metrics.IconsDropped.Add(h.ctx, 1)
	}
}

// Stopped reports a terminal monitor failure
func (h *Host) Stopped(err error) {
	select {
	case h.failed <- err:
	default:
	}
}

// tooltip is the hover text for the current state
func (h *Host) tooltip(err error) string {
	if err != nil {
		return h.cfg.Title + " - stopped: " + err.Error()
	}
	if h.cfg.Device != "" {
		return h.cfg.Title + " - " + h.cfg.Device
	}
	return h.cfg.Title
}

// loop services updates and clicks until Quit is clicked or Close is called
func (h *Host) loop(s surface, ev menuEvents) {
	s.SetTooltip(h.tooltip(nil))
	s.SetStatus("Listening: " + h.deviceLabel())

	clicks := mergeLinks(h.ctx, ev.links)

	for {
		select {
		case u := <-h.slot.C():
			h.paint(s, u)

		case err := <-h.failed:
			log.Warn().Err(err).Msg("Monitor stopped, tray stays until quit")
			s.SetTooltip(h.tooltip(err))
			s.SetStatus("Stopped: " + err.Error())
			if h.cfg.Notifier != nil {
				h.cfg.Notifier.MonitorStopped(err)
			}

		case i := <-clicks:
			h.openLink(h.cfg.Links[i])

		case <-ev.listen:
			h.toggleListen(s)

		case <-ev.quit:
			log.Info().Msg("Quit requested from tray")
			h.cfg.OnQuit()
			h.cancel()
			s.Quit()
			return

		case <-h.ctx.Done():
			s.Quit()
			return
		}
	}
}

// showIdle paints the zero-level icon until the first update arrives. The
// title only goes in the tooltip, never beside the icon.
func (h *Host) showIdle(s surface) {
	h.paint(s, monitor.Update{Image: icon.Render(0, h.layout())})
	s.SetTooltip(h.tooltip(nil))
}

func (h *Host) paint(s surface, u monitor.Update) {
	if u.Image == nil {
		return
	}
	data, err := icon.EncodeForOS(u.Image, h.cfg.GOOS)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode tray icon")
		return
	}
	s.SetIcon(data)
}

func (h *Host) openLink(l Link) {
	err := h.cfg.Open(l.URL)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("link", l.Title).Msg("Could not open link")
	if h.cfg.Notifier == nil {
		return
	}
	if errors.Is(err, ErrLinkNotConfigured) {
		h.cfg.Notifier.Info(l.Title + ": the URL has not been configured.")
		return
	}
	h.cfg.Notifier.Alert("Could not open " + l.Title + ".")
}

func (h *Host) toggleListen(s surface) {
	if h.cfg.Sidetone == nil {
		return
	}
	on := !h.cfg.Sidetone.Enabled()
	if err := h.cfg.Sidetone.SetEnabled(on); err != nil {
		log.Error().Err(err).Msg("Failed to toggle sidetone")
		if h.cfg.Notifier != nil {
			h.cfg.Notifier.Alert("Listen is unavailable: " + err.Error())
		}
		on = h.cfg.Sidetone.Enabled()
	}
	s.SetListen(on)
}

func (h *Host) layout() icon.Layout {
	if h.cfg.Layout.Validate() != nil {
		return icon.DefaultLayout()
	}
	return h.cfg.Layout
}

func (h *Host) deviceLabel() string {
	if h.cfg.Device == "" {
		return "default microphone"
	}
	return h.cfg.Device
}

// Close tears the tray down from outside the menu (signal, terminal error)
func (h *Host) Close() {
	h.cancel()
}

// mergeLinks fans the link click channels into one channel of indexes
func mergeLinks(ctx context.Context, links []<-chan struct{}) <-chan int {
	out := make(chan int)
	for i, ch := range links {
		i, ch := i, ch
		go func() {
			for {
				select {
				case <-ch:
					select {
					case out <- i:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	return out
}
