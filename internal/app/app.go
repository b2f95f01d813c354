// ABOUTME: Application orchestration
// ABOUTME: Picks the microphone, wires the monitor to a host and shuts down cleanly
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/micmonitor/micmonitor/internal/config"
	"github.com/micmonitor/micmonitor/internal/monitor"
	"github.com/micmonitor/micmonitor/internal/notify"
	"github.com/micmonitor/micmonitor/internal/observe"
	"github.com/micmonitor/micmonitor/internal/tray"
	"github.com/micmonitor/micmonitor/internal/ui"
	"github.com/micmonitor/micmonitor/pkg/audio/capture"
	"github.com/micmonitor/micmonitor/pkg/audio/output"
)

// ErrNoDeviceSelected means the user dismissed the device picker
var ErrNoDeviceSelected = errors.New("app: no device selected")

// ErrNoTray means the desktop session has no notification area
var ErrNoTray = errors.New("app: no system tray available")

// Host shows monitor updates to the user. Run blocks on the main goroutine
// until the user quits or Close is called.
type Host interface {
	monitor.Publisher
	Run() error
	Close()
}

// HostParams is what a host factory receives
type HostParams struct {
	Config   *config.Config
	Device   capture.Device
	Sidetone *output.Sidetone
	Notifier *notify.Notifier
	Metrics  *observe.Metrics

	// OnQuit stops monitoring when the user quits from the host's menu
	OnQuit func()
}

// Options configures an App
type Options struct {
	Config *config.Config

	// NoTray shows the terminal meter instead of the tray icon
	NoTray bool

	// Interactive allows the device picker (stdin is a terminal)
	Interactive bool

	// NewBackend opens the capture backend; nil means capture.NewBackend
	NewBackend func(name string) (capture.Backend, error)

	// ChooseDevice asks the user for a device; nil means ui.ChooseDevice
	ChooseDevice func([]capture.Device) (capture.Device, error)

	// NewHost builds the host; nil picks tray or terminal from NoTray
	NewHost func(HostParams) Host

	// SidetoneOutput plays the Listen audio; nil means the oto speaker
	SidetoneOutput output.Output

	// GOOS and Getenv feed the tray support check; empty means the running
	// system
	GOOS   string
	Getenv func(string) string
}

// App runs one monitoring session
type App struct {
	opts     Options
	cfg      *config.Config
	notifier *notify.Notifier
}

// New creates an app, filling unset options with production defaults
func New(opts Options) *App {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.NewBackend == nil {
		opts.NewBackend = capture.NewBackend
	}
	if opts.ChooseDevice == nil {
		opts.ChooseDevice = func(devices []capture.Device) (capture.Device, error) {
			return ui.ChooseDevice(devices)
		}
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.SidetoneOutput == nil {
		opts.SidetoneOutput = output.NewOto()
	}

	cfg := opts.Config
	return &App{
		opts:     opts,
		cfg:      cfg,
		notifier: notify.New(cfg.Tray.Title, cfg.Tray.Notifications),
	}
}

// Run executes the startup sequence, blocks in the host until the user
// quits or ctx is cancelled, then shuts down. Startup failures are returned
// as *StartupError. A monitor failure is returned after the user quits.
func (a *App) Run(ctx context.Context) error {
	newHost, err := a.hostFactory()
	if err != nil {
		return err
	}

	backend, err := a.opts.NewBackend(a.cfg.Audio.Backend)
	if err != nil {
		return startupFailure("Audio backend unavailable", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing audio backend")
		}
	}()

	devices, err := backend.Devices()
	if err != nil {
		if errors.Is(err, capture.ErrNoDevices) {
			return startupFailure("No microphone found", err)
		}
		return startupFailure("Could not list microphones", err)
	}

	dev, err := a.selectDevice(devices)
	if err != nil {
		return err
	}

	format := a.cfg.Format()
	src, err := backend.Open(dev, format, a.cfg.ChunkBytes())
	if err != nil {
		return startupFailure("Could not open the microphone", fmt.Errorf("app: open %q: %w", dev.Name, err))
	}

	log.Info().
		Str("device", dev.Name).
		Str("backend", backend.Name()).
		Dur("chunk", a.cfg.ChunkDuration()).
		Msg("Microphone opened")

	provider, err := observe.NewProvider()
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("app: metrics: %w", err)
	}

	sidetone := output.NewSidetone(a.opts.SidetoneOutput, format)
	sidetone.SetVolume(a.cfg.Audio.SidetoneVolume)
	defer func() {
		if err := sidetone.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing sidetone output")
		}
	}()
	defer a.logSummary(provider, sidetone)

	monCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()

	host := newHost(HostParams{
		Config:   a.cfg,
		Device:   dev,
		Sidetone: sidetone,
		Notifier: a.notifier,
		Metrics:  provider.Metrics,
		OnQuit:   stopMonitor,
	})

	mon, err := monitor.New(monitor.Config{
		Source:             src,
		Publisher:          host,
		Layout:             a.cfg.Layout(),
		Gain:               a.cfg.Icon.Gain,
		MaxTransientErrors: a.cfg.Audio.MaxTransientErrors,
		Metrics:            provider.Metrics,
		Tap:                sidetone,
	})
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("app: %w", err)
	}

	var monErr error
	g, gctx := errgroup.WithContext(monCtx)
	g.Go(func() error {
		monErr = mon.Run(gctx)
		return nil
	})
	g.Go(func() error {
		// signal, menu quit or host exit: take the host down too
		<-gctx.Done()
		host.Close()
		return nil
	})

	hostErr := host.Run()
	log.Info().Msg("Shutting down")

	stopMonitor()
	waitErr := g.Wait()

	return errors.Join(hostErr, monErr, waitErr)
}

// selectDevice applies the configured name, then the picker, then the default
func (a *App) selectDevice(devices []capture.Device) (capture.Device, error) {
	if name := a.cfg.Audio.Device; name != "" {
		dev, err := capture.FindDevice(devices, name)
		if err == nil {
			return dev, nil
		}
		log.Warn().Err(err).Msg("Configured device not available")
	}

	if a.opts.Interactive && len(devices) > 1 {
		dev, err := a.opts.ChooseDevice(devices)
		if errors.Is(err, ui.ErrCancelled) {
			return capture.Device{}, ErrNoDeviceSelected
		}
		if err != nil {
			return capture.Device{}, startupFailure("Device selection failed", err)
		}
		return dev, nil
	}

	dev, err := capture.DefaultDevice(devices)
	if err != nil {
		return capture.Device{}, startupFailure("No microphone found", err)
	}
	return dev, nil
}

// hostFactory picks the host for this run. Tray mode needs a notification
// area; without one it is a startup failure.
func (a *App) hostFactory() (func(HostParams) Host, error) {
	switch {
	case a.opts.NewHost != nil:
		return a.opts.NewHost, nil
	case a.opts.NoTray:
		return newTerminalHost, nil
	case !TrayAvailable(a.opts.GOOS, a.opts.Getenv):
		return nil, startupFailure("No tray support", ErrNoTray)
	default:
		return newTrayHost, nil
	}
}

// TrayAvailable reports whether the session can show a tray icon. On
// Linux and the BSDs the icon is a StatusNotifierItem on the session bus,
// so no bus means no tray.
func TrayAvailable(goos string, getenv func(string) string) bool {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return getenv("DBUS_SESSION_BUS_ADDRESS") != ""
	default:
		return true
	}
}

// summarize collects the run's metrics plus the sidetone's drop count
func summarize(ctx context.Context, p *observe.Provider, st *output.Sidetone) (observe.Summary, error) {
	s, err := p.Summary(ctx)
	if err != nil {
		return observe.Summary{}, err
	}
	s.SidetoneDropped = st.Dropped()
	return s, nil
}

func (a *App) logSummary(p *observe.Provider, st *output.Sidetone) {
	ctx := context.Background()
	s, err := summarize(ctx, p, st)
	if err != nil {
		log.Warn().Err(err).Msg("Could not collect metrics")
	} else {
		log.Info().EmbedObject(s).Msg("Session summary")
	}
	if err := p.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("Metrics shutdown error")
	}
}

// Notifier returns the desktop notifier used for alerts
func (a *App) Notifier() *notify.Notifier {
	return a.notifier
}

func newTrayHost(p HostParams) Host {
	links := make([]tray.Link, 0, len(p.Config.Tray.Links))
	for _, l := range p.Config.Tray.Links {
		links = append(links, tray.Link{Title: l.Title, URL: l.URL})
	}
	return trayHost{tray.NewHost(tray.Config{
		Title:    p.Config.Tray.Title,
		Device:   p.Device.Name,
		Links:    links,
		Notifier: p.Notifier,
		Sidetone: p.Sidetone,
		Metrics:  p.Metrics,
		OnQuit:   p.OnQuit,
		Layout:   p.Config.Layout(),
	})}
}

type trayHost struct {
	*tray.Host
}

func (h trayHost) Run() error {
	h.Host.Run()
	return nil
}

func newTerminalHost(p HostParams) Host {
	return ui.NewTerminalHost(ui.HostConfig{
		Title:    p.Config.Tray.Title,
		Device:   p.Device.Name,
		Bars:     p.Config.Icon.Bars,
		Sidetone: p.Sidetone,
		Metrics:  p.Metrics,
	})
}
