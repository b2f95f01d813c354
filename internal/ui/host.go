// ABOUTME: Terminal host for --no-tray mode
// ABOUTME: Bridges monitor updates into the bubbletea meter
package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/micmonitor/micmonitor/internal/handoff"
	"github.com/micmonitor/micmonitor/internal/monitor"
	"github.com/micmonitor/micmonitor/internal/observe"
)

// Toggle is the sidetone switch behind the listen key
type Toggle interface {
	SetEnabled(on bool) error
	Enabled() bool
}

// HostConfig configures a TerminalHost
type HostConfig struct {
	Title  string
	Device string
	Bars   int

	// Sidetone may be nil
	Sidetone Toggle

	// Metrics may be nil
	Metrics *observe.Metrics

	// Options are passed to tea.NewProgram
	Options []tea.ProgramOption
}

// TerminalHost implements monitor.Publisher for the terminal meter
type TerminalHost struct {
	cfg     HostConfig
	slot    *handoff.Slot[monitor.Update]
	failed  chan error
	metrics *observe.Metrics
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewTerminalHost creates the host; Run shows it
func NewTerminalHost(cfg HostConfig) *TerminalHost {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.Discard()
	}

	meter := NewMeter(cfg.Title, cfg.Device, cfg.Bars)
	if cfg.Sidetone != nil {
		meter = meter.WithToggle(toggleCmd(cfg.Sidetone))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &TerminalHost{
		cfg:     cfg,
		slot:    handoff.New[monitor.Update](),
		failed:  make(chan error, 1),
		metrics: metrics,
		program: tea.NewProgram(meter, cfg.Options...),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func toggleCmd(t Toggle) func() tea.Msg {
	return func() tea.Msg {
		on := !t.Enabled()
		if err := t.SetEnabled(on); err != nil {
			return ListenMsg{On: t.Enabled(), Err: err}
		}
		return ListenMsg{On: on}
	}
}

// Publish hands an update to the meter without blocking
func (h *TerminalHost) Publish(u monitor.Update) {
	if h.slot.Offer(u) {
		h.metrics.IconsDropped.Add(h.ctx, 1)
	}
}

// Stopped reports a terminal monitor failure
func (h *TerminalHost) Stopped(err error) {
	select {
	case h.failed <- err:
	default:
	}
}

// Run shows the meter and blocks until the user quits or Close is called
func (h *TerminalHost) Run() error {
	go h.forward()
	defer h.cancel()

	if _, err := h.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("ui: meter: %w", err)
	}
	return nil
}

// forward moves updates from the slot into the program
func (h *TerminalHost) forward() {
	for {
		select {
		case u := <-h.slot.C():
			h.program.Send(LevelMsg{Level: u.Level, Lit: u.Lit})
		case err := <-h.failed:
			h.program.Send(StoppedMsg{Err: err})
		case <-h.ctx.Done():
			return
		}
	}
}

// Close ends Run
func (h *TerminalHost) Close() {
	h.program.Quit()
}
