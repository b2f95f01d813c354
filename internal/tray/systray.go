// ABOUTME: fyne.io/systray binding for the tray host
// ABOUTME: Builds the menu and runs the platform event loop
package tray

import (
	"fyne.io/systray"
)

// systraySurface paints on the real notification area
type systraySurface struct {
	status *systray.MenuItem
	listen *systray.MenuItem
}

func (s *systraySurface) SetIcon(data []byte)    { systray.SetIcon(data) }
func (s *systraySurface) SetTooltip(text string) { systray.SetTooltip(text) }
func (s *systraySurface) SetStatus(text string)  { s.status.SetTitle(text) }
func (s *systraySurface) Quit()                  { systray.Quit() }

func (s *systraySurface) SetListen(checked bool) {
	if s.listen == nil {
		return
	}
	if checked {
		s.listen.Check()
	} else {
		s.listen.Uncheck()
	}
}

// Run shows the tray icon and blocks until it is torn down. It must be
// called from the main goroutine.
func (h *Host) Run() {
	systray.Run(h.onReady, func() {
		h.cancel()
	})
}

func (h *Host) onReady() {
	s := &systraySurface{}
	var ev menuEvents

	h.showIdle(s)

	s.status = systray.AddMenuItem("Starting...", "Capture status")
	s.status.Disable()
	systray.AddSeparator()

	for _, l := range h.cfg.Links {
		item := systray.AddMenuItem(l.Title, l.URL)
		ev.links = append(ev.links, item.ClickedCh)
	}
	if len(h.cfg.Links) > 0 {
		systray.AddSeparator()
	}

	if h.cfg.Sidetone != nil {
		s.listen = systray.AddMenuItemCheckbox("Listen", "Play the microphone through the speakers", h.cfg.Sidetone.Enabled())
		ev.listen = s.listen.ClickedCh
		systray.AddSeparator()
	}

	quit := systray.AddMenuItem("Quit", "Stop monitoring and exit")
	ev.quit = quit.ClickedCh

	go h.loop(s, ev)
}
