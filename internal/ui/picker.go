// ABOUTME: Interactive capture device picker
// ABOUTME: Lists microphones and returns the one chosen with Enter
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/micmonitor/micmonitor/pkg/audio/capture"
)

// ErrCancelled is returned when the user dismisses a prompt
var ErrCancelled = errors.New("ui: cancelled")

// Picker is a bubbletea model listing capture devices
type Picker struct {
	title     string
	devices   []capture.Device
	selected  int
	chosen    bool
	cancelled bool
}

// NewPicker creates a picker with the default device preselected
func NewPicker(title string, devices []capture.Device) Picker {
	p := Picker{title: title, devices: devices}
	for i, d := range devices {
		if d.Default {
			p.selected = i
			break
		}
	}
	return p
}

// Init implements tea.Model
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update handles navigation, Enter and cancel keys
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch {
	case key.Matches(km, keys.Down):
		if p.selected < len(p.devices)-1 {
			p.selected++
		}
	case key.Matches(km, keys.Up):
		if p.selected > 0 {
			p.selected--
		}
	case key.Matches(km, keys.Enter):
		if len(p.devices) > 0 {
			p.chosen = true
			return p, tea.Quit
		}
	case key.Matches(km, keys.Cancel):
		p.cancelled = true
		return p, tea.Quit
	}
	return p, nil
}

// View renders the list
func (p Picker) View() string {
	if p.chosen || p.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.title))
	b.WriteString("\n\n")
	for i, d := range p.devices {
		if i == p.selected {
			b.WriteString(selectedStyle.Render("> " + d.String()))
		} else {
			b.WriteString("  " + d.String())
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s • %s • %s",
		keys.Up.Help().Key+"/"+keys.Down.Help().Key+" move",
		keys.Enter.Help().Key+" "+keys.Enter.Help().Desc,
		keys.Cancel.Help().Key+" "+keys.Cancel.Help().Desc)))
	return boxStyle.Render(b.String())
}

// Result returns the chosen device, or ErrCancelled
func (p Picker) Result() (capture.Device, error) {
	if !p.chosen || p.cancelled {
		return capture.Device{}, ErrCancelled
	}
	return p.devices[p.selected], nil
}

// ChooseDevice asks the user to pick one of devices on the terminal
func ChooseDevice(devices []capture.Device, opts ...tea.ProgramOption) (capture.Device, error) {
	if len(devices) == 0 {
		return capture.Device{}, capture.ErrNoDevices
	}

	final, err := tea.NewProgram(NewPicker("Select the microphone", devices), opts...).Run()
	if err != nil {
		return capture.Device{}, fmt.Errorf("ui: picker: %w", err)
	}
	return final.(Picker).Result()
}
