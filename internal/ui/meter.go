// ABOUTME: Terminal level meter
// ABOUTME: Renders the microphone level as a row of coloured bars
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/micmonitor/micmonitor/pkg/icon"
)

const barGlyph = "█"

// LevelMsg carries one volume estimate
type LevelMsg struct {
	Level float64
	Lit   int
}

// StoppedMsg reports that monitoring ended with Err
type StoppedMsg struct {
	Err error
}

// ListenMsg reports the sidetone state after a toggle
type ListenMsg struct {
	On  bool
	Err error
}

// Meter is the bubbletea model for --no-tray mode
type Meter struct {
	title  string
	device string
	bars   int

	level  float64
	lit    int
	err    error
	listen bool
	notice string

	// toggle flips sidetone; nil hides the key
	toggle func() tea.Msg

	litStyles  map[icon.Tier]lipgloss.Style
	unlitStyle lipgloss.Style
}

// NewMeter creates a meter with bars segments
func NewMeter(title, device string, bars int) Meter {
	if bars < 1 {
		bars = icon.DefaultBars
	}
	litStyles, unlit := barStyles(icon.DefaultPalette())
	return Meter{
		title:  title,
		device: device,
		bars:   bars,
		litStyles:  litStyles,
		unlitStyle: unlit,
	}
}

// WithToggle enables the listen key; toggle runs as a tea.Cmd and should
// return a ListenMsg
func (m Meter) WithToggle(toggle func() tea.Msg) Meter {
	m.toggle = toggle
	return m
}

func (m Meter) Init() tea.Cmd {
	return nil
}

func (m Meter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Listen) && m.toggle != nil:
			return m, m.toggle
		}
	case LevelMsg:
		m.level = msg.Level
		m.lit = msg.Lit
	case StoppedMsg:
		m.err = msg.Err
		m.level, m.lit = 0, 0
	case ListenMsg:
		m.listen = msg.On
		m.notice = ""
		if msg.Err != nil {
			m.notice = "listen unavailable: " + msg.Err.Error()
		}
	}
	return m, nil
}

func (m Meter) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	if m.device != "" {
		b.WriteString(" " + m.device + "\n")
	}
	b.WriteString("\n ")
	b.WriteString(m.renderBars())
	b.WriteString(fmt.Sprintf(" %3.0f%%\n", m.level))

	if m.err != nil {
		b.WriteString("\n " + errorTextStyle.Render("stopped: "+m.err.Error()) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n " + m.notice + "\n")
	}

	b.WriteString("\n")
	help := keys.Quit.Help().Key + " " + keys.Quit.Help().Desc
	if m.toggle != nil {
		state := "off"
		if m.listen {
			state = "on"
		}
		help = keys.Listen.Help().Key + " " + keys.Listen.Help().Desc + " (" + state + ") • " + help
	}
	b.WriteString(helpStyle.Render(" " + help))
	return boxStyle.Render(b.String()) + "\n"
}

// renderBars draws the segments with the icon's tier colours
func (m Meter) renderBars() string {
	var b strings.Builder
	for i := 0; i < m.bars; i++ {
		if i < m.lit {
			b.WriteString(m.litStyles[icon.BarTier(i, m.bars)].Render(barGlyph))
		} else {
			b.WriteString(m.unlitStyle.Render(barGlyph))
		}
	}
	return b.String()
}
