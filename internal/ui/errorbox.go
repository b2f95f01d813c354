// ABOUTME: Blocking error message box for the terminal
// ABOUTME: Shown for startup failures; any key dismisses it
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ErrorBox is a bubbletea model that shows one message until a key is pressed
type ErrorBox struct {
	title     string
	message   string
	dismissed bool
}

// NewErrorBox creates an error box
func NewErrorBox(title, message string) ErrorBox {
	return ErrorBox{title: title, message: message}
}

func (e ErrorBox) Init() tea.Cmd {
	return nil
}

func (e ErrorBox) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		e.dismissed = true
		return e, tea.Quit
	}
	return e, nil
}

func (e ErrorBox) View() string {
	if e.dismissed {
		return ""
	}
	return errorBoxStyle.Render(
		titleStyle.Render(e.title) + "\n\n" +
			e.message + "\n\n" +
			helpStyle.Render("press any key"),
	) + "\n"
}

// ShowError displays the message and waits for a key
func ShowError(title, message string, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(NewErrorBox(title, message), opts...).Run()
	return err
}
