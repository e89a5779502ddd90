package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type confirmKeys struct {
	Yes key.Binding
	No  key.Binding
}

func defaultConfirmKeys() confirmKeys {
	return confirmKeys{
		Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		// Enter takes the default answer, which is no.
		No: key.NewBinding(key.WithKeys("n", "N", "enter", "esc", "q", "ctrl+c"), key.WithHelp("n", "no")),
	}
}

// ConfirmModel is a y/N prompt. Anything but an explicit yes declines.
type ConfirmModel struct {
	prompt    string
	keys      confirmKeys
	theme     Theme
	done      bool
	confirmed bool
}

// NewConfirm returns a prompt asking question.
func NewConfirm(question string) ConfirmModel {
	return ConfirmModel{
		prompt: question,
		keys:   defaultConfirmKeys(),
		theme:  NewDefaultTheme(),
	}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.done = true
		m.confirmed = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.No):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.done {
		if m.confirmed {
			return m.theme.Prompt.Render(m.theme.OK.Render("Confirmed.")) + "\n"
		}
		return m.theme.Prompt.Render(m.theme.Dim.Render("Cancelled.")) + "\n"
	}
	hint := fmt.Sprintf("[%s/%s]", m.keys.Yes.Help().Key, "N")
	return m.theme.Prompt.Render(fmt.Sprintf("%s %s ", m.prompt, m.theme.Key.Render(hint)))
}

// Confirmed reports whether the user answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Confirm runs the prompt until answered. opts let callers (and tests)
// redirect input and output.
func Confirm(question string, opts ...tea.ProgramOption) (bool, error) {
	final, err := tea.NewProgram(NewConfirm(question), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	m, ok := final.(ConfirmModel)
	if !ok {
		return false, fmt.Errorf("confirmation prompt: unexpected model %T", final)
	}
	return m.Confirmed(), nil
}
