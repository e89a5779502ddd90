package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModelUpdate(t *testing.T) {
	tests := []struct {
		name      string
		msg       tea.KeyMsg
		done      bool
		confirmed bool
	}{
		{name: "y", msg: runes("y"), done: true, confirmed: true},
		{name: "Y", msg: runes("Y"), done: true, confirmed: true},
		{name: "n", msg: runes("n"), done: true},
		{name: "enter defaults to no", msg: tea.KeyMsg{Type: tea.KeyEnter}, done: true},
		{name: "esc", msg: tea.KeyMsg{Type: tea.KeyEsc}, done: true},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}, done: true},
		{name: "other key ignored", msg: runes("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, cmd := NewConfirm("Rotate?").Update(tt.msg)
			m := updated.(ConfirmModel)

			assert.Equal(t, tt.done, m.done)
			assert.Equal(t, tt.confirmed, m.Confirmed())
			if tt.done {
				assert.NotNil(t, cmd)
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestConfirmModelIgnoresNonKeyMessages(t *testing.T) {
	updated, cmd := NewConfirm("Rotate?").Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.False(t, updated.(ConfirmModel).done)
	assert.Nil(t, cmd)
}

func TestConfirmModelView(t *testing.T) {
	m := NewConfirm("Rotate the secret?")
	assert.Contains(t, m.View(), "Rotate the secret?")
	assert.Contains(t, m.View(), "[y/N]")

	updated, _ := m.Update(runes("y"))
	assert.Contains(t, updated.View(), "Confirmed.")

	updated, _ = m.Update(runes("n"))
	assert.Contains(t, updated.View(), "Cancelled.")
}

func TestConfirmReadsInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y", want: true},
		{name: "no", input: "n", want: false},
		{name: "enter", input: "\r", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm("Proceed?",
				tea.WithInput(strings.NewReader(tt.input)),
				tea.WithOutput(&out),
				tea.WithoutSignalHandler(),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
