// Package tui binds a suggestion session controller to a terminal input.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NikitaCOEUR/addrsearch/internal/session"
)

// Controller is the part of the session controller the model drives.
type Controller interface {
	TextChanged(raw string)
	Key(name string) bool
	Pick(index int)
	ClearInput()
}

var (
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(lipgloss.Color("10"))
	advisoryStyle = lipgloss.NewStyle().PaddingLeft(2).Italic(true).Foreground(lipgloss.Color("11"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	listStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("241"))
)

// Model is the bubbletea model of the address widget.
type Model struct {
	ctrl     Controller
	renderer *Renderer
	input    textinput.Model
	view     session.View
	chosen   *session.Selection
	quitting bool
	width    int
}

// New creates the model. The renderer must be the one the controller renders to.
func New(ctrl Controller, renderer *Renderer, placeholder string) *Model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("Address: ")
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Focus()

	return &Model{
		ctrl:     ctrl,
		renderer: renderer,
		input:    ti,
		view:     session.View{Selected: -1},
	}
}

// Chosen returns the committed selection, or nil if the user quit without one.
func (m *Model) Chosen() *session.Selection {
	return m.chosen
}

// Init starts the cursor blink and the renderer subscription.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.renderer.Wait())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-12, 10)
		return m, nil

	case updatedMsg:
		u := m.renderer.take()
		m.view = u.view
		if u.input != nil {
			m.input.SetValue(*u.input)
			m.input.CursorEnd()
		}
		if u.selected != nil {
			m.chosen = u.selected
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.renderer.Wait()

	case closedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		if m.input.Value() == "" {
			m.quitting = true
			return m, tea.Quit
		}
		m.ctrl.ClearInput()
		return m, nil
	case tea.KeyDown:
		m.ctrl.Key(session.KeyArrowDown)
		return m, nil
	case tea.KeyUp:
		m.ctrl.Key(session.KeyArrowUp)
		return m, nil
	case tea.KeyEnter:
		m.ctrl.Key(session.KeyEnter)
		return m, nil
	}

	// alt+1..alt+9 pick a listed entry directly.
	if msg.Alt && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9' {
		m.ctrl.Pick(int(msg.Runes[0] - '1'))
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.TextChanged(after)
	}
	return m, cmd
}

// View renders the input and, when visible, the suggestion list.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.view.Visible {
		b.WriteString(listStyle.Render(renderList(m.view)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ move • enter select • alt+1-9 pick • esc clear • ctrl+c quit"))
	return b.String()
}

func renderList(v session.View) string {
	lines := make([]string, 0, len(v.Items)+1)
	for i, item := range v.Items {
		if i == v.Selected {
			lines = append(lines, selectedStyle.Render(fmt.Sprintf("› %s", item)))
			continue
		}
		lines = append(lines, itemStyle.Render(item))
	}
	if v.Advisory != "" {
		lines = append(lines, advisoryStyle.Render(v.Advisory))
	}
	return strings.Join(lines, "\n")
}

// SetValue pre-fills the input without notifying the controller.
func (m *Model) SetValue(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
}
