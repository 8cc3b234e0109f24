package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/NikitaCOEUR/addrsearch/internal/session"
)

// Renderer is the session.Renderer for the terminal. The controller calls it
// with its lock held, so it only stores the latest update and wakes the
// program; the model pulls the update on its own goroutine.
type Renderer struct {
	mu       sync.Mutex
	view     session.View
	input    *string
	selected *session.Selection

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

var _ session.Renderer = (*Renderer)(nil)

// NewRenderer creates an idle renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		view:   session.View{Selected: -1},
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Render stores the latest list view.
func (r *Renderer) Render(v session.View) {
	r.mu.Lock()
	r.view = v
	r.mu.Unlock()
	r.signal()
}

// SetInputValue queues a programmatic overwrite of the input text.
func (r *Renderer) SetInputValue(value string) {
	r.mu.Lock()
	r.input = &value
	r.mu.Unlock()
	r.signal()
}

// OnSelect records a committed suggestion. It is meant to be passed as the
// controller's selection callback.
func (r *Renderer) OnSelect(sel session.Selection) {
	r.mu.Lock()
	r.selected = &sel
	r.mu.Unlock()
	r.signal()
}

// Close releases a pending Wait.
func (r *Renderer) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Renderer) signal() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// update is the batch of changes taken by the model.
type update struct {
	view     session.View
	input    *string
	selected *session.Selection
}

// take returns the latest view and consumes any queued input overwrite or selection.
func (r *Renderer) take() update {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := update{view: r.view, input: r.input, selected: r.selected}
	r.input = nil
	r.selected = nil
	return u
}

// updatedMsg tells the model the renderer holds new state.
type updatedMsg struct{}

// closedMsg tells the model the renderer was closed.
type closedMsg struct{}

// Wait returns a command that blocks until the next update.
func (r *Renderer) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-r.notify:
			return updatedMsg{}
		case <-r.done:
			return closedMsg{}
		}
	}
}
