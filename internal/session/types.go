// Package session implements the suggestion session controller that sits behind an
// address input: it debounces keystrokes, keeps at most one suggestion request in
// flight, and drives keyboard and pointer selection over the result list.
//
// The controller is render-agnostic. A UI adapter feeds it input events and
// receives View snapshots through a Renderer; the host observes commits through
// the OnSelect callback.
package session

import (
	"context"
	"time"
)

// OverflowCode is the service error code meaning "too many results, keep typing".
const OverflowCode = "2"

// DefaultAdvisory is the advisory row shown after the results on overflow.
const DefaultAdvisory = "(Too many results; keep typing.)"

// Row is one opaque record returned by the suggestion service.
type Row = map[string]any

// Request holds the query parameters sent to the suggestion service.
type Request struct {
	Street     string
	House      string
	MaxResults int
}

// Response is a decoded suggestion service reply.
type Response struct {
	Rows      []Row
	ErrorCode string
}

// Overflow reports whether the service truncated the result set.
func (r *Response) Overflow() bool {
	return r != nil && r.ErrorCode == OverflowCode
}

// Transport issues suggestion requests. Implementations must return promptly once
// ctx is done, with an error for which derrors.IsCancelled reports true.
type Transport interface {
	Issue(ctx context.Context, req Request) (*Response, error)
}

// Renderer receives presentation updates. Calls are made while the controller
// holds its lock, so implementations must not block and must not call back into
// the controller.
type Renderer interface {
	// Render replaces the displayed list. Selected is the highlighted index or -1;
	// the renderer keeps the highlighted entry scrolled into view.
	Render(v View)
	// SetInputValue overwrites the text shown in the input field.
	SetInputValue(value string)
}

// Labeler turns a service row into display text.
type Labeler interface {
	Label(row Row) string
}

// Scheduler arms cancellable one-shot timers.
type Scheduler interface {
	After(d time.Duration, f func()) Timer
}

// Timer is a handle to an armed callback.
type Timer interface {
	Stop() bool
}

// TimerScheduler schedules callbacks on the runtime timer heap.
type TimerScheduler struct{}

// After runs f in its own goroutine once d has elapsed.
func (TimerScheduler) After(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Suggestion is one entry of the current result set.
type Suggestion struct {
	Label string
	Raw   Row
}

// Selection is emitted when the user commits a suggestion.
type Selection struct {
	// Label is the suggestion text as listed.
	Label string
	// Value is the text written back to the input field.
	Value string
	// Raw is the full service record.
	Raw Row
}

// View is what the renderer should display.
type View struct {
	Items    []string
	Advisory string
	Selected int
	Visible  bool
}

// Phase is the controller's position in the request lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseFetching
	PhaseListed
	PhaseTooMany
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseFetching:
		return "fetching"
	case PhaseListed:
		return "listed"
	case PhaseTooMany:
		return "too-many"
	default:
		return "unknown"
	}
}

// State is a copy of the controller's session state.
type State struct {
	Phase    Phase
	Value    string
	Selected int
	Results  []Suggestion
	TooMany  bool
	// Err is the last non-cancellation transport failure, cleared by the next success.
	Err error
}

// Direction is a keyboard navigation direction.
type Direction int

const (
	Down Direction = iota
	Up
)

// Key names understood by Controller.Key.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
)
