// Package timing measures the phases of a request for latency logging.
package timing

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type mark struct {
	label string
	at    time.Duration
}

// Timer records labelled checkpoints relative to its start time.
// It is safe for concurrent use.
type Timer struct {
	now   func() time.Time
	start time.Time

	mu    sync.Mutex
	marks []mark
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return newTimer(time.Now)
}

func newTimer(now func() time.Time) *Timer {
	return &Timer{now: now, start: now()}
}

// Mark records a checkpoint and returns the time since start.
// Marking the same label again overwrites its value but keeps its position.
func (t *Timer) Mark(label string) time.Duration {
	elapsed := t.now().Sub(t.start)
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.marks {
		if t.marks[i].label == label {
			t.marks[i].at = elapsed
			return elapsed
		}
	}
	t.marks = append(t.marks, mark{label: label, at: elapsed})
	return elapsed
}

// Elapsed returns the time since start.
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Get returns the offset recorded for label.
func (t *Timer) Get(label string) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.marks {
		if m.label == label {
			return m.at, true
		}
	}
	return 0, false
}

// Each calls fn for every checkpoint in recording order.
func (t *Timer) Each(fn func(label string, at time.Duration)) {
	t.mu.Lock()
	marks := append([]mark(nil), t.marks...)
	t.mu.Unlock()
	for _, m := range marks {
		fn(m.label, m.at)
	}
}

// Summary formats the total and every checkpoint in milliseconds, e.g.
// "total=12.500ms (upstream=11.000ms, write=12.400ms)".
func (t *Timer) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "total=%s", ms(t.Elapsed()))
	first := true
	t.Each(func(label string, at time.Duration) {
		if first {
			b.WriteString(" (")
			first = false
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", label, ms(at))
	})
	if !first {
		b.WriteString(")")
	}
	return b.String()
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
}
