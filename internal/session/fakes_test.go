package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
)

// manualScheduler runs timer callbacks only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) After(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, firing due timers in order.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()
		next.f()
	}
}

// Pending returns the number of armed timers.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type reply struct {
	resp *Response
	err  error
}

type call struct {
	req   Request
	ctx   context.Context
	reply chan reply
}

func (c *call) respond(rows ...Row) {
	c.reply <- reply{resp: &Response{Rows: rows}}
}

func (c *call) respondCode(code string, rows ...Row) {
	c.reply <- reply{resp: &Response{Rows: rows, ErrorCode: code}}
}

func (c *call) fail(err error) {
	c.reply <- reply{err: err}
}

// fakeTransport hands each issued request to the test. With ignoreCtx set it
// keeps waiting for a reply after cancellation, like a transport whose response
// is already on its way.
type fakeTransport struct {
	ignoreCtx bool
	issued    chan *call

	mu    sync.Mutex
	calls []*call
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{issued: make(chan *call, 32)}
}

func (f *fakeTransport) Issue(ctx context.Context, req Request) (*Response, error) {
	c := &call{req: req, ctx: ctx, reply: make(chan reply, 1)}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	f.issued <- c

	if f.ignoreCtx {
		r := <-c.reply
		return r.resp, r.err
	}
	select {
	case r := <-c.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, derrors.NewCancelledError("fake", ctx.Err())
	}
}

func (f *fakeTransport) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.issued:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no request issued")
		return nil
	}
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingRenderer struct {
	mu     sync.Mutex
	views  []View
	values []string
}

func (r *recordingRenderer) Render(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recordingRenderer) SetInputValue(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

func (r *recordingRenderer) last() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return View{Selected: -1}
	}
	return r.views[len(r.views)-1]
}

func (r *recordingRenderer) renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *recordingRenderer) inputValues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

// labelField labels rows by their "label" key, falling back to "street".
type labelField struct{}

func (labelField) Label(row Row) string {
	if s, ok := row["label"].(string); ok {
		return s
	}
	s, _ := row["street"].(string)
	return s
}
