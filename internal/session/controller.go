package session

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/NikitaCOEUR/addrsearch/internal/address"
	"github.com/NikitaCOEUR/addrsearch/internal/derrors"
	"github.com/NikitaCOEUR/addrsearch/internal/label"
	"github.com/NikitaCOEUR/addrsearch/internal/logger"
	"github.com/NikitaCOEUR/addrsearch/internal/trace"
)

// Config holds the controller's tunables.
type Config struct {
	Debounce       time.Duration
	Timeout        time.Duration
	MinQueryLength int
	MaxResults     int
	Advisory       string
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		Debounce:       300 * time.Millisecond,
		Timeout:        2000 * time.Millisecond,
		MinQueryLength: 3,
		MaxResults:     5,
		Advisory:       DefaultAdvisory,
	}
}

// Options wires a controller to its collaborators. Transport and Renderer are
// required; the rest default to the real scheduler, the default label template,
// a discarding logger and no selection callback.
type Options struct {
	Config    Config
	Transport Transport
	Renderer  Renderer
	Scheduler Scheduler
	Labeler   Labeler
	Logger    *logger.Logger
	OnSelect  func(Selection)
}

// rangePrefix matches a label that starts with a house number range like "222-230".
var rangePrefix = regexp.MustCompile(`^([0-9]+)-[0-9]+`)

// request is the single in-flight suggestion call.
type request struct {
	seq      uint64
	cancel   context.CancelFunc
	deadline Timer
	params   Request
	started  time.Time
}

// Controller owns one widget's session state.
type Controller struct {
	cfg       Config
	transport Transport
	renderer  Renderer
	scheduler Scheduler
	labeler   Labeler
	log       *logger.Logger
	onSelect  func(Selection)

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	phase    Phase
	value    string
	selected int
	results  []Suggestion
	tooMany  bool
	lastErr  error

	debounce    Timer
	debounceSeq uint64
	current     *request
	requestSeq  uint64
}

// New creates a controller. It corresponds to connecting the widget; Close
// disconnects it.
func New(opts Options) *Controller {
	cfg := opts.Config
	defaults := DefaultConfig()
	switch {
	case cfg.Debounce == 0:
		cfg.Debounce = defaults.Debounce
	case cfg.Debounce < 0:
		// Negative disables the quiet period; requests fire on the next tick.
		cfg.Debounce = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = defaults.MinQueryLength
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaults.MaxResults
	}
	if cfg.Advisory == "" {
		cfg.Advisory = defaults.Advisory
	}

	c := &Controller{
		cfg:       cfg,
		transport: opts.Transport,
		renderer:  opts.Renderer,
		scheduler: opts.Scheduler,
		labeler:   opts.Labeler,
		log:       opts.Logger,
		onSelect:  opts.OnSelect,
		selected:  -1,
	}
	if c.scheduler == nil {
		c.scheduler = TimerScheduler{}
	}
	if c.labeler == nil {
		c.labeler = label.Default()
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.Component("session")
	c.ctx, c.stop = context.WithCancel(context.Background())
	return c
}

// Config returns the effective tunables.
func (c *Controller) Config() Config {
	return c.cfg
}

// TextChanged records a new raw input value and re-arms the debounce timer.
// Input shorter than the minimum length clears the list without a request.
func (c *Controller) TextChanged(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.value = raw
	c.selected = -1
	value := strings.TrimSpace(raw)

	c.stopDebounceLocked()
	if utf8.RuneCountInString(value) < c.cfg.MinQueryLength {
		c.cancelRequestLocked("input too short")
		c.clearLocked()
		return
	}

	c.debounceSeq++
	seq := c.debounceSeq
	c.phase = PhaseDebouncing
	c.debounce = c.scheduler.After(c.cfg.Debounce, func() {
		c.debounceFired(seq, value)
	})
	if len(c.results) > 0 {
		c.renderLocked()
	}
}

func (c *Controller) debounceFired(seq uint64, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.debounceSeq || c.debounce == nil {
		return
	}
	c.debounce = nil
	c.startFetchLocked(value)
}

// StartFetch parses value and issues a request immediately, skipping the debounce.
func (c *Controller) StartFetch(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopDebounceLocked()
	c.startFetchLocked(strings.TrimSpace(value))
}

func (c *Controller) startFetchLocked(value string) {
	q := address.Parse(value)
	if q.Street == "" || utf8.RuneCountInString(q.Street) < c.cfg.MinQueryLength {
		c.log.Debug().Str("input", value).Msg("no usable street token")
		c.cancelRequestLocked("unparseable input")
		c.clearLocked()
		return
	}

	c.cancelRequestLocked("superseded")

	c.requestSeq++
	ctx, cancel := context.WithCancel(c.ctx)
	req := &request{
		seq:     c.requestSeq,
		cancel:  cancel,
		started: time.Now(),
		params: Request{
			Street:     q.Street,
			House:      q.HouseParam(),
			MaxResults: c.cfg.MaxResults,
		},
	}
	seq := req.seq
	req.deadline = c.scheduler.After(c.cfg.Timeout, func() {
		c.deadlineFired(seq)
	})
	c.current = req
	c.phase = PhaseFetching

	c.log.Debug().
		Str("street", req.params.Street).
		Str("house", req.params.House).
		Int("seq", int(seq)).
		Msg("issuing suggestion request")

	c.wg.Add(1)
	go c.run(ctx, req)
}

func (c *Controller) run(ctx context.Context, req *request) {
	defer c.wg.Done()
	end := trace.Region(ctx, "session.request")
	resp, err := c.transport.Issue(ctx, req.params)
	end()
	if err == nil && ctx.Err() != nil {
		err = derrors.NewCancelledError("", ctx.Err())
	}
	c.settle(req, resp, err)
}

// settle applies a finished request. Results of any request other than the
// current one are ignored unconditionally.
func (c *Controller) settle(req *request, resp *Response, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.current != req {
		c.log.Debug().Int("seq", int(req.seq)).Err(err).Msg("dropping stale response")
		return
	}
	req.deadline.Stop()
	req.cancel()
	c.current = nil
	elapsed := time.Since(req.started)

	if err != nil {
		if derrors.IsCancelled(err) {
			c.log.Debug().Int("seq", int(req.seq)).Msg("request cancelled")
			c.phase = c.restingPhaseLocked()
			return
		}
		c.log.Warn().Err(err).Dur("elapsed", elapsed).Msg("suggestion request failed")
		c.lastErr = err
		c.clearLocked()
		return
	}

	var rows []Row
	if resp != nil {
		rows = resp.Rows
	}
	results := make([]Suggestion, 0, len(rows))
	for _, row := range rows {
		results = append(results, Suggestion{Label: c.labeler.Label(row), Raw: row})
	}

	c.results = results
	c.tooMany = resp.Overflow()
	c.selected = -1
	c.lastErr = nil
	if c.tooMany {
		c.phase = PhaseTooMany
	} else {
		c.phase = PhaseListed
	}
	if c.debounce != nil {
		c.phase = PhaseDebouncing
	}

	c.log.Debug().
		Int("seq", int(req.seq)).
		Int("rows", len(results)).
		Bool("overflow", c.tooMany).
		Dur("elapsed", elapsed).
		Msg("applied suggestions")
	c.renderLocked()
}

// deadlineFired abandons the request if it is still outstanding. No error is
// shown; the list from the previous query is hidden.
func (c *Controller) deadlineFired(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.current == nil || c.current.seq != seq {
		return
	}
	c.log.Debug().Int("seq", int(seq)).Dur("timeout", c.cfg.Timeout).Msg("request timed out")
	c.current.cancel()
	c.current = nil
	c.clearLocked()
}

// Navigate moves the highlight without wrapping.
func (c *Controller) Navigate(dir Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	last := len(c.results) - 1
	if last < 0 {
		c.selected = -1
		return
	}
	switch dir {
	case Down:
		c.selected = min(c.selected+1, last)
	case Up:
		c.selected = max(c.selected-1, 0)
	}
	c.renderLocked()
}

// Key handles a named key and reports whether it was consumed.
func (c *Controller) Key(name string) bool {
	switch name {
	case KeyArrowDown:
		c.Navigate(Down)
	case KeyArrowUp:
		c.Navigate(Up)
	case KeyEnter:
		c.Commit()
	default:
		return false
	}
	return true
}

// Commit picks the highlighted entry, or the only entry when nothing is
// highlighted. Otherwise it does nothing.
func (c *Controller) Commit() {
	c.mu.Lock()
	var sel *Selection
	switch {
	case c.closed:
	case c.selected >= 0 && c.selected < len(c.results):
		sel = c.commitLocked(c.results[c.selected])
	case len(c.results) == 1:
		sel = c.commitLocked(c.results[0])
	}
	c.mu.Unlock()
	c.emit(sel)
}

// Pick commits the entry at a list index. The advisory row and out of range
// indexes are ignored.
func (c *Controller) Pick(index int) {
	c.mu.Lock()
	var sel *Selection
	if !c.closed && index >= 0 && index < len(c.results) {
		sel = c.commitLocked(c.results[index])
	}
	c.mu.Unlock()
	c.emit(sel)
}

func (c *Controller) commitLocked(s Suggestion) *Selection {
	value := CollapseRange(s.Label)
	c.value = value
	c.stopDebounceLocked()
	c.cancelRequestLocked("committed")
	c.clearLocked()
	c.renderer.SetInputValue(value)
	c.log.Debug().Str("value", value).Msg("suggestion committed")
	return &Selection{Label: s.Label, Value: value, Raw: s.Raw}
}

func (c *Controller) emit(sel *Selection) {
	if sel != nil && c.onSelect != nil {
		c.onSelect(*sel)
	}
}

// CollapseRange turns a leading house number range into its first number:
// "222-230 Main" becomes "222 Main".
func CollapseRange(label string) string {
	return rangePrefix.ReplaceAllString(label, "$1")
}

// Clear empties and hides the list. It is idempotent.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.clearLocked()
}

// ClearInput empties the input field, drops pending work and hides the list.
func (c *Controller) ClearInput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.value = ""
	c.stopDebounceLocked()
	c.cancelRequestLocked("input cleared")
	c.clearLocked()
	c.renderer.SetInputValue("")
}

// State returns a copy of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]Suggestion, len(c.results))
	copy(results, c.results)
	return State{
		Phase:    c.phase,
		Value:    c.value,
		Selected: c.selected,
		Results:  results,
		TooMany:  c.tooMany,
		Err:      c.lastErr,
	}
}

// Wait blocks until every issued request has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close disconnects the controller: the debounce timer is stopped, the in-flight
// request is cancelled and later callbacks are ignored. It is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopDebounceLocked()
	c.cancelRequestLocked("closed")
	c.closed = true
	c.phase = PhaseIdle
	c.stop()
}

func (c *Controller) stopDebounceLocked() {
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.debounceSeq++
}

func (c *Controller) cancelRequestLocked(reason string) {
	if c.current == nil {
		return
	}
	c.log.Debug().Int("seq", int(c.current.seq)).Str("reason", reason).Msg("cancelling request")
	c.current.deadline.Stop()
	c.current.cancel()
	c.current = nil
}

func (c *Controller) clearLocked() {
	c.results = nil
	c.tooMany = false
	c.selected = -1
	c.phase = c.restingPhaseLocked()
	c.renderLocked()
}

// restingPhaseLocked is the phase once no result set is shown.
func (c *Controller) restingPhaseLocked() Phase {
	switch {
	case c.current != nil:
		return PhaseFetching
	case c.debounce != nil:
		return PhaseDebouncing
	case len(c.results) > 0 && c.tooMany:
		return PhaseTooMany
	case len(c.results) > 0:
		return PhaseListed
	default:
		return PhaseIdle
	}
}

func (c *Controller) renderLocked() {
	items := make([]string, len(c.results))
	for i, s := range c.results {
		items[i] = s.Label
	}
	v := View{
		Items:    items,
		Selected: c.selected,
		Visible:  len(items) > 0,
	}
	if c.tooMany {
		v.Advisory = c.cfg.Advisory
	}
	c.renderer.Render(v)
}
