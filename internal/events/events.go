// Package events carries outbound widget notifications to host subscribers.
package events

import (
	"runtime/debug"
	"sync"

	"github.com/NikitaCOEUR/addrsearch/internal/logger"
	"github.com/NikitaCOEUR/addrsearch/internal/session"
)

// Type names an event kind.
type Type string

// TypeAddressSelected is published when the user commits a suggestion.
const TypeAddressSelected Type = "address-selected"

// Event is anything the bus can carry.
type Event interface {
	Type() Type
}

// AddressSelected reports a committed suggestion.
type AddressSelected struct {
	// Label is the suggestion text as listed.
	Label string
	// Raw is the full service record.
	Raw session.Row
	// InputValue is the text written back to the input field.
	InputValue string
}

func (AddressSelected) Type() Type { return TypeAddressSelected }

// FromSelection converts a controller selection into its outbound event.
func FromSelection(s session.Selection) AddressSelected {
	return AddressSelected{Label: s.Label, Raw: s.Raw, InputValue: s.Value}
}

// Handler receives events of a subscribed type.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events to subscribers in publish order on a single dispatch
// goroutine.
type Bus struct {
	log *logger.Logger

	mu       sync.RWMutex
	handlers map[Type][]subscription
	nextID   uint64

	queue     chan Event
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts a bus with the given queue capacity.
func New(capacity int, log *logger.Logger) *Bus {
	if capacity <= 0 {
		capacity = 64
	}
	if log == nil {
		log = logger.Nop()
	}
	b := &Bus{
		log:      log.Component("events"),
		handlers: make(map[Type][]subscription),
		queue:    make(chan Event, capacity),
		quit:     make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Publish enqueues an event. It never blocks; when the queue is full the event
// is dropped and false is returned.
func (b *Bus) Publish(e Event) bool {
	select {
	case <-b.quit:
		return false
	default:
	}
	select {
	case b.queue <- e:
		b.log.Debug().Str("type", string(e.Type())).Msg("event published")
		return true
	default:
		b.log.Warn().Str("type", string(e.Type())).Msg("event queue full, dropping event")
		return false
	}
}

// Subscribe registers handler for events of type t and returns a function that
// removes it.
func (b *Bus) Subscribe(t Type, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[t]
		for i, s := range subs {
			if s.id == id {
				b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Close stops the dispatcher after delivering queued events.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.quit) })
	b.wg.Wait()
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case e := <-b.queue:
			b.deliver(e)
		case <-b.quit:
			for {
				select {
				case e := <-b.queue:
					b.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[e.Type()]))
	copy(subs, b.handlers[e.Type()])
	b.mu.RUnlock()

	for _, s := range subs {
		b.call(s.handler, e)
	}
}

func (b *Bus) call(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("type", string(e.Type())).
				Any("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("event handler panicked")
		}
	}()
	h(e)
}
