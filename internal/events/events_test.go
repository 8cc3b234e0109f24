package events

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/addrsearch/internal/logger"
	"github.com/NikitaCOEUR/addrsearch/internal/session"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) got() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestFromSelection(t *testing.T) {
	raw := session.Row{"num": "222", "street": "MAIN"}
	e := FromSelection(session.Selection{Label: "222-230 MAIN", Value: "222 MAIN", Raw: raw})

	assert.Equal(t, TypeAddressSelected, e.Type())
	assert.Equal(t, "address-selected", string(e.Type()))
	assert.Equal(t, "222-230 MAIN", e.Label)
	assert.Equal(t, "222 MAIN", e.InputValue)
	assert.Equal(t, raw, e.Raw)
}

func TestBus_DeliversInOrder(t *testing.T) {
	b := New(8, nil)
	c := &collector{}
	b.Subscribe(TypeAddressSelected, c.handle)

	for _, l := range []string{"a", "b", "c"} {
		require.True(t, b.Publish(AddressSelected{Label: l}))
	}
	b.Close()

	got := c.got()
	require.Len(t, got, 3)
	for i, l := range []string{"a", "b", "c"} {
		assert.Equal(t, l, got[i].(AddressSelected).Label)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New(8, nil)
	defer b.Close()

	first, second := &collector{}, &collector{}
	unsub := b.Subscribe(TypeAddressSelected, first.handle)
	b.Subscribe(TypeAddressSelected, second.handle)
	unsub()
	unsub()

	b.Publish(AddressSelected{Label: "x"})
	assert.Eventually(t, func() bool { return len(second.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, first.got())
}

func TestBus_PublishAfterClose(t *testing.T) {
	b := New(1, nil)
	b.Close()
	b.Close()
	assert.False(t, b.Publish(AddressSelected{}))
}

func TestBus_HandlerPanicIsLogged(t *testing.T) {
	var buf bytes.Buffer
	b := New(4, logger.New("error", &buf))
	c := &collector{}
	b.Subscribe(TypeAddressSelected, func(Event) { panic("boom") })
	b.Subscribe(TypeAddressSelected, c.handle)

	b.Publish(AddressSelected{Label: "x"})
	b.Close()

	assert.Len(t, c.got(), 1)
	assert.Contains(t, buf.String(), "event handler panicked")
	assert.Contains(t, buf.String(), "boom")
}
