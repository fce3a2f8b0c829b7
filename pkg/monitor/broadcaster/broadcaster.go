// Package broadcaster manages subscribers and distributes monitor events.
package broadcaster

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

// Event names.
const (
	// EventMemoryUpdate carries used memory in kilobytes.
	EventMemoryUpdate = "memory-update"

	// EventBinSize carries the recycle bin size in bytes.
	EventBinSize = "bin-size"
)

const subscriberBuffer = 100

// Event is one named value.
type Event struct {
	Name  string    `json:"name"`
	Value uint64    `json:"value"`
	Time  time.Time `json:"time"`
}

// Subscriber receives events. Events are dropped for subscribers that do
// not keep up.
type Subscriber struct {
	ID     string
	Names  []string
	Events chan *Event
}

// Broadcaster manages subscribers and distributes events.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	closed      bool
}

// New creates a new Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]*Subscriber),
	}
}

// Subscribe registers a subscriber for the named events, or for all events
// when names is empty. It returns nil once the broadcaster is closed.
func (b *Broadcaster) Subscribe(names ...string) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	sub := &Subscriber{
		ID:     uuid.New().String(),
		Names:  names,
		Events: make(chan *Event, subscriberBuffer),
	}

	b.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.Events)
		delete(b.subscribers, id)
	}
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Notify sends an event to every matching subscriber without blocking.
func (b *Broadcaster) Notify(name string, value uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	event := &Event{Name: name, Value: value, Time: time.Now()}
	for _, sub := range b.subscribers {
		if len(sub.Names) > 0 && !slices.Contains(sub.Names, name) {
			continue
		}
		select {
		case sub.Events <- event:
		default:
			// Channel full, event dropped
		}
	}
}

// Forward publishes every sample received on in until in is closed or ctx
// is done. Memory samples become memory-update events and bin sizes
// become bin-size events.
func (b *Broadcaster) Forward(ctx context.Context, in <-chan types.Sample) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-in:
			if !ok {
				return errors.New("broadcaster: sample channel closed")
			}
			b.Notify(EventName(s.Kind), s.Value)
		}
	}
}

// EventName maps a sample kind to its event name.
func EventName(kind types.Kind) string {
	if kind == types.KindBinSize {
		return EventBinSize
	}
	return EventMemoryUpdate
}

// Close closes the broadcaster and all subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	for _, sub := range b.subscribers {
		close(sub.Events)
	}
	b.subscribers = make(map[string]*Subscriber)
}
