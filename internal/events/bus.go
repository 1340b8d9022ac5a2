package events

import "sync"

// Bus is an in-process event bus. Handlers registered on a channel receive
// every payload published to that channel until they unsubscribe. Delivery
// is synchronous on the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[string]map[uint64]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[uint64]Handler)}
}

// Subscribe registers a handler on a channel.
func (b *Bus) Subscribe(channel string, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	if b.handlers[channel] == nil {
		b.handlers[channel] = make(map[uint64]Handler)
	}
	b.handlers[channel][id] = fn

	return &busSubscription{bus: b, channel: channel, id: id}
}

// Publish delivers a payload to every handler on the channel.
func (b *Bus) Publish(channel string, payload Payload) {
	b.mu.RLock()
	fns := make([]Handler, 0, len(b.handlers[channel]))
	for _, fn := range b.handlers[channel] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}

type busSubscription struct {
	bus     *Bus
	channel string
	id      uint64
	once    sync.Once
}

func (s *busSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		if fns := s.bus.handlers[s.channel]; fns != nil {
			delete(fns, s.id)
			if len(fns) == 0 {
				delete(s.bus.handlers, s.channel)
			}
		}
	})
}
