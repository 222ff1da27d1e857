package bus

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
)

// memoryBus is the in-process [RevocationBus] used when no redis URL is
// configured and in tests. Semantics mirror the redis implementation:
// best-effort, at-most-once, no replay.
type memoryBus struct {
	mu          sync.Mutex
	subscribers map[string]map[int]chan Event
	nextID      int
	closed      bool
	logger      *logger.Logger
}

func NewMemoryBus(log *logger.Logger) RevocationBus {
	return &memoryBus{
		subscribers: make(map[string]map[int]chan Event),
		logger:      log,
	}
}

func (b *memoryBus) PublishRevoked(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	for _, events := range b.subscribers[channelFor(event.GrantID)] {
		select {
		case events <- event:
		default:
			// slow subscriber: drop rather than block the publisher
		}
	}

	return nil
}

func (b *memoryBus) SubscribeRevoked(_ context.Context, grantID string) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channel := channelFor(grantID)
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[int]chan Event)
	}

	id := b.nextID
	b.nextID++
	events := make(chan Event, 1)
	b.subscribers[channel][id] = events

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.closed {
				return // Close already tore the channel down
			}
			delete(b.subscribers[channel], id)
			close(events)
		})
	}

	return events, stop, nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, events := range subs {
			close(events)
		}
	}
	b.subscribers = make(map[string]map[int]chan Event)

	return nil
}
