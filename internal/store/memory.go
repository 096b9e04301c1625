package store

import (
	"sync"
)

// subscriberBuffer is the channel capacity given to each subscriber.
const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// Updates are sent to subscribers non-blocking; if a subscriber's buffer is
// full, the update is dropped for that subscriber.
type MemoryStore struct {
	mu          sync.RWMutex
	latest      Reading
	hasLatest   bool
	subscribers map[chan Reading]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan Reading]struct{}),
	}
}

// Update replaces the latest reading and notifies all subscribers.
func (m *MemoryStore) Update(reading Reading) {
	m.mu.Lock()
	m.latest = reading
	m.hasLatest = true
	m.mu.Unlock()

	m.notifySubscribers(reading)
}

// Latest returns the most recent reading. The boolean is false until the
// first Update.
func (m *MemoryStore) Latest() (Reading, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.latest, m.hasLatest
}

// Subscribe creates a new subscription.
//
// Caller must call [MemoryStore.Unsubscribe] when done.
func (m *MemoryStore) Subscribe() <-chan Reading {
	ch := make(chan Reading, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Reading) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(reading Reading) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- reading:
		default:
			// slow subscriber, drop
		}
	}
}
