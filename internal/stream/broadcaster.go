package stream

import (
	"log/slog"
	"sync"
)

// Notice is one change-stream notification delivered to subscribers.
type Notice struct {
	Event string
	Data  any
}

// Broadcaster fans change notices out to per-owner subscribers. Sends never
// block: a subscriber whose buffer is full misses that notice and catches up
// on the next one, since the SSE handler re-reads the full board per notice.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[chan Notice]struct{}
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[chan Notice]struct{})}
}

// Subscribe registers a subscriber for the owner's notices. The returned
// cancel func must be called when the subscriber goes away.
func (b *Broadcaster) Subscribe(ownerID string) (<-chan Notice, func()) {
	ch := make(chan Notice, 8)

	b.mu.Lock()
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = make(map[chan Notice]struct{})
	}
	b.subs[ownerID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[ownerID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, ownerID)
			}
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers a notice to all of the owner's subscribers.
func (b *Broadcaster) Publish(ownerID string, n Notice) {
	b.mu.RLock()
	channels := make([]chan Notice, 0, len(b.subs[ownerID]))
	for ch := range b.subs[ownerID] {
		channels = append(channels, ch)
	}
	b.mu.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- n:
		default:
			slog.Debug("dropping change notice for slow subscriber", "owner", ownerID, "event", n.Event)
		}
	}
}

// SubscriberCount reports how many subscribers the owner currently has.
func (b *Broadcaster) SubscriberCount(ownerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[ownerID])
}
