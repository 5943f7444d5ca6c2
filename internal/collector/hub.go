package collector

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Hub fans entries out to live subscribers. Writes never block: a subscriber
// whose buffer is full misses the entry.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]*subscription
	dropped prometheus.Counter
}

type subscription struct {
	ch     chan Entry
	filter func(Entry) bool
}

// NewHub counts entries lost to slow subscribers on dropped.
func NewHub(dropped prometheus.Counter) *Hub {
	return &Hub{
		subs:    make(map[int]*subscription),
		dropped: dropped,
	}
}

// Subscribe returns a channel of entries accepted by filter (nil accepts
// everything) and a func that ends the subscription and closes the channel.
func (h *Hub) Subscribe(buffer int, filter func(Entry) bool) (<-chan Entry, func()) {
	if buffer < 1 {
		buffer = 1
	}

	sub := &subscription{
		ch:     make(chan Entry, buffer),
		filter: filter,
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}

	return sub.ch, cancel
}

func (h *Hub) Write(entry Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.filter != nil && !sub.filter(entry) {
			continue
		}

		select {
		case sub.ch <- entry:
		default:
			h.dropped.Inc()
		}
	}

	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
