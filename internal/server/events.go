package server

import (
	"encoding/json"
	"sync"
)

// EventBus fans watchlist/history mutation events out to SSE subscribers,
// so clients can refresh reactively instead of polling.
type EventBus struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func NewEventBus() *EventBus {
	return &EventBus{
		clients: make(map[chan []byte]struct{}),
	}
}

func (e *EventBus) Subscribe() chan []byte {
	ch := make(chan []byte, 8)
	e.mu.Lock()
	e.clients[ch] = struct{}{}
	e.mu.Unlock()
	return ch
}

func (e *EventBus) Unsubscribe(ch chan []byte) {
	e.mu.Lock()
	if _, ok := e.clients[ch]; ok {
		delete(e.clients, ch)
		close(ch)
	}
	e.mu.Unlock()
}

// Publish broadcasts an event to all subscribers. Slow subscribers with a
// full buffer miss the event rather than blocking the publisher.
func (e *EventBus) Publish(event string, payload any) {
	body := map[string]any{
		"event":   event,
		"payload": payload,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for ch := range e.clients {
		select {
		case ch <- raw:
		default:
		}
	}
}
