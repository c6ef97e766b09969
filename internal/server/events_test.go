package server

import (
	"encoding/json"
	"testing"
)

func TestEventBusFanOut(t *testing.T) {
	bus := NewEventBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish("watchlist.added", map[string]int{"media_id": 550})

	for name, ch := range map[string]chan []byte{"a": a, "b": b} {
		select {
		case raw := <-ch:
			var msg struct {
				Event   string         `json:"event"`
				Payload map[string]int `json:"payload"`
			}
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("%s: decode: %v", name, err)
			}
			if msg.Event != "watchlist.added" || msg.Payload["media_id"] != 550 {
				t.Errorf("%s: msg = %+v", name, msg)
			}
		default:
			t.Errorf("subscriber %s received nothing", name)
		}
	}
}

func TestEventBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	bus.Publish("history.updated", nil)
}

func TestEventBusSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe()

	// Overfill the subscriber buffer; extra events are dropped, not blocked on.
	for i := 0; i < 20; i++ {
		bus.Publish("history.updated", map[string]int{"i": i})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received > 8 {
		t.Errorf("received %d events, want 1..8 (buffered)", received)
	}
}
