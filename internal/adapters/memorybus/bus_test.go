package memorybus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish("run.started", []byte(`{"id":"r1"}`))

	select {
	case evt := <-ch:
		if evt.Topic != "run.started" {
			t.Fatalf("unexpected topic: %q", evt.Topic)
		}
		if string(evt.Payload) != `{"id":"r1"}` {
			t.Fatalf("unexpected payload: %s", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe()
	cancel()

	// Publier après cancel ne doit ni paniquer ni livrer.
	bus.Publish("run.started", nil)

	if _, ok := <-ch; ok {
		t.Fatalf("cancelled subscription should have a closed channel")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	bus := New()
	_, cancel := bus.Subscribe()
	cancel()
	cancel()
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := New()
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Bien plus que la capacité du buffer: les événements en trop
		// sont abandonnés, jamais bloquants.
		for i := 0; i < 100; i++ {
			bus.Publish("run.stage", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}
