// Package memorybus est l'adapter EventBus en mémoire: suffisant pour un
// process unique, aucun besoin de broker externe.
package memorybus

import (
	"sync"

	"github.com/cinedigest/cinedigest/internal/ports"
)

type Bus struct {
	mu   sync.Mutex
	subs map[chan ports.Event]struct{}
}

func New() *Bus {
	return &Bus{subs: make(map[chan ports.Event]struct{})}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	evt := ports.Event{Topic: topic, Payload: payload}
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// drop si l'abonné est trop lent
		}
	}
}

func (b *Bus) Subscribe() (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, 32)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
