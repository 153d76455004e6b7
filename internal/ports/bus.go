package ports

// EventBus transporte les événements de run (started/stage/completed/failed)
// vers les abonnés (SSE côté API). Publish ne bloque jamais.
type EventBus interface {
	Publish(topic string, payload []byte)
	Subscribe() (ch <-chan Event, cancel func())
}

type Event struct {
	Topic   string
	Payload []byte
}
