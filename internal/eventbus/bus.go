package eventbus

import (
	"sync"
)

// DefaultBuffer es el tamaño de buffer de cada suscripción
const DefaultBuffer = 32

// EventBus es el bus central de eventos usando Pub/Sub pattern
type EventBus struct {
	subscribers map[EventType][]chan Event
	mu          sync.RWMutex
	closed      bool
}

// NewEventBus crea una nueva instancia del Event Bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
	}
}

// Subscribe crea una suscripción a un tipo de evento específico.
// Retorna un canal read-only y la función que cancela la suscripción.
func (eb *EventBus) Subscribe(eventType EventType) (<-chan Event, func()) {
	return eb.SubscribeBuffered(eventType, DefaultBuffer)
}

// SubscribeBuffered es como Subscribe pero con tamaño de buffer explícito
func (eb *EventBus) SubscribeBuffered(eventType EventType, size int) (<-chan Event, func()) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	// Crear canal con buffer para evitar bloqueos
	ch := make(chan Event, size)

	if eb.closed {
		close(ch)
		return ch, func() {}
	}

	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() { eb.unsubscribe(eventType, ch) })
	}
	return ch, cancel
}

// unsubscribe elimina el canal del map y lo cierra
func (eb *EventBus) unsubscribe(eventType EventType, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[eventType]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
	// Si no está, Close ya lo cerró
}

// Publish publica un evento a todos los suscriptores de ese tipo
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, ch := range subs {
			// Non-blocking send (si el canal está lleno, descarta)
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount retorna cuántas suscripciones activas hay para un tipo
func (eb *EventBus) SubscriberCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers[eventType])
}

// Close cierra todos los canales de suscriptores
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, subs := range eb.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}

	eb.subscribers = make(map[EventType][]chan Event)
	eb.closed = true
}
