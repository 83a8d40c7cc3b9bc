package server

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/mqtt"
)

// Tipos de mensaje del stream
const (
	MessageSegment  = "segment"
	MessageAlert    = "alert"
	MessageOdometer = "odometer"
)

// Message es el sobre JSON que reciben los clientes del stream
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub reparte los eventos del motor entre los clientes WebSocket
type Hub struct {
	deviceID string
	clients  map[*Client]struct{}
	mu       sync.RWMutex

	cancels []func()
	done    chan struct{}
}

// Client es una conexión del stream. Types vacío acepta todo.
type Client struct {
	Types map[string]bool
	Send  chan []byte
}

// Accepts indica si el cliente quiere mensajes del tipo dado
func (c *Client) Accepts(msgType string) bool {
	return len(c.Types) == 0 || c.Types[msgType]
}

func NewHub(deviceID string) *Hub {
	return &Hub{
		deviceID: deviceID,
		clients:  map[*Client]struct{}{},
	}
}

// ParseTypes interpreta "segment,alert" en un filtro
func ParseTypes(raw string) map[string]bool {
	types := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = true
		}
	}
	return types
}

func (h *Hub) Register(types map[string]bool) *Client {
	client := &Client{
		Types: types,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
}

// ClientCount retorna cuántos clientes están conectados
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast entrega payload a los clientes que aceptan msgType.
// Un cliente lento pierde el mensaje.
func (h *Hub) Broadcast(msgType string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.Accepts(msgType) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// Attach suscribe el hub a las salidas del motor
func (h *Hub) Attach(bus *eventbus.EventBus) {
	segments, cancelSegments := bus.Subscribe(eventbus.EventSegment)
	alerts, cancelAlerts := bus.Subscribe(eventbus.EventAlert)
	odometer, cancelOdometer := bus.Subscribe(eventbus.EventOdometer)

	h.mu.Lock()
	h.cancels = []func(){cancelSegments, cancelAlerts, cancelOdometer}
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go h.forward(done, segments, alerts, odometer)
}

// Detach cancela las suscripciones y espera al forwarder
func (h *Hub) Detach() {
	h.mu.Lock()
	cancels := h.cancels
	done := h.done
	h.cancels = nil
	h.done = nil
	h.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (h *Hub) forward(done chan struct{}, segments, alerts, odometer <-chan eventbus.Event) {
	defer close(done)

	for segments != nil || alerts != nil || odometer != nil {
		select {
		case ev, ok := <-segments:
			if !ok {
				segments = nil
				continue
			}
			if data, ok := ev.Data.(eventbus.SegmentData); ok {
				h.send(MessageSegment, mqtt.SegmentPayload(h.deviceID, ev.Timestamp, data))
			}
		case ev, ok := <-alerts:
			if !ok {
				alerts = nil
				continue
			}
			if data, ok := ev.Data.(eventbus.AlertData); ok {
				h.send(MessageAlert, mqtt.AlertPayload(h.deviceID, ev.Timestamp, data))
			}
		case ev, ok := <-odometer:
			if !ok {
				odometer = nil
				continue
			}
			if data, ok := ev.Data.(eventbus.OdometerData); ok {
				h.send(MessageOdometer, mqtt.OdometerPayload(h.deviceID, ev.Timestamp, data))
			}
		}
	}
}

func (h *Hub) send(msgType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		monitoring.Logf("❌ [Stream] Error serializando %s: %v", msgType, err)
		return
	}
	h.Broadcast(msgType, payload)
}
