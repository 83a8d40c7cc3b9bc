package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.UnixMilli(1699999999999)

func init() {
	monitoring.SetLogger(nil)
}

type message struct {
	topic   string
	payload map[string]interface{}
}

// sink guarda lo que se habría publicado
type sink struct {
	mu   sync.Mutex
	msgs []message
	err  error
}

func (s *sink) add(topic string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return err
	}
	s.msgs = append(s.msgs, message{topic: topic, payload: m})
	return nil
}

func (s *sink) messages() []message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]message(nil), s.msgs...)
}

func (s *sink) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	return s.add(key, msg.Body)
}

func TestPayloads(t *testing.T) {
	alert := AlertPayload("MOTO-7", ts, eventbus.AlertData{Message: "🚨 High Jerk Detected", Severity: "high_jerk"})
	assert.Equal(t, "MOTO-7", alert["device_id"])
	assert.Equal(t, int64(1699999999999), alert["timestamp"])
	assert.Equal(t, "high_jerk", alert["severity"])

	seg := SegmentPayload("MOTO-7", ts, eventbus.SegmentData{
		Index: 3, Start: [2]float64{77.209, 28.6139}, End: [2]float64{77.21, 28.614}, Color: "#ff0000", Jerk: 23.41,
	})
	assert.Equal(t, int64(1699999999999), seg["timestamp"])
	assert.Equal(t, [][2]float64{{77.209, 28.6139}, {77.21, 28.614}}, seg["coords"])

	odo := OdometerPayload("MOTO-7", ts, eventbus.OdometerData{TotalDistanceMeters: 120, SpeedKmh: 36})
	assert.Equal(t, 120.0, odo["total_distance_m"])
	assert.Equal(t, int64(1699999999999), odo["timestamp"])

	status := StatusPayload("MOTO-7", ts, "online")
	assert.Equal(t, int64(1699999999999), status["timestamp"])

	session := SessionPayload("MOTO-7", ts, eventbus.RecordingData{SessionID: "abc", Events: 0})
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"events":[]`)
	assert.Contains(t, string(raw), `"session_id":"abc"`)
	assert.Contains(t, string(raw), `"timestamp":1699999999999`)
}

func TestPublisherForwardsBusEvents(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()

	cfg := config.Default().MQTT
	s := &sink{}
	p := NewPublisher(cfg, "PATHSYNQ-DEFAULT", bus)
	p.send = s.add
	p.run()

	bus.Publish(eventbus.Event{Type: eventbus.EventAlert, Timestamp: ts, Data: eventbus.AlertData{Message: "x", Severity: "low_jerk"}})
	bus.Publish(eventbus.Event{Type: eventbus.EventSegment, Timestamp: ts, Data: eventbus.SegmentData{Color: "#00ff00"}})
	bus.Publish(eventbus.Event{Type: eventbus.EventOdometer, Timestamp: ts, Data: eventbus.OdometerData{TotalDistanceMeters: 5}})

	require.Eventually(t, func() bool { return p.Published() == 3 }, time.Second, time.Millisecond)
	p.Stop()

	topics := map[string]bool{}
	for _, m := range s.messages() {
		topics[m.topic] = true
	}
	assert.Equal(t, map[string]bool{
		"vehicle/PATHSYNQ-DEFAULT/alerts":   true,
		"vehicle/PATHSYNQ-DEFAULT/segments": true,
		"vehicle/PATHSYNQ-DEFAULT/odometer": true,
	}, topics)
	assert.Equal(t, 0, bus.SubscriberCount(eventbus.EventAlert))
}

func TestPublisherDisabledIsNoop(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()

	p := NewPublisher(config.MQTTConfig{Enabled: false}, "x", bus)
	require.NoError(t, p.Start())
	assert.Equal(t, 0, bus.SubscriberCount(eventbus.EventAlert))
	assert.NotPanics(t, p.Stop)
}

func TestPublisherSendErrorNotCounted(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()

	p := NewPublisher(config.Default().MQTT, "x", bus)
	p.send = (&sink{err: errors.New("broker caído")}).add
	p.publishStatus("online")
	assert.Equal(t, 0, p.Published())
}

func TestRabbitMQPublishesSegmentsAndSessions(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()

	cfg := config.Default().RabbitMQ
	cfg.Enabled = true
	s := &sink{}
	p := NewRabbitMQPublisher(s, cfg, "PATHSYNQ-DEFAULT", bus)
	require.NoError(t, p.Start())

	bus.Publish(eventbus.Event{Type: eventbus.EventSegment, Timestamp: ts, Data: eventbus.SegmentData{Index: 0, Color: "#ff0000"}})
	// El inicio de sesión no se publica; el cierre sí
	bus.Publish(eventbus.Event{Type: eventbus.EventRecording, Timestamp: ts, Data: eventbus.RecordingData{State: "recording", SessionID: "s1"}})
	bus.Publish(eventbus.Event{Type: eventbus.EventRecording, Timestamp: ts, Data: eventbus.RecordingData{
		State: "idle", SessionID: "s1", Events: 1, Export: []byte(`[{"coords":[[1,2],[3,4]],"color":"#ff0000","jerk":23.41,"timestamp":1}]`),
	}})

	require.Eventually(t, func() bool { return p.Published() == 2 }, time.Second, time.Millisecond)
	p.Stop()

	byKey := map[string]map[string]interface{}{}
	for _, m := range s.messages() {
		byKey[m.topic] = m.payload
	}
	require.Len(t, byKey, 2)
	require.Contains(t, byKey, "vehicle.PATHSYNQ-DEFAULT.segment")
	session := byKey["vehicle.PATHSYNQ-DEFAULT.session"]
	require.NotNil(t, session)
	assert.Equal(t, "s1", session["session_id"])
	assert.Len(t, session["events"], 1)
}

func TestRabbitMQStopsPublishingAfterError(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()

	s := &sink{err: errors.New("canal cerrado")}
	p := NewRabbitMQPublisher(s, config.Default().RabbitMQ, "x", bus)
	p.publish("k", map[string]interface{}{"a": 1})
	assert.False(t, p.isConnected())

	s.err = nil
	p.publish("k", map[string]interface{}{"a": 1})
	assert.Empty(t, s.messages())
}

func TestRabbitMQNilChannel(t *testing.T) {
	cfg := config.Default().RabbitMQ
	cfg.Enabled = true
	p := NewRabbitMQPublisher(nil, cfg, "x", eventbus.NewEventBus())
	assert.Error(t, p.Start())
}
