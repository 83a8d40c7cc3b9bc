package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel es la parte de *amqp.Channel que usa el publicador
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQPublisher publica tramos y sesiones exportadas a RabbitMQ
type RabbitMQPublisher struct {
	config   config.RabbitMQConfig
	deviceID string
	channel  Channel

	bus *eventbus.EventBus

	// Estado
	mu        sync.RWMutex
	running   bool
	connected bool
	published int
	cancels   []func()
	done      chan struct{}
}

// NewRabbitMQPublisher crea un publicador sobre un canal (posiblemente compartido)
func NewRabbitMQPublisher(ch Channel, cfg config.RabbitMQConfig, deviceID string, bus *eventbus.EventBus) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		config:    cfg,
		deviceID:  deviceID,
		channel:   ch,
		bus:       bus,
		connected: true,
	}
}

// Start inicia el publicador
func (p *RabbitMQPublisher) Start() error {
	if !p.config.Enabled {
		monitoring.Logf("ℹ️  [RabbitMQ] Deshabilitado en configuración")
		return nil
	}
	if p.channel == nil {
		return fmt.Errorf("canal RabbitMQ no inicializado")
	}

	segments, cancelSegments := p.bus.Subscribe(eventbus.EventSegment)
	recordings, cancelRecordings := p.bus.Subscribe(eventbus.EventRecording)

	p.mu.Lock()
	p.running = true
	p.cancels = []func(){cancelSegments, cancelRecordings}
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.publishLoop(done, segments, recordings)

	monitoring.Logf("✅ [RabbitMQ] Publicador iniciado")
	monitoring.Logf("📤 [RabbitMQ] Exchange: %s (type: %s)", p.config.Exchange, p.config.ExchangeType)
	monitoring.Logf("🔑 [RabbitMQ] Device ID: %s", p.deviceID)
	return nil
}

// Stop detiene el publicador
func (p *RabbitMQPublisher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
	done := p.done
	p.mu.Unlock()

	<-done
	monitoring.Logf("🛑 [RabbitMQ] Publicador detenido (%s)", p.deviceID)
}

// publishLoop reenvía tramos y, al cerrar una sesión, su exportación
func (p *RabbitMQPublisher) publishLoop(done chan struct{}, segments, recordings <-chan eventbus.Event) {
	defer close(done)

	for {
		select {
		case ev, ok := <-segments:
			if !ok {
				return
			}
			data := ev.Data.(eventbus.SegmentData)
			p.publish(p.config.RoutingKeys.Segment, SegmentPayload(p.deviceID, ev.Timestamp, data))

		case ev, ok := <-recordings:
			if !ok {
				return
			}
			data := ev.Data.(eventbus.RecordingData)
			if data.State != "idle" {
				continue
			}
			p.publish(p.config.RoutingKeys.Session, SessionPayload(p.deviceID, ev.Timestamp, data))
		}
	}
}

// publish publica un mensaje a RabbitMQ
func (p *RabbitMQPublisher) publish(routingKey string, payload interface{}) {
	if !p.isConnected() {
		return
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		monitoring.Logf("⚠️  [RabbitMQ] Error serializando JSON: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		p.config.Exchange, // exchange
		routingKey,        // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        jsonData,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		monitoring.Logf("⚠️  [RabbitMQ] Error publicando a %s: %v", routingKey, err)
		p.mu.Lock()
		p.connected = false
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.published++
	p.mu.Unlock()
}

// Published retorna cuántos mensajes se enviaron
func (p *RabbitMQPublisher) Published() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.published
}

// isConnected verifica si está conectado
func (p *RabbitMQPublisher) isConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// ConnectRabbitMQ establece conexión a RabbitMQ y retorna la conexión
func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("error conectando a RabbitMQ: %w", err)
	}
	return conn, nil
}
