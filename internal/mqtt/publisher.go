package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// sendFunc entrega un payload serializado a un topic
type sendFunc func(topic string, payload []byte) error

// Publisher publica alertas, tramos y odómetro a MQTT
type Publisher struct {
	config   config.MQTTConfig
	deviceID string
	client   mqtt.Client
	bus      *eventbus.EventBus
	send     sendFunc

	// Estado
	mu        sync.RWMutex
	running   bool
	connected bool
	published int
	cancels   []func()
	done      chan struct{}
}

// NewPublisher crea un nuevo publicador MQTT
func NewPublisher(cfg config.MQTTConfig, deviceID string, bus *eventbus.EventBus) *Publisher {
	p := &Publisher{
		config:   cfg,
		deviceID: deviceID,
		bus:      bus,
	}
	p.send = p.clientSend
	return p
}

// Start conecta al broker y empieza a reenviar eventos del bus
func (p *Publisher) Start() error {
	if !p.config.Enabled {
		monitoring.Logf("ℹ️  [MQTT] Deshabilitado en configuración")
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.config.Broker)
	opts.SetClientID(p.config.ClientID)

	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
		opts.SetPassword(p.config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(1 * time.Minute)

	// Última voluntad: offline si el cliente se cae sin Stop
	if will, err := json.Marshal(StatusPayload(p.deviceID, time.Now(), "offline")); err == nil {
		opts.SetBinaryWill(p.config.Topics.Status, will, p.config.QoS, true)
	}

	opts.SetOnConnectHandler(p.onConnect)
	opts.SetConnectionLostHandler(p.onConnectionLost)

	p.client = mqtt.NewClient(opts)

	monitoring.Logf("📡 [MQTT] Conectando a %s...", p.config.Broker)
	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("error conectando a MQTT: %w", token.Error())
	}

	p.run()
	return nil
}

// run suscribe al bus y lanza el bucle de publicación
func (p *Publisher) run() {
	alerts, cancelAlerts := p.bus.Subscribe(eventbus.EventAlert)
	segments, cancelSegments := p.bus.Subscribe(eventbus.EventSegment)
	odometer, cancelOdometer := p.bus.Subscribe(eventbus.EventOdometer)

	p.mu.Lock()
	p.running = true
	p.cancels = []func(){cancelAlerts, cancelSegments, cancelOdometer}
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.publishLoop(done, alerts, segments, odometer)
}

// Stop publica offline, desconecta y espera al bucle
func (p *Publisher) Stop() {
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

	if p.client != nil && p.client.IsConnected() {
		p.publishStatus("offline")
		p.client.Disconnect(250)
		monitoring.Logf("🛑 [MQTT] Desconectado")
	}
}

// onConnect callback cuando se conecta
func (p *Publisher) onConnect(client mqtt.Client) {
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()

	monitoring.Logf("✅ [MQTT] Conectado exitosamente")
	p.publishStatus("online")
}

// onConnectionLost callback cuando se pierde conexión
func (p *Publisher) onConnectionLost(client mqtt.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	monitoring.Logf("⚠️  [MQTT] Conexión perdida: %v", err)
	monitoring.Logf("🔄 [MQTT] Intentando reconectar...")
}

// publishLoop reenvía eventos hasta que se cierren las suscripciones
func (p *Publisher) publishLoop(done chan struct{}, alerts, segments, odometer <-chan eventbus.Event) {
	defer close(done)

	for {
		select {
		case ev, ok := <-alerts:
			if !ok {
				return
			}
			data := ev.Data.(eventbus.AlertData)
			p.publish(p.config.Topics.Alerts, AlertPayload(p.deviceID, ev.Timestamp, data))

		case ev, ok := <-segments:
			if !ok {
				return
			}
			data := ev.Data.(eventbus.SegmentData)
			p.publish(p.config.Topics.Segments, SegmentPayload(p.deviceID, ev.Timestamp, data))

		case ev, ok := <-odometer:
			if !ok {
				return
			}
			data := ev.Data.(eventbus.OdometerData)
			p.publish(p.config.Topics.Odometer, OdometerPayload(p.deviceID, ev.Timestamp, data))
		}
	}
}

// publishStatus publica estado de conexión
func (p *Publisher) publishStatus(status string) {
	p.publish(p.config.Topics.Status, StatusPayload(p.deviceID, time.Now(), status))
}

// publish serializa y envía un mensaje
func (p *Publisher) publish(topic string, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		monitoring.Logf("⚠️  [MQTT] Error serializando JSON: %v", err)
		return
	}

	if err := p.send(topic, jsonData); err != nil {
		monitoring.Logf("⚠️  [MQTT] Error publicando a %s: %v", topic, err)
		return
	}

	p.mu.Lock()
	p.published++
	p.mu.Unlock()
}

// clientSend publica con el cliente paho si hay conexión
func (p *Publisher) clientSend(topic string, payload []byte) error {
	if !p.isConnected() {
		return nil
	}
	token := p.client.Publish(topic, p.config.QoS, p.config.Retain, payload)
	token.Wait()
	return token.Error()
}

// Published retorna cuántos mensajes se enviaron
func (p *Publisher) Published() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.published
}

// isConnected verifica si está conectado
func (p *Publisher) isConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}
