package sensors

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
)

// MotionSimulator simula el feed devicemotion (acelerómetro sin gravedad + giroscopio)
type MotionSimulator struct {
	bus    *eventbus.EventBus
	config config.MotionSensorConfig
	rng    *rand.Rand

	// Campos protegidos por mutex
	mu        sync.RWMutex
	running   bool
	paused    bool
	stop      chan struct{}
	jolt      float64   // Magnitud del golpe activo (m/s²)
	joltUntil time.Time // Fin del golpe activo
	turnRate  float64   // Giro actual (°/s)
	speedKmh  float64   // Velocidad actual, para el ruido de vibración
}

// NewMotionSimulator crea un nuevo simulador de movimiento
func NewMotionSimulator(bus *eventbus.EventBus, cfg config.MotionSensorConfig) *MotionSimulator {
	return &MotionSimulator{
		bus:    bus,
		config: cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Available indica si el host ofrece el feed
func (m *MotionSimulator) Available() bool {
	return m.config.Enabled
}

// Start inicia el simulador en su propia goroutine
func (m *MotionSimulator) Start() error {
	if !m.Available() {
		return ErrFeedUnavailable
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.stop = make(chan struct{})
	stop := m.stop
	m.mu.Unlock()

	go m.loop(stop)

	monitoring.Logf("✅ [Motion] Simulador iniciado (%.0f Hz)", m.config.Frequency)
	return nil
}

// Stop detiene el simulador
func (m *MotionSimulator) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stop)
	m.mu.Unlock()

	monitoring.Logf("🛑 [Motion] Simulador detenido")
}

// Pause pausa el simulador
func (m *MotionSimulator) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

// Resume reanuda el simulador
func (m *MotionSimulator) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
}

// Jolt inyecta un golpe de magnitud dada durante d (bache, frenazo)
func (m *MotionSimulator) Jolt(magnitude float64, d time.Duration) {
	m.mu.Lock()
	m.jolt = magnitude
	m.joltUntil = time.Now().Add(d)
	m.mu.Unlock()
}

// SetTurnRate fija la velocidad de giro (°/s)
func (m *MotionSimulator) SetTurnRate(rate float64) {
	m.mu.Lock()
	m.turnRate = rate
	m.mu.Unlock()
}

// SetSpeed actualiza la velocidad usada para la vibración de fondo
func (m *MotionSimulator) SetSpeed(kmh float64) {
	m.mu.Lock()
	m.speedKmh = kmh
	m.mu.Unlock()
}

// loop es el bucle principal del simulador
func (m *MotionSimulator) loop(stop <-chan struct{}) {
	interval := TickInterval(m.config.Frequency)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			m.mu.RLock()
			paused := m.paused
			m.mu.RUnlock()
			if paused {
				continue
			}

			m.bus.Publish(eventbus.Event{
				Type:      eventbus.EventMotion,
				Timestamp: now,
				Data:      m.generateData(now, interval),
			})
		}
	}
}

// generateData genera una muestra sintética
func (m *MotionSimulator) generateData(now time.Time, interval time.Duration) eventbus.MotionData {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Vibración proporcional a la velocidad
	vibration := m.config.Noise * (0.5 + m.speedKmh/60.0)
	x := (m.rng.Float64() - 0.5) * vibration
	y := (m.rng.Float64() - 0.5) * vibration
	z := (m.rng.Float64() - 0.5) * vibration

	if now.Before(m.joltUntil) && m.jolt > 0 {
		// Golpe mayormente vertical con componente longitudinal
		z += m.jolt * 0.8
		x += m.jolt * 0.6
	}

	alpha := m.turnRate
	if alpha != 0 {
		alpha += (m.rng.Float64() - 0.5) * 2.0
	}

	// Dispositivo plano: la gravedad cae entera sobre z
	return eventbus.MotionData{
		Acceleration:                 &eventbus.Vector3{X: Float(x), Y: Float(y), Z: Float(z)},
		AccelerationIncludingGravity: &eventbus.Vector3{X: Float(x), Y: Float(y), Z: Float(z + Gravity)},
		RotationRate:                 &eventbus.RotationRate{Alpha: Float(alpha)},
		IntervalMS:                   float64(interval) / float64(time.Millisecond),
	}
}

// Gravity es la gravedad estándar (m/s²)
const Gravity = 9.80665

// Magnitude es un helper para tests y logs
func Magnitude(d eventbus.MotionData) float64 {
	s := NormalizeMotion(d)
	return math.Sqrt(s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ)
}
