package sensors

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/paulmach/orb"
)

// PathSource es la geometría que recorre el simulador
type PathSource interface {
	PositionAt(distanceM float64) orb.Point
	LengthMeters() float64
}

// LocationSimulator simula el feed de geolocalización sobre una ruta
type LocationSimulator struct {
	bus    *eventbus.EventBus
	config config.LocationSensorConfig
	route  PathSource
	rng    *rand.Rand

	// Campos protegidos por mutex
	mu          sync.Mutex
	speed       float64 // Velocidad actual en km/h
	traveled    float64 // Metros recorridos sobre la ruta
	lastAdvance time.Time
	signalLost  bool
	denied      bool
	lastFix     eventbus.LocationData
	lastFixAt   time.Time
	watchers    int
	pending     int
}

// NewLocationSimulator crea un nuevo simulador de ubicación
func NewLocationSimulator(bus *eventbus.EventBus, cfg config.LocationSensorConfig, route PathSource) *LocationSimulator {
	return &LocationSimulator{
		bus:         bus,
		config:      cfg,
		route:       route,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		lastAdvance: time.Now(),
	}
}

// Available indica si el host ofrece geolocalización
func (l *LocationSimulator) Available() bool {
	return l.config.Enabled
}

// SetSpeed establece la velocidad del vehículo (km/h)
func (l *LocationSimulator) SetSpeed(speed float64) {
	l.mu.Lock()
	l.advance(time.Now())
	l.speed = speed
	l.mu.Unlock()
}

// GetSpeed retorna la velocidad actual
func (l *LocationSimulator) GetSpeed() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.speed
}

// SetSignalLost simula pérdida de señal: las peticiones terminan en timeout
func (l *LocationSimulator) SetSignalLost(lost bool) {
	l.mu.Lock()
	l.signalLost = lost
	l.mu.Unlock()
}

// SetPermissionDenied simula que el usuario negó el permiso
func (l *LocationSimulator) SetPermissionDenied(denied bool) {
	l.mu.Lock()
	l.denied = denied
	l.mu.Unlock()
}

// Watch publica fixes a la frecuencia configurada hasta cancel()
func (l *LocationSimulator) Watch(opts PositionOptions) (func(), error) {
	if !l.Available() {
		return func() {}, ErrFeedUnavailable
	}

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// Cerrar bajo mu: deliver publica bajo mu tras revisar stop
			l.mu.Lock()
			close(stop)
			l.watchers--
			l.mu.Unlock()
			monitoring.Logf("🛑 [Location] Watch cancelado")
		})
	}

	l.mu.Lock()
	l.watchers++
	l.mu.Unlock()

	go l.watchLoop(opts, stop)

	monitoring.Logf("✅ [Location] Watch iniciado (%.1f Hz)", l.config.Frequency)
	return cancel, nil
}

// Watchers retorna cuántos watch activos hay
func (l *LocationSimulator) Watchers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.watchers
}

// watchLoop es el bucle del modo continuo
func (l *LocationSimulator) watchLoop(opts PositionOptions, stop <-chan struct{}) {
	ticker := time.NewTicker(TickInterval(l.config.Frequency))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			l.deliver(now, opts, opts.Timeout, stop)
		}
	}
}

// RequestFix pide un único fix; el resultado llega después por el bus
func (l *LocationSimulator) RequestFix(opts PositionOptions) error {
	if !l.Available() {
		return ErrFeedUnavailable
	}

	now := time.Now()
	l.mu.Lock()
	// maximumAge: un fix en caché suficientemente reciente se entrega ya
	if opts.MaximumAge > 0 && !l.lastFixAt.IsZero() && now.Sub(l.lastFixAt) <= opts.MaximumAge {
		cached := l.lastFix
		l.mu.Unlock()
		l.publishFix(now, cached)
		return nil
	}
	l.pending++
	l.mu.Unlock()

	go func() {
		defer func() {
			l.mu.Lock()
			l.pending--
			l.mu.Unlock()
		}()

		latency := time.Duration(l.config.LatencyMS) * time.Millisecond
		if opts.Timeout > 0 && latency > opts.Timeout {
			time.Sleep(opts.Timeout)
			l.publishError(&PositionError{Code: ErrCodeTimeout, Message: "Timeout expired"})
			return
		}
		time.Sleep(latency)
		// El timeout cuenta desde la petición, no desde el fin de la latencia
		var budget time.Duration
		if opts.Timeout > 0 {
			budget = opts.Timeout - latency
		}
		l.deliver(time.Now(), opts, budget, nil)
	}()
	return nil
}

// Pending retorna cuántas peticiones single-shot siguen en vuelo
func (l *LocationSimulator) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// deliver genera y publica un fix o el error correspondiente. Con señal
// perdida espera budget antes del timeout. Un stop cerrado descarta el
// resultado; nil significa petición single-shot.
func (l *LocationSimulator) deliver(now time.Time, opts PositionOptions, budget time.Duration, stop <-chan struct{}) {
	l.mu.Lock()
	denied := l.denied
	lost := l.signalLost
	l.mu.Unlock()

	switch {
	case denied:
		l.publishUnlessStopped(stop, func() {
			l.publishError(&PositionError{Code: ErrCodePermissionDenied, Message: "User denied Geolocation"})
		})
		return
	case lost:
		if !waitOrStop(budget, stop) {
			return
		}
		l.publishUnlessStopped(stop, func() {
			l.publishError(&PositionError{Code: ErrCodeTimeout, Message: "Timeout expired"})
		})
		return
	}

	data := l.generateData(now, opts)
	l.publishUnlessStopped(stop, func() { l.publishFix(now, data) })
}

// publishUnlessStopped publica bajo mu para no competir con cancel()
func (l *LocationSimulator) publishUnlessStopped(stop <-chan struct{}, publish func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-stop:
		return
	default:
	}
	publish()
}

// waitOrStop espera d; retorna false si stop se cerró antes
func waitOrStop(d time.Duration, stop <-chan struct{}) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}

func (l *LocationSimulator) publishFix(now time.Time, data eventbus.LocationData) {
	l.bus.Publish(eventbus.Event{
		Type:      eventbus.EventLocation,
		Timestamp: now,
		Data:      data,
	})
}

func (l *LocationSimulator) publishError(err *PositionError) {
	monitoring.Logf("⚠️  [Location] %v", err)
	l.bus.Publish(eventbus.Event{
		Type:      eventbus.EventLocationError,
		Timestamp: time.Now(),
		Data:      eventbus.LocationErrorData{Code: err.Code, Message: err.Message},
	})
}

// advance mueve al vehículo según el tiempo transcurrido. Requiere mu.
func (l *LocationSimulator) advance(now time.Time) {
	elapsed := now.Sub(l.lastAdvance).Seconds()
	l.lastAdvance = now
	if elapsed <= 0 || l.speed <= 0 {
		return
	}

	l.traveled += l.speed / 3.6 * elapsed

	// Loop: si llegamos al final, volver al inicio
	if length := l.route.LengthMeters(); length > 0 && l.traveled >= length {
		l.traveled = math.Mod(l.traveled, length)
		monitoring.Logf("🔄 [Location] Completó la ruta, reiniciando...")
	}
}

// generateData genera un fix sintético
func (l *LocationSimulator) generateData(now time.Time, opts PositionOptions) eventbus.LocationData {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance(now)
	pos := l.route.PositionAt(l.traveled)

	// Jitter de precisión: ~1 m con alta precisión, ~8 m sin ella
	accuracy := 8.0
	if opts.EnableHighAccuracy {
		accuracy = 1.0
	}
	jitter := accuracy / 111_320.0
	pos[0] += (l.rng.Float64() - 0.5) * jitter
	pos[1] += (l.rng.Float64() - 0.5) * jitter

	data := eventbus.LocationData{
		Latitude:     pos.Lat(),
		Longitude:    pos.Lon(),
		Accuracy:     Float(accuracy),
		HighAccuracy: opts.EnableHighAccuracy,
	}
	// Algunos receptores no reportan velocidad cuando está detenido
	if l.speed > 0 {
		data.Speed = Float(l.speed / 3.6)
	}

	l.lastFix = data
	l.lastFixAt = now
	return data
}
