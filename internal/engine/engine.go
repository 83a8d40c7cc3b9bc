// Package engine conecta normalizador, cinemática, alertas, puerta de
// muestreo, odómetro, trayecto y grabación en un único bucle de eventos.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/geo"
	"github.com/MarcosBrindi/pathsynq/internal/kinematics"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/path"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
	"github.com/MarcosBrindi/pathsynq/internal/sensors"
	"github.com/MarcosBrindi/pathsynq/internal/timeutil"
	"github.com/MarcosBrindi/pathsynq/internal/trigger"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrAlreadyRunning se retorna al llamar Start dos veces
var ErrAlreadyRunning = errors.New("engine: ya está corriendo")

// Engine es el núcleo de telemetría.
// Los componentes no tienen locks propios: mu serializa los handlers
// exportados para que la API y la UI puedan leer entre eventos.
type Engine struct {
	bus      *eventbus.EventBus
	motion   sensors.MotionFeed
	location sensors.LocationFeed
	opts     Options
	clock    timeutil.Clock

	mu         sync.RWMutex
	kinematics *kinematics.Engine
	alerts     *kinematics.AlertDebouncer
	gate       *trigger.Gate
	tracker    *geo.Tracker
	segmenter  *path.Segmenter
	recorder   *recorder.Recorder

	// Control
	running   bool
	paused    bool
	stop      context.CancelFunc
	done      chan struct{}
	cancels   []func()
	stopWatch func()

	// Estadísticas
	requests       int
	locationErrors int
	lastError      *sensors.PositionError
	motionOK       bool
	locationOK     bool
}

// New crea el motor. motion y location pueden ser nil (feed ausente).
func New(bus *eventbus.EventBus, motion sensors.MotionFeed, location sensors.LocationFeed, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.LocationMode == "" {
		opts.LocationMode = config.LocationModeTriggered
	}
	return &Engine{
		bus:        bus,
		motion:     motion,
		location:   location,
		opts:       opts,
		clock:      opts.Clock,
		kinematics: kinematics.NewEngine(opts.Thresholds),
		alerts:     kinematics.NewAlertDebouncer(),
		gate:       trigger.NewGate(opts.TriggerThreshold, opts.TriggerPeriod),
		tracker:    geo.NewTracker(opts.Geo),
		segmenter:  path.NewSegmenter(),
		recorder:   recorder.New(opts.Clock, opts.Exporter),
	}
}

// Start suscribe el motor al bus, arranca los feeds y lanza el bucle
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}

	motionCh, cancelMotion := e.bus.SubscribeBuffered(eventbus.EventMotion, 64)
	locationCh, cancelLocation := e.bus.Subscribe(eventbus.EventLocation)
	errorCh, cancelErrors := e.bus.Subscribe(eventbus.EventLocationError)
	e.cancels = []func(){cancelMotion, cancelLocation, cancelErrors}

	e.motionOK = e.startMotion()
	e.locationOK = e.location != nil && e.location.Available()

	var ticker timeutil.Ticker
	switch {
	case !e.locationOK:
		monitoring.Logf("⚠️  [Engine] Geolocalización no disponible: odómetro y trayecto inactivos")
	case e.opts.LocationMode == config.LocationModeWatch:
		cancel, err := e.location.Watch(e.opts.Position)
		if err != nil {
			monitoring.Logf("⚠️  [Engine] No se pudo iniciar watch: %v", err)
		} else {
			e.stopWatch = cancel
		}
	default:
		ticker = e.clock.NewTicker(e.gate.Period())
	}

	loopCtx, stop := context.WithCancel(ctx)
	e.stop = stop
	e.done = make(chan struct{})
	e.running = true
	e.paused = false
	done := e.done
	e.mu.Unlock()

	go e.loop(loopCtx, done, motionCh, locationCh, errorCh, ticker)

	monitoring.Logf("✅ [Engine] Iniciado (modo %s, periodo %v)", e.opts.LocationMode, e.gate.Period())
	return nil
}

// startMotion arranca el feed de movimiento. Requiere mu.
func (e *Engine) startMotion() bool {
	if e.motion == nil || !e.motion.Available() {
		monitoring.Logf("⚠️  [Engine] Sensor de movimiento no disponible: métricas en 0")
		return false
	}
	if err := e.motion.Start(); err != nil {
		monitoring.Logf("⚠️  [Engine] Error iniciando sensor de movimiento: %v", err)
		return false
	}
	return true
}

// Stop cancela suscripciones, watch y ticker, y espera al bucle
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.stop()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = nil
	if e.stopWatch != nil {
		e.stopWatch()
		e.stopWatch = nil
	}
	if e.motionOK {
		e.motion.Stop()
	}
	done := e.done
	e.mu.Unlock()

	<-done
	monitoring.Logf("🛑 [Engine] Detenido")
}

// Pause ignora los eventos entrantes hasta Resume
func (e *Engine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

// Resume reanuda el procesamiento
func (e *Engine) Resume() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
}

// Running indica si el bucle está activo
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

func (e *Engine) isPaused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.paused
}

// loop es el bucle principal: un evento a la vez, sin preempción
func (e *Engine) loop(ctx context.Context, done chan struct{}, motionCh, locationCh, errorCh <-chan eventbus.Event, ticker timeutil.Ticker) {
	defer close(done)

	var tick <-chan time.Time
	if ticker != nil {
		defer ticker.Stop()
		tick = ticker.C()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-motionCh:
			if !ok {
				return
			}
			if !e.isPaused() {
				e.HandleMotion(ev.Data.(eventbus.MotionData))
			}

		case ev, ok := <-locationCh:
			if !ok {
				return
			}
			if !e.isPaused() {
				e.HandleLocation(ev.Data.(eventbus.LocationData))
			}

		case ev, ok := <-errorCh:
			if !ok {
				return
			}
			e.HandleLocationError(ev.Data.(eventbus.LocationErrorData))

		case <-tick:
			if !e.isPaused() {
				e.Tick()
			}
		}
	}
}

// ========================================
// HANDLERS
// ========================================

// HandleMotion: normalizar → clasificar → alerta → armar puerta
func (e *Engine) HandleMotion(raw eventbus.MotionData) kinematics.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.kinematics.Classify(sensors.NormalizeMotion(raw))
	now := e.clock.Now()

	e.bus.Publish(eventbus.Event{
		Type:      eventbus.EventMetrics,
		Timestamp: now,
		Data: eventbus.MetricsData{
			TotalAcceleration: m.TotalAcceleration,
			JerkLevel:         m.JerkLevel,
			RotationAlpha:     m.RotationAlpha,
			ShockZ:            m.ShockZ,
			Severity:          m.Severity.String(),
		},
	})

	if alert, ok := e.alerts.Evaluate(m); ok {
		monitoring.Logf("%s [Engine] jerk=%.2f", alert.Message, m.JerkLevel)
		e.bus.Publish(eventbus.Event{
			Type:      eventbus.EventAlert,
			Timestamp: now,
			Data:      eventbus.AlertData{Message: alert.Message, Severity: alert.Severity.String()},
		})
	}

	e.gate.Observe(m)
	return m
}

// HandleLocation: normalizar → odómetro → trayecto → grabación
func (e *Engine) HandleLocation(raw eventbus.LocationData) (geo.Observation, *path.Segment) {
	e.mu.Lock()
	defer e.mu.Unlock()

	obs := e.tracker.Observe(sensors.NormalizeLocation(raw))
	now := e.clock.Now()
	odo := e.tracker.Odometer()

	e.bus.Publish(eventbus.Event{
		Type:      eventbus.EventOdometer,
		Timestamp: now,
		Data: eventbus.OdometerData{
			TotalDistanceMeters: odo.TotalDistanceMeters,
			DistanceDeltaMeters: obs.DistanceDeltaMeters,
			SpeedKmh:            obs.SpeedKmh,
			Accepted:            obs.Accepted,
		},
	})

	if !obs.Moved {
		return obs, nil
	}

	latest := e.kinematics.Latest()
	seg, ok := e.segmenter.Append(obs.Position, latest)
	if !ok {
		return obs, nil
	}

	e.bus.Publish(eventbus.Event{
		Type:      eventbus.EventSegment,
		Timestamp: now,
		Data: eventbus.SegmentData{
			Index:    seg.Index,
			Start:    seg.Start,
			End:      seg.End,
			Color:    seg.Color,
			Severity: seg.Severity.String(),
			Jerk:     seg.Jerk,
		},
	})

	e.recorder.Capture(seg, latest.JerkLevel)
	return obs, &seg
}

// HandleLocationError registra el error; el fix se descarta y las
// suscripciones siguen activas
func (e *Engine) HandleLocationError(data eventbus.LocationErrorData) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.locationErrors++
	e.lastError = &sensors.PositionError{Code: data.Code, Message: data.Message}
	monitoring.Logf("⚠️  [Engine] Error de ubicación: %v", e.lastError)
}

// Tick es el chequeo periódico de la puerta. Retorna true si se pidió un fix.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.gate.Check() {
		return false
	}
	if e.location == nil {
		return false
	}

	e.requests++
	if err := e.location.RequestFix(e.opts.Position); err != nil {
		monitoring.Logf("⚠️  [Engine] RequestFix falló: %v", err)
	}
	return true
}

// ========================================
// GRABACIÓN
// ========================================

// StartRecording inicia una sesión; re-entrante sin efecto
func (e *Engine) StartRecording() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, started := e.recorder.Start()
	if started {
		monitoring.Logf("🔴 [Engine] Grabación iniciada (sesión %s)", id)
		e.bus.Publish(eventbus.Event{
			Type:      eventbus.EventRecording,
			Timestamp: e.clock.Now(),
			Data:      eventbus.RecordingData{State: recorder.Recording.String(), SessionID: id},
		})
	}
	return id, started
}

// StopRecording cierra la sesión y exporta. Sin sesión retorna
// recorder.ErrNotRecording y no cambia nada.
func (e *Engine) StopRecording() (recorder.Export, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp, err := e.recorder.Stop()
	if errors.Is(err, recorder.ErrNotRecording) {
		return exp, err
	}
	if err != nil {
		monitoring.Logf("⚠️  [Engine] %v", err)
	} else {
		monitoring.Logf("⏹️  [Engine] Grabación detenida: %d eventos → %s", len(exp.Events), exp.File)
	}

	e.bus.Publish(eventbus.Event{
		Type:      eventbus.EventRecording,
		Timestamp: e.clock.Now(),
		Data: eventbus.RecordingData{
			State:     recorder.Idle.String(),
			SessionID: exp.SessionID,
			Events:    len(exp.Events),
			File:      exp.File,
			Export:    exp.Data,
		},
	})
	if err != nil {
		return exp, fmt.Errorf("stop recording: %w", err)
	}
	return exp, nil
}

// ========================================
// LECTURA
// ========================================

// Snapshot es una vista consistente del estado del motor
type Snapshot struct {
	Metrics           kinematics.Metrics
	Odometer          geo.Odometer
	Recording         recorder.State
	SessionID         string
	RecordedEvents    int
	Segments          int
	LocationMode      string
	LocationRequests  int
	LocationErrors    int
	LastLocationError string
	MotionAvailable   bool
	LocationAvailable bool
	TriggerArmed      bool
	TriggerChecks     int
	Running           bool
}

// Snapshot retorna el estado actual
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		Metrics:           e.kinematics.Latest(),
		Odometer:          e.tracker.Odometer(),
		Recording:         e.recorder.State(),
		SessionID:         e.recorder.SessionID(),
		RecordedEvents:    e.recorder.Len(),
		Segments:          e.segmenter.Len(),
		LocationMode:      e.opts.LocationMode,
		LocationRequests:  e.requests,
		LocationErrors:    e.locationErrors,
		MotionAvailable:   e.motionOK || e.kinematics.Available(),
		LocationAvailable: e.locationOK,
		TriggerArmed:      e.gate.Armed(),
		Running:           e.running,
	}
	s.TriggerChecks, _ = e.gate.Stats()
	if e.lastError != nil {
		s.LastLocationError = e.lastError.Error()
	}
	return s
}

// Segments retorna una copia de los tramos
func (e *Engine) Segments() []path.Segment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.segmenter.Segments()
}

// FeatureCollection retorna el trayecto como GeoJSON
func (e *Engine) FeatureCollection() *geojson.FeatureCollection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.segmenter.FeatureCollection()
}

// Bound retorna la caja del trayecto
func (e *Engine) Bound() (orb.Bound, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.segmenter.Bound()
}

// Reset reinicia métricas, odómetro, trayecto y alertas. Una grabación
// en curso se mantiene.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.kinematics.Reset()
	e.alerts.Reset()
	e.tracker.Reset()
	e.segmenter.Reset()
	e.gate = trigger.NewGate(e.opts.TriggerThreshold, e.opts.TriggerPeriod)
	e.requests = 0
	e.locationErrors = 0
	e.lastError = nil

	monitoring.Logf("🔄 [Engine] Reset completado")
}
