package scenario

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
)

// SpeedController controla la velocidad del vehículo (km/h)
type SpeedController interface {
	SetSpeed(speed float64)
}

// SpeedControllers reparte la velocidad a varios simuladores
type SpeedControllers []SpeedController

func (s SpeedControllers) SetSpeed(speed float64) {
	for _, c := range s {
		c.SetSpeed(speed)
	}
}

// MotionController inyecta golpes y giros en el feed de movimiento
type MotionController interface {
	Jolt(magnitude float64, d time.Duration)
	SetTurnRate(rate float64)
}

// SignalController degrada el feed de ubicación
type SignalController interface {
	SetSignalLost(lost bool)
	SetPermissionDenied(denied bool)
}

// RecordingController abre y cierra sesiones de grabación
type RecordingController interface {
	StartRecording() (string, bool)
	StopRecording() (recorder.Export, error)
}

// Controllers agrupa los destinos de las acciones; cualquiera puede ser nil
type Controllers struct {
	Speed     SpeedController
	Motion    MotionController
	Signal    SignalController
	Recording RecordingController
}

// Executor ejecuta escenarios
type Executor struct {
	scenario    *Scenario
	controllers Controllers
	loop        bool

	// Control
	mu               sync.RWMutex
	running          bool
	paused           bool
	startTime        time.Time
	currentStepIndex int
	laps             int
	cancel           context.CancelFunc
	done             chan struct{}
}

// NewExecutor crea un nuevo ejecutor. Con loop=true el escenario se
// reinicia al terminar.
func NewExecutor(scenario *Scenario, controllers Controllers, loop bool) *Executor {
	return &Executor{
		scenario:    scenario,
		controllers: controllers,
		loop:        loop,
		done:        closedChan(),
	}
}

// Start inicia la ejecución del escenario
func (e *Executor) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.running = true
	e.paused = false
	e.startTime = time.Now()
	e.currentStepIndex = 0
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	monitoring.Logf("🎬 [Executor] Iniciando escenario: %s", e.scenario.Name)
	monitoring.Logf("📋 [Executor] %s", e.scenario.Description)
	monitoring.Logf("⏱️  [Executor] Duración: %.0fs", e.scenario.GetDuration().Seconds())

	go e.execute(runCtx, done)
}

// Stop detiene la ejecución y espera a que termine la goroutine
func (e *Executor) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done
	monitoring.Logf("🛑 [Executor] Escenario detenido")
}

// Pause pausa la ejecución
func (e *Executor) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()

	monitoring.Logf("⏸️  [Executor] Escenario pausado")
}

// Resume reanuda la ejecución
func (e *Executor) Resume() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()

	monitoring.Logf("▶️  [Executor] Escenario reanudado")
}

// IsRunning retorna si está corriendo
func (e *Executor) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Done se cierra cuando el escenario termina o se detiene
func (e *Executor) Done() <-chan struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.done
}

// Laps retorna cuántas vueltas completas se ejecutaron
func (e *Executor) Laps() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.laps
}

// execute recorre los pasos respetando sus tiempos
func (e *Executor) execute(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	for {
		e.mu.RLock()
		paused := e.paused
		currentStep := e.currentStepIndex
		start := e.startTime
		e.mu.RUnlock()

		if paused {
			if !sleep(ctx, 100*time.Millisecond) {
				return
			}
			// El tiempo en pausa no cuenta
			e.mu.Lock()
			e.startTime = e.startTime.Add(100 * time.Millisecond)
			e.mu.Unlock()
			continue
		}

		if currentStep >= len(e.scenario.Steps) {
			// Con duración explícita, esperar la cola antes de cerrar la vuelta
			if e.scenario.Duration > 0 {
				if rest := e.scenario.GetDuration() - time.Since(start); rest > 0 && !sleep(ctx, rest) {
					return
				}
			}
			e.mu.Lock()
			e.laps++
			e.mu.Unlock()
			monitoring.Logf("✅ [Executor] Escenario '%s' completado", e.scenario.Name)

			if !e.loop {
				e.mu.RLock()
				cancel := e.cancel
				e.mu.RUnlock()
				cancel()
				return
			}
			e.mu.Lock()
			e.startTime = time.Now()
			e.currentStepIndex = 0
			e.mu.Unlock()
			continue
		}

		step := e.scenario.Steps[currentStep]

		// Esperar hasta el tiempo del paso
		wait := time.Duration(step.Time*float64(time.Second)) - time.Since(start)
		if wait > 0 && !sleep(ctx, wait) {
			return
		}

		if !e.executeStep(ctx, step) {
			return
		}

		e.mu.Lock()
		e.currentStepIndex++
		e.mu.Unlock()
	}
}

// executeStep ejecuta un paso individual; false si se canceló
func (e *Executor) executeStep(ctx context.Context, step ScenarioStep) bool {
	e.mu.RLock()
	elapsed := time.Since(e.startTime).Seconds()
	e.mu.RUnlock()

	if step.Value != nil {
		monitoring.Logf("🎬 [Executor] [%.1fs] Acción: %s (valor: %v)", elapsed, step.Action, step.Value)
	} else {
		monitoring.Logf("🎬 [Executor] [%.1fs] Acción: %s", elapsed, step.Action)
	}

	c := e.controllers
	switch step.Action {
	case ActionSetSpeed:
		if speed, ok := floatValue(step.Value); ok && c.Speed != nil {
			c.Speed.SetSpeed(speed)
			monitoring.Logf("   🚗 Velocidad establecida: %.1f km/h", speed)
		}

	case ActionJolt:
		if magnitude, ok := floatValue(step.Value); ok && c.Motion != nil {
			d := DefaultJoltDuration
			if step.Duration > 0 {
				d = time.Duration(step.Duration * float64(time.Second))
			}
			c.Motion.Jolt(magnitude, d)
			monitoring.Logf("   💥 Golpe de %.1f m/s² durante %v", magnitude, d)
		}

	case ActionTurn:
		if rate, ok := floatValue(step.Value); ok && c.Motion != nil {
			c.Motion.SetTurnRate(rate)
		}

	case ActionGPSLoss:
		if c.Signal != nil {
			c.Signal.SetSignalLost(true)
			monitoring.Logf("   📡 Señal GPS perdida")
		}

	case ActionGPSDeny:
		if c.Signal != nil {
			c.Signal.SetPermissionDenied(true)
			monitoring.Logf("   🔒 Permiso de ubicación negado")
		}

	case ActionGPSRestore:
		if c.Signal != nil {
			c.Signal.SetSignalLost(false)
			c.Signal.SetPermissionDenied(false)
			monitoring.Logf("   📡 Señal GPS restablecida")
		}

	case ActionStartRecording:
		if c.Recording != nil {
			id, _ := c.Recording.StartRecording()
			monitoring.Logf("   🔴 Grabando sesión %s", id)
		}

	case ActionStopRecording:
		if c.Recording != nil {
			exp, err := c.Recording.StopRecording()
			switch {
			case errors.Is(err, recorder.ErrNotRecording):
			case err != nil:
				monitoring.Logf("⚠️  [Executor] Error deteniendo grabación: %v", err)
			default:
				monitoring.Logf("   ⏹️  Sesión %s exportada (%d eventos)", exp.SessionID, len(exp.Events))
			}
		}

	case ActionWait:
		seconds, _ := floatValue(step.Value)
		monitoring.Logf("   ⏱️  Esperando %.1f segundos...", seconds)
		if !sleep(ctx, time.Duration(seconds*float64(time.Second))) {
			return false
		}
		// wait corre el reloj del escenario
		e.mu.Lock()
		e.startTime = e.startTime.Add(time.Duration(seconds * float64(time.Second)))
		e.mu.Unlock()

	case ActionLog:
		if message, ok := step.Value.(string); ok {
			monitoring.Logf("   📢 %s", message)
		}

	default:
		monitoring.Logf("⚠️  [Executor] Acción desconocida: %s", step.Action)
	}
	return true
}

// GetProgress retorna el progreso del escenario (0.0 a 1.0)
func (e *Executor) GetProgress() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.running {
		return 0.0
	}

	elapsed := time.Since(e.startTime).Seconds()
	total := e.scenario.GetDuration().Seconds()

	progress := elapsed / total
	if progress > 1.0 {
		return 1.0
	}
	return progress
}

// GetCurrentStep retorna el paso actual
func (e *Executor) GetCurrentStep() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentStepIndex
}

// Scenario retorna el escenario en ejecución
func (e *Executor) Scenario() *Scenario {
	return e.scenario
}

// sleep espera d o hasta que ctx se cancele; false si se canceló
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
