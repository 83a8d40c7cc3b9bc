package ui

import (
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/engine"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/path"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
	"github.com/MarcosBrindi/pathsynq/internal/ui/viewmodel"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb"
)

// Engine es lo que el visor lee y controla del motor
type Engine interface {
	Snapshot() engine.Snapshot
	Segments() []path.Segment
	StartRecording() (string, bool)
	StopRecording() (recorder.Export, error)
	Reset()
}

// Pausable es algo que el visor puede pausar (escenario, feeds)
type Pausable interface {
	Pause()
	Resume()
}

// Game es la estructura principal de Ebiten
type Game struct {
	config    *config.Config
	engine    Engine
	pausables []Pausable

	// Componentes UI
	pathView   *PathView
	jerkGraph  *Graph
	speedGraph *Graph
	eventLog   *EventLog
	controls   *Controls
	toast      *viewmodel.Toast

	// Estado actual (thread-safe)
	mu      sync.RWMutex
	paused  bool
	running bool

	// Suscripciones al bus
	alerts     <-chan eventbus.Event
	metrics    <-chan eventbus.Event
	odometer   <-chan eventbus.Event
	recordings <-chan eventbus.Event
	locErrors  <-chan eventbus.Event
	cancels    []func()

	now func() time.Time
}

// NewGame crea una nueva instancia del visor
func NewGame(bus *eventbus.EventBus, cfg *config.Config, eng Engine, route orb.LineString, pausables ...Pausable) *Game {
	center := orb.Point{cfg.Sensors.Location.InitialPosition.Longitude, cfg.Sensors.Location.InitialPosition.Latitude}

	game := &Game{
		config:     cfg,
		engine:     eng,
		pausables:  pausables,
		pathView:   NewPathView(route, center),
		jerkGraph:  NewGraph("JERK", "m/s²", 30, 5, 120),
		speedGraph: NewGraph("VELOCIDAD", "km/h", 60, 10, 60),
		eventLog:   NewEventLog(20),
		controls:   NewControls(),
		toast:      viewmodel.NewToast(time.Duration(cfg.UI.ToastMS) * time.Millisecond),
		running:    true,
		now:        time.Now,
	}
	game.jerkGraph.SetMarks(cfg.Kinematics.LowJerk, cfg.Kinematics.MediumJerk, cfg.Kinematics.HighJerk)

	game.subscribeToEvents(bus)
	return game
}

// subscribeToEvents suscribe a eventos del bus
func (g *Game) subscribeToEvents(bus *eventbus.EventBus) {
	var cancel func()
	g.alerts, cancel = bus.Subscribe(eventbus.EventAlert)
	g.cancels = append(g.cancels, cancel)
	g.metrics, cancel = bus.SubscribeBuffered(eventbus.EventMetrics, 64)
	g.cancels = append(g.cancels, cancel)
	g.odometer, cancel = bus.Subscribe(eventbus.EventOdometer)
	g.cancels = append(g.cancels, cancel)
	g.recordings, cancel = bus.Subscribe(eventbus.EventRecording)
	g.cancels = append(g.cancels, cancel)
	g.locErrors, cancel = bus.Subscribe(eventbus.EventLocationError)
	g.cancels = append(g.cancels, cancel)
}

// isRunning verifica si el juego está corriendo (thread-safe)
func (g *Game) isRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}

func (g *Game) isPaused() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused
}

// drain procesa todo lo pendiente en ch sin bloquear
func drain(ch <-chan eventbus.Event, handle func(eventbus.Event)) {
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			handle(event)
		default:
			return
		}
	}
}

// Update actualiza la lógica del juego (llamado por Ebiten a 60 FPS)
func (g *Game) Update() error {
	if !g.isRunning() {
		return ebiten.Termination
	}

	drain(g.alerts, g.handleAlert)
	drain(g.metrics, g.handleMetrics)
	drain(g.odometer, g.handleOdometer)
	drain(g.recordings, g.handleRecording)
	drain(g.locErrors, g.handleLocationError)

	g.apply(g.controls.Update())
	return nil
}

// apply ejecuta una acción del teclado
func (g *Game) apply(action Action) {
	switch action {
	case ActionToggleRecording:
		if g.engine.Snapshot().Recording == recorder.Recording {
			if _, err := g.engine.StopRecording(); err != nil && !errors.Is(err, recorder.ErrNotRecording) {
				g.eventLog.Add(g.now(), "Exportación fallida: "+err.Error(), LogError)
			}
		} else {
			g.engine.StartRecording()
		}

	case ActionTogglePause:
		g.mu.Lock()
		g.paused = !g.paused
		paused := g.paused
		g.mu.Unlock()
		for _, p := range g.pausables {
			if paused {
				p.Pause()
			} else {
				p.Resume()
			}
		}
		if paused {
			g.eventLog.Add(g.now(), "⏸️  Simulación pausada", LogInfo)
		} else {
			g.eventLog.Add(g.now(), "▶️  Simulación reanudada", LogInfo)
		}

	case ActionReset:
		g.engine.Reset()
		g.jerkGraph.Clear()
		g.speedGraph.Clear()
		g.eventLog.Add(g.now(), "🔄 Trayecto limpiado", LogInfo)
	}
}

func (g *Game) handleAlert(event eventbus.Event) {
	data, ok := event.Data.(eventbus.AlertData)
	if !ok {
		return
	}
	g.toast.Show(data.Message, data.Severity, g.now())
	g.eventLog.Add(event.Timestamp, data.Message, LogWarning)
}

func (g *Game) handleMetrics(event eventbus.Event) {
	if data, ok := event.Data.(eventbus.MetricsData); ok {
		g.jerkGraph.Add(data.JerkLevel)
	}
}

func (g *Game) handleOdometer(event eventbus.Event) {
	if data, ok := event.Data.(eventbus.OdometerData); ok {
		g.speedGraph.Add(data.SpeedKmh)
	}
}

func (g *Game) handleRecording(event eventbus.Event) {
	data, ok := event.Data.(eventbus.RecordingData)
	if !ok {
		return
	}
	if data.State == recorder.Recording.String() {
		g.eventLog.Add(event.Timestamp, "🔴 Grabación iniciada", LogSuccess)
		return
	}
	msg := fmt.Sprintf("⏹️  Sesión cerrada: %d eventos", data.Events)
	if data.File != "" {
		msg += " → " + data.File
	}
	g.eventLog.Add(event.Timestamp, msg, LogSuccess)
}

func (g *Game) handleLocationError(event eventbus.Event) {
	if data, ok := event.Data.(eventbus.LocationErrorData); ok {
		g.eventLog.Add(event.Timestamp, fmt.Sprintf("📍 %s (código %d)", data.Message, data.Code), LogError)
	}
}

// Draw dibuja el juego (llamado por Ebiten a 60 FPS)
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})

	width := float32(g.config.UI.Window.Width)
	height := float32(g.config.UI.Window.Height)
	snapshot := g.engine.Snapshot()

	// Cabecera
	for i, line := range viewmodel.HeaderLines(snapshot) {
		ebitenutil.DebugPrintAt(screen, line, 20, 12+i*18)
	}

	mapW := width*0.6 - 30
	mapH := height - 150
	g.pathView.Draw(screen, 20, 90, mapW, mapH, g.engine.Segments())

	colX := mapW + 40
	colW := width - colX - 20
	g.jerkGraph.Draw(screen, colX, 90, colW, 150)
	g.speedGraph.Draw(screen, colX, 250, colW, 120)
	g.eventLog.Draw(screen, colX, 380, colW, height-380-50)

	g.drawToast(screen, 20+mapW/2, 110)
	g.controls.Draw(screen, snapshot.Recording == recorder.Recording, g.isPaused())
}

// drawToast dibuja la alerta visible centrada en cx
func (g *Game) drawToast(screen *ebiten.Image, cx, y float32) {
	msg, severity, ok := g.toast.Current(g.now())
	if !ok {
		return
	}

	w := float32(len([]rune(msg))*7 + 30)
	bg := color.RGBA{60, 60, 30, 230}
	switch severity {
	case "high_jerk", "high_accel":
		bg = color.RGBA{120, 30, 30, 230}
	case "medium_jerk", "medium_accel":
		bg = color.RGBA{120, 80, 20, 230}
	}
	vector.DrawFilledRect(screen, cx-w/2, y, w, 30, bg, false)
	ebitenutil.DebugPrintAt(screen, msg, int(cx-w/2+15), int(y+8))
}

// Layout define el tamaño de la ventana
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.config.UI.Window.Width, g.config.UI.Window.Height
}

// Run abre la ventana y bloquea hasta que se cierra
func (g *Game) Run() error {
	ebiten.SetWindowSize(g.config.UI.Window.Width, g.config.UI.Window.Height)
	ebiten.SetWindowTitle(g.config.UI.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(g)
	g.Stop()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Stop detiene el juego y libera las suscripciones
func (g *Game) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	cancels := g.cancels
	g.cancels = nil
	g.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	monitoring.Logf("🛑 [UI] Visor detenido")
}
