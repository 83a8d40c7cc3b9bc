package ui

import (
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Tipos de entrada del log
const (
	LogInfo    = "info"
	LogSuccess = "success"
	LogWarning = "warning"
	LogError   = "error"
)

// LogEvent representa un evento en el log
type LogEvent struct {
	Timestamp time.Time
	Message   string
	Type      string
}

// EventLog gestiona el log de eventos en pantalla
type EventLog struct {
	mu        sync.RWMutex
	events    []LogEvent
	maxEvents int

	// Colores
	colorBg     color.RGBA
	colorBorder color.RGBA
	colors      map[string]color.RGBA
}

// NewEventLog crea un nuevo log de eventos
func NewEventLog(maxEvents int) *EventLog {
	return &EventLog{
		events:      make([]LogEvent, 0, maxEvents),
		maxEvents:   maxEvents,
		colorBg:     color.RGBA{30, 30, 40, 255},
		colorBorder: color.RGBA{80, 80, 100, 255},
		colors: map[string]color.RGBA{
			LogInfo:    {200, 200, 220, 255},
			LogSuccess: {100, 255, 100, 255},
			LogWarning: {255, 200, 100, 255},
			LogError:   {255, 100, 100, 255},
		},
	}
}

// Add agrega un evento al log, el más reciente primero
func (el *EventLog) Add(at time.Time, message string, eventType string) {
	el.mu.Lock()
	defer el.mu.Unlock()

	el.events = append([]LogEvent{{Timestamp: at, Message: message, Type: eventType}}, el.events...)
	if len(el.events) > el.maxEvents {
		el.events = el.events[:el.maxEvents]
	}
}

// Events retorna una copia de las entradas
func (el *EventLog) Events() []LogEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]LogEvent, len(el.events))
	copy(out, el.events)
	return out
}

// Draw dibuja el log en pantalla
func (el *EventLog) Draw(screen *ebiten.Image, x, y, width, height float32) {
	vector.DrawFilledRect(screen, x, y, width, height, el.colorBg, false)
	vector.StrokeRect(screen, x, y, width, height, 2, el.colorBorder, false)
	ebitenutil.DebugPrintAt(screen, "📋 LOG DE EVENTOS", int(x+10), int(y+10))

	el.mu.RLock()
	defer el.mu.RUnlock()

	if len(el.events) == 0 {
		ebitenutil.DebugPrintAt(screen, "Sin eventos recientes", int(x+10), int(y+35))
		return
	}

	yOffset := int(y + 35)
	lineHeight := 18
	maxLines := int(height-45) / lineHeight

	for i, event := range el.events {
		if i >= maxLines {
			break
		}

		// Marca de color por tipo
		c, ok := el.colors[event.Type]
		if !ok {
			c = el.colors[LogInfo]
		}
		vector.DrawFilledRect(screen, x+6, float32(yOffset+4), 3, 10, c, false)

		line := event.Timestamp.Format("15:04:05") + " " + event.Message
		if r := []rune(line); len(r) > 48 {
			line = string(r[:45]) + "..."
		}
		ebitenutil.DebugPrintAt(screen, line, int(x+14), yOffset)
		yOffset += lineHeight
	}
}

// Clear limpia todos los eventos
func (el *EventLog) Clear() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = make([]LogEvent, 0, el.maxEvents)
}
