// Package recorder graba los tramos aceptados durante una sesión y los
// exporta como un único archivo JSON al detenerla.
package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/path"
	"github.com/MarcosBrindi/pathsynq/internal/timeutil"
	"github.com/google/uuid"
)

// ErrNotRecording se retorna al detener una sesión inexistente (no-op)
var ErrNotRecording = errors.New("recorder: no hay sesión en curso")

// State es el estado de la máquina Idle/Recording
type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// RecordedEvent es una entrada del archivo exportado
type RecordedEvent struct {
	Coords    [2][2]float64 `json:"coords"` // [[lon,lat],[lon,lat]]
	Color     string        `json:"color"`
	Jerk      float64       `json:"jerk"`
	Timestamp int64         `json:"timestamp"` // epoch ms
}

// Export es el resultado de detener una sesión
type Export struct {
	SessionID string
	StartedAt time.Time
	StoppedAt time.Time
	Events    []RecordedEvent
	Data      []byte // JSON serializado
	File      string // vacío si no hay exporter
}

// Exporter persiste el JSON de una sesión; retorna la ubicación escrita
type Exporter interface {
	Export(sessionID string, data []byte) (string, error)
}

// Recorder es la máquina de estados de grabación.
// No es seguro para uso concurrente; lo llama solo el bucle del motor.
type Recorder struct {
	clock    timeutil.Clock
	exporter Exporter

	state     State
	sessionID string
	startedAt time.Time
	buffer    []RecordedEvent
}

// New crea un recorder en Idle. exporter puede ser nil.
func New(clock timeutil.Clock, exporter Exporter) *Recorder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Recorder{clock: clock, exporter: exporter}
}

// Start limpia el buffer y pasa a Recording. Si ya graba es un no-op y
// retorna la sesión actual con started=false.
func (r *Recorder) Start() (sessionID string, started bool) {
	if r.state == Recording {
		return r.sessionID, false
	}
	r.state = Recording
	r.sessionID = uuid.NewString()
	r.startedAt = r.clock.Now()
	r.buffer = r.buffer[:0]
	return r.sessionID, true
}

// Capture agrega un tramo con el jerk vigente. Ignorado fuera de Recording.
func (r *Recorder) Capture(seg path.Segment, jerk float64) bool {
	if r.state != Recording {
		return false
	}
	r.buffer = append(r.buffer, RecordedEvent{
		Coords: [2][2]float64{
			{seg.Start.Lon(), seg.Start.Lat()},
			{seg.End.Lon(), seg.End.Lat()},
		},
		Color:     seg.Color,
		Jerk:      jerk,
		Timestamp: timeutil.UnixMilli(r.clock),
	})
	return true
}

// Stop pasa a Idle, serializa el buffer, lo exporta y lo vacía.
// El buffer se vacía aunque falle la exportación; Data sigue disponible.
func (r *Recorder) Stop() (Export, error) {
	if r.state != Recording {
		return Export{}, ErrNotRecording
	}

	events := make([]RecordedEvent, len(r.buffer))
	copy(events, r.buffer)

	exp := Export{
		SessionID: r.sessionID,
		StartedAt: r.startedAt,
		StoppedAt: r.clock.Now(),
		Events:    events,
	}

	r.state = Idle
	r.buffer = r.buffer[:0]
	r.sessionID = ""

	data, err := Marshal(events)
	if err != nil {
		return exp, fmt.Errorf("error serializando sesión %s: %w", exp.SessionID, err)
	}
	exp.Data = data

	if r.exporter != nil {
		file, err := r.exporter.Export(exp.SessionID, data)
		if err != nil {
			return exp, fmt.Errorf("error exportando sesión %s: %w", exp.SessionID, err)
		}
		exp.File = file
	}
	return exp, nil
}

// State retorna el estado actual
func (r *Recorder) State() State {
	return r.state
}

// SessionID retorna la sesión en curso (vacío en Idle)
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Len retorna cuántos eventos hay en el buffer
func (r *Recorder) Len() int {
	return len(r.buffer)
}

// Marshal serializa los eventos; una sesión vacía produce "[]"
func Marshal(events []RecordedEvent) ([]byte, error) {
	if events == nil {
		events = []RecordedEvent{}
	}
	return json.Marshal(events)
}
