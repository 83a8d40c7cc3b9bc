package geo

import (
	"github.com/MarcosBrindi/pathsynq/internal/sensors"
	"github.com/paulmach/orb"
)

// DefaultMinDistanceMeters es el filtro de ruido GPS por defecto
const DefaultMinDistanceMeters = 5.0

// Options configura el Tracker
type Options struct {
	// MinDistanceMeters: solo deltas mayores suman al total
	MinDistanceMeters float64
	// FilterPosition: si es true, un delta bajo el umbral tampoco mueve la
	// posición de referencia (política alternativa)
	FilterPosition bool
}

// Observation es el resultado de procesar un fix
type Observation struct {
	Position            orb.Point
	DistanceDeltaMeters float64
	SpeedKmh            float64
	// Accepted indica que el delta superó el filtro y sumó al total
	Accepted bool
	// First indica que no había posición previa
	First bool
	// Moved indica que Position pasó a ser la nueva referencia
	Moved bool
}

// Odometer es el estado acumulado del Tracker
type Odometer struct {
	LastPosition        orb.Point
	HasPosition         bool
	TotalDistanceMeters float64
	LastSpeedKmh        float64
	Accepted            int
	Rejected            int
}

// Tracker consume fixes y acumula distancia filtrando ruido
type Tracker struct {
	opts     Options
	odometer Odometer
}

// NewTracker crea un Tracker; un umbral negativo se trata como 0
func NewTracker(opts Options) *Tracker {
	if opts.MinDistanceMeters < 0 {
		opts.MinDistanceMeters = 0
	}
	return &Tracker{opts: opts}
}

// Observe procesa un fix normalizado
func (t *Tracker) Observe(fix sensors.LocationFix) Observation {
	pos := fix.Point()

	obs := Observation{Position: pos}
	if fix.HasSpeed {
		obs.SpeedKmh = fix.SpeedMPS * 3.6
	}
	t.odometer.LastSpeedKmh = obs.SpeedKmh

	if !t.odometer.HasPosition {
		obs.First = true
		obs.Moved = true
		t.odometer.LastPosition = pos
		t.odometer.HasPosition = true
		return obs
	}

	obs.DistanceDeltaMeters = DistanceMeters(t.odometer.LastPosition, pos)

	if obs.DistanceDeltaMeters > t.opts.MinDistanceMeters {
		obs.Accepted = true
		obs.Moved = true
		t.odometer.TotalDistanceMeters += obs.DistanceDeltaMeters
		t.odometer.Accepted++
		t.odometer.LastPosition = pos
		return obs
	}

	t.odometer.Rejected++
	if !t.opts.FilterPosition {
		obs.Moved = true
		t.odometer.LastPosition = pos
	}
	return obs
}

// Odometer retorna una copia del estado
func (t *Tracker) Odometer() Odometer {
	return t.odometer
}

// TotalDistanceMeters atajo de lectura
func (t *Tracker) TotalDistanceMeters() float64 {
	return t.odometer.TotalDistanceMeters
}

// Reset vuelve el odómetro a cero
func (t *Tracker) Reset() {
	t.odometer = Odometer{}
}
