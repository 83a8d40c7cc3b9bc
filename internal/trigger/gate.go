package trigger

import (
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/kinematics"
)

// Valores por defecto
const (
	DefaultJerkThreshold = 2.5
	DefaultPeriod        = 1000 * time.Millisecond
)

// Gate limita el muestreo GPS: solo pide un fix si hubo movimiento
// por encima del umbral desde el último chequeo.
type Gate struct {
	threshold float64
	period    time.Duration
	armed     bool

	// Contadores para la API de estado
	checks int
	fired  int
}

// NewGate crea la puerta. Valores no positivos usan los defaults.
func NewGate(threshold float64, period time.Duration) *Gate {
	if threshold <= 0 {
		threshold = DefaultJerkThreshold
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Gate{threshold: threshold, period: period}
}

// Observe arma la puerta si el jerk supera el umbral
func (g *Gate) Observe(m kinematics.Metrics) {
	if m.JerkLevel > g.threshold {
		g.armed = true
	}
}

// Check se llama una vez por periodo. Si estaba armada la desarma
// y retorna true: el llamador debe pedir exactamente un fix.
func (g *Gate) Check() bool {
	g.checks++
	if !g.armed {
		return false
	}
	g.armed = false
	g.fired++
	return true
}

// Armed indica si hay un disparo pendiente
func (g *Gate) Armed() bool {
	return g.armed
}

// Period retorna el periodo de chequeo
func (g *Gate) Period() time.Duration {
	return g.period
}

// Threshold retorna el umbral de armado
func (g *Gate) Threshold() float64 {
	return g.threshold
}

// Stats retorna chequeos realizados y disparos
func (g *Gate) Stats() (checks, fired int) {
	return g.checks, g.fired
}
