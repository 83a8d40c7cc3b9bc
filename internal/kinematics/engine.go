package kinematics

import (
	"math"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/sensors"
)

// ========================================
// BANDAS DE SEVERIDAD
// ========================================

// SeverityBand es la clasificación discreta de un sample
type SeverityBand int

const (
	None SeverityBand = iota
	LowJerk
	LowAccel
	MediumJerk
	MediumAccel
	HighJerk
	HighAccel
)

// String retorna el nombre estable de la banda (API, MQTT, logs)
func (s SeverityBand) String() string {
	switch s {
	case LowJerk:
		return "low_jerk"
	case LowAccel:
		return "low_accel"
	case MediumJerk:
		return "medium_jerk"
	case MediumAccel:
		return "medium_accel"
	case HighJerk:
		return "high_jerk"
	case HighAccel:
		return "high_accel"
	default:
		return "none"
	}
}

// Message retorna el texto de alerta de la banda; vacío para None
func (s SeverityBand) Message() string {
	switch s {
	case HighJerk:
		return "🚨 High Jerk Detected"
	case HighAccel:
		return "🚀 High Acceleration"
	case MediumJerk:
		return "⚠️ Medium Jerk Detected"
	case MediumAccel:
		return "⚡ Medium Acceleration"
	case LowJerk:
		return "🟡 Low Jerk Detected"
	case LowAccel:
		return "🔋 Low Acceleration"
	default:
		return ""
	}
}

// ========================================
// UMBRALES
// ========================================

// Thresholds son los límites estrictos (m/s²) de cada banda
type Thresholds struct {
	HighJerk    float64
	HighAccel   float64
	MediumJerk  float64
	MediumAccel float64
	LowJerk     float64
	LowAccel    float64
}

// DefaultThresholds retorna los umbrales 20/25/10/15/5/8
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighJerk:    20,
		HighAccel:   25,
		MediumJerk:  10,
		MediumAccel: 15,
		LowJerk:     5,
		LowAccel:    8,
	}
}

// ThresholdsFromConfig convierte la sección kinematics del YAML
func ThresholdsFromConfig(cfg config.KinematicsConfig) Thresholds {
	return Thresholds{
		HighJerk:    cfg.HighJerk,
		HighAccel:   cfg.HighAccel,
		MediumJerk:  cfg.MediumJerk,
		MediumAccel: cfg.MediumAccel,
		LowJerk:     cfg.LowJerk,
		LowAccel:    cfg.LowAccel,
	}
}

// ClassifySeverity evalúa los predicados en orden; gana el primero que cumpla
func ClassifySeverity(total, jerk float64, th Thresholds) SeverityBand {
	switch {
	case jerk > th.HighJerk:
		return HighJerk
	case total > th.HighAccel:
		return HighAccel
	case jerk > th.MediumJerk:
		return MediumJerk
	case total > th.MediumAccel:
		return MediumAccel
	case jerk > th.LowJerk:
		return LowJerk
	case total > th.LowAccel:
		return LowAccel
	default:
		return None
	}
}

// ========================================
// MOTOR
// ========================================

// Metrics es la última clasificación conocida
type Metrics struct {
	TotalAcceleration float64
	JerkLevel         float64
	RotationAlpha     float64
	ShockZ            float64 // Solo lectura; no afecta la banda
	Severity          SeverityBand
}

// Engine calcula métricas a partir de samples normalizados.
// No es seguro para uso concurrente; lo llama solo el bucle del motor.
type Engine struct {
	thresholds Thresholds
	latest     Metrics
	samples    int
}

// NewEngine crea un motor con los umbrales dados
func NewEngine(th Thresholds) *Engine {
	return &Engine{thresholds: th}
}

// Classify calcula la magnitud, la usa como jerk y asigna la banda
func (e *Engine) Classify(s sensors.MotionSample) Metrics {
	total := math.Sqrt(s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ)
	jerk := total

	e.latest = Metrics{
		TotalAcceleration: total,
		JerkLevel:         jerk,
		RotationAlpha:     s.RotationAlpha,
		ShockZ:            s.ShockZ,
		Severity:          ClassifySeverity(total, jerk, e.thresholds),
	}
	e.samples++
	return e.latest
}

// Latest retorna la última clasificación (cero si nunca hubo samples)
func (e *Engine) Latest() Metrics {
	return e.latest
}

// Available indica si alguna vez se clasificó un sample
func (e *Engine) Available() bool {
	return e.samples > 0
}

// Samples retorna cuántos samples se han clasificado
func (e *Engine) Samples() int {
	return e.samples
}

// Reset vuelve al estado inicial
func (e *Engine) Reset() {
	e.latest = Metrics{}
	e.samples = 0
}
