package sensors

import (
	"math"

	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/paulmach/orb"
)

// MotionSample es una muestra de movimiento completa (m/s² y °/s)
type MotionSample struct {
	AccelX        float64
	AccelY        float64
	AccelZ        float64
	RotationAlpha float64
	ShockZ        float64 // accelerationIncludingGravity.z, solo lectura
}

// LocationFix es un fix completo
type LocationFix struct {
	Latitude       float64
	Longitude      float64
	SpeedMPS       float64
	HasSpeed       bool
	AccuracyMeters float64
	HighAccuracy   bool
}

// Point retorna el fix como [lon, lat]
func (f LocationFix) Point() orb.Point {
	return orb.Point{f.Longitude, f.Latitude}
}

// NormalizeMotion completa un evento de movimiento; los campos ausentes valen 0
func NormalizeMotion(raw eventbus.MotionData) MotionSample {
	var s MotionSample
	if raw.Acceleration != nil {
		s.AccelX = valueOr0(raw.Acceleration.X)
		s.AccelY = valueOr0(raw.Acceleration.Y)
		s.AccelZ = valueOr0(raw.Acceleration.Z)
	}
	if raw.AccelerationIncludingGravity != nil {
		s.ShockZ = valueOr0(raw.AccelerationIncludingGravity.Z)
	}
	if raw.RotationRate != nil {
		s.RotationAlpha = valueOr0(raw.RotationRate.Alpha)
	}
	return s
}

// NormalizeLocation completa un fix. Speed nulo, NaN o 0 se reporta sin velocidad.
func NormalizeLocation(raw eventbus.LocationData) LocationFix {
	fix := LocationFix{
		Latitude:       finiteOr0(raw.Latitude),
		Longitude:      finiteOr0(raw.Longitude),
		AccuracyMeters: valueOr0(raw.Accuracy),
		HighAccuracy:   raw.HighAccuracy,
	}
	if speed := valueOr0(raw.Speed); speed != 0 {
		fix.SpeedMPS = speed
		fix.HasSpeed = true
	}
	return fix
}

// valueOr0 trata nil, NaN e Inf como ausentes
func valueOr0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return finiteOr0(*v)
}

func finiteOr0(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Float retorna un puntero; útil para armar eventos crudos
func Float(v float64) *float64 {
	return &v
}
