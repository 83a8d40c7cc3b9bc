package viewmodel

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/MarcosBrindi/pathsynq/internal/engine"
	"github.com/MarcosBrindi/pathsynq/internal/geo"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
)

// HeaderLines arma las lecturas de la cabecera del visor
func HeaderLines(s engine.Snapshot) []string {
	lines := []string{
		fmt.Sprintf("Jerk: %.2f m/s²  |  Total: %.2f m/s²  |  Giro α: %.1f°/s  |  Shock Z: %.2f",
			s.Metrics.JerkLevel, s.Metrics.TotalAcceleration, s.Metrics.RotationAlpha, s.Metrics.ShockZ),
		fmt.Sprintf("Velocidad: %s  |  Distancia: %s",
			geo.FormatSpeed(s.Odometer.LastSpeedKmh), geo.FormatDistance(s.Odometer.TotalDistanceMeters)),
	}

	rec := "⚪ Sin grabar"
	if s.Recording == recorder.Recording {
		rec = fmt.Sprintf("🔴 Grabando (%d eventos)", s.RecordedEvents)
	}
	lines = append(lines, fmt.Sprintf("%s  |  Ubicación: %s", rec, locationStatus(s)))

	if !s.MotionAvailable {
		lines = append(lines, "⚠️  Sensor de movimiento no disponible")
	}
	return lines
}

func locationStatus(s engine.Snapshot) string {
	switch {
	case !s.LocationAvailable:
		return "no disponible"
	case s.LastLocationError != "":
		return "⚠️ " + s.LastLocationError
	default:
		return fmt.Sprintf("%s (%d fixes pedidos)", s.LocationMode, s.LocationRequests)
	}
}

// ParseHexColor interpreta "#rrggbb". Un valor inválido da gris.
func ParseHexColor(hex string) color.RGBA {
	fallback := color.RGBA{128, 128, 128, 255}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
