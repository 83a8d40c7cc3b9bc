package geo

import "fmt"

// FormatSpeed da formato a una velocidad en km/h con un decimal
func FormatSpeed(kmh float64) string {
	return fmt.Sprintf("%.1f km/h", kmh)
}

// FormatDistance da formato a una distancia en metros enteros
func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.0f m", meters)
}
