// Package geo calcula distancias sobre la esfera terrestre y mantiene el
// odómetro del trayecto.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm es el radio medio de la Tierra
const EarthRadiusKm = 6371.0

// HaversineKm retorna la distancia de gran círculo en km
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceMeters es HaversineKm entre dos puntos [lon, lat], en metros
func DistanceMeters(a, b orb.Point) float64 {
	return HaversineKm(a.Lat(), a.Lon(), b.Lat(), b.Lon()) * 1000
}

// LengthMeters suma la distancia de una polilínea
func LengthMeters(ls orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(ls); i++ {
		total += DistanceMeters(ls[i-1], ls[i])
	}
	return total
}

// Offset desplaza un punto northM metros al norte y eastM al este
// (aproximación local, suficiente para distancias de cientos de metros)
func Offset(p orb.Point, northM, eastM float64) orb.Point {
	dLat := northM / (EarthRadiusKm * 1000) * 180 / math.Pi
	dLon := eastM / (EarthRadiusKm * 1000 * math.Cos(deg2rad(p.Lat()))) * 180 / math.Pi
	return orb.Point{p.Lon() + dLon, p.Lat() + dLat}
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
