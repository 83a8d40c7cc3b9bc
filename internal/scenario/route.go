package scenario

import (
	"fmt"
	"math"

	"github.com/MarcosBrindi/pathsynq/internal/geo"
	"github.com/paulmach/orb"
)

// Route es una polilínea que recorre el simulador de ubicación
type Route struct {
	Name   string
	Points orb.LineString
	// cumulative[i] es la distancia en metros hasta Points[i]
	cumulative []float64
}

// NewRoute crea una ruta a partir de sus vértices
func NewRoute(name string, points orb.LineString) (*Route, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("la ruta %q necesita al menos 2 puntos", name)
	}

	cumulative := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cumulative[i] = cumulative[i-1] + geo.DistanceMeters(points[i-1], points[i])
	}
	if cumulative[len(cumulative)-1] == 0 {
		return nil, fmt.Errorf("la ruta %q tiene longitud cero", name)
	}

	return &Route{Name: name, Points: points, cumulative: cumulative}, nil
}

// NewDefaultRoute crea un circuito urbano cerrado alrededor de origin
func NewDefaultRoute(origin orb.Point) *Route {
	// Circuito de ~600 m x 400 m en sentido horario
	pts := orb.LineString{origin}
	legs := [][2]float64{
		{400, 0},
		{0, 300},
		{-150, 300},
		{-250, 0},
		{0, -600},
	}
	p := origin
	for _, leg := range legs {
		p = geo.Offset(p, leg[0], leg[1])
		pts = append(pts, p)
	}
	pts = append(pts, origin)

	route, _ := NewRoute("Circuito Centro", pts)
	return route
}

// LengthMeters retorna la longitud total
func (r *Route) LengthMeters() float64 {
	return r.cumulative[len(r.cumulative)-1]
}

// PositionAt interpola la posición tras recorrer distanceM metros.
// Fuera de rango se recorta a los extremos.
func (r *Route) PositionAt(distanceM float64) orb.Point {
	if distanceM <= 0 || math.IsNaN(distanceM) {
		return r.Points[0]
	}
	if distanceM >= r.LengthMeters() {
		return r.Points[len(r.Points)-1]
	}

	for i := 1; i < len(r.Points); i++ {
		if distanceM > r.cumulative[i] {
			continue
		}
		leg := r.cumulative[i] - r.cumulative[i-1]
		if leg == 0 {
			return r.Points[i]
		}
		f := (distanceM - r.cumulative[i-1]) / leg
		a, b := r.Points[i-1], r.Points[i]
		return orb.Point{
			a.Lon() + (b.Lon()-a.Lon())*f,
			a.Lat() + (b.Lat()-a.Lat())*f,
		}
	}
	return r.Points[len(r.Points)-1]
}

// Bound retorna la caja de la ruta
func (r *Route) Bound() orb.Bound {
	return r.Points.Bound()
}

// String implementa fmt.Stringer
func (r *Route) String() string {
	return fmt.Sprintf("Ruta: %s (%.0f m, %d vértices)", r.Name, r.LengthMeters(), len(r.Points))
}
