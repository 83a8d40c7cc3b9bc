package viewmodel

import (
	"math"

	"github.com/paulmach/orb"
)

// minSpan evita dividir por cero con un trayecto de un solo punto (~10 m)
const minSpan = 0.0001

// Projector lleva coordenadas [lon, lat] a píxeles dentro de un rectángulo
type Projector struct {
	bound   orb.Bound
	x, y    float64
	w, h    float64
	scale   float64
	offsetX float64
	offsetY float64
}

// NewProjector ajusta bound al rectángulo (x, y, w, h) conservando la
// proporción y dejando un margen de padding píxeles.
func NewProjector(bound orb.Bound, x, y, w, h, padding float64) Projector {
	bound = padBound(bound)
	p := Projector{bound: bound, x: x + padding, y: y + padding, w: w - 2*padding, h: h - 2*padding}
	if p.w <= 0 || p.h <= 0 {
		p.w, p.h = math.Max(p.w, 1), math.Max(p.h, 1)
	}

	// Corrección de longitud por latitud media
	lonScale := math.Cos(bound.Center().Lat() * math.Pi / 180)
	spanX := (bound.Max.Lon() - bound.Min.Lon()) * lonScale
	spanY := bound.Max.Lat() - bound.Min.Lat()

	p.scale = math.Min(p.w/spanX, p.h/spanY)
	p.offsetX = (p.w - spanX*p.scale) / 2
	p.offsetY = (p.h - spanY*p.scale) / 2
	return p
}

func padBound(b orb.Bound) orb.Bound {
	c := b.Center()
	if b.Max.Lon()-b.Min.Lon() < minSpan {
		b.Min[0], b.Max[0] = c.Lon()-minSpan/2, c.Lon()+minSpan/2
	}
	if b.Max.Lat()-b.Min.Lat() < minSpan {
		b.Min[1], b.Max[1] = c.Lat()-minSpan/2, c.Lat()+minSpan/2
	}
	return b
}

// Project retorna la posición en pantalla. El norte queda arriba.
func (p Projector) Project(pt orb.Point) (float32, float32) {
	lonScale := math.Cos(p.bound.Center().Lat() * math.Pi / 180)
	px := p.x + p.offsetX + (pt.Lon()-p.bound.Min.Lon())*lonScale*p.scale
	py := p.y + p.offsetY + (p.bound.Max.Lat()-pt.Lat())*p.scale
	return float32(px), float32(py)
}

// Bound retorna la caja efectiva, ya con el tamaño mínimo aplicado
func (p Projector) Bound() orb.Bound {
	return p.bound
}
