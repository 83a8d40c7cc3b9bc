package path

import (
	"github.com/MarcosBrindi/pathsynq/internal/kinematics"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Colores de trazo del trayecto
const (
	ColorRed    = "#ff0000"
	ColorOrange = "#ffa500"
	ColorGreen  = "#00ff00"
)

// Umbrales de color; más gruesos que las 7 bandas de alerta
const (
	redJerk    = 20.0
	orangeJerk = 10.0
)

// ColorFor asigna uno de los tres colores según el jerk
func ColorFor(jerk float64) string {
	switch {
	case jerk > redJerk:
		return ColorRed
	case jerk > orangeJerk:
		return ColorOrange
	default:
		return ColorGreen
	}
}

// Segment es un tramo inmutable entre dos posiciones aceptadas
type Segment struct {
	Index    int
	Start    orb.Point // [lon, lat]
	End      orb.Point
	Color    string
	Severity kinematics.SeverityBand
	Jerk     float64
}

// LineString retorna el tramo como geometría
func (s Segment) LineString() orb.LineString {
	return orb.LineString{s.Start, s.End}
}

// Segmenter construye la secuencia de tramos coloreados (solo append)
type Segmenter struct {
	prev     orb.Point
	hasPrev  bool
	segments []Segment
}

func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Append registra coord. Crea un tramo si hay referencia previa distinta;
// la primera coordenada solo fija la referencia.
func (s *Segmenter) Append(coord orb.Point, m kinematics.Metrics) (Segment, bool) {
	if !s.hasPrev {
		s.prev = coord
		s.hasPrev = true
		return Segment{}, false
	}
	if coord.Equal(s.prev) {
		return Segment{}, false
	}

	seg := Segment{
		Index:    len(s.segments),
		Start:    s.prev,
		End:      coord,
		Color:    ColorFor(m.JerkLevel),
		Severity: m.Severity,
		Jerk:     m.JerkLevel,
	}
	s.segments = append(s.segments, seg)
	s.prev = coord
	return seg, true
}

// Last retorna la referencia actual
func (s *Segmenter) Last() (orb.Point, bool) {
	return s.prev, s.hasPrev
}

// Len retorna la cantidad de tramos
func (s *Segmenter) Len() int {
	return len(s.segments)
}

// Segments retorna una copia de la secuencia ordenada
func (s *Segmenter) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Bound retorna la caja que contiene todo el trayecto
func (s *Segmenter) Bound() (orb.Bound, bool) {
	if !s.hasPrev {
		return orb.Bound{}, false
	}
	b := orb.Bound{Min: s.prev, Max: s.prev}
	for _, seg := range s.segments {
		b = b.Extend(seg.Start).Extend(seg.End)
	}
	return b, true
}

// FeatureCollection renderiza los tramos como GeoJSON para el mapa
func (s *Segmenter) FeatureCollection() *geojson.FeatureCollection {
	return FeatureCollection(s.segments)
}

// FeatureCollection convierte tramos a LineString features
func FeatureCollection(segments []Segment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, seg := range segments {
		f := geojson.NewFeature(seg.LineString())
		f.Properties["index"] = seg.Index
		f.Properties["color"] = seg.Color
		f.Properties["severity"] = seg.Severity.String()
		f.Properties["jerk"] = seg.Jerk
		fc.Append(f)
	}
	return fc
}

// Reset descarta la referencia y los tramos
func (s *Segmenter) Reset() {
	s.prev = orb.Point{}
	s.hasPrev = false
	s.segments = nil
}
