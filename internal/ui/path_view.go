package ui

import (
	"fmt"
	"image/color"

	"github.com/MarcosBrindi/pathsynq/internal/path"
	"github.com/MarcosBrindi/pathsynq/internal/ui/viewmodel"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb"
)

// PathView dibuja el trayecto coloreado sobre la ruta simulada
type PathView struct {
	route orb.LineString
	// center es la cámara inicial mientras no hay trayecto
	center orb.Point

	// Colores
	colorPanelBg color.Color
	colorBorder  color.Color
	colorRoute   color.Color
	colorVehicle color.Color
}

// NewPathView crea la vista; route puede ser vacía
func NewPathView(route orb.LineString, center orb.Point) *PathView {
	return &PathView{
		route:        route,
		center:       center,
		colorPanelBg: color.RGBA{30, 30, 40, 255},
		colorBorder:  color.RGBA{80, 80, 100, 255},
		colorRoute:   color.RGBA{60, 60, 75, 255},
		colorVehicle: color.RGBA{100, 200, 255, 255},
	}
}

// bound combina la ruta y los tramos para encuadrar la cámara
func (pv *PathView) bound(segments []path.Segment) orb.Bound {
	b := orb.Bound{Min: pv.center, Max: pv.center}
	if len(pv.route) > 0 {
		b = pv.route.Bound()
	}
	for _, s := range segments {
		b = b.Extend(s.Start).Extend(s.End)
	}
	return b
}

// Draw dibuja el panel del mapa en (x, y, w, h)
func (pv *PathView) Draw(screen *ebiten.Image, x, y, w, h float32, segments []path.Segment) {
	vector.DrawFilledRect(screen, x, y, w, h, pv.colorPanelBg, false)
	vector.StrokeRect(screen, x, y, w, h, 2, pv.colorBorder, false)
	ebitenutil.DebugPrintAt(screen, "🗺️  TRAYECTO", int(x+10), int(y+8))

	proj := viewmodel.NewProjector(pv.bound(segments), float64(x), float64(y+20), float64(w), float64(h-20), 20)

	// Ruta de fondo
	for i := 1; i < len(pv.route); i++ {
		x0, y0 := proj.Project(pv.route[i-1])
		x1, y1 := proj.Project(pv.route[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, pv.colorRoute, false)
	}

	// Tramos coloreados por jerk
	for _, s := range segments {
		x0, y0 := proj.Project(s.Start)
		x1, y1 := proj.Project(s.End)
		vector.StrokeLine(screen, x0, y0, x1, y1, 4, viewmodel.ParseHexColor(s.Color), true)
	}

	if len(segments) == 0 {
		ebitenutil.DebugPrintAt(screen, "Esperando posición...", int(x+10), int(y+h-20))
		return
	}

	last := segments[len(segments)-1]
	vx, vy := proj.Project(last.End)
	vector.DrawFilledCircle(screen, vx, vy, 7, pv.colorVehicle, true)
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("%d tramos | %.6f, %.6f", len(segments), last.End.Lat(), last.End.Lon()),
		int(x+10), int(y+h-20))
}
