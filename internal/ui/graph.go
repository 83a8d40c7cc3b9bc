package ui

import (
	"fmt"
	"image/color"

	"github.com/MarcosBrindi/pathsynq/internal/ui/viewmodel"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Graph muestra una serie en tiempo real (jerk, velocidad)
type Graph struct {
	title   string
	unit    string
	maxY    float64
	step    float64
	history *viewmodel.History

	// Líneas de referencia (umbrales)
	marks []float64

	// Colores
	colorBg     color.RGBA
	colorBorder color.RGBA
	colorLine   color.RGBA
	colorGrid   color.RGBA
	colorMark   color.RGBA
}

// NewGraph crea una gráfica con escala fija 0..maxY y grid cada step
func NewGraph(title, unit string, maxY, step float64, maxPoints int) *Graph {
	return &Graph{
		title:       title,
		unit:        unit,
		maxY:        maxY,
		step:        step,
		history:     viewmodel.NewHistory(maxPoints),
		colorBg:     color.RGBA{30, 30, 40, 255},
		colorBorder: color.RGBA{80, 80, 100, 255},
		colorLine:   color.RGBA{100, 200, 255, 255},
		colorGrid:   color.RGBA{50, 50, 60, 255},
		colorMark:   color.RGBA{255, 120, 80, 255},
	}
}

// SetMarks fija las líneas de umbral
func (g *Graph) SetMarks(marks ...float64) {
	g.marks = marks
}

func (g *Graph) Add(v float64) {
	g.history.Add(v)
}

func (g *Graph) Clear() {
	g.history.Clear()
}

func (g *Graph) ratio(v float64) float32 {
	r := v / g.maxY
	if r > 1 {
		r = 1
	}
	if r < 0 {
		r = 0
	}
	return float32(r)
}

// Draw dibuja la gráfica en (x, y, w, h)
func (g *Graph) Draw(screen *ebiten.Image, x, y, w, h float32) {
	vector.DrawFilledRect(screen, x, y, w, h, g.colorBg, false)
	vector.StrokeRect(screen, x, y, w, h, 2, g.colorBorder, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("📈 %s (%s)", g.title, g.unit), int(x+10), int(y+5))

	graphY := y + 25
	graphHeight := h - 30

	for v := 0.0; v <= g.maxY; v += g.step {
		lineY := graphY + graphHeight*(1-g.ratio(v))
		vector.StrokeLine(screen, x, lineY, x+w, lineY, 1, g.colorGrid, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0f", v), int(x+5), int(lineY-5))
	}
	for _, m := range g.marks {
		lineY := graphY + graphHeight*(1-g.ratio(m))
		vector.StrokeLine(screen, x+35, lineY, x+w, lineY, 1, g.colorMark, false)
	}

	values := g.history.Values()
	if len(values) < 2 {
		return
	}

	spacing := (w - 40) / float32(g.history.Capacity()-1)
	for i := 0; i < len(values)-1; i++ {
		x1 := x + 35 + float32(i)*spacing
		y1 := graphY + graphHeight*(1-g.ratio(values[i]))
		x2 := x + 35 + float32(i+1)*spacing
		y2 := graphY + graphHeight*(1-g.ratio(values[i+1]))
		vector.StrokeLine(screen, x1, y1, x2, y2, 2, g.colorLine, false)
	}

	last := values[len(values)-1]
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Actual: %.1f", last), int(x+w-110), int(y+5))
}
