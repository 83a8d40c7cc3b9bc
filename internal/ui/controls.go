package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Action es una orden del usuario desde el teclado
type Action int

const (
	ActionNone Action = iota
	ActionToggleRecording
	ActionTogglePause
	ActionReset
)

// bindings teclas → acciones
var bindings = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeyR, ActionToggleRecording},
	{ebiten.KeySpace, ActionTogglePause},
	{ebiten.KeyC, ActionReset},
}

// Controls maneja los controles de la UI
type Controls struct {
	// Colores
	colorBg     color.Color
	colorBorder color.Color
}

// NewControls crea nuevos controles
func NewControls() *Controls {
	return &Controls{
		colorBg:     color.RGBA{30, 30, 40, 200},
		colorBorder: color.RGBA{100, 100, 120, 255},
	}
}

// Update retorna la acción de la tecla recién presionada, si hay
func (c *Controls) Update() Action {
	for _, b := range bindings {
		if inpututil.IsKeyJustPressed(b.key) {
			return b.action
		}
	}
	return ActionNone
}

// Draw dibuja la barra de controles
func (c *Controls) Draw(screen *ebiten.Image, recording, paused bool) {
	width := float32(screen.Bounds().Dx())
	height := float32(screen.Bounds().Dy())

	panelY := height - 40
	vector.DrawFilledRect(screen, 0, panelY, width, 40, c.colorBg, false)
	vector.StrokeLine(screen, 0, panelY, width, panelY, 2, c.colorBorder, false)

	rec := "[R] 🔴 Grabar"
	if recording {
		rec = "[R] ⏹️  Detener grabación"
	}
	pause := "[ESPACIO] ⏸ Pausa"
	if paused {
		pause = "[ESPACIO] ▶ Reanudar"
	}
	ebitenutil.DebugPrintAt(screen, rec+"   "+pause+"   [C] 🔄 Limpiar trayecto", 20, int(panelY+14))
}
