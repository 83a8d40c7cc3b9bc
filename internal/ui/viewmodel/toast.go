// Package viewmodel contiene el estado de pantalla del visor que no
// depende de Ebiten: toast de alertas, proyección del mapa y cabecera.
package viewmodel

import "time"

// DefaultToastDuration es el auto-cierre de una alerta
const DefaultToastDuration = 1500 * time.Millisecond

// Toast muestra como máximo una alerta. Una nueva reemplaza a la visible.
type Toast struct {
	duration time.Duration
	message  string
	severity string
	shownAt  time.Time
}

// NewToast crea un toast; d <= 0 usa DefaultToastDuration
func NewToast(d time.Duration) *Toast {
	if d <= 0 {
		d = DefaultToastDuration
	}
	return &Toast{duration: d}
}

// Show reemplaza el mensaje visible
func (t *Toast) Show(message, severity string, now time.Time) {
	t.message = message
	t.severity = severity
	t.shownAt = now
}

// Current retorna el mensaje visible en now, si lo hay
func (t *Toast) Current(now time.Time) (message, severity string, ok bool) {
	if t.message == "" {
		return "", "", false
	}
	if now.Sub(t.shownAt) >= t.duration {
		t.message = ""
		t.severity = ""
		return "", "", false
	}
	return t.message, t.severity, true
}

// Duration retorna el tiempo de auto-cierre
func (t *Toast) Duration() time.Duration {
	return t.duration
}
