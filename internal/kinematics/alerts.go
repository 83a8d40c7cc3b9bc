package kinematics

// Alert es un mensaje listo para la superficie de notificaciones
type Alert struct {
	Message  string
	Severity SeverityBand
}

// AlertDebouncer suprime mensajes repetidos con un único slot
type AlertDebouncer struct {
	last string
}

func NewAlertDebouncer() *AlertDebouncer {
	return &AlertDebouncer{}
}

// Evaluate emite una alerta solo si su mensaje difiere del último emitido.
// None no emite nada y no toca el slot.
func (d *AlertDebouncer) Evaluate(m Metrics) (Alert, bool) {
	msg := m.Severity.Message()
	if msg == "" || msg == d.last {
		return Alert{}, false
	}
	d.last = msg
	return Alert{Message: msg, Severity: m.Severity}, true
}

// Last retorna el último mensaje emitido
func (d *AlertDebouncer) Last() string {
	return d.last
}

// Reset limpia el slot
func (d *AlertDebouncer) Reset() {
	d.last = ""
}
