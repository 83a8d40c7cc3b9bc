package viewmodel

// History guarda las últimas n muestras de una serie, la más vieja primero
type History struct {
	max    int
	values []float64
}

func NewHistory(max int) *History {
	if max < 2 {
		max = 2
	}
	return &History{max: max, values: make([]float64, 0, max)}
}

func (h *History) Add(v float64) {
	h.values = append(h.values, v)
	if len(h.values) > h.max {
		h.values = h.values[1:]
	}
}

// Values retorna una copia de la serie
func (h *History) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

// Last retorna la muestra más reciente
func (h *History) Last() (float64, bool) {
	if len(h.values) == 0 {
		return 0, false
	}
	return h.values[len(h.values)-1], true
}

// Capacity retorna cuántas muestras caben
func (h *History) Capacity() int {
	return h.max
}

func (h *History) Clear() {
	h.values = h.values[:0]
}
