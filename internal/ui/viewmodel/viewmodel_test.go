package viewmodel

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/engine"
	"github.com/MarcosBrindi/pathsynq/internal/geo"
	"github.com/MarcosBrindi/pathsynq/internal/kinematics"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastAutoDismiss(t *testing.T) {
	toast := NewToast(0)
	require.Equal(t, DefaultToastDuration, toast.Duration())

	t0 := time.Unix(1000, 0)
	_, _, ok := toast.Current(t0)
	assert.False(t, ok)

	toast.Show("🚨 High Jerk Detected!", "high_jerk", t0)
	msg, sev, ok := toast.Current(t0.Add(1499 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "🚨 High Jerk Detected!", msg)
	assert.Equal(t, "high_jerk", sev)

	_, _, ok = toast.Current(t0.Add(1500 * time.Millisecond))
	assert.False(t, ok)
}

func TestToastShowsOneMessage(t *testing.T) {
	toast := NewToast(time.Second)
	t0 := time.Unix(1000, 0)

	toast.Show("primero", "low_jerk", t0)
	toast.Show("segundo", "medium_jerk", t0.Add(800*time.Millisecond))

	// El segundo reinicia el temporizador
	msg, _, ok := toast.Current(t0.Add(1500 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "segundo", msg)
}

func TestProjectorKeepsNorthUp(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{77.20, 28.60}, Max: orb.Point{77.22, 28.62}}
	p := NewProjector(bound, 0, 0, 400, 400, 10)

	_, yNorth := p.Project(orb.Point{77.21, 28.62})
	_, ySouth := p.Project(orb.Point{77.21, 28.60})
	assert.Less(t, yNorth, ySouth)

	xWest, _ := p.Project(orb.Point{77.20, 28.61})
	xEast, _ := p.Project(orb.Point{77.22, 28.61})
	assert.Less(t, xWest, xEast)

	// Todo cae dentro del rectángulo con margen
	for _, pt := range []orb.Point{bound.Min, bound.Max} {
		x, y := p.Project(pt)
		assert.GreaterOrEqual(t, x, float32(10))
		assert.LessOrEqual(t, x, float32(390))
		assert.GreaterOrEqual(t, y, float32(10))
		assert.LessOrEqual(t, y, float32(390))
	}
}

func TestProjectorSinglePointIsCentered(t *testing.T) {
	pt := orb.Point{77.209, 28.6139}
	p := NewProjector(orb.Bound{Min: pt, Max: pt}, 100, 50, 200, 100, 0)

	x, y := p.Project(pt)
	assert.InDelta(t, 200, x, 0.5)
	assert.InDelta(t, 100, y, 0.5)
	assert.Greater(t, p.Bound().Max.Lon(), p.Bound().Min.Lon())
}

func TestHeaderLines(t *testing.T) {
	lines := HeaderLines(engine.Snapshot{
		Metrics:           kinematics.Metrics{JerkLevel: 12.346, TotalAcceleration: 12.346, RotationAlpha: -4.2, ShockZ: 9.807},
		Odometer:          geo.Odometer{TotalDistanceMeters: 1234.6, LastSpeedKmh: 36},
		Recording:         recorder.Recording,
		RecordedEvents:    3,
		LocationMode:      "triggered",
		LocationAvailable: true,
		MotionAvailable:   true,
	})

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Jerk: 12.35")
	assert.Contains(t, joined, "Giro α: -4.2")
	assert.Contains(t, joined, "Shock Z: 9.81")
	assert.Contains(t, joined, "36.0 km/h")
	assert.Contains(t, joined, "1235 m")
	assert.Contains(t, joined, "Grabando (3 eventos)")
	assert.NotContains(t, joined, "no disponible")
}

func TestHeaderLinesDegraded(t *testing.T) {
	lines := HeaderLines(engine.Snapshot{})
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Sin grabar")
	assert.Contains(t, joined, "Ubicación: no disponible")
	assert.Contains(t, joined, "Sensor de movimiento no disponible")
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, ParseHexColor("#ff0000"))
	assert.Equal(t, color.RGBA{255, 165, 0, 255}, ParseHexColor("#ffa500"))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, ParseHexColor("00ff00"))
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, ParseHexColor("rojo"))
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	_, ok := h.Last()
	assert.False(t, ok)

	for _, v := range []float64{1, 2, 3, 4} {
		h.Add(v)
	}
	assert.Equal(t, []float64{2, 3, 4}, h.Values())
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, 4.0, last)

	h.Clear()
	assert.Empty(t, h.Values())
	assert.Equal(t, 3, h.Capacity())
}
