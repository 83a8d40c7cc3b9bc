package geo

import (
	"math/rand"
	"testing"

	"github.com/MarcosBrindi/pathsynq/internal/sensors"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixAt(p orb.Point) sensors.LocationFix {
	return sensors.LocationFix{Latitude: p.Lat(), Longitude: p.Lon()}
}

func TestObserveFirstFixSetsReference(t *testing.T) {
	tr := NewTracker(Options{MinDistanceMeters: 5})
	origin := orb.Point{77.209, 28.6139}

	obs := tr.Observe(fixAt(origin))
	assert.True(t, obs.First)
	assert.False(t, obs.Accepted)
	assert.Equal(t, 0.0, obs.DistanceDeltaMeters)

	odo := tr.Odometer()
	assert.True(t, odo.HasPosition)
	assert.Equal(t, origin, odo.LastPosition)
	assert.Equal(t, 0.0, odo.TotalDistanceMeters)
}

func TestObserveSpeedConversion(t *testing.T) {
	tr := NewTracker(Options{MinDistanceMeters: 5})

	fix := fixAt(orb.Point{77.209, 28.6139})
	fix.SpeedMPS = 10
	fix.HasSpeed = true
	assert.InDelta(t, 36.0, tr.Observe(fix).SpeedKmh, 1e-9)

	noSpeed := fixAt(orb.Point{77.209, 28.6139})
	noSpeed.SpeedMPS = 99 // ignorado sin HasSpeed
	assert.Equal(t, 0.0, tr.Observe(noSpeed).SpeedKmh)
	assert.Equal(t, 0.0, tr.Odometer().LastSpeedKmh)
}

func TestObserveNoiseFilter(t *testing.T) {
	origin := orb.Point{77.209, 28.6139}
	tr := NewTracker(Options{MinDistanceMeters: 5})

	tr.Observe(fixAt(origin))

	near := Offset(origin, 3, 0)
	obs := tr.Observe(fixAt(near))
	assert.False(t, obs.Accepted)
	assert.True(t, obs.Moved)
	assert.InDelta(t, 3, obs.DistanceDeltaMeters, 0.01)
	assert.Equal(t, 0.0, tr.TotalDistanceMeters())
	// Política canónica: la referencia se mueve igual
	assert.Equal(t, near, tr.Odometer().LastPosition)

	far := Offset(near, 50, 0)
	obs = tr.Observe(fixAt(far))
	assert.True(t, obs.Accepted)
	assert.InDelta(t, 50, tr.TotalDistanceMeters(), 0.01)

	odo := tr.Odometer()
	assert.Equal(t, 1, odo.Accepted)
	assert.Equal(t, 1, odo.Rejected)
}

func TestObserveFilterPositionPolicy(t *testing.T) {
	origin := orb.Point{77.209, 28.6139}
	tr := NewTracker(Options{MinDistanceMeters: 5, FilterPosition: true})

	tr.Observe(fixAt(origin))
	// Tres pasos de 3 m: con la referencia fija, el tercero supera el umbral
	p1 := Offset(origin, 3, 0)
	p2 := Offset(p1, 3, 0)
	rejected := tr.Observe(fixAt(p1))
	assert.False(t, rejected.Accepted)
	assert.False(t, rejected.Moved)
	assert.Equal(t, origin, tr.Odometer().LastPosition)

	obs := tr.Observe(fixAt(p2))
	assert.True(t, obs.Accepted)
	assert.InDelta(t, 6, tr.TotalDistanceMeters(), 0.01)
	assert.Equal(t, p2, tr.Odometer().LastPosition)
}

func TestObserveIdenticalIsNoop(t *testing.T) {
	p := orb.Point{77.209, 28.6139}
	tr := NewTracker(Options{MinDistanceMeters: 5})
	tr.Observe(fixAt(p))
	obs := tr.Observe(fixAt(p))
	assert.Equal(t, 0.0, obs.DistanceDeltaMeters)
	assert.False(t, obs.Accepted)
	assert.Equal(t, 0.0, tr.TotalDistanceMeters())
}

func TestTotalDistanceNonDecreasing(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tr := NewTracker(Options{MinDistanceMeters: 5})
	p := orb.Point{77.209, 28.6139}

	prev := 0.0
	for i := 0; i < 1000; i++ {
		p = Offset(p, r.NormFloat64()*10, r.NormFloat64()*10)
		tr.Observe(fixAt(p))
		total := tr.TotalDistanceMeters()
		require.GreaterOrEqual(t, total, prev)
		prev = total
	}
}

func TestNegativeThresholdClamped(t *testing.T) {
	tr := NewTracker(Options{MinDistanceMeters: -3})
	origin := orb.Point{77.209, 28.6139}
	tr.Observe(fixAt(origin))
	assert.True(t, tr.Observe(fixAt(Offset(origin, 1, 0))).Accepted)

	tr.Reset()
	assert.False(t, tr.Odometer().HasPosition)
}
