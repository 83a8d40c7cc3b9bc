package sensors

import (
	"testing"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineRoute es una ruta recta hacia el norte de 1 km
type lineRoute struct{}

func (lineRoute) LengthMeters() float64 { return 1000 }

func (lineRoute) PositionAt(d float64) orb.Point {
	return orb.Point{77.209, 28.6139 + d/111_320.0}
}

func init() {
	monitoring.SetLogger(nil)
}

func waitEvent(t *testing.T, ch <-chan eventbus.Event) eventbus.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return eventbus.Event{}
}

func locationConfig() config.LocationSensorConfig {
	return config.LocationSensorConfig{Enabled: true, Frequency: 50, LatencyMS: 5}
}

func TestRequestFixPublishesOneFix(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	fixes, cancel := bus.Subscribe(eventbus.EventLocation)
	defer cancel()

	sim := NewLocationSimulator(bus, locationConfig(), lineRoute{})
	sim.SetSpeed(36)
	require.NoError(t, sim.RequestFix(DefaultPositionOptions()))

	ev := waitEvent(t, fixes)
	data := ev.Data.(eventbus.LocationData)
	assert.InDelta(t, 28.6139, data.Latitude, 0.01)
	require.NotNil(t, data.Speed)
	assert.InDelta(t, 10.0, *data.Speed, 1e-9)
	assert.True(t, data.HighAccuracy)

	assert.Eventually(t, func() bool { return sim.Pending() == 0 }, time.Second, 5*time.Millisecond)
	assert.Len(t, fixes, 0, "single-shot must not keep publishing")
}

func TestRequestFixTimeout(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	errs, cancel := bus.Subscribe(eventbus.EventLocationError)
	defer cancel()

	cfg := locationConfig()
	cfg.LatencyMS = 200
	sim := NewLocationSimulator(bus, cfg, lineRoute{})

	opts := DefaultPositionOptions()
	opts.Timeout = 10 * time.Millisecond
	require.NoError(t, sim.RequestFix(opts))

	data := waitEvent(t, errs).Data.(eventbus.LocationErrorData)
	assert.Equal(t, ErrCodeTimeout, data.Code)
}

func TestRequestFixSignalLostAndDenied(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	errs, cancel := bus.Subscribe(eventbus.EventLocationError)
	defer cancel()

	sim := NewLocationSimulator(bus, locationConfig(), lineRoute{})
	opts := DefaultPositionOptions()
	opts.Timeout = 5 * time.Millisecond

	sim.SetSignalLost(true)
	require.NoError(t, sim.RequestFix(opts))
	assert.Equal(t, ErrCodeTimeout, waitEvent(t, errs).Data.(eventbus.LocationErrorData).Code)

	sim.SetSignalLost(false)
	sim.SetPermissionDenied(true)
	require.NoError(t, sim.RequestFix(opts))
	assert.Equal(t, ErrCodePermissionDenied, waitEvent(t, errs).Data.(eventbus.LocationErrorData).Code)
}

func TestRequestFixSignalLostHonoursTimeout(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	errs, cancel := bus.Subscribe(eventbus.EventLocationError)
	defer cancel()

	cfg := locationConfig()
	cfg.LatencyMS = 150
	sim := NewLocationSimulator(bus, cfg, lineRoute{})
	sim.SetSignalLost(true)

	opts := DefaultPositionOptions()
	opts.Timeout = 300 * time.Millisecond

	start := time.Now()
	require.NoError(t, sim.RequestFix(opts))
	data := waitEvent(t, errs).Data.(eventbus.LocationErrorData)
	elapsed := time.Since(start)

	assert.Equal(t, ErrCodeTimeout, data.Code)
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond)
	// latencia + timeout serían 450 ms
	assert.Less(t, elapsed, 420*time.Millisecond)
}

func TestWatchCancelDuringSignalLoss(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	errs, cancelErrs := bus.Subscribe(eventbus.EventLocationError)
	defer cancelErrs()
	fixes, cancelFixes := bus.Subscribe(eventbus.EventLocation)
	defer cancelFixes()

	sim := NewLocationSimulator(bus, locationConfig(), lineRoute{})
	sim.SetSignalLost(true)

	opts := DefaultPositionOptions()
	opts.Timeout = 500 * time.Millisecond
	stop, err := sim.Watch(opts)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	stop()
	assert.Equal(t, 0, sim.Watchers())

	select {
	case ev := <-errs:
		t.Fatalf("error published after cancel: %+v", ev.Data)
	case ev := <-fixes:
		t.Fatalf("fix published after cancel: %+v", ev.Data)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestWatchCancelStopsFixes(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	fixes, cancel := bus.Subscribe(eventbus.EventLocation)
	defer cancel()

	cfg := locationConfig()
	cfg.Frequency = 200
	sim := NewLocationSimulator(bus, cfg, lineRoute{})
	stop, err := sim.Watch(DefaultPositionOptions())
	require.NoError(t, err)
	waitEvent(t, fixes)

	stop()
	// Vaciar lo que ya estaba en el buffer antes de cancelar
	for len(fixes) > 0 {
		<-fixes
	}
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, fixes, 0)
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		hz   float64
		want time.Duration
	}{
		{1, time.Second},
		{20, 50 * time.Millisecond},
		{1000, time.Millisecond},
		{4000, 250 * time.Microsecond},
		{0, time.Second},
		{-5, time.Second},
		{1e12, time.Nanosecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TickInterval(tt.hz), "hz=%v", tt.hz)
	}
}

func TestMotionSimulatorAboveOneKilohertz(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	samples, cancel := bus.Subscribe(eventbus.EventMotion)
	defer cancel()

	motion := NewMotionSimulator(bus, config.MotionSensorConfig{Enabled: true, Frequency: 2000, Noise: 0})
	require.NotPanics(t, func() { require.NoError(t, motion.Start()) })
	defer motion.Stop()

	data := waitEvent(t, samples).Data.(eventbus.MotionData)
	assert.InDelta(t, 0.5, data.IntervalMS, 1e-9)
}

func TestRequestFixMaximumAgeUsesCache(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	fixes, cancel := bus.Subscribe(eventbus.EventLocation)
	defer cancel()

	sim := NewLocationSimulator(bus, locationConfig(), lineRoute{})
	require.NoError(t, sim.RequestFix(DefaultPositionOptions()))
	first := waitEvent(t, fixes).Data.(eventbus.LocationData)

	opts := DefaultPositionOptions()
	opts.MaximumAge = time.Minute
	require.NoError(t, sim.RequestFix(opts))
	// El fix en caché se publica de forma síncrona
	require.Len(t, fixes, 1)
	assert.Equal(t, first, (<-fixes).Data.(eventbus.LocationData))
}

func TestWatchAndCancel(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	fixes, cancel := bus.Subscribe(eventbus.EventLocation)
	defer cancel()

	sim := NewLocationSimulator(bus, locationConfig(), lineRoute{})
	stop, err := sim.Watch(DefaultPositionOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, sim.Watchers())

	waitEvent(t, fixes)
	waitEvent(t, fixes)

	stop()
	stop()
	assert.Equal(t, 0, sim.Watchers())
}

func TestUnavailableFeeds(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()

	loc := NewLocationSimulator(bus, config.LocationSensorConfig{}, lineRoute{})
	assert.False(t, loc.Available())
	assert.ErrorIs(t, loc.RequestFix(DefaultPositionOptions()), ErrFeedUnavailable)
	cancel, err := loc.Watch(DefaultPositionOptions())
	assert.ErrorIs(t, err, ErrFeedUnavailable)
	assert.NotPanics(t, cancel)

	motion := NewMotionSimulator(bus, config.MotionSensorConfig{})
	assert.False(t, motion.Available())
	assert.ErrorIs(t, motion.Start(), ErrFeedUnavailable)
	assert.NotPanics(t, motion.Stop)
}

func TestMotionSimulatorJolt(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	samples, cancel := bus.Subscribe(eventbus.EventMotion)
	defer cancel()

	motion := NewMotionSimulator(bus, config.MotionSensorConfig{Enabled: true, Frequency: 100, Noise: 0})
	motion.Jolt(26, time.Minute)
	require.NoError(t, motion.Start())
	defer motion.Stop()

	data := waitEvent(t, samples).Data.(eventbus.MotionData)
	assert.InDelta(t, 26, Magnitude(data), 1e-6)
	require.NotNil(t, data.AccelerationIncludingGravity)
	assert.InDelta(t, *data.Acceleration.Z+Gravity, *data.AccelerationIncludingGravity.Z, 1e-9)
	require.NotNil(t, data.RotationRate)
	assert.Equal(t, 0.0, *data.RotationRate.Alpha)
}
