package kinematics

import (
	"math"
	"testing"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/sensors"
	"github.com/stretchr/testify/assert"
)

func TestClassifySeverityPrecedence(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name  string
		total float64
		jerk  float64
		want  SeverityBand
	}{
		{"high jerk wins over high accel", 30, 25, HighJerk},
		{"high accel without high jerk", 26, 15, HighAccel},
		{"medium jerk wins over medium accel", 16, 12, MediumJerk},
		{"medium accel", 16, 9, MediumAccel},
		{"low jerk wins over low accel", 9, 6, LowJerk},
		{"low accel", 9, 4, LowAccel},
		{"none", 3, 3, None},
		{"thresholds are strict", 8, 5, None},
		{"exactly 20 is medium", 20, 20, MediumJerk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySeverity(tt.total, tt.jerk, th))
		})
	}
}

func TestClassifyUsesMagnitudeAsJerk(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	assert.False(t, e.Available())

	m := e.Classify(sensors.MotionSample{AccelX: 3, AccelY: 4, AccelZ: 12, RotationAlpha: 30})
	assert.InDelta(t, 13.0, m.TotalAcceleration, 1e-9)
	assert.Equal(t, m.TotalAcceleration, m.JerkLevel)
	assert.Equal(t, 30.0, m.RotationAlpha)
	assert.Equal(t, MediumJerk, m.Severity)

	assert.Equal(t, m, e.Latest())
	assert.True(t, e.Available())
	assert.Equal(t, 1, e.Samples())
}

func TestClassifyCarriesShockZ(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	m := e.Classify(sensors.MotionSample{AccelZ: 1, ShockZ: 30})
	assert.Equal(t, 30.0, m.ShockZ)
	// Shock Z no cuenta para la magnitud ni la banda
	assert.InDelta(t, 1.0, m.TotalAcceleration, 1e-9)
	assert.Equal(t, None, m.Severity)
}

func TestClassifyOverwritesLatest(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	e.Classify(sensors.MotionSample{AccelZ: 25})
	e.Classify(sensors.MotionSample{AccelZ: 1})

	assert.Equal(t, None, e.Latest().Severity)
	assert.InDelta(t, 1.0, e.Latest().JerkLevel, 1e-9)

	e.Reset()
	assert.Equal(t, Metrics{}, e.Latest())
	assert.False(t, e.Available())
}

func TestClassifyZeroSample(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	m := e.Classify(sensors.MotionSample{})
	assert.Equal(t, 0.0, m.TotalAcceleration)
	assert.False(t, math.IsNaN(m.JerkLevel))
	assert.Equal(t, None, m.Severity)
}

func TestThresholdsFromConfig(t *testing.T) {
	th := ThresholdsFromConfig(config.Default().Kinematics)
	assert.Equal(t, DefaultThresholds(), th)
}

func TestSeverityBandStrings(t *testing.T) {
	assert.Equal(t, "high_jerk", HighJerk.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "🚨 High Jerk Detected", HighJerk.Message())
	assert.Empty(t, None.Message())
}
