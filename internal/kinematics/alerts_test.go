package kinematics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerSuppressesRepeats(t *testing.T) {
	d := NewAlertDebouncer()
	high := Metrics{Severity: HighJerk, JerkLevel: 25, TotalAcceleration: 25}

	alert, ok := d.Evaluate(high)
	require.True(t, ok)
	assert.Equal(t, "🚨 High Jerk Detected", alert.Message)
	assert.Equal(t, HighJerk, alert.Severity)

	for i := 0; i < 2; i++ {
		_, ok = d.Evaluate(high)
		assert.False(t, ok)
	}
}

func TestDebouncerNoneKeepsSlot(t *testing.T) {
	d := NewAlertDebouncer()

	_, ok := d.Evaluate(Metrics{Severity: LowAccel})
	require.True(t, ok)

	_, ok = d.Evaluate(Metrics{Severity: None})
	assert.False(t, ok)
	assert.Equal(t, "🔋 Low Acceleration", d.Last())

	// Volver a la misma banda tras None no vuelve a alertar
	_, ok = d.Evaluate(Metrics{Severity: LowAccel})
	assert.False(t, ok)
}

func TestDebouncerEmitsOnChange(t *testing.T) {
	d := NewAlertDebouncer()
	var got []SeverityBand
	for _, s := range []SeverityBand{LowJerk, MediumJerk, MediumJerk, LowJerk, None, HighAccel} {
		if a, ok := d.Evaluate(Metrics{Severity: s}); ok {
			got = append(got, a.Severity)
		}
	}
	assert.Equal(t, []SeverityBand{LowJerk, MediumJerk, LowJerk, HighAccel}, got)

	d.Reset()
	_, ok := d.Evaluate(Metrics{Severity: HighAccel})
	assert.True(t, ok)
}
