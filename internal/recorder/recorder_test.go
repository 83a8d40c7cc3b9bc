package recorder

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/path"
	"github.com/MarcosBrindi/pathsynq/internal/timeutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.UnixMilli(1699999999999)

var points = []orb.Point{
	{77.209, 28.6139},
	{77.21, 28.6139},
	{77.211, 28.6139},
}

func segment(i int, color string) path.Segment {
	return path.Segment{Index: i, Start: points[i], End: points[i+1], Color: color}
}

type failingExporter struct{}

func (failingExporter) Export(string, []byte) (string, error) {
	return "", errors.New("disco lleno")
}

func TestStartStopSessionExportsInOrder(t *testing.T) {
	clock := timeutil.NewMockClock(t0)
	r := New(clock, nil)
	assert.Equal(t, Idle, r.State())

	id, started := r.Start()
	require.True(t, started)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, Recording, r.State())

	require.True(t, r.Capture(segment(0, path.ColorRed), 23.41))
	clock.Advance(time.Second)
	require.True(t, r.Capture(segment(1, path.ColorGreen), 1.5))

	exp, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, id, exp.SessionID)
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, 0, r.Len(), "buffer must be empty right after export")

	want := []RecordedEvent{
		{Coords: [2][2]float64{{77.209, 28.6139}, {77.21, 28.6139}}, Color: path.ColorRed, Jerk: 23.41, Timestamp: 1699999999999},
		{Coords: [2][2]float64{{77.21, 28.6139}, {77.211, 28.6139}}, Color: path.ColorGreen, Jerk: 1.5, Timestamp: 1700000000999},
	}
	if diff := cmp.Diff(want, exp.Events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(exp.Data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "#ff0000", decoded[0]["color"])
	assert.Contains(t, decoded[0], "coords")
	assert.Contains(t, decoded[0], "timestamp")
}

func TestEmptySessionExportsEmptyArray(t *testing.T) {
	r := New(timeutil.NewMockClock(t0), nil)
	r.Start()
	exp, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(exp.Data))
	assert.Empty(t, exp.Events)
}

func TestReentrantCallsAreNoOps(t *testing.T) {
	r := New(timeutil.NewMockClock(t0), nil)

	_, err := r.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.Equal(t, Idle, r.State())

	id, started := r.Start()
	require.True(t, started)
	r.Capture(segment(0, path.ColorGreen), 0)

	again, started := r.Start()
	assert.False(t, started)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, r.Len(), "second start must not clear the buffer")
}

func TestCaptureIgnoredWhenIdle(t *testing.T) {
	r := New(timeutil.NewMockClock(t0), nil)
	assert.False(t, r.Capture(segment(0, path.ColorGreen), 0))
	assert.Equal(t, 0, r.Len())
}

func TestNewSessionStartsWithEmptyBuffer(t *testing.T) {
	r := New(timeutil.NewMockClock(t0), nil)
	r.Start()
	r.Capture(segment(0, path.ColorGreen), 0)
	_, err := r.Stop()
	require.NoError(t, err)

	first, _ := r.Start()
	second, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, first, second.SessionID)
	assert.Empty(t, second.Events)
}

func TestFileExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	r := New(timeutil.NewMockClock(t0), FileExporter{Dir: dir})
	id, _ := r.Start()
	r.Capture(segment(0, path.ColorOrange), 12)

	exp, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session-"+id+".json"), exp.File)

	data, err := os.ReadFile(exp.File)
	require.NoError(t, err)
	assert.JSONEq(t, string(exp.Data), string(data))
}

func TestExportFailureStillClearsBuffer(t *testing.T) {
	r := New(timeutil.NewMockClock(t0), failingExporter{})
	r.Start()
	r.Capture(segment(0, path.ColorGreen), 0)

	exp, err := r.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disco lleno")
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, 0, r.Len())
	assert.NotEmpty(t, exp.Data)
}
