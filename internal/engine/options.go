package engine

import (
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/geo"
	"github.com/MarcosBrindi/pathsynq/internal/kinematics"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
	"github.com/MarcosBrindi/pathsynq/internal/sensors"
	"github.com/MarcosBrindi/pathsynq/internal/timeutil"
	"github.com/MarcosBrindi/pathsynq/internal/trigger"
)

// Options agrupa la configuración de los componentes del motor
type Options struct {
	Thresholds       kinematics.Thresholds
	Geo              geo.Options
	TriggerThreshold float64
	TriggerPeriod    time.Duration
	LocationMode     string
	Position         sensors.PositionOptions
	Exporter         recorder.Exporter
	Clock            timeutil.Clock
}

// DefaultOptions retorna opciones con los valores por defecto
func DefaultOptions() Options {
	return Options{
		Thresholds:       kinematics.DefaultThresholds(),
		Geo:              geo.Options{MinDistanceMeters: geo.DefaultMinDistanceMeters},
		TriggerThreshold: trigger.DefaultJerkThreshold,
		TriggerPeriod:    trigger.DefaultPeriod,
		LocationMode:     config.LocationModeTriggered,
		Position:         sensors.DefaultPositionOptions(),
		Clock:            timeutil.RealClock{},
	}
}

// OptionsFromConfig arma las opciones desde el YAML
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Thresholds: kinematics.ThresholdsFromConfig(cfg.Kinematics),
		Geo: geo.Options{
			MinDistanceMeters: cfg.Geo.MinDistanceMeters,
			FilterPosition:    cfg.Geo.FilterPosition,
		},
		TriggerThreshold: cfg.Trigger.JerkThreshold,
		TriggerPeriod:    cfg.Trigger.Period(),
		LocationMode:     cfg.Location.Mode,
		Position: sensors.PositionOptions{
			EnableHighAccuracy: cfg.Location.EnableHighAccuracy,
			MaximumAge:         time.Duration(cfg.Location.MaximumAgeMS) * time.Millisecond,
			Timeout:            time.Duration(cfg.Location.TimeoutMS) * time.Millisecond,
		},
		Exporter: recorder.FileExporter{Dir: cfg.Recorder.ExportDir},
		Clock:    timeutil.RealClock{},
	}
}
