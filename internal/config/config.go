package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la estructura principal de configuración
type Config struct {
	DeviceID   string           `yaml:"device_id"`
	Simulation SimulationConfig `yaml:"simulation"`
	Sensors    SensorsConfig    `yaml:"sensors"`
	Kinematics KinematicsConfig `yaml:"kinematics"`
	Geo        GeoConfig        `yaml:"geo"`
	Trigger    TriggerConfig    `yaml:"trigger"`
	Location   LocationConfig   `yaml:"location"`
	Recorder   RecorderConfig   `yaml:"recorder"`
	Server     ServerConfig     `yaml:"server"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	UI         UIConfig         `yaml:"ui"`
}

type SimulationConfig struct {
	InitialScenario string `yaml:"initial_scenario"`
	ScenarioDir     string `yaml:"scenario_dir"`
	AutoLoop        bool   `yaml:"auto_loop"`
}

type SensorsConfig struct {
	Motion   MotionSensorConfig   `yaml:"motion"`
	Location LocationSensorConfig `yaml:"location"`
}

// MotionSensorConfig configura el feed simulado de devicemotion
type MotionSensorConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"` // Hz
	Noise     float64 `yaml:"noise"`     // m/s² pico a pico
}

// LocationSensorConfig configura el feed simulado de geolocalización
type LocationSensorConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Frequency       float64  `yaml:"frequency"`  // Hz en modo watch
	LatencyMS       int      `yaml:"latency_ms"` // Latencia de un fix single-shot
	InitialPosition Position `yaml:"initial_position"`
}

type Position struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// KinematicsConfig umbrales de clasificación (m/s²)
type KinematicsConfig struct {
	HighJerk    float64 `yaml:"high_jerk"`
	HighAccel   float64 `yaml:"high_accel"`
	MediumJerk  float64 `yaml:"medium_jerk"`
	MediumAccel float64 `yaml:"medium_accel"`
	LowJerk     float64 `yaml:"low_jerk"`
	LowAccel    float64 `yaml:"low_accel"`
}

// GeoConfig filtro de ruido del odómetro
type GeoConfig struct {
	MinDistanceMeters float64 `yaml:"min_distance_meters"`
	FilterPosition    bool    `yaml:"filter_position"`
}

// TriggerConfig puerta de muestreo GPS
type TriggerConfig struct {
	JerkThreshold float64 `yaml:"jerk_threshold"`
	PeriodMS      int     `yaml:"period_ms"`
}

// Period retorna el periodo como time.Duration
func (t TriggerConfig) Period() time.Duration {
	return time.Duration(t.PeriodMS) * time.Millisecond
}

// LocationConfig opciones de petición al feed de ubicación
type LocationConfig struct {
	Mode               string `yaml:"mode"` // "triggered" | "watch"
	EnableHighAccuracy bool   `yaml:"enable_high_accuracy"`
	MaximumAgeMS       int    `yaml:"maximum_age_ms"`
	TimeoutMS          int    `yaml:"timeout_ms"`
}

const (
	LocationModeTriggered = "triggered"
	LocationModeWatch     = "watch"
)

// MaxSensorFrequency es el tope de los simuladores (Hz)
const MaxSensorFrequency = 1000.0

// RecorderConfig destino de las exportaciones
type RecorderConfig struct {
	ExportDir string `yaml:"export_dir"`
}

// ServerConfig API para la superficie de mapa
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// MQTTConfig configuración MQTT
type MQTTConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Broker   string           `yaml:"broker"`
	ClientID string           `yaml:"client_id"`
	Username string           `yaml:"username"`
	Password string           `yaml:"password"`
	QoS      byte             `yaml:"qos"`
	Retain   bool             `yaml:"retain"`
	Topics   MQTTTopicsConfig `yaml:"topics"`
}

// MQTTTopicsConfig topics MQTT
type MQTTTopicsConfig struct {
	Alerts   string `yaml:"alerts"`
	Segments string `yaml:"segments"`
	Odometer string `yaml:"odometer"`
	Status   string `yaml:"status"`
}

// RabbitMQConfig configuración de RabbitMQ
type RabbitMQConfig struct {
	Enabled      bool                `yaml:"enabled"`
	Host         string              `yaml:"host"`
	Port         int                 `yaml:"port"`
	Username     string              `yaml:"username"`
	Password     string              `yaml:"password"`
	VHost        string              `yaml:"vhost"`
	Exchange     string              `yaml:"exchange"`
	ExchangeType string              `yaml:"exchange_type"`
	RoutingKeys  RabbitMQRoutingKeys `yaml:"routing_keys"`
}

// URL arma la URL amqp://
func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", r.Username, r.Password, r.Host, r.Port, r.VHost)
}

// RabbitMQRoutingKeys routing keys (topics) para RabbitMQ
type RabbitMQRoutingKeys struct {
	Segment string `yaml:"segment"`
	Session string `yaml:"session"`
}

type UIConfig struct {
	Enabled bool         `yaml:"enabled"`
	Window  WindowConfig `yaml:"window"`
	// ToastMS es el tiempo de auto-cierre de las alertas
	ToastMS int `yaml:"toast_ms"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// LoadConfig carga la configuración desde un archivo YAML.
// Los campos ausentes conservan los valores de Default().
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error leyendo config: %w", err)
	}
	return Parse(data)
}

// Parse interpreta YAML sobre los valores por defecto
func Parse(data []byte) (*Config, error) {
	config := defaults()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parseando YAML: %w", err)
	}

	// Reemplazar {device_id} en strings
	replaceDeviceIDPlaceholders(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config inválida: %w", err)
	}
	return config, nil
}

// deviceFields son los strings que llevan el device_id
func deviceFields(config *Config) []*string {
	return []*string{
		&config.UI.Window.Title,
		&config.MQTT.ClientID,
		&config.MQTT.Topics.Alerts,
		&config.MQTT.Topics.Segments,
		&config.MQTT.Topics.Odometer,
		&config.MQTT.Topics.Status,
		&config.RabbitMQ.RoutingKeys.Segment,
		&config.RabbitMQ.RoutingKeys.Session,
	}
}

// replaceDeviceIDPlaceholders reemplaza {device_id} en topics, routing keys y título
func replaceDeviceIDPlaceholders(config *Config) {
	id := config.DeviceID
	for _, f := range deviceFields(config) {
		*f = strings.ReplaceAll(*f, "{{device_id}}", id)
		*f = strings.ReplaceAll(*f, "{device_id}", id)
	}
}

// ForDevice retorna una copia para otra instancia, con el device_id
// cambiado en topics, routing keys y título.
func (c *Config) ForDevice(id string) *Config {
	clone := *c
	if id == "" || id == c.DeviceID {
		return &clone
	}
	for _, f := range deviceFields(&clone) {
		*f = strings.ReplaceAll(*f, c.DeviceID, id)
	}
	clone.DeviceID = id
	return &clone
}

// Validate revisa rangos básicos
func (c *Config) Validate() error {
	var errs []error

	if c.DeviceID == "" {
		errs = append(errs, errors.New("device_id vacío"))
	}
	if c.Trigger.PeriodMS <= 0 {
		errs = append(errs, fmt.Errorf("trigger.period_ms debe ser > 0 (actual %d)", c.Trigger.PeriodMS))
	}
	if c.Trigger.JerkThreshold <= 0 {
		errs = append(errs, fmt.Errorf("trigger.jerk_threshold debe ser > 0 (actual %g)", c.Trigger.JerkThreshold))
	}
	if c.Geo.MinDistanceMeters < 0 {
		errs = append(errs, fmt.Errorf("geo.min_distance_meters no puede ser negativo"))
	}
	if c.Location.TimeoutMS < 0 || c.Location.MaximumAgeMS < 0 {
		errs = append(errs, fmt.Errorf("location: timeout_ms y maximum_age_ms no pueden ser negativos"))
	}
	switch c.Location.Mode {
	case LocationModeTriggered, LocationModeWatch:
	default:
		errs = append(errs, fmt.Errorf("location.mode '%s' no válido", c.Location.Mode))
	}
	for name, sensor := range map[string]struct {
		enabled bool
		hz      float64
	}{
		"motion":   {c.Sensors.Motion.Enabled, c.Sensors.Motion.Frequency},
		"location": {c.Sensors.Location.Enabled, c.Sensors.Location.Frequency},
	} {
		if sensor.enabled && (sensor.hz <= 0 || sensor.hz > MaxSensorFrequency) {
			errs = append(errs, fmt.Errorf("sensors.%s.frequency debe estar en (0, %.0f] (actual %g)", name, MaxSensorFrequency, sensor.hz))
		}
	}
	k := c.Kinematics
	for name, v := range map[string]float64{
		"high_jerk": k.HighJerk, "high_accel": k.HighAccel,
		"medium_jerk": k.MediumJerk, "medium_accel": k.MediumAccel,
		"low_jerk": k.LowJerk, "low_accel": k.LowAccel,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("kinematics.%s no puede ser negativo", name))
		}
	}

	return errors.Join(errs...)
}

// Default devuelve una configuración por defecto si no se puede cargar el archivo
func Default() *Config {
	config := defaults()
	replaceDeviceIDPlaceholders(config)
	return config
}

// defaults conserva los placeholders {device_id} sin reemplazar
func defaults() *Config {
	return &Config{
		DeviceID: "PATHSYNQ-DEFAULT",
		Simulation: SimulationConfig{
			InitialScenario: "recorrido_urbano",
			ScenarioDir:     "scenarios",
			AutoLoop:        true,
		},
		Sensors: SensorsConfig{
			Motion: MotionSensorConfig{
				Enabled:   true,
				Frequency: 20.0,
				Noise:     0.6,
			},
			Location: LocationSensorConfig{
				Enabled:   true,
				Frequency: 1.0,
				LatencyMS: 150,
				InitialPosition: Position{
					// Delhi, centro inicial del mapa
					Latitude:  28.6139,
					Longitude: 77.209,
				},
			},
		},
		Kinematics: KinematicsConfig{
			HighJerk:    20,
			HighAccel:   25,
			MediumJerk:  10,
			MediumAccel: 15,
			LowJerk:     5,
			LowAccel:    8,
		},
		Geo: GeoConfig{
			MinDistanceMeters: 5,
			FilterPosition:    false,
		},
		Trigger: TriggerConfig{
			JerkThreshold: 2.5,
			PeriodMS:      1000,
		},
		Location: LocationConfig{
			Mode:               LocationModeTriggered,
			EnableHighAccuracy: true,
			MaximumAgeMS:       0,
			TimeoutMS:          5000,
		},
		Recorder: RecorderConfig{
			ExportDir: "exports",
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		MQTT: MQTTConfig{
			Enabled:  false,
			Broker:   "tcp://localhost:1883",
			ClientID: "pathsynq-{device_id}",
			QoS:      1,
			Retain:   false,
			Topics: MQTTTopicsConfig{
				Alerts:   "vehicle/{device_id}/alerts",
				Segments: "vehicle/{device_id}/segments",
				Odometer: "vehicle/{device_id}/odometer",
				Status:   "vehicle/{device_id}/status",
			},
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5672,
			Username:     "guest",
			Password:     "guest",
			VHost:        "/",
			Exchange:     "amq.topic",
			ExchangeType: "topic",
			RoutingKeys: RabbitMQRoutingKeys{
				Segment: "vehicle.{device_id}.segment",
				Session: "vehicle.{device_id}.session",
			},
		},
		UI: UIConfig{
			Enabled: true,
			Window: WindowConfig{
				Width:  1280,
				Height: 720,
				Title:  "Pathsynq - {{device_id}}",
			},
			ToastMS: 1500,
		},
	}
}
