package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario es un guion que mueve los feeds simulados
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Duration    int            `yaml:"duration"` // Duración total en segundos
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep es un paso del escenario
type ScenarioStep struct {
	Time     float64     `yaml:"time"`     // Segundos desde el inicio
	Action   string      `yaml:"action"`   // Tipo de acción
	Value    interface{} `yaml:"value"`    // Valor de la acción
	Duration float64     `yaml:"duration"` // Segundos, solo para jolt
}

// Acciones posibles
const (
	ActionSetSpeed       = "set_speed"       // Velocidad en km/h
	ActionJolt           = "jolt"            // Golpe en m/s² (bache, frenazo)
	ActionTurn           = "turn"            // Velocidad de giro en °/s
	ActionGPSLoss        = "gps_loss"        // Las peticiones terminan en timeout
	ActionGPSRestore     = "gps_restore"     // Señal y permiso restablecidos
	ActionGPSDeny        = "gps_deny"        // Permiso de ubicación negado
	ActionStartRecording = "start_recording" // Inicia una sesión
	ActionStopRecording  = "stop_recording"  // Cierra y exporta la sesión
	ActionWait           = "wait"            // Esperar N segundos
	ActionLog            = "log"             // Imprimir mensaje
)

var validActions = map[string]bool{
	ActionSetSpeed:       true,
	ActionJolt:           true,
	ActionTurn:           true,
	ActionGPSLoss:        true,
	ActionGPSRestore:     true,
	ActionGPSDeny:        true,
	ActionStartRecording: true,
	ActionStopRecording:  true,
	ActionWait:           true,
	ActionLog:            true,
}

// DefaultJoltDuration se usa cuando un jolt no trae duración
const DefaultJoltDuration = 300 * time.Millisecond

// LoadScenario carga un escenario desde un archivo YAML
func LoadScenario(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error leyendo escenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario interpreta y valida un escenario YAML
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("error parseando YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("escenario inválido: %w", err)
	}
	return &scenario, nil
}

// Validate valida que el escenario sea correcto
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("el escenario debe tener un nombre")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("el escenario debe tener al menos un paso")
	}

	lastTime := -1.0
	for i, step := range s.Steps {
		if step.Time < 0 {
			return fmt.Errorf("paso %d: el tiempo no puede ser negativo", i)
		}
		if step.Time < lastTime {
			return fmt.Errorf("paso %d: los pasos deben estar ordenados por tiempo", i)
		}
		lastTime = step.Time

		if !validActions[step.Action] {
			return fmt.Errorf("paso %d: acción '%s' no válida", i, step.Action)
		}

		switch step.Action {
		case ActionSetSpeed, ActionJolt, ActionTurn, ActionWait:
			if _, ok := floatValue(step.Value); !ok {
				return fmt.Errorf("paso %d: %s requiere un valor numérico", i, step.Action)
			}
		}
	}
	return nil
}

// GetDuration retorna la duración total del escenario
func (s *Scenario) GetDuration() time.Duration {
	if s.Duration > 0 {
		return time.Duration(s.Duration) * time.Second
	}

	// Sin duración explícita: último paso + 5 segundos
	if len(s.Steps) > 0 {
		lastTime := s.Steps[len(s.Steps)-1].Time
		return time.Duration((lastTime + 5) * float64(time.Second))
	}
	return 60 * time.Second
}

// String implementa fmt.Stringer
func (s *Scenario) String() string {
	return fmt.Sprintf("Escenario: %s (%d pasos, %.0fs)", s.Name, len(s.Steps), s.GetDuration().Seconds())
}

// floatValue convierte los números que entrega yaml.v3
func floatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
