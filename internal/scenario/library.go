package scenario

import "sort"

// builtins son los escenarios predefinidos, por ID
var builtins = map[string]func() *Scenario{
	"recorrido_urbano": GetRecorridoUrbano,
	"frenado_brusco":   GetFrenadoBrusco,
	"perdida_gps":      GetPerdidaGPS,
}

// Builtin retorna un escenario predefinido por ID
func Builtin(id string) (*Scenario, bool) {
	f, ok := builtins[id]
	if !ok {
		return nil, false
	}
	return f(), true
}

// BuiltinIDs retorna los IDs predefinidos ordenados
func BuiltinIDs() []string {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetRecorridoUrbano: circulación normal con un bache y una curva, grabada
func GetRecorridoUrbano() *Scenario {
	return &Scenario{
		Name:        "Recorrido Urbano",
		Description: "Circulación por el centro con baches leves y una sesión grabada",
		Duration:    90,
		Steps: []ScenarioStep{
			{Time: 0, Action: ActionLog, Value: "🚗 Inicio del recorrido"},
			{Time: 0, Action: ActionStartRecording},
			{Time: 0, Action: ActionSetSpeed, Value: 25.0},

			{Time: 8, Action: ActionSetSpeed, Value: 40.0},
			{Time: 12, Action: ActionJolt, Value: 4.0, Duration: 1.5},

			// Bache leve
			{Time: 20, Action: ActionLog, Value: "🕳️ Bache"},
			{Time: 20, Action: ActionJolt, Value: 7.0, Duration: 0.4},

			// Curva a la derecha
			{Time: 30, Action: ActionTurn, Value: 25.0},
			{Time: 30, Action: ActionSetSpeed, Value: 20.0},
			{Time: 34, Action: ActionTurn, Value: 0.0},
			{Time: 34, Action: ActionSetSpeed, Value: 40.0},

			// Bache serio
			{Time: 45, Action: ActionLog, Value: "🕳️ Bache profundo"},
			{Time: 45, Action: ActionJolt, Value: 13.0, Duration: 0.5},

			{Time: 60, Action: ActionJolt, Value: 3.5, Duration: 2.0},
			{Time: 75, Action: ActionSetSpeed, Value: 15.0},

			{Time: 85, Action: ActionStopRecording},
			{Time: 85, Action: ActionLog, Value: "✅ Recorrido completado"},
		},
	}
}

// GetFrenadoBrusco: aceleración fuerte y frenazo de emergencia
func GetFrenadoBrusco() *Scenario {
	return &Scenario{
		Name:        "Frenado Brusco",
		Description: "Arranque fuerte, frenazo de emergencia y reanudación",
		Duration:    45,
		Steps: []ScenarioStep{
			{Time: 0, Action: ActionLog, Value: "🚀 Arranque fuerte"},
			{Time: 0, Action: ActionStartRecording},
			{Time: 0, Action: ActionSetSpeed, Value: 20.0},
			{Time: 1, Action: ActionJolt, Value: 16.0, Duration: 1.0},
			{Time: 3, Action: ActionSetSpeed, Value: 50.0},

			{Time: 15, Action: ActionLog, Value: "🛑 Frenazo de emergencia"},
			{Time: 15, Action: ActionJolt, Value: 26.0, Duration: 0.8},
			{Time: 16, Action: ActionSetSpeed, Value: 5.0},
			{Time: 17, Action: ActionJolt, Value: 22.0, Duration: 0.5},
			{Time: 19, Action: ActionSetSpeed, Value: 0.0},

			{Time: 25, Action: ActionLog, Value: "▶️ Reanudando"},
			{Time: 25, Action: ActionSetSpeed, Value: 20.0},
			{Time: 26, Action: ActionJolt, Value: 9.0, Duration: 1.0},
			{Time: 30, Action: ActionSetSpeed, Value: 35.0},

			{Time: 40, Action: ActionStopRecording},
		},
	}
}

// GetPerdidaGPS: túnel con pérdida de señal y restablecimiento
func GetPerdidaGPS() *Scenario {
	return &Scenario{
		Name:        "Pérdida de GPS",
		Description: "El vehículo entra a un túnel, pierde señal y la recupera",
		Duration:    60,
		Steps: []ScenarioStep{
			{Time: 0, Action: ActionSetSpeed, Value: 40.0},
			{Time: 2, Action: ActionJolt, Value: 4.0, Duration: 8.0},

			{Time: 10, Action: ActionLog, Value: "🚇 Entrando al túnel"},
			{Time: 10, Action: ActionGPSLoss},
			{Time: 12, Action: ActionJolt, Value: 6.0, Duration: 10.0},

			{Time: 30, Action: ActionLog, Value: "☀️ Saliendo del túnel"},
			{Time: 30, Action: ActionGPSRestore},
			{Time: 32, Action: ActionJolt, Value: 4.0, Duration: 15.0},

			{Time: 55, Action: ActionLog, Value: "✅ Escenario completado"},
		},
	}
}
