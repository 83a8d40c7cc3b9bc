package mqtt

import (
	"encoding/json"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
)

// Payloads JSON compartidos por MQTT, RabbitMQ y el stream.
// timestamp siempre va en epoch ms, igual que la exportación de sesiones.

// AlertPayload arma el mensaje de una alerta
func AlertPayload(deviceID string, ts time.Time, data eventbus.AlertData) map[string]interface{} {
	return map[string]interface{}{
		"device_id": deviceID,
		"timestamp": ts.UnixMilli(),
		"message":   data.Message,
		"severity":  data.Severity,
	}
}

// SegmentPayload arma el mensaje de un tramo nuevo
func SegmentPayload(deviceID string, ts time.Time, data eventbus.SegmentData) map[string]interface{} {
	return map[string]interface{}{
		"device_id": deviceID,
		"timestamp": ts.UnixMilli(),
		"index":     data.Index,
		"coords":    [][2]float64{data.Start, data.End},
		"color":     data.Color,
		"severity":  data.Severity,
		"jerk":      data.Jerk,
	}
}

// OdometerPayload arma el mensaje del odómetro
func OdometerPayload(deviceID string, ts time.Time, data eventbus.OdometerData) map[string]interface{} {
	return map[string]interface{}{
		"device_id":        deviceID,
		"timestamp":        ts.UnixMilli(),
		"total_distance_m": data.TotalDistanceMeters,
		"delta_m":          data.DistanceDeltaMeters,
		"speed_kmh":        data.SpeedKmh,
		"accepted":         data.Accepted,
	}
}

// StatusPayload arma el mensaje de conexión (online/offline)
func StatusPayload(deviceID string, ts time.Time, status string) map[string]interface{} {
	return map[string]interface{}{
		"device_id": deviceID,
		"timestamp": ts.UnixMilli(),
		"status":    status,
	}
}

// SessionPayload envuelve la exportación de una sesión terminada
func SessionPayload(deviceID string, ts time.Time, data eventbus.RecordingData) map[string]interface{} {
	events := json.RawMessage(data.Export)
	if len(events) == 0 {
		events = json.RawMessage("[]")
	}
	return map[string]interface{}{
		"device_id":   deviceID,
		"timestamp":   ts.UnixMilli(),
		"sensor_type": "PATH_SESSION",
		"session_id":  data.SessionID,
		"count":       data.Events,
		"events":      events,
	}
}
