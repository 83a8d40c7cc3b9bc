package eventbus

import "time"

// ========================================
// TIPOS DE EVENTOS
// ========================================

type EventType string

const (
	// Entradas crudas de los feeds
	EventMotion        EventType = "motion"
	EventLocation      EventType = "location"
	EventLocationError EventType = "location_error"

	// Salidas del motor
	EventMetrics   EventType = "metrics"
	EventAlert     EventType = "alert"
	EventSegment   EventType = "segment"
	EventOdometer  EventType = "odometer"
	EventRecording EventType = "recording"
)

// ========================================
// EVENTO GENÉRICO
// ========================================

type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// ========================================
// DATOS DE MOVIMIENTO (devicemotion)
// ========================================

// Vector3 es una aceleración con ejes opcionales (m/s²)
type Vector3 struct {
	X *float64
	Y *float64
	Z *float64
}

// RotationRate es la velocidad angular opcional (grados/segundo)
type RotationRate struct {
	Alpha *float64
	Beta  *float64
	Gamma *float64
}

// MotionData es un evento crudo de movimiento; cualquier campo puede faltar.
// AccelerationIncludingGravity solo se muestra; no entra en la clasificación.
type MotionData struct {
	Acceleration                 *Vector3
	AccelerationIncludingGravity *Vector3
	RotationRate                 *RotationRate
	IntervalMS                   float64
}

// ========================================
// DATOS DE UBICACIÓN (geolocation)
// ========================================

// LocationData es un fix crudo; Speed y Accuracy pueden ser nil
type LocationData struct {
	Latitude  float64
	Longitude float64
	Speed     *float64 // m/s
	Accuracy  *float64 // metros
	// HighAccuracy indica si el fix se pidió con enableHighAccuracy
	HighAccuracy bool
}

// LocationErrorData es el error reportado por el feed de ubicación
type LocationErrorData struct {
	Code    int
	Message string
}

// ========================================
// SALIDAS
// ========================================

// MetricsData es la última clasificación cinemática
type MetricsData struct {
	TotalAcceleration float64
	JerkLevel         float64
	RotationAlpha     float64
	ShockZ            float64
	Severity          string
}

// AlertData es un mensaje de alerta ya filtrado por el debouncer
type AlertData struct {
	Message  string
	Severity string
}

// SegmentData es un segmento nuevo del trayecto
type SegmentData struct {
	Index    int
	Start    [2]float64 // [lon, lat]
	End      [2]float64 // [lon, lat]
	Color    string
	Severity string
	Jerk     float64
}

// OdometerData es el estado del odómetro después de un fix
type OdometerData struct {
	TotalDistanceMeters float64
	DistanceDeltaMeters float64
	SpeedKmh            float64
	Accepted            bool
}

// RecordingData notifica inicio/fin de grabación
type RecordingData struct {
	State     string // "recording" | "idle"
	SessionID string
	Events    int
	File      string
	Export    []byte
}
