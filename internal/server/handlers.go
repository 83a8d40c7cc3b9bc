package server

import (
	"errors"

	"github.com/MarcosBrindi/pathsynq/internal/engine"
	"github.com/MarcosBrindi/pathsynq/internal/geo"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type metricsView struct {
	TotalAcceleration float64 `json:"total_acceleration"`
	JerkLevel         float64 `json:"jerk"`
	RotationAlpha     float64 `json:"rotation_alpha"`
	ShockZ            float64 `json:"shock_z"`
	Severity          string  `json:"severity"`
}

type odometerView struct {
	TotalDistanceMeters float64 `json:"total_distance_m"`
	SpeedKmh            float64 `json:"speed_kmh"`
	Distance            string  `json:"distance"`
	Speed               string  `json:"speed"`
	Accepted            int     `json:"accepted"`
	Rejected            int     `json:"rejected"`
}

type recordingView struct {
	State     string `json:"state"`
	SessionID string `json:"session_id,omitempty"`
	Events    int    `json:"events"`
}

type locationView struct {
	Mode      string `json:"mode"`
	Available bool   `json:"available"`
	Requests  int    `json:"requests"`
	Errors    int    `json:"errors"`
	LastError string `json:"last_error,omitempty"`
}

type stateResponse struct {
	Running         bool          `json:"running"`
	MotionAvailable bool          `json:"motion_available"`
	Metrics         metricsView   `json:"metrics"`
	Odometer        odometerView  `json:"odometer"`
	Recording       recordingView `json:"recording"`
	Location        locationView  `json:"location"`
	Segments        int           `json:"segments"`
	TriggerArmed    bool          `json:"trigger_armed"`
	TriggerChecks   int           `json:"trigger_checks"`
}

func newStateResponse(s engine.Snapshot) stateResponse {
	return stateResponse{
		Running:         s.Running,
		MotionAvailable: s.MotionAvailable,
		Metrics: metricsView{
			TotalAcceleration: s.Metrics.TotalAcceleration,
			JerkLevel:         s.Metrics.JerkLevel,
			RotationAlpha:     s.Metrics.RotationAlpha,
			ShockZ:            s.Metrics.ShockZ,
			Severity:          s.Metrics.Severity.String(),
		},
		Odometer: odometerView{
			TotalDistanceMeters: s.Odometer.TotalDistanceMeters,
			SpeedKmh:            s.Odometer.LastSpeedKmh,
			Distance:            geo.FormatDistance(s.Odometer.TotalDistanceMeters),
			Speed:               geo.FormatSpeed(s.Odometer.LastSpeedKmh),
			Accepted:            s.Odometer.Accepted,
			Rejected:            s.Odometer.Rejected,
		},
		Recording: recordingView{
			State:     s.Recording.String(),
			SessionID: s.SessionID,
			Events:    s.RecordedEvents,
		},
		Location: locationView{
			Mode:      s.LocationMode,
			Available: s.LocationAvailable,
			Requests:  s.LocationRequests,
			Errors:    s.LocationErrors,
			LastError: s.LastLocationError,
		},
		Segments:      s.Segments,
		TriggerArmed:  s.TriggerArmed,
		TriggerChecks: s.TriggerChecks,
	}
}

// RegisterAPIRoutes monta el estado, el trayecto y el control de grabación
func RegisterAPIRoutes(r fiber.Router, api API) {
	r.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(newStateResponse(api.Snapshot()))
	})

	r.Get("/path", func(c *fiber.Ctx) error {
		data, err := api.FeatureCollection().MarshalJSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	})

	r.Post("/recording/start", func(c *fiber.Ctx) error {
		id, started := api.StartRecording()
		status := fiber.StatusOK
		if started {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(fiber.Map{
			"state":      recorder.Recording.String(),
			"session_id": id,
		})
	})

	r.Post("/recording/stop", func(c *fiber.Ctx) error {
		exp, err := api.StopRecording()
		if errors.Is(err, recorder.ErrNotRecording) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		data := exp.Data
		if len(data) == 0 {
			data = []byte("[]")
		}
		// La sesión ya se cerró; el archivo es lo único que falló
		if err != nil {
			c.Set("X-Export-Error", err.Error())
		}
		if exp.SessionID != "" {
			c.Set("X-Session-ID", exp.SessionID)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	})
}

// RegisterStreamRoutes monta el WebSocket. ?types=segment,alert filtra los mensajes.
func RegisterStreamRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		client := hub.Register(ParseTypes(c.Query("types")))
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}))
}
