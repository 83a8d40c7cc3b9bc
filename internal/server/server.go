package server

import (
	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/engine"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/recorder"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/paulmach/orb/geojson"
)

// API es lo que la superficie de mapa necesita del motor
type API interface {
	Snapshot() engine.Snapshot
	FeatureCollection() *geojson.FeatureCollection
	StartRecording() (string, bool)
	StopRecording() (recorder.Export, error)
}

type Server struct {
	App    *fiber.App
	Cfg    config.ServerConfig
	Engine API
	Stream *Hub
}

func NewServer(cfg config.ServerConfig, api API, hub *Hub) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		Engine: api,
		Stream: hub,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	RegisterAPIRoutes(s.App.Group("/api"), s.Engine)
	if s.Stream != nil {
		RegisterStreamRoutes(s.App.Group("/stream"), s.Stream)
	}
}

// Listen bloquea sirviendo en cfg.Addr
func (s *Server) Listen() error {
	monitoring.Logf("🌐 [Server] Escuchando en %s", s.Cfg.Addr)
	return s.App.Listen(s.Cfg.Addr)
}

// Shutdown cierra el servidor y las conexiones abiertas
func (s *Server) Shutdown() error {
	monitoring.Logf("🛑 [Server] Detenido")
	return s.App.Shutdown()
}
