package simulator

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/engine"
	"github.com/MarcosBrindi/pathsynq/internal/eventbus"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/mqtt"
	"github.com/MarcosBrindi/pathsynq/internal/scenario"
	"github.com/MarcosBrindi/pathsynq/internal/sensors"
	"github.com/MarcosBrindi/pathsynq/internal/server"
	"github.com/paulmach/orb"
)

// VehicleOptions ajusta cómo se arma un vehículo
type VehicleOptions struct {
	// Scenario es el guion a ejecutar; nil deja los feeds quietos
	Scenario *scenario.Scenario
	// Channel es el canal AMQP propio del vehículo; nil desactiva RabbitMQ
	Channel mqtt.Channel
	// Server expone la API de mapa si cfg.Server.Enabled
	Server bool
}

// Vehicle es una instancia completa: feeds simulados, motor y salidas
type Vehicle struct {
	ID       string
	Config   *config.Config
	Bus      *eventbus.EventBus
	Route    *scenario.Route
	Motion   *sensors.MotionSimulator
	Location *sensors.LocationSimulator
	Engine   *engine.Engine
	Executor *scenario.Executor
	MQTT     *mqtt.Publisher
	Rabbit   *mqtt.RabbitMQPublisher
	Hub      *server.Hub
	Server   *server.Server

	mu       sync.Mutex
	started  bool
	serveErr chan error
}

// NewVehicle arma un vehículo a partir de la configuración
func NewVehicle(cfg *config.Config, opts VehicleOptions) *Vehicle {
	bus := eventbus.NewEventBus()

	origin := orb.Point{cfg.Sensors.Location.InitialPosition.Longitude, cfg.Sensors.Location.InitialPosition.Latitude}
	route := scenario.NewDefaultRoute(origin)

	motion := sensors.NewMotionSimulator(bus, cfg.Sensors.Motion)
	location := sensors.NewLocationSimulator(bus, cfg.Sensors.Location, route)
	eng := engine.New(bus, motion, location, engine.OptionsFromConfig(cfg))

	v := &Vehicle{
		ID:       cfg.DeviceID,
		Config:   cfg,
		Bus:      bus,
		Route:    route,
		Motion:   motion,
		Location: location,
		Engine:   eng,
		MQTT:     mqtt.NewPublisher(cfg.MQTT, cfg.DeviceID, bus),
	}

	if opts.Scenario != nil {
		v.Executor = scenario.NewExecutor(opts.Scenario, scenario.Controllers{
			Speed:     scenario.SpeedControllers{location, motion},
			Motion:    motion,
			Signal:    location,
			Recording: eng,
		}, cfg.Simulation.AutoLoop)
	}
	if opts.Channel != nil {
		v.Rabbit = mqtt.NewRabbitMQPublisher(opts.Channel, cfg.RabbitMQ, cfg.DeviceID, bus)
	}
	if opts.Server && cfg.Server.Enabled {
		v.Hub = server.NewHub(cfg.DeviceID)
		v.Server = server.NewServer(cfg.Server, eng, v.Hub)
	}
	return v
}

// Start arranca el motor, las salidas y el escenario
func (v *Vehicle) Start(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.started {
		return nil
	}

	if err := v.Engine.Start(ctx); err != nil {
		return fmt.Errorf("[%s] motor: %w", v.ID, err)
	}

	// Los brokers son opcionales: un fallo se informa y el vehículo sigue
	if err := v.MQTT.Start(); err != nil {
		monitoring.Logf("⚠️  [%s] MQTT: %v", v.ID, err)
	}
	if v.Rabbit != nil {
		if err := v.Rabbit.Start(); err != nil {
			monitoring.Logf("⚠️  [%s] RabbitMQ: %v", v.ID, err)
		}
	}

	if v.Server != nil {
		v.Hub.Attach(v.Bus)
		v.serveErr = make(chan error, 1)
		go func() {
			v.serveErr <- v.Server.Listen()
		}()
	}

	if v.Executor != nil {
		v.Executor.Start(ctx)
	}

	v.started = true
	monitoring.Logf("🚗 [%s] Vehículo iniciado sobre %s", v.ID, v.Route)
	return nil
}

// ServeErr entrega el error del servidor HTTP, si hay servidor
func (v *Vehicle) ServeErr() <-chan error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.serveErr
}

// Pausable es un componente que se puede congelar desde el visor
type Pausable interface {
	Pause()
	Resume()
}

// Pausables son los componentes que el visor puede pausar
func (v *Vehicle) Pausables() []Pausable {
	out := []Pausable{v.Engine, v.Motion}
	if v.Executor != nil {
		out = append(out, v.Executor)
	}
	return out
}

// Stop detiene todo en orden inverso y cierra el bus
func (v *Vehicle) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.started {
		return
	}
	v.started = false

	if v.Executor != nil {
		v.Executor.Stop()
	}
	if v.Server != nil {
		if err := v.Server.Shutdown(); err != nil {
			monitoring.Logf("⚠️  [%s] Server: %v", v.ID, err)
		}
		v.Hub.Detach()
	}
	if v.Rabbit != nil {
		v.Rabbit.Stop()
	}
	v.MQTT.Stop()
	v.Engine.Stop()
	v.Motion.Stop()
	v.Bus.Close()

	monitoring.Logf("🛑 [%s] Vehículo detenido", v.ID)
}
