package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/scenario"
	"github.com/MarcosBrindi/pathsynq/internal/simulator"
	"github.com/MarcosBrindi/pathsynq/internal/ui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "archivo de configuración YAML")
	headless := flag.Bool("headless", false, "ejecutar sin UI")
	instances := flag.Int("instances", 1, "vehículos a simular en modo headless")
	scenarioID := flag.String("scenario", "", "escenario a ejecutar (por defecto simulation.initial_scenario)")
	listScenarios := flag.Bool("list-scenarios", false, "listar escenarios disponibles y salir")
	flag.Parse()

	fmt.Println("=== PATHSYNQ - TELEMETRÍA DE TRAYECTO ===")
	fmt.Println()

	// Cargar configuración
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error cargando config: %v\n", err)
		fmt.Println("Usando configuración por defecto")
		cfg = config.Default()
	}

	if *listScenarios {
		for _, info := range scenario.DiscoverScenarios(cfg.Simulation.ScenarioDir) {
			fmt.Printf("  %-20s %-8s %s\n", info.ID, info.Source, info.Name)
		}
		return
	}

	id := *scenarioID
	if id == "" {
		id = cfg.Simulation.InitialScenario
	}
	sc, err := scenario.Resolve(id, cfg.Simulation.ScenarioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Device ID: %s\n", cfg.DeviceID)
	fmt.Printf("Escenario: %s\n", sc.Name)
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *headless || !cfg.UI.Enabled {
		if err := simulator.RunHeadless(ctx, *instances, cfg, sc); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runWithUI(ctx, cfg, sc); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("¡Hasta luego!")
}

// runWithUI ejecuta una instancia con el visor Ebiten
func runWithUI(ctx context.Context, cfg *config.Config, sc *scenario.Scenario) error {
	monitoring.Logf("🎮 [Main] Modo UI")

	v := simulator.NewVehicle(cfg, simulator.VehicleOptions{Scenario: sc, Server: true})
	if err := v.Start(ctx); err != nil {
		return err
	}
	defer v.Stop()

	var pausables []ui.Pausable
	for _, p := range v.Pausables() {
		pausables = append(pausables, p)
	}
	game := ui.NewGame(v.Bus, cfg, v.Engine, v.Route.Points, pausables...)

	// Ctrl+C cierra la ventana
	go func() {
		<-ctx.Done()
		game.Stop()
	}()

	fmt.Println("⚠️  Cierra la ventana para salir")
	return game.Run()
}
