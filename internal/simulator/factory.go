package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MarcosBrindi/pathsynq/internal/config"
	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
	"github.com/MarcosBrindi/pathsynq/internal/mqtt"
	"github.com/MarcosBrindi/pathsynq/internal/scenario"
	amqp "github.com/rabbitmq/amqp091-go"
)

// InstanceID arma el device_id de la instancia i (desde 0). Con una sola instancia
// se conserva el de la configuración.
func InstanceID(base string, i, total int) string {
	if total <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%04d", base, i+1)
}

// RunHeadless ejecuta numInstances vehículos sin UI hasta que ctx termina
func RunHeadless(ctx context.Context, numInstances int, cfg *config.Config, sc *scenario.Scenario) error {
	if numInstances < 1 {
		numInstances = 1
	}
	monitoring.Logf("🚀 [Headless] Instancias a ejecutar: %d", numInstances)

	// Conectar a RabbitMQ UNA sola vez; cada vehículo abre su canal
	var conn *amqp.Connection
	if cfg.RabbitMQ.Enabled {
		monitoring.Logf("📡 [Headless] Conectando a RabbitMQ: %s:%d", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
		var err error
		conn, err = mqtt.ConnectRabbitMQ(cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer conn.Close()
		monitoring.Logf("✅ [Headless] Conexión a RabbitMQ establecida (exchange %s)", cfg.RabbitMQ.Exchange)
	}

	var wg sync.WaitGroup
	for i := 0; i < numInstances; i++ {
		wg.Add(1)

		// Offset de inicio para evitar sincronización perfecta (cada 100ms)
		delay := time.Duration(i%10) * 100 * time.Millisecond
		go func(i int) {
			defer wg.Done()
			if !sleepCtx(ctx, delay) {
				return
			}
			runInstance(ctx, cfg.ForDevice(InstanceID(cfg.DeviceID, i, numInstances)), conn, sc, i == 0)
		}(i)

		// Log cada 100 instancias
		if (i+1)%100 == 0 {
			monitoring.Logf("  ✓ %d vehículos lanzados", i+1)
		}
	}

	monitoring.Logf("⏹️  [Headless] Presiona Ctrl+C para detener...")
	wg.Wait()

	monitoring.Logf("🛑 [Headless] Simulación finalizada")
	return nil
}

// runInstance ejecuta un vehículo hasta que ctx termina. Solo la primera
// instancia expone la API de mapa.
func runInstance(ctx context.Context, cfg *config.Config, conn *amqp.Connection, sc *scenario.Scenario, withServer bool) {
	opts := VehicleOptions{Scenario: sc, Server: withServer}

	if conn != nil {
		ch, err := conn.Channel()
		if err != nil {
			monitoring.Logf("❌ [%s] Error creando canal: %v", cfg.DeviceID, err)
			return
		}
		defer ch.Close()
		opts.Channel = ch
	}

	v := NewVehicle(cfg, opts)
	if err := v.Start(ctx); err != nil {
		monitoring.Logf("❌ [%s] %v", cfg.DeviceID, err)
		return
	}
	defer v.Stop()

	select {
	case <-ctx.Done():
	case err := <-v.ServeErr():
		if err != nil {
			monitoring.Logf("❌ [%s] Server: %v", cfg.DeviceID, err)
		}
		<-ctx.Done()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
