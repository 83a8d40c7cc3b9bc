package sensors

import (
	"errors"
	"fmt"
	"time"
)

// ErrFeedUnavailable indica que el host no ofrece el feed
var ErrFeedUnavailable = errors.New("feed no disponible en este host")

// ErrPermissionDenied se usa cuando el feed existe pero está bloqueado
var ErrPermissionDenied = errors.New("permiso denegado")

// Códigos de error de geolocalización
const (
	ErrCodePermissionDenied    = 1
	ErrCodePositionUnavailable = 2
	ErrCodeTimeout             = 3
)

// PositionError es el error {code, message} del feed de ubicación
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("ERROR(%d): %s", e.Code, e.Message)
}

// Timeout indica si el error es por tiempo agotado
func (e *PositionError) Timeout() bool {
	return e.Code == ErrCodeTimeout
}

// Is permite errors.Is(err, ErrPermissionDenied)
func (e *PositionError) Is(target error) bool {
	return target == ErrPermissionDenied && e.Code == ErrCodePermissionDenied
}

// PositionOptions son las opciones de una petición de ubicación
type PositionOptions struct {
	EnableHighAccuracy bool
	MaximumAge         time.Duration
	Timeout            time.Duration
}

// DefaultPositionOptions: alta precisión, sin caché, 5 s de timeout
func DefaultPositionOptions() PositionOptions {
	return PositionOptions{
		EnableHighAccuracy: true,
		MaximumAge:         0,
		Timeout:            5 * time.Second,
	}
}

// TickInterval convierte una frecuencia en Hz al periodo del ticker.
// Nunca retorna 0: time.NewTicker entra en pánico con periodos no positivos.
func TickInterval(hz float64) time.Duration {
	if hz <= 0 {
		return time.Second
	}
	if d := time.Duration(float64(time.Second) / hz); d > 0 {
		return d
	}
	return time.Nanosecond
}

// MotionFeed publica eventos eventbus.EventMotion
type MotionFeed interface {
	Available() bool
	Start() error
	Stop()
}

// LocationFeed publica eventos EventLocation / EventLocationError.
// Watch entrega fixes continuos hasta que se llame a cancel; RequestFix pide
// un único fix que llega más tarde por el bus.
type LocationFeed interface {
	Available() bool
	Watch(opts PositionOptions) (cancel func(), err error)
	RequestFix(opts PositionOptions) error
}
