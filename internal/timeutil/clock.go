// Package timeutil abstrae el reloj para que los tickers y timestamps sean
// deterministas en tests.
package timeutil

import (
	"sync"
	"time"
)

// Clock es la fuente de tiempo del motor
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker entrega ticks periódicos
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock usa el paquete time
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.ticker.C }
func (t *realTicker) Stop()               { t.ticker.Stop() }

// UnixMilli retorna el tiempo del reloj en milisegundos epoch
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}

// MockClock es un reloj controlado manualmente para tests
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*MockTicker
}

// NewMockClock crea un MockClock en el instante dado
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now retorna el tiempo simulado
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set fija el reloj en un instante
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance mueve el reloj y dispara los tickers vencidos
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := c.tickers
	c.mu.Unlock()

	for _, t := range tickers {
		t.checkAndFire(now)
	}
}

// NewTicker crea un MockTicker registrado en el reloj
func (c *MockClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &MockTicker{
		ch:       make(chan time.Time, 1),
		interval: d,
		nextTick: c.now.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Tickers retorna los tickers creados hasta ahora
func (c *MockClock) Tickers() []*MockTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*MockTicker, len(c.tickers))
	copy(out, c.tickers)
	return out
}

// MockTicker es un ticker manual
type MockTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	nextTick time.Time
	stopped  bool
}

func (t *MockTicker) C() <-chan time.Time { return t.ch }

func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped indica si Stop fue llamado
func (t *MockTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *MockTicker) checkAndFire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	if !now.Before(t.nextTick) {
		select {
		case t.ch <- now:
		default:
		}
		t.nextTick = now.Add(t.interval)
	}
}
