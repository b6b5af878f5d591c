package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Task trabajo en segundo plano (evaluación de alertas, auditoría, publicación).
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	fn   Task
}

// Dispatcher ejecuta efectos secundarios "fire-and-forget" en un pool fijo de workers.
// Dispatch nunca bloquea: si la cola está llena o el dispatcher cerrado, la tarea se descarta y se registra.
// Los errores y panics de las tareas solo se observan en el log.
type Dispatcher struct {
	mu      sync.RWMutex
	closed  bool
	queue   chan namedTask
	wg      conc.WaitGroup
	timeout time.Duration
	log     zerolog.Logger
}

// DispatcherConfig tamaño del pool y de la cola.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// NewDispatcher arranca los workers.
func NewDispatcher(cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 10 * time.Second
	}
	d := &Dispatcher{
		queue:   make(chan namedTask, cfg.QueueSize),
		timeout: cfg.TaskTimeout,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Go(d.work)
	}
	return d
}

// Dispatch encola la tarea sin bloquear. Devuelve false si se descartó.
// Un Dispatcher nil descarta todo (útil en tests que no necesitan efectos secundarios).
func (d *Dispatcher) Dispatch(name string, fn Task) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("task", name).Msg("dispatcher cerrado, tarea descartada")
		return false
	}
	select {
	case d.queue <- namedTask{name: name, fn: fn}:
		return true
	default:
		d.log.Warn().Str("task", name).Msg("cola llena, tarea descartada")
		return false
	}
}

// Close deja de aceptar tareas y espera a que se vacíe la cola.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	for t := range d.queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t namedTask) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var err error
	var pc panics.Catcher
	pc.Try(func() { err = t.fn(ctx) })
	if r := pc.Recovered(); r != nil {
		d.log.Error().Str("task", t.name).Str("panic", r.String()).Msg("tarea en segundo plano falló con panic")
		return
	}
	if err != nil {
		d.log.Warn().Err(err).Str("task", t.name).Msg("tarea en segundo plano falló")
	}
}
