// Package dispatcher routes fleet commands to their registered
// handlers, optionally through a buffered per-command queue.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event represents an incoming command from the report replay loop.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type handlerOpts struct {
	queueSize int
	blocking  bool
	logged    bool
}

// Option configures handler registration.
type Option func(*handlerOpts)

// Buffered makes the handler async behind a queue of the given size.
func Buffered(size int) Option {
	return func(o *handlerOpts) { o.queueSize = size }
}

// Blocking makes a buffered handler block on a full queue instead of
// dropping the event.
func Blocking() Option {
	return func(o *handlerOpts) { o.blocking = true }
}

// Logged wraps the handler with debug/error logging and timing.
func Logged() Option {
	return func(o *handlerOpts) { o.logged = true }
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	queueDepth metric.Int64ObservableGauge
	processed  metric.Int64Counter
	dropped    metric.Int64Counter

	// guards queues, read by the gauge callback
	mu     sync.RWMutex
	queues map[string]chan Event
}

// New creates a dispatcher. Metrics come from the global OTel meter and
// are no-ops until a provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		queues:   make(map[string]chan Event),
		logger:   logger,
	}
	if err := d.initMetrics(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) initMetrics() error {
	m := meter()

	var err error
	if d.queueDepth, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events in queue"),
	); err != nil {
		return fmt.Errorf("creating queue size gauge: %w", err)
	}

	if _, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		for cmd, q := range d.queues {
			o.ObserveInt64(d.queueDepth, int64(len(q)),
				metric.WithAttributes(attribute.String("command", cmd)))
		}
		return nil
	}, d.queueDepth); err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}

	if d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	); err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}

	if d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	); err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}

	return nil
}

// Register adds a handler for the command. Options are applied
// inside-out: buffering first, then logging.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var cfg handlerOpts
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.queueSize > 0 {
		h = d.buffered(command, cfg.queueSize, cfg.blocking, h)
	}
	if cfg.logged {
		h = d.logged(command, h)
	}
	d.handlers[command] = h
}

// Dispatch routes an event to its registered handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	return h(e)
}

// HasHandler reports whether a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

func (d *Dispatcher) buffered(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	q := make(chan Event, size)

	d.mu.Lock()
	d.queues[command] = q
	d.mu.Unlock()

	cmdAttr := metric.WithAttributes(attribute.String("command", command))
	go func() {
		for e := range q {
			h(e)
			d.processed.Add(context.Background(), 1, cmdAttr)
		}
	}()

	if blocking {
		return func(e Event) (any, error) {
			q <- e
			return "queued", nil
		}
	}
	return func(e Event) (any, error) {
		select {
		case q <- e:
			return "queued", nil
		default:
			d.dropped.Add(context.Background(), 1, cmdAttr)
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)
		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		return result, nil
	}
}
