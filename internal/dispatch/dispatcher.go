package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/game"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/pixil98/go-realm/internal/dispatch"

// Request is one inbound message from a connection.
type Request struct {
	Conn    game.ConnectionId `json:"conn"`
	Kind    Kind              `json:"kind"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// Response answers a Request. Code carries the client-facing reason when Ok
// is false; Unimplemented marks operations the server does not support yet.
type Response struct {
	Ok            bool           `json:"ok"`
	Code          game.UIMessage `json:"code,omitempty"`
	Payload       any            `json:"payload,omitempty"`
	Unimplemented bool           `json:"unimplemented,omitempty"`
}

// HandlerFunc serves a decoded request.
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Ticker lets a handler wait for the next simulation tick.
type Ticker interface {
	WaitTick(ctx context.Context) error
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	afterTick bool
}

// AfterTick delays the response until the driver has completed a tick after
// the handler ran.
func AfterTick() Option {
	return func(c *config) {
		c.afterTick = true
	}
}

const (
	outcomeOk            = "ok"
	outcomeRejected      = "rejected"
	outcomeFailed        = "failed"
	outcomeUnimplemented = "unimplemented"
	outcomeUnknown       = "unknown"
	outcomePanic         = "panic"
)

// Dispatcher routes requests to the handler registered for their kind.
type Dispatcher struct {
	ticker Ticker

	mu       sync.RWMutex
	handlers map[Kind]HandlerFunc

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a Dispatcher. Metrics go to the global meter provider unless
// another is given.
func New(ticker Ticker, opts ...DispatcherOpt) (*Dispatcher, error) {
	d := &Dispatcher{
		ticker:   ticker,
		handlers: map[Kind]HandlerFunc{},
	}

	cfg := dispatcherConfig{provider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := cfg.provider.Meter(instrumentationName)

	var err error
	d.requests, err = m.Int64Counter(
		"realm.dispatch.requests",
		metric.WithDescription("Requests handled by kind and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	d.duration, err = m.Float64Histogram(
		"realm.dispatch.duration",
		metric.WithDescription("Request handling time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return d, nil
}

// Handle registers h for kind, replacing any earlier handler.
func (d *Dispatcher) Handle(kind Kind, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h
	if cfg.afterTick {
		handler = d.withAfterTick(h)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = handler
}

// Register binds a handler taking a typed payload decoded from JSON.
func Register[P any](d *Dispatcher, kind Kind, h func(ctx context.Context, conn game.ConnectionId, p P) (any, error), opts ...Option) {
	d.Handle(kind, func(ctx context.Context, req Request) (any, error) {
		var p P
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &p); err != nil {
				slog.WarnContext(ctx, "undecodable request payload", "kind", kind, "conn", req.Conn, "error", err)
				return nil, game.NewUserError(game.UIErrorInvalidData)
			}
		}
		return h(ctx, req.Conn, p)
	}, opts...)
}

// HasHandler reports whether kind has a handler.
func (d *Dispatcher) HasHandler(kind Kind) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[kind]
	return ok
}

// Dispatch runs the handler for req and converts its result to a Response.
// A panicking handler is reported as a failed request.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	outcome := outcomeOk
	defer func() {
		attrs := metric.WithAttributes(attribute.String("kind", string(req.Kind)), attribute.String("outcome", outcome))
		d.requests.Add(ctx, 1, attrs)
		d.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	d.mu.RLock()
	h, ok := d.handlers[req.Kind]
	d.mu.RUnlock()
	if !ok {
		outcome = outcomeUnknown
		slog.WarnContext(ctx, "unknown request kind", "kind", req.Kind, "conn", req.Conn)
		return Response{Code: game.UIErrorInvalidData}
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = outcomePanic
			slog.ErrorContext(ctx, "request handler panicked", "kind", req.Kind, "conn", req.Conn, "panic", r)
			resp = Response{}
		}
	}()

	payload, err := h(ctx, req)
	if err == nil {
		return Response{Ok: true, Payload: payload}
	}

	if code, ok := game.CodeOf(err); ok {
		outcome = outcomeRejected
		return Response{Code: code, Payload: payload}
	}
	if errors.Is(err, game.ErrUnimplemented) {
		outcome = outcomeUnimplemented
		return Response{Unimplemented: true}
	}

	outcome = outcomeFailed
	slog.ErrorContext(ctx, "request failed", "kind", req.Kind, "conn", req.Conn, "error", err)
	return Response{}
}

func (d *Dispatcher) withAfterTick(h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req Request) (any, error) {
		payload, err := h(ctx, req)
		if err != nil || d.ticker == nil {
			return payload, err
		}
		if werr := d.ticker.WaitTick(ctx); werr != nil {
			return nil, fmt.Errorf("waiting for tick: %w", werr)
		}
		return payload, nil
	}
}
