package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrUpstream marks a failure of the model service: unreachable, erroring,
// timed out, or returning nothing.
var ErrUpstream = errors.New("model service failure")

var errEmptyCompletion = errors.New("empty completion")

// Error is a failed gateway call. It matches both ErrUpstream and its cause
// under errors.Is.
type Error struct {
	Op       string
	Template string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Template, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

const (
	defaultTimeout = 120 * time.Second
	defaultBackoff = time.Second
	meterName      = "github.com/rcliao/focus-agent/internal/llm"
)

// Gateway renders prompt templates and sends them to a Completer, one
// bounded call at a time.
type Gateway struct {
	completer  Completer
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
	meter      metric.Meter
	metrics    *gatewayMetrics
}

type gatewayMetrics struct {
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTimeout bounds each completion attempt.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRetries retries failed attempts up to n times, doubling backoff after
// each. The default is no retries.
func WithRetries(n int, backoff time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.maxRetries = n
		if backoff > 0 {
			g.backoff = backoff
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l.With().Str("component", "llm").Logger() }
}

// WithMeter records call metrics on m instead of the global meter provider.
func WithMeter(m metric.Meter) GatewayOption {
	return func(g *Gateway) { g.meter = m }
}

// NewGateway returns a Gateway over c.
func NewGateway(c Completer, opts ...GatewayOption) (*Gateway, error) {
	g := &Gateway{
		completer: c,
		timeout:   defaultTimeout,
		backoff:   defaultBackoff,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.meter == nil {
		g.meter = otel.Meter(meterName)
	}

	m, err := newGatewayMetrics(g.meter)
	if err != nil {
		return nil, err
	}
	g.metrics = m
	return g, nil
}

func newGatewayMetrics(meter metric.Meter) (*gatewayMetrics, error) {
	m := &gatewayMetrics{}
	var err error

	m.calls, err = meter.Int64Counter("llm.calls",
		metric.WithDescription("Completion calls sent to the model service"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("create calls counter: %w", err)
	}

	m.errors, err = meter.Int64Counter("llm.errors",
		metric.WithDescription("Completion calls that failed after all attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram("llm.duration",
		metric.WithDescription("Completion call duration in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return m, nil
}

// Provider names the underlying completer.
func (g *Gateway) Provider() string { return g.completer.Name() }

// Complete renders t with bindings and returns the model's plain-text output.
// Rendering errors are returned as-is; every model failure is an *Error
// matching ErrUpstream.
func (g *Gateway) Complete(ctx context.Context, t *Template, bindings map[string]string) (string, error) {
	prompt, err := t.Render(bindings)
	if err != nil {
		return "", err
	}

	attrs := metric.WithAttributes(
		attribute.String("template", t.Name),
		attribute.String("provider", g.completer.Name()),
	)
	start := time.Now()
	g.metrics.calls.Add(ctx, 1, attrs)
	g.log.Debug().Str("template", t.Name).Int("prompt_len", len(prompt)).Msg("completion started")

	out, err := g.completeWithRetry(ctx, t.Name, prompt)

	elapsed := time.Since(start)
	g.metrics.duration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	if err != nil {
		g.metrics.errors.Add(ctx, 1, attrs)
		g.log.Error().Err(err).Str("template", t.Name).Dur("duration", elapsed).Msg("completion failed")
		return "", &Error{Op: "complete", Template: t.Name, Err: err}
	}

	g.log.Debug().Str("template", t.Name).Dur("duration", elapsed).Int("output_len", len(out)).Msg("completion finished")
	return out, nil
}

func (g *Gateway) completeWithRetry(ctx context.Context, name, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := g.backoff << (attempt - 1)
			g.log.Warn().Err(lastErr).Str("template", name).Int("attempt", attempt).Dur("backoff", delay).Msg("retrying completion")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		out, err := g.attempt(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (g *Gateway) attempt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return "", fmt.Errorf("%w: %w", ctxErr, err)
		}
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errEmptyCompletion
	}
	return out, nil
}
