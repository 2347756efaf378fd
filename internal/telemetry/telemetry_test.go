package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestCollect(t *testing.T) {
	p := New()
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	ctx := context.Background()

	meter := p.Meter("test")
	calls, err := meter.Int64Counter("llm.calls")
	require.NoError(t, err)
	dur, err := meter.Float64Histogram("llm.duration")
	require.NoError(t, err)

	attrs := metric.WithAttributes(attribute.String("template", "planner"))
	calls.Add(ctx, 1, attrs)
	calls.Add(ctx, 2, attrs)
	dur.Record(ctx, 40, attrs)
	dur.Record(ctx, 60, attrs)

	samples, err := p.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "llm.calls", samples[0].Name)
	assert.Equal(t, "template=planner", samples[0].Attributes)
	assert.Equal(t, int64(3), samples[0].Value)
	assert.Equal(t, "llm.calls{template=planner} 3", samples[0].String())

	assert.Equal(t, "llm.duration", samples[1].Name)
	assert.Equal(t, uint64(2), samples[1].Count)
	assert.InDelta(t, 100, samples[1].Sum, 0.001)
}

func TestCollect_Empty(t *testing.T) {
	p := New()
	samples, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestLog(t *testing.T) {
	p := New()
	ctx := context.Background()
	c, err := p.Meter("test").Int64Counter("llm.errors")
	require.NoError(t, err)
	c.Add(ctx, 1)

	var buf bytes.Buffer
	p.Log(ctx, zerolog.New(&buf), zerolog.InfoLevel)
	assert.Contains(t, buf.String(), `"metric":"llm.errors 1"`)
}

func TestCollect_AfterShutdown(t *testing.T) {
	p := New()
	require.NoError(t, p.Shutdown(context.Background()))
	_, err := p.Collect(context.Background())
	assert.Error(t, err)
}
