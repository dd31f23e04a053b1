package metrics

import (
	"context"
	"time"

	"github.com/hyperjump/kensaku/internal/vector"
)

// instrumentedBackend records count, outcome and latency of every call to the wrapped backend.
type instrumentedBackend struct {
	next    vector.Backend
	metrics *Metrics
}

// InstrumentBackend wraps b so its operations are recorded in m. A nil m returns b unchanged.
func InstrumentBackend(b vector.Backend, m *Metrics) vector.Backend {
	if m == nil || b == nil {
		return b
	}
	return &instrumentedBackend{next: b, metrics: m}
}

func (i *instrumentedBackend) Type() string {
	return i.next.Type()
}

func (i *instrumentedBackend) Upsert(ctx context.Context, records []vector.Record) (int, error) {
	start := time.Now()
	n, err := i.next.Upsert(ctx, records)
	i.metrics.observe(i.next.Type(), "upsert", start, err)
	return n, err
}

func (i *instrumentedBackend) Query(ctx context.Context, v []float32, topK int, filter vector.Filter) ([]vector.Match, error) {
	start := time.Now()
	matches, err := i.next.Query(ctx, v, topK, filter)
	i.metrics.observe(i.next.Type(), "query", start, err)
	return matches, err
}

func (i *instrumentedBackend) Fetch(ctx context.Context, ids []string) ([]vector.Record, error) {
	start := time.Now()
	records, err := i.next.Fetch(ctx, ids)
	i.metrics.observe(i.next.Type(), "fetch", start, err)
	return records, err
}

func (i *instrumentedBackend) Delete(ctx context.Context, ids []string) error {
	start := time.Now()
	err := i.next.Delete(ctx, ids)
	i.metrics.observe(i.next.Type(), "delete", start, err)
	return err
}

func (i *instrumentedBackend) Stats(ctx context.Context) (vector.Stats, error) {
	start := time.Now()
	stats, err := i.next.Stats(ctx)
	i.metrics.observe(i.next.Type(), "stats", start, err)
	return stats, err
}
