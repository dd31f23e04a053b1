package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/kensaku/internal/embedding"
)

// MemoryBackend is an in-process index using exhaustive cosine-similarity search.
// Every query scans all records, which suits small and medium collections.
type MemoryBackend struct {
	dimensions int
	records    map[string]Record
	mu         sync.RWMutex
}

// NewMemoryBackend creates an empty index whose records must all have the given dimension.
func NewMemoryBackend(dimensions int) (*MemoryBackend, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryBackend{
		dimensions: dimensions,
		records:    make(map[string]Record),
	}, nil
}

// Type returns the backend type identifier.
func (m *MemoryBackend) Type() string {
	return TypeMemory
}

// Dimensions returns the fixed vector dimension of the index.
func (m *MemoryBackend) Dimensions() int {
	return m.dimensions
}

// Upsert stores copies of records, replacing existing ids. The whole call is rejected if any
// record has the wrong dimension.
func (m *MemoryBackend) Upsert(ctx context.Context, records []Record) (int, error) {
	for _, r := range records {
		if len(r.Values) != m.dimensions {
			return 0, m.fail("upsert", fmt.Errorf("record %q: %w: got %d, expected %d",
				r.ID, embedding.ErrDimensionMismatch, len(r.Values), m.dimensions))
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r.Clone()
	}
	return len(records), nil
}

// Query scans every record, drops those rejected by filter and ranks the rest.
func (m *MemoryBackend) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if len(vector) != m.dimensions {
		return nil, m.fail("query", fmt.Errorf("%w: got %d, expected %d",
			embedding.ErrDimensionMismatch, len(vector), m.dimensions))
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := make([]embedding.Candidate, 0, len(m.records))
	for id, r := range m.records {
		if !filter.Matches(r.Metadata) {
			continue
		}
		candidates = append(candidates, embedding.Candidate{ID: id, Vector: r.Values})
	}
	ranked, err := embedding.TopKSimilar(vector, candidates, topK)
	if err != nil {
		return nil, m.fail("query", err)
	}
	matches := make([]Match, len(ranked))
	for i, s := range ranked {
		matches[i] = Match{
			ID:       s.ID,
			Score:    s.Score,
			Metadata: m.records[s.ID].Metadata.Clone(),
		}
	}
	return matches, nil
}

// Fetch returns copies of the stored records for ids, in request order.
func (m *MemoryBackend) Fetch(ctx context.Context, ids []string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Delete removes ids from the index.
func (m *MemoryBackend) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

// Stats returns the number of stored records.
func (m *MemoryBackend) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.records)
	return Stats{Count: n, TotalCount: n}, nil
}

func (m *MemoryBackend) fail(op string, err error) error {
	return &OperationError{Op: op, Backend: TypeMemory, Err: err}
}
