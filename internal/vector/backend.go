// Package vector stores embedding records and answers similarity queries against either an
// in-process index or a remote vector service.
package vector

import "context"

// Backend type identifiers.
const (
	TypeMemory = "memory"
	TypeRemote = "remote"
)

// Backend is the index contract shared by the local and remote implementations.
type Backend interface {
	// Upsert inserts or replaces each record and returns len(records).
	Upsert(ctx context.Context, records []Record) (int, error)
	// Query returns at most topK matches for vector, filtered first, ranked by descending score.
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	// Fetch returns the records that exist; missing ids are omitted.
	Fetch(ctx context.Context, ids []string) ([]Record, error)
	// Delete removes the given ids; unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error
	Stats(ctx context.Context) (Stats, error)
	Type() string
}

// Metadata is the flat attribute map stored alongside a vector.
type Metadata map[string]any

// Record is a stored vector keyed by ID.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"vector"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

// Match is a single query hit.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Stats reports index size. Count and TotalCount are equal for both backends.
type Stats struct {
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
}

// Clone returns a deep copy of m. String slices are copied; other values are scalars.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case []string:
			out[k] = append([]string(nil), val...)
		case []any:
			out[k] = append([]any(nil), val...)
		default:
			out[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	return Record{
		ID:       r.ID,
		Values:   append([]float32(nil), r.Values...),
		Metadata: r.Metadata.Clone(),
	}
}
