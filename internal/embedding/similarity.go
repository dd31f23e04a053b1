package embedding

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when two vectors of different length are compared.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Candidate is a vector eligible for ranking.
type Candidate struct {
	ID     string
	Vector []float32
}

// Scored is a ranked candidate.
type Scored struct {
	ID    string
	Score float64
}

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1].
// It returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// TopKSimilar scores every candidate against query, sorts by descending similarity and
// returns at most k entries. Equal scores are ordered by ascending ID.
func TopKSimilar(query []float32, candidates []Candidate, k int) ([]Scored, error) {
	if k <= 0 || len(candidates) == 0 {
		return []Scored{}, nil
	}
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		sim, err := CosineSimilarity(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.ID, err)
		}
		scored[i] = Scored{ID: c.ID, Score: sim}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}
