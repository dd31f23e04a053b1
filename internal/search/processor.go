package search

import (
	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/vector"
)

// Metadata keys the typed options filter on.
const (
	KeyType       = "type"
	KeyCategory   = "category"
	KeyDifficulty = "difficulty"
)

// Options narrows a search. Nil filter fields place no constraint.
type Options struct {
	TopK       int
	Type       *string
	Category   *string
	Difficulty *string
	// MinSimilarity drops matches scoring below it. Zero means the configured default.
	MinSimilarity float64
}

// Filter translates the set fields into an equality filter.
func (o Options) Filter() vector.Filter {
	f := vector.Filter{}
	if o.Type != nil {
		f[KeyType] = *o.Type
	}
	if o.Category != nil {
		f[KeyCategory] = *o.Category
	}
	if o.Difficulty != nil {
		f[KeyDifficulty] = *o.Difficulty
	}
	return f
}

func (o Options) withDefaults(cfg config.SearchConfig) Options {
	if o.TopK <= 0 {
		o.TopK = cfg.DefaultTopK
	}
	if o.TopK > cfg.MaxTopK {
		o.TopK = cfg.MaxTopK
	}
	if o.MinSimilarity == 0 {
		o.MinSimilarity = cfg.MinSimilarity
	}
	return o
}

// String returns a pointer to s, for building Options literals.
func String(s string) *string {
	return &s
}
