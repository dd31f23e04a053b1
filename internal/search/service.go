// Package search answers semantic queries against the selected vector backend.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/metrics"
	"github.com/hyperjump/kensaku/internal/vector"
)

// ErrEmptyQuery is returned by SearchText for blank text.
var ErrEmptyQuery = errors.New("query text is empty")

// BackendSource resolves the active backend. *vector.Selector implements it.
type BackendSource interface {
	Backend() (vector.Backend, error)
}

// Service runs semantic search over whichever backend the source provides.
type Service struct {
	backends BackendSource
	embedder embedding.Embedder
	config   config.SearchConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records result counts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a search service. The embedder is only needed for SearchText and may be nil.
func NewService(backends BackendSource, embedder embedding.Embedder, cfg config.SearchConfig, opts ...Option) *Service {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = config.DefaultTopK
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = config.DefaultMaxTopK
	}
	s := &Service{
		backends: backends,
		embedder: embedder,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns up to TopK matches for vec that satisfy the option filters, then drops any
// below MinSimilarity. The threshold is applied after truncation, so fewer than TopK results
// may come back even when more records would pass it.
func (s *Service) Search(ctx context.Context, vec []float32, opts Options) ([]vector.Match, error) {
	backend, err := s.backends.Backend()
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults(s.config)

	matches, err := backend.Query(ctx, vec, opts.TopK, opts.Filter())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	results := filterBySimilarity(matches, opts.MinSimilarity)

	s.metrics.ObserveSearch(len(results))
	s.logger.Debug("search complete",
		zap.String("backend", backend.Type()),
		zap.Int("top_k", opts.TopK),
		zap.Int("candidates", len(matches)),
		zap.Int("results", len(results)))
	return results, nil
}

// SearchText embeds text with the configured embedder and searches with the result.
func (s *Service) SearchText(ctx context.Context, text string, opts Options) ([]vector.Match, error) {
	if s.embedder == nil {
		return nil, errors.New("search: no embedder configured")
	}
	if text == "" {
		return nil, ErrEmptyQuery
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.Search(ctx, vec, opts)
}

func filterBySimilarity(matches []vector.Match, min float64) []vector.Match {
	out := make([]vector.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= min {
			out = append(out, m)
		}
	}
	return out
}
