package vector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/embedding"
)

// DefaultProbeTimeout bounds the startup GET /info probe.
const DefaultProbeTimeout = 5 * time.Second

// State is the selector's position in its one-way lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateProbing
	StateRemote
	StateLocal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProbing:
		return "probing"
	case StateRemote:
		return "remote"
	case StateLocal:
		return "local"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SelectorConfig holds what the selector needs to choose a backend.
type SelectorConfig struct {
	URL          string
	Token        string
	Timeout      time.Duration // per remote call
	ProbeTimeout time.Duration
	Dimensions   int // local index dimension
}

// Selector picks the remote backend when it is configured and reachable, the memory backend
// otherwise. The choice is made once and kept for the life of the process.
type Selector struct {
	cfg        SelectorConfig
	logger     *zap.Logger
	httpClient *http.Client
	wrap       func(Backend) Backend

	once    sync.Once
	mu      sync.RWMutex
	state   State
	backend Backend
	reason  error
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithLogger sets the logger used to report the selection.
func WithLogger(l *zap.Logger) SelectorOption {
	return func(s *Selector) { s.logger = l }
}

// WithHTTPClient sets the client used by the remote backend and its probe.
func WithHTTPClient(c *http.Client) SelectorOption {
	return func(s *Selector) { s.httpClient = c }
}

// WithBackendWrapper decorates the selected backend, e.g. with metrics.
func WithBackendWrapper(wrap func(Backend) Backend) SelectorOption {
	return func(s *Selector) { s.wrap = wrap }
}

// NewSelector returns an uninitialized selector.
func NewSelector(cfg SelectorConfig, opts ...SelectorOption) *Selector {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = embedding.DefaultDimensions
	}
	s := &Selector{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init selects the backend on first call and returns it; later calls return the same
// instance. It never fails: any remote problem results in the memory backend.
func (s *Selector) Init(ctx context.Context) Backend {
	s.once.Do(func() {
		s.setState(StateProbing, nil, nil)
		backend, reason := s.selectBackend(ctx)
		if s.wrap != nil {
			backend = s.wrap(backend)
		}
		state := StateRemote
		if reason != nil {
			state = StateLocal
		}
		s.setState(state, backend, reason)
		s.logger.Info("vector backend selected",
			zap.String("state", state.String()),
			zap.String("backend", backend.Type()),
			zap.Int("dimensions", s.cfg.Dimensions))
	})
	b, _ := s.Backend()
	return b
}

// Backend returns the selected backend, or ErrNotInitialized if Init has not completed.
func (s *Selector) Backend() (Backend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateRemote && s.state != StateLocal {
		return nil, ErrNotInitialized
	}
	return s.backend, nil
}

// State returns the current lifecycle state.
func (s *Selector) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Reason returns why the memory backend was chosen, or nil.
func (s *Selector) Reason() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reason
}

func (s *Selector) setState(state State, backend Backend, reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.backend = backend
	s.reason = reason
}

func (s *Selector) selectBackend(ctx context.Context) (Backend, error) {
	remote, err := NewRemoteBackend(RemoteConfig{
		URL:        s.cfg.URL,
		Token:      s.cfg.Token,
		Timeout:    s.cfg.Timeout,
		HTTPClient: s.httpClient,
	})
	if errors.Is(err, ErrConfigurationAbsent) {
		s.logger.Info("remote vector service not configured, using local index")
		return s.local(), err
	}
	if err != nil {
		return s.local(), err
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()
	if err := remote.Ping(probeCtx); err != nil {
		reason := fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
		s.logger.Warn("remote vector service probe failed, falling back to local index",
			zap.String("url", s.cfg.URL),
			zap.Error(err))
		return s.local(), reason
	}
	return remote, nil
}

func (s *Selector) local() Backend {
	return &MemoryBackend{
		dimensions: s.cfg.Dimensions,
		records:    make(map[string]Record),
	}
}
