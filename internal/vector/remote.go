package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultRemoteTimeout bounds each remote HTTP call when no client is supplied.
	DefaultRemoteTimeout = 30 * time.Second
	maxErrorBody         = 200
)

// RemoteConfig configures a RemoteBackend.
type RemoteConfig struct {
	// URL is the base URL of the vector service, e.g. https://vectors.example.com.
	URL string
	// Token is sent as "Authorization: Bearer <token>".
	Token string
	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// RemoteBackend talks to a vector service over HTTP. Each operation is exactly one request;
// ranking and filtering happen server-side.
type RemoteBackend struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemoteBackend returns a backend for cfg. It fails with ErrConfigurationAbsent when the
// URL or token is empty. No network call is made.
func NewRemoteBackend(cfg RemoteConfig) (*RemoteBackend, error) {
	if cfg.URL == "" || cfg.Token == "" {
		return nil, ErrConfigurationAbsent
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultRemoteTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteBackend{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		client:  client,
	}, nil
}

// Type returns the backend type identifier.
func (r *RemoteBackend) Type() string {
	return TypeRemote
}

// Upsert sends all records in a single POST /upsert.
func (r *RemoteBackend) Upsert(ctx context.Context, records []Record) (int, error) {
	req := UpsertRequest{Vectors: make([]WireVector, len(records))}
	for i, rec := range records {
		req.Vectors[i] = ToWire(rec)
	}
	if err := r.do(ctx, "upsert", http.MethodPost, "/upsert", req, nil); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Query sends POST /query and returns the server's results in order.
func (r *RemoteBackend) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	req := QueryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}
	if len(filter) > 0 {
		req.Filter = filter
	}
	var resp QueryResponse
	if err := r.do(ctx, "query", http.MethodPost, "/query", req, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []Match{}, nil
	}
	return resp.Results, nil
}

// Fetch sends POST /fetch. The service omits ids it does not have.
func (r *RemoteBackend) Fetch(ctx context.Context, ids []string) ([]Record, error) {
	var resp FetchResponse
	if err := r.do(ctx, "fetch", http.MethodPost, "/fetch", IDsRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(resp.Vectors))
	for _, v := range resp.Vectors {
		out = append(out, FromWire(v))
	}
	return out, nil
}

// Delete sends POST /delete.
func (r *RemoteBackend) Delete(ctx context.Context, ids []string) error {
	return r.do(ctx, "delete", http.MethodPost, "/delete", IDsRequest{IDs: ids}, nil)
}

// Stats sends GET /info.
func (r *RemoteBackend) Stats(ctx context.Context) (Stats, error) {
	var resp InfoResponse
	if err := r.do(ctx, "stats", http.MethodGet, "/info", nil, &resp); err != nil {
		return Stats{}, err
	}
	return resp.Stats(), nil
}

// Ping verifies the endpoint and credential with a GET /info.
func (r *RemoteBackend) Ping(ctx context.Context) error {
	_, err := r.Stats(ctx)
	return err
}

func (r *RemoteBackend) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return r.fail(op, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return r.fail(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return r.fail(op, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		opErr := &OperationError{Op: op, Backend: TypeRemote, StatusCode: resp.StatusCode, Status: resp.Status}
		if msg := strings.TrimSpace(string(preview)); msg != "" {
			opErr.Err = errors.New(msg)
		}
		return opErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return r.fail(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (r *RemoteBackend) fail(op string, err error) error {
	return &OperationError{Op: op, Backend: TypeRemote, Err: err}
}
