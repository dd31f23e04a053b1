// Package storage persists conversation session records.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a session id does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidID is returned for an empty session id.
	ErrInvalidID = errors.New("session id is empty")
)

// SessionRecord is an opaque per-session state blob.
type SessionRecord struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SessionStore defines session persistence operations.
type SessionStore interface {
	// Put creates or replaces the record. CreatedAt is kept across replacements.
	Put(ctx context.Context, rec *SessionRecord) error
	Get(ctx context.Context, id string) (*SessionRecord, error)
	// Delete removes the record; deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*SessionRecord, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}
