package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationAbsent means the remote endpoint or credential is not configured.
	ErrConfigurationAbsent = errors.New("remote vector service not configured")

	// ErrAuthenticationFailure means the remote probe failed or was rejected.
	ErrAuthenticationFailure = errors.New("remote vector service probe failed")

	// ErrOperation matches every failed backend operation (see OperationError).
	ErrOperation = errors.New("vector operation failed")

	// ErrNotInitialized is returned by Selector.Backend before Selector.Init has completed.
	ErrNotInitialized = errors.New("vector backend not initialized")
)

// OperationError describes a failed Upsert, Query, Fetch, Delete or Stats call.
type OperationError struct {
	Op         string
	Backend    string
	StatusCode int    // HTTP status code for remote failures, 0 otherwise
	Status     string // HTTP status text, e.g. "401 Unauthorized"
	Err        error
}

func (e *OperationError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("%s %s: %s", e.Backend, e.Op, e.Status)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrOperation) true for every OperationError.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperation
}
