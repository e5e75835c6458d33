package models

import (
	"errors"
	"fmt"
)

// ErrNoData marks a query for a symbol/date with no stored partitions.
// Distinct from failure: callers map it to a typed "not found" response.
var ErrNoData = errors.New("no data for requested symbol/date")

// ValidationError reports a malformed or out-of-bounds request field.
// Never retried; surfaced to the caller immediately.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AuthError marks a rejected or expired access credential.
// Triggers one refresh-and-retry cycle per ingestion run.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth rejected (status %d): %s", e.Status, e.Message)
}

// TransientError wraps a retriable upstream failure (network, timeout, 5xx).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient upstream error: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retriable per the backoff policy.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// StorageError wraps an object storage failure. On the read path it is
// propagated as internal, never conflated with ErrNoData.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
