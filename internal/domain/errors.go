package domain

import (
	"fmt"
)

// NetworkError is a transport failure or a non-2xx answer from the catalog API
type NetworkError struct {
	Op         string // Operation that failed, e.g. "ListProducts"
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned HTTP %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string // "product", "category"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

// PersistenceError is a read or write failure against the durable store
type PersistenceError struct {
	Op  string // "get" or "set"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
