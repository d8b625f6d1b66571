package event

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidPatch  = errors.New("invalid event patch")
)

// StoreError is raised by the gateway when the underlying store fails. It is
// always logged before it is returned.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("event store %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("event store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
