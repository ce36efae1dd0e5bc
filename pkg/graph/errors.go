package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural integrity violations. These are never data
// quality issues: they point at a builder bug and stop the run.
var (
	ErrMissingUID    = errors.New("node uid is missing")
	ErrUIDAlreadySet = errors.New("node uid is already set")
	ErrCannotCompare = errors.New("cannot compare relation: endpoint has no uid")
	ErrMalformedUID  = errors.New("malformed uid")
)

// GraphError provides structured error information for graph model operations.
type GraphError struct {
	Op    string // Operation that failed (e.g., "uid", "hash", "expand")
	Kind  Kind   // Category of the offending node
	UID   string // UID involved, if any
	Cause error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.UID != "" {
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Kind, e.UID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

func newError(op string, kind Kind, uid string, cause error) error {
	return &GraphError{Op: op, Kind: kind, UID: uid, Cause: cause}
}

// IsStructural reports whether err is one of the unrecoverable identity errors.
func IsStructural(err error) bool {
	return errors.Is(err, ErrMissingUID) ||
		errors.Is(err, ErrUIDAlreadySet) ||
		errors.Is(err, ErrCannotCompare) ||
		errors.Is(err, ErrMalformedUID)
}
