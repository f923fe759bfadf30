package topology

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed topology input.
var (
	ErrNoNodes        = errors.New("topology has no nodes")
	ErrDuplicateNode  = errors.New("duplicate node id")
	ErrMissingField   = errors.New("missing required field")
	ErrUnknownRole    = errors.New("unknown node role")
	ErrInvalidPrefix  = errors.New("invalid vlan prefix length")
	ErrUnresolvedNode = errors.New("edge references missing node")
)

// InputError is a terminal topology error carrying the originating input
// fragment so malformed documents can be diagnosed from the error alone.
type InputError struct {
	Op     string // operation that rejected the input, e.g. "Validate"
	Entity string // "node", "edge", or "vlan"
	ID     string // identity of the offending fragment
	Cause  error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *InputError) Unwrap() error { return e.Cause }

func inputErr(op, entity, id string, cause error) *InputError {
	return &InputError{Op: op, Entity: entity, ID: id, Cause: cause}
}
