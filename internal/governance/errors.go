package governance

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotAllowed is returned when a plan names a tool outside the whitelist.
	ErrToolNotAllowed = errors.New("tool not allowed")

	// ErrDuplicateNode is returned in strict mode when two nodes share an id.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrInvalidReference is returned in strict mode for references that cannot resolve.
	ErrInvalidReference = errors.New("invalid reference")
)

type ToolNotAllowedError struct {
	NodeID string
	Tool   string
	Reason string
}

func (e *ToolNotAllowedError) Error() string {
	msg := fmt.Sprintf("tool not allowed: %s (node %q)", e.Tool, e.NodeID)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ToolNotAllowedError) Unwrap() error { return ErrToolNotAllowed }

type DuplicateNodeError struct {
	NodeID string
	Index  int
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node id %q at index %d", e.NodeID, e.Index)
}

func (e *DuplicateNodeError) Unwrap() error { return ErrDuplicateNode }

// ForwardReferenceError reports a reference to a node that does not run before the referencing node.
type ForwardReferenceError struct {
	NodeID string
	Key    string
	Ref    string
	Reason string
}

func (e *ForwardReferenceError) Error() string {
	return fmt.Sprintf("node %q input %q: reference %s: %s", e.NodeID, e.Key, e.Ref, e.Reason)
}

func (e *ForwardReferenceError) Unwrap() error { return ErrInvalidReference }
