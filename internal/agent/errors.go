package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound is returned when a node names a tool the runtime cannot find.
	ErrToolNotFound = errors.New("tool not found")

	// ErrReferenceResolution is returned when a reference does not resolve against the execution context.
	ErrReferenceResolution = errors.New("reference resolution failed")

	// ErrToolFailed is returned when a tool reports an error.
	ErrToolFailed = errors.New("tool failed")
)

type ToolNotFoundError struct {
	NodeID string
	Tool   string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s (node %q)", e.Tool, e.NodeID)
}

func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

type ReferenceResolutionError struct {
	NodeID string
	Key    string
	Ref    string
	Reason string
}

func (e *ReferenceResolutionError) Error() string {
	return fmt.Sprintf("node %q input %q: cannot resolve %s: %s", e.NodeID, e.Key, e.Ref, e.Reason)
}

func (e *ReferenceResolutionError) Unwrap() error { return ErrReferenceResolution }

type ToolError struct {
	NodeID string
	Tool   string
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed on node %q: %v", e.Tool, e.NodeID, e.Err)
}

func (e *ToolError) Unwrap() []error { return []error{ErrToolFailed, e.Err} }

// ExecutionError aborts a run. Completed holds the log entries of the nodes that
// finished before NodeID failed; the failing node has no entry.
type ExecutionError struct {
	NodeID    string
	Completed []LogEntry
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution aborted at node %q after %d completed nodes: %v", e.NodeID, len(e.Completed), e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
