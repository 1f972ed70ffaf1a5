package store

import "time"

// Status is the final state of a pipeline run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusRejected  Status = "rejected" // failed validation, nothing executed
	StatusFailed    Status = "failed"   // failed to compile or aborted during execution
)

// Run is one persisted pipeline run.
type Run struct {
	RunID        string    `json:"run_id"`
	Source       string    `json:"source"`
	Intent       string    `json:"intent"`
	PlanJSON     string    `json:"plan,omitempty"`
	PlanDigest   string    `json:"plan_digest,omitempty"`
	ResultJSON   string    `json:"result,omitempty"`
	ResultDigest string    `json:"result_digest,omitempty"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
