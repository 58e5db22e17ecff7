package model

import "time"

// Run is the recorded outcome of one repository extraction, both the in-flight
// value collected by the batch orchestrator and a row in the history ledger.
type Run struct {
	ID         int64         `json:"id,omitempty"`
	Repository string        `json:"repository"`
	OK         bool          `json:"ok"`
	Error      string        `json:"error,omitempty"`
	Records    int           `json:"records"`
	Unmapped   int           `json:"unmapped"`
	OutputPath string        `json:"output_path,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}
