// Package jobs tracks the status of pipeline runs. The store is an
// explicit dependency injected into the orchestrator, never ambient state.
package jobs

import (
	"time"

	"github.com/scarflab/scarf/internal/model"
)

// State is the lifecycle phase of a job.
type State string

const (
	StatePending    State = "PENDING"
	StateGrounding  State = "GROUNDING"
	StateSegmenting State = "SEGMENTING"
	StateExtracting State = "EXTRACTING"
	StateLinking    State = "LINKING"
	StateAnalyzing  State = "ANALYZING"
	StateValidating State = "VALIDATING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Status is the externally visible record for one run. Fields are replaced
// whole on update (last write wins), which keeps concurrent progress
// updates from the parallel stage pair safe: each one touches disjoint
// fields.
type Status struct {
	JobID        string                `json:"job_id"`
	State        State                 `json:"state"`
	Progress     int                   `json:"progress"` // 0-100
	Message      string                `json:"message"`
	Warnings     []string              `json:"warnings,omitempty"`
	Error        string                `json:"error,omitempty"`
	PartialStage string                `json:"partial_stage,omitempty"`
	Partial      *model.AnalysisReport `json:"partial,omitempty"`
	Result       *model.AnalysisReport `json:"result,omitempty"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Store tracks job status records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Create registers a new job in StatePending.
	Create(id string) error

	// Get returns a copy of the job's status.
	Get(id string) (Status, bool)

	// Update applies a partial mutation to the job's status atomically.
	Update(id string, apply func(*Status)) error
}
