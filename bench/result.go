package bench

import (
	"time"

	"github.com/pkg/errors"

	"github.com/docbench/docbench/monitor"
)

// OperationResult records one measured operation: wall-clock duration,
// the resource summary sampled while it ran, and operation-specific
// counters. Immutable once produced.
type OperationResult struct {
	Name            string             `json:"operation"`
	DurationSeconds float64            `json:"duration_seconds"`
	Resources       monitor.Summary    `json:"resources"`
	Extra           map[string]float64 `json:"extra,omitempty"`
	Error           string             `json:"error,omitempty"`
}

// ErrFinalized is returned by Append once a run has been finalized.
var ErrFinalized = errors.New("benchmark run already finalized")

// Run is the ordered result sequence for one database/dataset pair.
// It grows by append only and is frozen by Finalize.
type Run struct {
	Database   string            `json:"database"`
	Dataset    string            `json:"dataset"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    []OperationResult `json:"results"`

	finalized bool
}

func NewRun(database, dataset string) *Run {
	return &Run{
		Database:  database,
		Dataset:   dataset,
		StartedAt: time.Now(),
	}
}

// Append adds one result to the run, preserving insertion order.
func (r *Run) Append(result OperationResult) error {
	if r.finalized {
		return ErrFinalized
	}
	r.Results = append(r.Results, result)
	return nil
}

// Finalize freezes the run. Idempotent; the first call sets FinishedAt.
func (r *Run) Finalize() {
	if r.finalized {
		return
	}
	r.finalized = true
	r.FinishedAt = time.Now()
}

func (r *Run) Finalized() bool {
	return r.finalized
}

// Sink persists a finalized run. Implementations live in the report
// package.
type Sink interface {
	Persist(run *Run) error
}
