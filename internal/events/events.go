package events

import (
	"time"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
)

// RunRequestEvent is a scoring request submitted over the event bus by a
// docking pipeline.
type RunRequestEvent struct {
	RequestID string              `json:"request_id,omitempty"`
	Pipeline  string              `json:"pipeline,omitempty"`
	Constants restraint.Constants `json:"constants"`
	Records   []restraint.Record  `json:"records"`
	Decay     string              `json:"decay,omitempty"`
	// D0 overrides the configured exp-decay reference distance when set;
	// a pointer so an explicit zero is distinguishable from absent.
	D0 *float64 `json:"d0,omitempty"`
}

// RunScoredEvent announces a completed scoring run.
type RunScoredEvent struct {
	RunID       string    `json:"run_id"`
	RequestID   string    `json:"request_id,omitempty"`
	Pipeline    string    `json:"pipeline,omitempty"`
	RecordCount int       `json:"record_count"`
	MeanOmega   float64   `json:"mean_omega"`
	SigmaP      float64   `json:"sigma_p"`
	SigmaL      float64   `json:"sigma_l"`
	FinalScore  float64   `json:"final_score"`
	ScoredAt    time.Time `json:"scored_at"`
}

// RunRejectedEvent announces a request that failed validation.
type RunRejectedEvent struct {
	RequestID string `json:"request_id,omitempty"`
	Pipeline  string `json:"pipeline,omitempty"`
	Reason    string `json:"reason"`
}
