package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
)

// Run is one persisted scoring run: the inputs that determined the score
// and the aggregate outputs.
type Run struct {
	ID          uuid.UUID           `json:"run_id"`
	Source      string              `json:"source"` // "api", "cli", "events"
	Pipeline    string              `json:"pipeline,omitempty"`
	Constants   restraint.Constants `json:"constants"`
	DecayName   string              `json:"decay"`
	D0          float64             `json:"d0,omitempty"`
	RecordCount int                 `json:"record_count"`
	MeanOmega   float64             `json:"mean_omega"`
	SigmaP      float64             `json:"sigma_p"`
	SigmaL      float64             `json:"sigma_l"`
	FinalScore  float64             `json:"final_score"`
	CreatedAt   time.Time           `json:"created_at"`
}

// RunRecord is one restraint within a persisted run, with its derived
// per-record outputs.
type RunRecord struct {
	RunID    uuid.UUID `json:"run_id"`
	RecordID string    `json:"record_id"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Z        float64   `json:"z"`
	SL       float64   `json:"sl"`
	WI       float64   `json:"wi"`
	Dij      float64   `json:"dij"`
	FDij     float64   `json:"fdij"`
	Omega    float64   `json:"omega_ij"`
}

type RunFilter struct {
	Source   string
	Pipeline string
	Limit    int
}

// Stats is the aggregate view served on the admin surface.
type Stats struct {
	TotalRuns    int     `json:"total_runs"`
	TotalRecords int     `json:"total_records"`
	AvgScore     float64 `json:"avg_score"`
	MaxScore     float64 `json:"max_score"`
}

type Store interface {
	CreateRun(ctx context.Context, run *Run, records []RunRecord) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	GetRunRecords(ctx context.Context, id uuid.UUID) ([]RunRecord, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
