package scoring

import (
	"log/slog"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
)

// RecordScore is the per-restraint derived output: the distance-decay
// factor and the combined informativeness omega = wi * f(dij).
type RecordScore struct {
	ID    string  `json:"id"`
	FDij  float64 `json:"fdij"`
	Omega float64 `json:"omega_ij"`
}

// Result is the complete output of one scoring run.
type Result struct {
	Records    []RecordScore `json:"records"`
	MeanOmega  float64       `json:"mean_omega"`
	SigmaP     float64       `json:"sigma_p"`
	SigmaL     float64       `json:"sigma_l"`
	FinalScore float64       `json:"final_score"`
}

// Scorer runs the restraint scoring pipeline: per-record informativeness,
// set-wide dispersion, and the final aggregate. It holds no per-run state,
// so one Scorer may score many sets concurrently.
type Scorer struct {
	decay  DecayFunc
	logger *slog.Logger
}

// NewScorer creates a Scorer with the given decay function.
func NewScorer(decay DecayFunc, logger *slog.Logger) *Scorer {
	if decay == nil {
		decay = ReciprocalDecay()
	}
	return &Scorer{decay: decay, logger: logger}
}

// Score validates the inputs and computes the full result. Identical
// inputs always produce an identical result. Validation errors surface
// as the typed errors from the restraint package; nothing is clamped
// silently.
func (s *Scorer) Score(c restraint.Constants, set restraint.Set) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Records: make([]RecordScore, len(set))}

	var sum float64
	for i, r := range set {
		if s.logger != nil && (r.SL < 0 || r.SL > c.Ls) {
			s.logger.Warn("sequence index outside peptide range",
				"record", r.ID, "sl", r.SL, "ls", c.Ls)
		}
		f := s.decay(r.Dij)
		omega := r.WI * f
		result.Records[i] = RecordScore{ID: r.ID, FDij: f, Omega: omega}
		sum += omega
	}
	result.MeanOmega = sum / float64(len(set))

	d := Analyze(c, set)
	result.SigmaP = d.SigmaP
	result.SigmaL = d.SigmaL

	// Clustered sets score zero no matter how confident the individual
	// restraints are: redundant restraints add no new constraint.
	result.FinalScore = result.MeanOmega * result.SigmaP * result.SigmaL

	return result, nil
}
