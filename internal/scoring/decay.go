package scoring

import (
	"fmt"
	"math"
)

// DecayFunc maps an interatomic distance to a confidence factor. Every
// implementation must be monotonically non-increasing, return 1 at d=0,
// and stay within (0,1].
type DecayFunc func(dij float64) float64

// DefaultD0 is the reference distance for the exponential decay, below
// which a restraint is treated as fully confident.
const DefaultD0 = 1.8

// ReciprocalDecay returns the default decay 1/(1+d).
func ReciprocalDecay() DecayFunc {
	return func(d float64) float64 {
		return 1.0 / (1.0 + d)
	}
}

// ExpDecay returns exp(-(d-d0)), clamped to 1 for d <= d0 so the factor
// never exceeds full confidence.
func ExpDecay(d0 float64) DecayFunc {
	return func(d float64) float64 {
		if d <= d0 {
			return 1.0
		}
		return math.Exp(-(d - d0))
	}
}

// DecayForName resolves a configured decay name to its function. A
// negative or non-finite d0 is rejected for the exp form: it would shift
// the plateau below zero distance and break f(0)=1.
func DecayForName(name string, d0 float64) (DecayFunc, error) {
	switch name {
	case "", "reciprocal":
		return ReciprocalDecay(), nil
	case "exp":
		if d0 < 0 || math.IsNaN(d0) || math.IsInf(d0, 0) {
			return nil, fmt.Errorf("exp decay requires d0 >= 0, got %g", d0)
		}
		return ExpDecay(d0), nil
	default:
		return nil, fmt.Errorf("unknown decay function %q", name)
	}
}
