package scoring

import (
	"math"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
)

// Dispersion holds the two set-wide spread statistics: sigma_P across the
// protein surface and sigma_L along the peptide sequence.
type Dispersion struct {
	SigmaP float64 `json:"sigma_p"`
	SigmaL float64 `json:"sigma_l"`
}

// Analyze computes both dispersion statistics for the set. Coordinates are
// normalized by the protein extents and sequence indices by the peptide
// length before taking population variances, so the result is scale-free.
// A single-record set legitimately yields zero dispersion on both axes.
func Analyze(c restraint.Constants, set restraint.Set) Dispersion {
	n := len(set)
	if n == 0 {
		return Dispersion{}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	sls := make([]float64, n)
	for i, r := range set {
		xs[i] = r.X / c.Lx
		ys[i] = r.Y / c.Ly
		zs[i] = r.Z / c.Lz
		sls[i] = r.SL / c.Ls
	}

	return Dispersion{
		SigmaP: math.Sqrt(popVariance(xs) + popVariance(ys) + popVariance(zs)),
		SigmaL: math.Sqrt(popVariance(sls)),
	}
}

// popVariance is the population variance (divide by n, not n-1): the
// restraint set is the entire population under consideration, not a sample.
func popVariance(vals []float64) float64 {
	n := float64(len(vals))
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= n

	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return ss / n
}
