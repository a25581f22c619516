package simulator

import (
	"math"
	"math/rand"
	"time"
)

// Source supplies the raw uniform variates for every random draw in the
// simulation. Ticks are strictly sequential, so implementations need not be
// safe for concurrent use. Tests inject a scripted source to force branch
// selection; production wiring uses a time-seeded math/rand.
type Source interface {
	Float64() float64
}

// NewSource returns a time-seeded Source.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// uniform draws from [min, max).
func uniform(src Source, min, max float64) float64 {
	return min + src.Float64()*(max-min)
}

// triangular draws from a triangular distribution over [min, max] peaked at
// mode, via the inverse CDF.
func triangular(src Source, min, max, mode float64) float64 {
	if max <= min {
		return min
	}
	u := src.Float64()
	cut := (mode - min) / (max - min)
	if u < cut {
		return min + math.Sqrt(u*(max-min)*(mode-min))
	}
	return max - math.Sqrt((1-u)*(max-min)*(max-mode))
}

// chance performs a Bernoulli draw with probability p.
func chance(src Source, p float64) bool {
	return src.Float64() < p
}
