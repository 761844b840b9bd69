package summary

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes the distribution of a set of summary values.
type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P85    float64 `json:"p85"`
	P95    float64 `json:"p95"`
}

// Describe computes Stats over the finite members of values. The zero Stats
// is returned when there are none.
func Describe(values []float64) Stats {
	x := Finite(values)
	if len(x) == 0 {
		return Stats{}
	}
	sort.Float64s(x)
	s := Stats{
		Count: len(x),
		Min:   floats.Min(x),
		Max:   floats.Max(x),
		Mean:  stat.Mean(x, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, x, nil),
		P85:   stat.Quantile(0.85, stat.Empirical, x, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, x, nil),
	}
	if len(x) > 1 {
		s.StdDev = stat.StdDev(x, nil)
	}
	return s
}
