package summary

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary is one entity's reduced speed.
type Summary struct {
	EntityID string  `json:"entity_id"`
	Value    float64 `json:"value"`
	// Count is the number of finite speeds that went into Value.
	Count int `json:"speed_count"`
}

// Finite returns the finite values of speeds in their original order.
func Finite(speeds []float64) []float64 {
	out := make([]float64, 0, len(speeds))
	for _, v := range speeds {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Summarize drops non-finite speeds and reduces the rest with method. ok is
// false when nothing finite remains, in which case the entity has no
// summary. The method is checked before the values, so an unsupported method
// fails even for an empty input.
func Summarize(speeds []float64, method Method) (value float64, ok bool, err error) {
	if err := method.Validate(); err != nil {
		return 0, false, err
	}
	finite := Finite(speeds)
	if len(finite) == 0 {
		return 0, false, nil
	}
	switch method {
	case Median:
		return median(finite), true, nil
	default:
		return stat.Mean(finite, nil), true, nil
	}
}

// median averages the two middle values when the count is even.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SummarizeEntity is Summarize for a named entity.
func SummarizeEntity(entityID string, speeds []float64, method Method) (Summary, bool, error) {
	v, ok, err := Summarize(speeds, method)
	if err != nil || !ok {
		return Summary{}, false, err
	}
	return Summary{EntityID: entityID, Value: v, Count: len(Finite(speeds))}, true, nil
}

// Filter keeps the summaries whose Value is at most threshold, in input
// order.
func Filter(summaries []Summary, threshold float64) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if s.Value <= threshold {
			out = append(out, s)
		}
	}
	return out
}

// Values extracts the summary values in order.
func Values(summaries []Summary) []float64 {
	out := make([]float64, len(summaries))
	for i, s := range summaries {
		out[i] = s.Value
	}
	return out
}

// IDs extracts the entity IDs in order.
func IDs(summaries []Summary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.EntityID
	}
	return out
}
