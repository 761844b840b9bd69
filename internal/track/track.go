// Package track holds the per-entity position model and the instantaneous
// speed estimator that runs over it.
package track

import (
	"math"
	"sort"
	"time"
)

// Sample is one observation of one tracked entity.
type Sample struct {
	EntityID  string
	Timestamp time.Time
	X         float64
	Y         float64
}

// Track is the time-ordered sequence of samples sharing an EntityID.
type Track struct {
	EntityID string
	Samples  []Sample
}

// Len returns the number of samples in the track.
func (t Track) Len() int { return len(t.Samples) }

// GroupByEntity splits samples into tracks, one per entity, in order of each
// entity's first appearance. Each track is sorted by timestamp; samples with
// equal timestamps keep their input order. The input slice is not modified.
func GroupByEntity(samples []Sample) []Track {
	index := make(map[string]int)
	var tracks []Track
	for _, s := range samples {
		i, ok := index[s.EntityID]
		if !ok {
			i = len(tracks)
			index[s.EntityID] = i
			tracks = append(tracks, Track{EntityID: s.EntityID})
		}
		tracks[i].Samples = append(tracks[i].Samples, s)
	}
	for i := range tracks {
		sortSamples(tracks[i].Samples)
	}
	return tracks
}

// CountEntities returns the number of distinct entity IDs in samples.
func CountEntities(samples []Sample) int {
	seen := make(map[string]struct{})
	for _, s := range samples {
		seen[s.EntityID] = struct{}{}
	}
	return len(seen)
}

func sortSamples(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}

// SpeedSample is the speed over one consecutive pair of samples, attached to
// the later sample of the pair.
type SpeedSample struct {
	Sample
	Distance float64
	Elapsed  time.Duration
	// Speed is Distance per second of Elapsed. It is +Inf or NaN when Elapsed
	// is zero.
	Speed float64
}

// Finite reports whether Speed is a usable real number.
func (s SpeedSample) Finite() bool {
	return !math.IsInf(s.Speed, 0) && !math.IsNaN(s.Speed)
}

// EstimateSpeeds returns one SpeedSample per adjacent pair of the track's
// samples after ordering them by timestamp. A track with fewer than two
// samples yields nil. The track itself is not modified.
func EstimateSpeeds(t Track) []SpeedSample {
	if len(t.Samples) < 2 {
		return nil
	}
	ordered := make([]Sample, len(t.Samples))
	copy(ordered, t.Samples)
	sortSamples(ordered)

	out := make([]SpeedSample, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		dist := math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		elapsed := cur.Timestamp.Sub(prev.Timestamp)
		out = append(out, SpeedSample{
			Sample:   cur,
			Distance: dist,
			Elapsed:  elapsed,
			Speed:    dist / elapsed.Seconds(),
		})
	}
	return out
}

// Speeds extracts the raw speed values, finite or not.
func Speeds(samples []SpeedSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Speed
	}
	return out
}
