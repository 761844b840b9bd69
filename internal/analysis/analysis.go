// Package analysis runs the speed pipeline: group samples by entity,
// estimate instantaneous speeds, summarize each entity and filter by a
// threshold.
package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/bee.report/internal/loader"
	"github.com/banshee-data/bee.report/internal/monitoring"
	"github.com/banshee-data/bee.report/internal/summary"
	"github.com/banshee-data/bee.report/internal/track"
)

// Options controls a pipeline run.
type Options struct {
	Method    summary.Method
	Threshold float64
	// Workers bounds the per-entity goroutines. Zero means GOMAXPROCS.
	Workers int
}

// Validate checks the method and threshold.
func (o Options) Validate() error {
	if err := o.Method.Validate(); err != nil {
		return err
	}
	if math.IsNaN(o.Threshold) || math.IsInf(o.Threshold, 0) {
		return fmt.Errorf("threshold must be finite, got %v", o.Threshold)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", o.Workers)
	}
	return nil
}

// EntitySpeeds is one entity's speed sequence.
type EntitySpeeds struct {
	EntityID string
	Speeds   []track.SpeedSample
}

// FilteredSet is the retained entities with their summaries and the track and
// speed data restricted to them, all in discovery order.
type FilteredSet struct {
	Summaries []summary.Summary
	Tracks    []track.Track
	Speeds    []EntitySpeeds
}

// IDs returns the retained entity IDs.
func (f FilteredSet) IDs() []string { return summary.IDs(f.Summaries) }

// Values returns the retained summary values.
func (f FilteredSet) Values() []float64 { return summary.Values(f.Summaries) }

// Len returns the number of retained entities.
func (f FilteredSet) Len() int { return len(f.Summaries) }

// Result is the output of Run. Tracks and Speeds cover every entity;
// Summaries omits entities without a finite speed.
type Result struct {
	Method    summary.Method
	Threshold float64
	Samples   int
	Tracks    []track.Track
	Speeds    []EntitySpeeds
	Summaries []summary.Summary
	Filtered  FilteredSet
	// Stats describes Filtered.Values().
	Stats   summary.Stats
	Elapsed time.Duration

	retained map[string]bool
}

// Run executes the pipeline over samples. An invalid option fails before any
// work is done and no partial result is returned on error.
func Run(ctx context.Context, samples []track.Sample, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	tracks := track.GroupByEntity(samples)
	speeds := make([]EntitySpeeds, len(tracks))
	sums := make([]summary.Summary, len(tracks))
	has := make([]bool, len(tracks))

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tr := range tracks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ss := track.EstimateSpeeds(tr)
			speeds[i] = EntitySpeeds{EntityID: tr.EntityID, Speeds: ss}
			s, ok, err := summary.SummarizeEntity(tr.EntityID, track.Speeds(ss), opts.Method)
			if err != nil {
				return fmt.Errorf("summarize %s: %w", tr.EntityID, err)
			}
			sums[i], has[i] = s, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Method:    opts.Method,
		Threshold: opts.Threshold,
		Samples:   len(samples),
		Tracks:    tracks,
		Speeds:    speeds,
	}
	for i := range tracks {
		if has[i] {
			res.Summaries = append(res.Summaries, sums[i])
		}
	}
	res.Filtered, res.retained = restrict(res, summary.Filter(res.Summaries, opts.Threshold))
	res.Stats = summary.Describe(res.Filtered.Values())
	res.Elapsed = time.Since(start)

	monitoring.Logf("analysed %d samples: %d entities, %d summarized, %d retained at %s <= %g",
		len(samples), len(tracks), len(res.Summaries), res.Filtered.Len(), opts.Method, opts.Threshold)
	return res, nil
}

func restrict(res *Result, kept []summary.Summary) (FilteredSet, map[string]bool) {
	keep := make(map[string]bool, len(kept))
	for _, s := range kept {
		keep[s.EntityID] = true
	}
	fs := FilteredSet{Summaries: kept}
	for i, tr := range res.Tracks {
		if keep[tr.EntityID] {
			fs.Tracks = append(fs.Tracks, tr)
			fs.Speeds = append(fs.Speeds, res.Speeds[i])
		}
	}
	return fs, keep
}

// Entities returns the number of distinct entities seen.
func (r *Result) Entities() int { return len(r.Tracks) }

// SummaryMap maps entity ID to summary value for the retained entities.
func (r *Result) SummaryMap() map[string]float64 {
	m := make(map[string]float64, r.Filtered.Len())
	for _, s := range r.Filtered.Summaries {
		m[s.EntityID] = s.Value
	}
	return m
}

// Retained reports whether id passed the filter.
func (r *Result) Retained(id string) bool {
	return r.retained[id]
}

// RunSource loads path with l and runs the pipeline. The method is checked
// before the source is opened.
func RunSource(ctx context.Context, l loader.Loader, path string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	samples, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return Run(ctx, samples, opts)
}
