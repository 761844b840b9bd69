package track

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

func sample(id string, sec, x, y float64) Sample {
	return Sample{EntityID: id, Timestamp: at(sec), X: x, Y: y}
}

func TestEstimateSpeeds_ShortTracks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		track Track
	}{
		{name: "empty", track: Track{EntityID: "a"}},
		{name: "single", track: Track{EntityID: "a", Samples: []Sample{sample("a", 0, 1, 1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, EstimateSpeeds(tt.track))
		})
	}
}

func TestEstimateSpeeds_CountIsLenMinusOne(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 20; n++ {
		tr := Track{EntityID: "bee"}
		for i := 0; i < n; i++ {
			tr.Samples = append(tr.Samples, sample("bee", float64(i), rng.Float64()*100, rng.Float64()*100))
		}
		want := n - 1
		if want < 0 {
			want = 0
		}
		assert.Len(t, EstimateSpeeds(tr), want, "track of %d samples", n)
	}
}

func TestEstimateSpeeds_Scenario(t *testing.T) {
	t.Parallel()

	tr := Track{EntityID: "bee1", Samples: []Sample{
		sample("bee1", 0, 0, 0),
		sample("bee1", 1, 3, 4),
		sample("bee1", 2, 3, 4),
	}}
	got := EstimateSpeeds(tr)
	require.Len(t, got, 2)

	assert.Equal(t, []float64{5, 0}, Speeds(got))
	assert.Equal(t, 5.0, got[0].Distance)
	assert.Equal(t, time.Second, got[0].Elapsed)
	// attached to the later sample of each pair
	assert.Equal(t, at(1), got[0].Timestamp)
	assert.Equal(t, at(2), got[1].Timestamp)
}

func TestEstimateSpeeds_OrderInvariant(t *testing.T) {
	t.Parallel()

	sorted := []Sample{
		sample("b", 0, 0, 0),
		sample("b", 0.5, 1, 0),
		sample("b", 2, 1, 3),
		sample("b", 2.25, 4, 7),
		sample("b", 5, 4, 7),
	}
	want := EstimateSpeeds(Track{EntityID: "b", Samples: sorted})

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]Sample(nil), sorted...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := EstimateSpeeds(Track{EntityID: "b", Samples: shuffled})
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("speeds differ for shuffled input (-want +got):\n%s", diff)
		}
	}
}

func TestEstimateSpeeds_ZeroElapsed(t *testing.T) {
	t.Parallel()

	moved := EstimateSpeeds(Track{EntityID: "a", Samples: []Sample{
		sample("a", 1, 0, 0),
		sample("a", 1, 1, 1),
	}})
	require.Len(t, moved, 1)
	assert.True(t, math.IsInf(moved[0].Speed, 1))
	assert.False(t, moved[0].Finite())

	still := EstimateSpeeds(Track{EntityID: "a", Samples: []Sample{
		sample("a", 1, 2, 2),
		sample("a", 1, 2, 2),
	}})
	require.Len(t, still, 1)
	assert.True(t, math.IsNaN(still[0].Speed))
	assert.False(t, still[0].Finite())
}

func TestEstimateSpeeds_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []Sample{sample("a", 2, 1, 0), sample("a", 0, 0, 0), sample("a", 1, 0, 1)}
	before := append([]Sample(nil), in...)
	EstimateSpeeds(Track{EntityID: "a", Samples: in})
	assert.Equal(t, before, in)
}

func TestGroupByEntity(t *testing.T) {
	t.Parallel()

	in := []Sample{
		sample("b", 2, 0, 0),
		sample("a", 1, 0, 0),
		sample("b", 1, 5, 5),
		sample("c", 0, 1, 1),
		sample("a", 0, 2, 2),
	}
	before := append([]Sample(nil), in...)

	got := GroupByEntity(in)
	want := []Track{
		{EntityID: "b", Samples: []Sample{sample("b", 1, 5, 5), sample("b", 2, 0, 0)}},
		{EntityID: "a", Samples: []Sample{sample("a", 0, 2, 2), sample("a", 1, 0, 0)}},
		{EntityID: "c", Samples: []Sample{sample("c", 0, 1, 1)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupByEntity mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, before, in, "input must not be reordered")
}

func TestGroupByEntity_StableOnEqualTimestamps(t *testing.T) {
	t.Parallel()

	in := []Sample{
		sample("a", 1, 10, 0),
		sample("a", 0, 0, 0),
		sample("a", 1, 20, 0),
	}
	got := GroupByEntity(in)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{0, 10, 20}, []float64{got[0].Samples[0].X, got[0].Samples[1].X, got[0].Samples[2].X})
}

func TestGroupByEntity_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, GroupByEntity(nil))
}

func TestCountEntities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []Sample
		want    int
	}{
		{name: "none", want: 0},
		{name: "one entity", samples: []Sample{sample("a", 0, 0, 0), sample("a", 1, 0, 0)}, want: 1},
		{name: "three entities", samples: []Sample{sample("a", 0, 0, 0), sample("b", 0, 0, 0), sample("c", 0, 0, 0), sample("b", 1, 0, 0)}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountEntities(tt.samples))
		})
	}
}
