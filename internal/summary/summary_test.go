package summary

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{in: "mean", want: Mean},
		{in: "median", want: Median},
		{in: " Median ", want: Median},
		{in: "MEAN", want: Mean},
		{in: "mode", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				var ume *UnsupportedMethodError
				require.True(t, errors.As(err, &ume), "want UnsupportedMethodError, got %v", err)
				assert.Equal(t, tt.in, ume.Method)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMethodTitle(t *testing.T) {
	assert.Equal(t, "Mean", Mean.Title())
	assert.Equal(t, "Median", Median.Title())
}

func TestSummarize(t *testing.T) {
	inf := math.Inf(1)
	nan := math.NaN()

	tests := []struct {
		name   string
		speeds []float64
		method Method
		want   float64
		wantOK bool
	}{
		{name: "mean skips inf", speeds: []float64{3, inf, 5}, method: Mean, want: 4, wantOK: true},
		{name: "mean skips nan and -inf", speeds: []float64{nan, 2, math.Inf(-1), 4}, method: Mean, want: 3, wantOK: true},
		{name: "median odd", speeds: []float64{1, 2, 3}, method: Median, want: 2, wantOK: true},
		{name: "mean odd", speeds: []float64{1, 2, 3}, method: Mean, want: 2, wantOK: true},
		{name: "median even averages middle", speeds: []float64{4, 1, 3, 2}, method: Median, want: 2.5, wantOK: true},
		{name: "median unsorted", speeds: []float64{9, 1, 5}, method: Median, want: 5, wantOK: true},
		{name: "zero speeds are finite", speeds: []float64{0, 0}, method: Mean, want: 0, wantOK: true},
		{name: "only non-finite", speeds: []float64{inf, nan}, method: Mean, wantOK: false},
		{name: "empty", speeds: nil, method: Median, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Summarize(tt.speeds, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestSummarize_UnsupportedMethod(t *testing.T) {
	for _, speeds := range [][]float64{{1, 2}, nil} {
		_, ok, err := Summarize(speeds, Method("mode"))
		assert.False(t, ok)
		var ume *UnsupportedMethodError
		require.True(t, errors.As(err, &ume))
		assert.Equal(t, "mode", ume.Method)
		assert.Contains(t, err.Error(), `"mode"`)
	}
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2, 0}
	_, _, err := Summarize(in, Median)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2, 0}, in)
}

func TestSummarizeEntity(t *testing.T) {
	s, ok, err := SummarizeEntity("bee1", []float64{5, math.Inf(1), 0}, Mean)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Summary{EntityID: "bee1", Value: 2.5, Count: 2}, s)

	_, ok, err = SummarizeEntity("bee2", []float64{math.NaN()}, Mean)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	in := []Summary{
		{EntityID: "A", Value: 10.0},
		{EntityID: "B", Value: 10.0001},
		{EntityID: "C", Value: 0.5},
		{EntityID: "D", Value: 11},
		{EntityID: "E", Value: -1},
	}

	tests := []struct {
		name      string
		threshold float64
		wantIDs   []string
	}{
		{name: "inclusive boundary", threshold: 10.0, wantIDs: []string{"A", "C", "E"}},
		{name: "low threshold", threshold: 2, wantIDs: []string{"C", "E"}},
		{name: "nothing retained", threshold: -5, wantIDs: []string{}},
		{name: "everything retained", threshold: math.Inf(1), wantIDs: []string{"A", "B", "C", "D", "E"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(in, tt.threshold)
			if diff := cmp.Diff(tt.wantIDs, IDs(got)); diff != "" {
				t.Errorf("Filter IDs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_BoundaryPair(t *testing.T) {
	got := Filter([]Summary{{EntityID: "A", Value: 10.0}, {EntityID: "B", Value: 10.0001}}, 10.0)
	assert.Equal(t, []string{"A"}, IDs(got))
	assert.Equal(t, []float64{10.0}, Values(got))
}

func TestDescribe(t *testing.T) {
	var x []float64
	for i := 20; i >= 1; i-- {
		x = append(x, float64(i))
	}
	x = append(x, math.Inf(1), math.NaN())

	got := Describe(x)
	assert.Equal(t, 20, got.Count)
	assert.Equal(t, 1.0, got.Min)
	assert.Equal(t, 20.0, got.Max)
	assert.InDelta(t, 10.5, got.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(35), got.StdDev, 1e-12)
	assert.Equal(t, 10.0, got.P50)
	assert.Equal(t, 17.0, got.P85)
	assert.Equal(t, 19.0, got.P95)

	// input untouched
	assert.Equal(t, 20.0, x[0])
}

func TestDescribe_Small(t *testing.T) {
	assert.Equal(t, Stats{}, Describe(nil))
	assert.Equal(t, Stats{}, Describe([]float64{math.NaN()}))

	one := Describe([]float64{4})
	assert.Equal(t, Stats{Count: 1, Min: 4, Max: 4, Mean: 4, P50: 4, P85: 4, P95: 4}, one)
}
