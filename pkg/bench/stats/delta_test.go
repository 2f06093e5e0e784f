package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltas(t *testing.T) {
	tests := []struct {
		name     string
		series   []int64
		want     []int64
		wantMean float64
	}{
		{
			name:     "three-point-sweep",
			series:   []int64{48356, 53120, 57980},
			want:     []int64{4764, 4860},
			wantMean: 4812,
		},
		{
			name:     "decreasing",
			series:   []int64{100, 90, 95},
			want:     []int64{-10, 5},
			wantMean: -2.5,
		},
		{
			name:     "flat",
			series:   []int64{9, 9, 9},
			want:     []int64{0, 0},
			wantMean: 0,
		},
		{
			name:     "single-round",
			series:   []int64{48356},
			want:     nil,
			wantMean: 0,
		},
		{
			name:     "empty",
			series:   nil,
			want:     nil,
			wantMean: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas, mean := Deltas(tt.series)
			assert.Equal(t, tt.want, deltas)
			assert.InDelta(t, tt.wantMean, mean, 1e-9)
		})
	}
}

func TestMinMaxMean(t *testing.T) {
	series := []int64{5, 3, 9, 7}

	assert.Equal(t, int64(3), Min(series))
	assert.Equal(t, int64(9), Max(series))
	assert.InDelta(t, 6.0, Mean(series), 1e-9)
	assert.InDelta(t, 0.0, Mean(nil), 1e-9)
}
