// Package stats holds the small numeric helpers behind the benchmark
// summary tables.
package stats

// Deltas computes the successive differences of a series and their mean.
// The series is expected to be ordered by instance count. A series with
// fewer than two points has no deltas and a zero mean.
func Deltas(series []int64) ([]int64, float64) {
	if len(series) < 2 {
		return nil, 0
	}

	deltas := make([]int64, 0, len(series)-1)
	prev := series[0]
	for _, v := range series[1:] {
		deltas = append(deltas, v-prev)
		prev = v
	}

	var sum int64
	for _, d := range deltas {
		sum += d
	}

	return deltas, float64(sum) / float64(len(deltas))
}

// Min returns the smallest value of a non-empty series.
func Min(series []int64) int64 {
	m := series[0]
	for _, v := range series[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value of a non-empty series.
func Max(series []int64) int64 {
	m := series[0]
	for _, v := range series[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Mean returns the arithmetic mean of a series, or 0 for an empty one.
func Mean(series []int64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum int64
	for _, v := range series {
		sum += v
	}
	return float64(sum) / float64(len(series))
}
