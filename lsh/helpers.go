package lsh

import (
	"math"
	"math/rand"

	"github.com/gasparian/curve-ann-go/common"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

const (
	tol = 1e-6
	// fallbackWindow replaces degenerate (zero) sampled window or delta
	fallbackWindow = 1.0
	// Padding fills flattened grid curves up to the index dimension
	Padding = 10000.0
)

// ConvertTo64 __
func ConvertTo64(ar []float32) []float64 {
	newar := make([]float64, len(ar))
	for i, v := range ar {
		newar[i] = float64(v)
	}
	return newar
}

// ConvertToInt __
func ConvertToInt(ar []int32) []int {
	newar := make([]int, len(ar))
	for i, v := range ar {
		newar[i] = int(v)
	}
	return newar
}

// sampleSize is the quarter of the dataset, but at least one sample
func sampleSize(n int) int {
	s := n / 4
	if s < 1 {
		s = 1
	}
	return s
}

// randomPair draws two distinct indices from [0, n), n must be at least 2
func randomPair(rnd *rand.Rand, n int) (int, int) {
	i := rnd.Intn(n)
	j := rnd.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// SampleMeanDistance averages dist over n/4 random pairs of distinct elements
func SampleMeanDistance(rnd *rand.Rand, n int, dist func(i, j int) float64) (float64, error) {
	if n < 2 {
		return 0, common.ErrEmptyDataset
	}
	samples := make([]float64, sampleSize(n))
	for s := range samples {
		i, j := randomPair(rnd, n)
		samples[s] = dist(i, j)
	}
	return stat.Mean(samples, nil), nil
}

// TuneWindow returns factor * mean sampled distance; degenerate samples fall back to 1.0
func TuneWindow(rnd *rand.Rand, n int, factor float64, dist func(i, j int) float64, logger *zap.SugaredLogger) (float64, error) {
	mean, err := SampleMeanDistance(rnd, n, dist)
	if err != nil {
		return 0, err
	}
	w := factor * mean
	if w <= tol || math.IsNaN(w) || math.IsInf(w, 0) {
		common.LoggerOrNop(logger).Warnf("degenerate window size %v, falling back to %v", w, fallbackWindow)
		w = fallbackWindow
	}
	return w, nil
}

// TableSize is n / divisor, at least 1
func TableSize(n, divisor int) uint64 {
	if divisor <= 0 {
		divisor = 1
	}
	size := n / divisor
	if size < 1 {
		size = 1
	}
	return uint64(size)
}

// padOrTruncate fits the vector into dims coordinates
func padOrTruncate(vec []float64, dims int) []float64 {
	res := make([]float64, dims)
	n := copy(res, vec)
	for i := n; i < dims; i++ {
		res[i] = Padding
	}
	return res
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
