package cluster

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// InitializePP seeds k centers: the first one uniformly, every next one with
// probability proportional to the squared distance to the nearest chosen center,
// normalized by the largest such distance. Returns indices of the chosen elements
func InitializePP[T any](rnd *rand.Rand, space Space[T], k int) []int {
	n := space.Len()
	chosen := make([]int, 0, k)
	chosen = append(chosen, rnd.Intn(n))

	d := make([]float64, n)
	for i := range d {
		d[i] = math.Inf(1)
	}
	p := make([]float64, n)
	cum := make([]float64, n)
	for len(chosen) < k {
		last := space.At(chosen[len(chosen)-1])
		for i := range d {
			d[i] = math.Min(d[i], space.Dist(space.At(i), last))
		}
		maxD := floats.Max(d)
		if maxD <= 0 || math.IsInf(maxD, 1) {
			chosen = append(chosen, rnd.Intn(n))
			continue
		}
		for i, v := range d {
			p[i] = (v / maxD) * (v / maxD)
		}
		floats.CumSum(cum, p)
		// r lies in (0, total], so zero weight elements are never picked
		r := (1 - rnd.Float64()) * cum[n-1]
		idx := sort.SearchFloat64s(cum, r)
		if idx >= n {
			idx = n - 1
		}
		chosen = append(chosen, idx)
	}
	return chosen
}
