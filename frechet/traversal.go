package frechet

import (
	"github.com/gasparian/curve-ann-go/dataset"
)

// DefaultFilterEps is the threshold used to prune vertices of averaged curves
const DefaultFilterEps = 1.0

// Pair matches vertex I of the first curve with vertex J of the second one
type Pair struct {
	I, J int
}

// OptimalTraversal backtracks the coupling through the filled table
// from the last cell to (0, 0) and returns it in forward order.
// The diagonal step wins ties
func OptimalTraversal(c Table) []Pair {
	if c.Rows() == 0 || c.Cols() == 0 {
		return nil
	}
	i, j := c.Rows()-1, c.Cols()-1
	rev := make([]Pair, 0, i+j+1)
	rev = append(rev, Pair{i, j})
	for i > 0 && j > 0 {
		ni, nj := i-1, j-1
		best := c[i-1][j-1]
		if c[i-1][j] < best {
			ni, nj, best = i-1, j, c[i-1][j]
		}
		if c[i][j-1] < best {
			ni, nj = i, j-1
		}
		i, j = ni, nj
		rev = append(rev, Pair{i, j})
	}
	for ; i > 0; i-- {
		rev = append(rev, Pair{i - 1, j})
	}
	for ; j > 0; j-- {
		rev = append(rev, Pair{i, j - 1})
	}
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	return rev
}

// MeanCurve averages two curves: midpoints of the matched vertices along the
// optimal traversal, pruned with FilterCurve(eps)
func MeanCurve(p, q []dataset.Point2d, eps float64) ([]dataset.Point2d, error) {
	c, err := DiscreteTable(p, q)
	if err != nil {
		return nil, err
	}
	traversal := OptimalTraversal(c)
	mean := make([]dataset.Point2d, len(traversal))
	for t, pair := range traversal {
		mean[t] = p[pair.I].Mid(q[pair.J])
	}
	return FilterCurve(mean, eps), nil
}

// MeanOfCurves reduces the curves pairwise, level by level, until one mean curve is left
func MeanOfCurves(curves [][]dataset.Point2d, eps float64) ([]dataset.Point2d, error) {
	if len(curves) == 0 {
		return nil, ErrEmptyCurve
	}
	level := curves
	for len(level) > 1 {
		next := make([][]dataset.Point2d, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			mean, err := MeanCurve(level[i], level[i+1], eps)
			if err != nil {
				return nil, err
			}
			next = append(next, mean)
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	res := make([]dataset.Point2d, len(level[0]))
	copy(res, level[0])
	return res, nil
}

// FilterCurve removes b from every consecutive triple a, b, c when |a-b| <= eps and |b-c| <= eps.
// The input slice is not modified
func FilterCurve(curve []dataset.Point2d, eps float64) []dataset.Point2d {
	res := make([]dataset.Point2d, 0, len(curve))
	for _, pt := range curve {
		res = append(res, pt)
		for len(res) >= 3 {
			a, b, c := res[len(res)-3], res[len(res)-2], res[len(res)-1]
			if a.Dist(b) > eps || b.Dist(c) > eps {
				break
			}
			res[len(res)-2] = c
			res = res[:len(res)-1]
		}
	}
	return res
}

// MinimaMaxima keeps only the endpoints and the strict local extrema of the sequence:
// every v[i] lying within [min(v[i-1], v[i+1]), max(v[i-1], v[i+1])] is dropped
func MinimaMaxima(v []float64) []float64 {
	res := make([]float64, 0, len(v))
	for _, x := range v {
		res = append(res, x)
		for len(res) >= 3 {
			a, b, c := res[len(res)-3], res[len(res)-2], res[len(res)-1]
			if b < min(a, c) || b > max(a, c) {
				break
			}
			res[len(res)-2] = c
			res = res[:len(res)-1]
		}
	}
	return res
}
