// Package frechet implements Fréchet distances between 2d polylines
// and the curve averaging built on top of the discrete one.
package frechet

import (
	"errors"

	"github.com/gasparian/curve-ann-go/dataset"
)

var (
	// ErrEmptyCurve returned when one of the curves has no vertices
	ErrEmptyCurve = errors.New("curve must contain at least one vertex")
)

const notComputed = -1.0

// Table is the dynamic programming matrix of the discrete Fréchet distance:
// cell [i][j] holds the distance between prefixes p[:i+1] and q[:j+1]
type Table [][]float64

// Rows returns the length of the first curve
func (t Table) Rows() int {
	return len(t)
}

// Cols returns the length of the second curve
func (t Table) Cols() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Distance returns the value of the last cell
func (t Table) Distance() float64 {
	return t[len(t)-1][len(t[0])-1]
}

func newTable(n, m int) Table {
	data := make([]float64, n*m)
	for i := range data {
		data[i] = notComputed
	}
	t := make(Table, n)
	for i := range t {
		t[i] = data[i*m : (i+1)*m]
	}
	return t
}

// DiscreteTable fills the whole matrix bottom-up; curves may have different lengths
func DiscreteTable(p, q []dataset.Point2d) (Table, error) {
	if len(p) == 0 || len(q) == 0 {
		return nil, ErrEmptyCurve
	}
	c := newTable(len(p), len(q))
	c[0][0] = p[0].Dist(q[0])
	for j := 1; j < len(q); j++ {
		c[0][j] = max(c[0][j-1], p[0].Dist(q[j]))
	}
	for i := 1; i < len(p); i++ {
		c[i][0] = max(c[i-1][0], p[i].Dist(q[0]))
		for j := 1; j < len(q); j++ {
			prev := min(c[i-1][j], min(c[i-1][j-1], c[i][j-1]))
			c[i][j] = max(prev, p[i].Dist(q[j]))
		}
	}
	return c, nil
}

// DiscreteDistance computes the discrete Fréchet distance keeping only two rows of the matrix
func DiscreteDistance(p, q []dataset.Point2d) (float64, error) {
	if len(p) == 0 || len(q) == 0 {
		return 0, ErrEmptyCurve
	}
	prev := make([]float64, len(q))
	curr := make([]float64, len(q))
	prev[0] = p[0].Dist(q[0])
	for j := 1; j < len(q); j++ {
		prev[j] = max(prev[j-1], p[0].Dist(q[j]))
	}
	for i := 1; i < len(p); i++ {
		curr[0] = max(prev[0], p[i].Dist(q[0]))
		for j := 1; j < len(q); j++ {
			curr[j] = max(min(prev[j], min(prev[j-1], curr[j-1])), p[i].Dist(q[j]))
		}
		prev, curr = curr, prev
	}
	return prev[len(q)-1], nil
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
