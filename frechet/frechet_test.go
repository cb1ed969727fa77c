package frechet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gasparian/curve-ann-go/dataset"
)

const tol = 1e-6

func pts(coords ...float64) []dataset.Point2d {
	res := make([]dataset.Point2d, len(coords)/2)
	for i := range res {
		res[i] = dataset.Point2d{X: coords[2*i], Y: coords[2*i+1]}
	}
	return res
}

func randomCurve(rnd *rand.Rand, n int) []dataset.Point2d {
	res := make([]dataset.Point2d, n)
	for i := range res {
		res[i] = dataset.Point2d{X: float64(i), Y: rnd.NormFloat64() * 10}
	}
	return res
}

func TestDiscreteDistance(t *testing.T) {
	t.Parallel()
	t.Run("Identical", func(t *testing.T) {
		d, err := DiscreteDistance(pts(0, 0, 1, 1), pts(0, 0, 1, 1))
		if err != nil {
			t.Fatal(err)
		}
		if d != 0 {
			t.Fatalf("Distance between identical curves must be exactly 0, got %v", d)
		}
	})
	t.Run("Known", func(t *testing.T) {
		p := pts(0, 0, 1, 0, 2, 0)
		q := pts(0, 1, 2, 1)
		d, _ := DiscreteDistance(p, q)
		if math.Abs(d-math.Sqrt2) > tol {
			t.Fatalf("Expected sqrt(2), got %v", d)
		}
	})
	t.Run("SymmetryAndTable", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(1))
		for i := 0; i < 20; i++ {
			p := randomCurve(rnd, 3+rnd.Intn(10))
			q := randomCurve(rnd, 3+rnd.Intn(10))
			d1, _ := DiscreteDistance(p, q)
			d2, _ := DiscreteDistance(q, p)
			if math.Abs(d1-d2) > tol || d1 < 0 {
				t.Fatalf("Distance must be symmetric and non-negative: %v vs %v", d1, d2)
			}
			table, err := DiscreteTable(p, q)
			if err != nil {
				t.Fatal(err)
			}
			if table.Rows() != len(p) || table.Cols() != len(q) {
				t.Fatal("Wrong table shape")
			}
			if math.Abs(table.Distance()-d1) > tol {
				t.Fatal("Table and the two rows version disagree")
			}
			for _, row := range table {
				for _, v := range row {
					if v == notComputed {
						t.Fatal("All cells must be filled")
					}
				}
			}
		}
	})
	t.Run("Empty", func(t *testing.T) {
		if _, err := DiscreteDistance(nil, pts(0, 0)); err != ErrEmptyCurve {
			t.Fatal("Empty curve must be rejected")
		}
		if _, err := DiscreteTable(pts(0, 0), nil); err != ErrEmptyCurve {
			t.Fatal("Empty curve must be rejected")
		}
	})
}

func TestContinuousDistance(t *testing.T) {
	t.Parallel()
	t.Run("Identical", func(t *testing.T) {
		d, err := ContinuousDistance(pts(0, 0, 1, 1, 2, 0), pts(0, 0, 1, 1, 2, 0))
		if err != nil {
			t.Fatal(err)
		}
		if d > tol {
			t.Fatalf("Expected 0, got %v", d)
		}
	})
	t.Run("ParallelSegments", func(t *testing.T) {
		d, _ := ContinuousDistance(pts(0, 0, 10, 0), pts(0, 3, 10, 3))
		if math.Abs(d-3) > tol {
			t.Fatalf("Expected 3, got %v", d)
		}
	})
	t.Run("Resampled", func(t *testing.T) {
		// extra vertices on the same line do not change the continuous distance
		d, _ := ContinuousDistance(pts(0, 0, 10, 0), pts(0, 0, 2, 0, 7, 0, 10, 0))
		if d > tol {
			t.Fatalf("Expected 0, got %v", d)
		}
		dd, _ := DiscreteDistance(pts(0, 0, 10, 0), pts(0, 0, 2, 0, 7, 0, 10, 0))
		if dd <= d {
			t.Fatal("Discrete distance must be larger here")
		}
	})
	t.Run("SinglePoint", func(t *testing.T) {
		d, _ := ContinuousDistance(pts(0, 0), pts(3, 4, 0, 1))
		if math.Abs(d-5) > tol {
			t.Fatalf("Expected 5, got %v", d)
		}
	})
	t.Run("Bounds", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(7))
		for i := 0; i < 20; i++ {
			p := randomCurve(rnd, 2+rnd.Intn(8))
			q := randomCurve(rnd, 2+rnd.Intn(8))
			c, _ := ContinuousDistance(p, q)
			c2, _ := ContinuousDistance(q, p)
			d, _ := DiscreteDistance(p, q)
			lo := math.Max(p[0].Dist(q[0]), p[len(p)-1].Dist(q[len(q)-1]))
			if c > d+tol || c < lo-tol {
				t.Fatalf("Continuous distance %v out of [%v, %v]", c, lo, d)
			}
			if math.Abs(c-c2) > 1e-4 {
				t.Fatalf("Continuous distance must be symmetric: %v vs %v", c, c2)
			}
		}
	})
}

func TestOptimalTraversal(t *testing.T) {
	t.Parallel()
	p := pts(0, 0, 1, 0, 2, 0)
	table, _ := DiscreteTable(p, p)
	tr := OptimalTraversal(table)
	expected := []Pair{{0, 0}, {1, 1}, {2, 2}}
	if len(tr) != len(expected) {
		t.Fatalf("Diagonal must be preferred, got %v", tr)
	}
	for i := range tr {
		if tr[i] != expected[i] {
			t.Fatalf("Wrong traversal %v", tr)
		}
	}

	q := pts(0, 0, 5, 0)
	table, _ = DiscreteTable(p, q)
	tr = OptimalTraversal(table)
	if tr[0] != (Pair{0, 0}) || tr[len(tr)-1] != (Pair{2, 1}) {
		t.Fatalf("Traversal must start at (0, 0) and end at the last cell, got %v", tr)
	}
	for i := 1; i < len(tr); i++ {
		di, dj := tr[i].I-tr[i-1].I, tr[i].J-tr[i-1].J
		if di < 0 || dj < 0 || di > 1 || dj > 1 || di+dj == 0 {
			t.Fatalf("Non monotone step in %v", tr)
		}
	}
}

func TestMeanCurve(t *testing.T) {
	t.Parallel()
	t.Run("Idempotence", func(t *testing.T) {
		p := pts(0, 0, 3, 1, 6, 0, 9, 4)
		mean, err := MeanCurve(p, p, DefaultFilterEps)
		if err != nil {
			t.Fatal(err)
		}
		expected := FilterCurve(p, DefaultFilterEps)
		if len(mean) != len(expected) {
			t.Fatalf("Mean of identical curves must be the curve itself: %v", mean)
		}
		for i := range mean {
			if mean[i] != expected[i] {
				t.Fatalf("Mean of identical curves must be the curve itself: %v", mean)
			}
		}
	})
	t.Run("Midpoints", func(t *testing.T) {
		mean, _ := MeanCurve(pts(0, 0, 10, 0), pts(0, 4, 10, 4), 0)
		if len(mean) != 2 || mean[0] != (dataset.Point2d{X: 0, Y: 2}) || mean[1] != (dataset.Point2d{X: 10, Y: 2}) {
			t.Fatalf("Wrong mean curve %v", mean)
		}
	})
	t.Run("Tournament", func(t *testing.T) {
		curves := [][]dataset.Point2d{
			pts(0, 0, 10, 0),
			pts(0, 4, 10, 4),
			pts(0, 0, 10, 0),
			pts(0, 4, 10, 4),
			pts(0, 2, 10, 2),
		}
		mean, err := MeanOfCurves(curves, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(mean) != 2 || math.Abs(mean[0].Y-2) > tol {
			t.Fatalf("Wrong mean of curves %v", mean)
		}
		if _, err := MeanOfCurves(nil, 0); err == nil {
			t.Fatal("Empty set of curves must be rejected")
		}
	})
}

func TestFilters(t *testing.T) {
	t.Parallel()
	filtered := FilterCurve(pts(0, 0, 0.5, 0, 1, 0, 5, 0), 1.0)
	if len(filtered) != 3 || filtered[1] != (dataset.Point2d{X: 1, Y: 0}) {
		t.Fatalf("Wrong filtering result %v", filtered)
	}
	mm := MinimaMaxima([]float64{0, 1, 2, 3, 1, 1, 0, 5})
	expected := []float64{0, 3, 0, 5}
	if len(mm) != len(expected) {
		t.Fatalf("Wrong minima/maxima result %v", mm)
	}
	for i := range mm {
		if mm[i] != expected[i] {
			t.Fatalf("Wrong minima/maxima result %v", mm)
		}
	}
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("Continuous")
	if err != nil || m != Continuous {
		t.Fatal("Failed to parse metric")
	}
	if _, err := ParseMetric("manhattan"); err != ErrUnknownMetric {
		t.Fatal("Unknown metric must be rejected")
	}
	d, _ := Discrete.Distance(pts(0, 0), pts(0, 1))
	if d != 1 {
		t.Fatal("Wrong distance")
	}
}
