package lsh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/frechet"
)

func randomSeries(rnd *rand.Rand, n, length int) []dataset.Curve {
	items := make([]dataset.Item, n)
	for i := range items {
		coords := make([]float64, length)
		level := rnd.Float64() * 100
		for j := range coords {
			coords[j] = level + rnd.NormFloat64()*5
		}
		items[i] = dataset.NewItem(coords)
	}
	return dataset.CurvesFromItems(items)
}

func TestTuneDelta(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(1))
	curves := []dataset.Curve{
		{ID: "a", Points: []dataset.Point2d{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 6, Y: 8}}},
	}
	delta, err := TuneDelta(rnd, curves, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(delta-5.0) > tol {
		t.Fatalf("Expected delta 5, got %v", delta)
	}
	delta, _ = TuneDelta(rnd, []dataset.Curve{{ID: "p", Points: []dataset.Point2d{{X: 1, Y: 1}}}}, nil)
	if delta != fallbackWindow {
		t.Fatal("Degenerate delta must fall back")
	}
	if _, err := TuneDelta(rnd, nil, nil); err == nil {
		t.Fatal("Empty dataset must be rejected")
	}
}

func TestGridCurve(t *testing.T) {
	t.Parallel()
	curves := []dataset.Curve{{ID: "a", Points: []dataset.Point2d{{X: 0, Y: 0}, {X: 0.1, Y: 0.1}, {X: 2.2, Y: 0}}}}
	index, err := NewCurveLSH(CurveConfig{Delta: 1.0, L: 1, Seed: 2}, curves)
	if err != nil {
		t.Fatal(err)
	}
	index.shifts[0] = [2]float64{0, 0}
	grid := index.gridCurve(curves[0].Points, 0)
	expected := []float64{0, 0, 2, 0}
	if !sameGrid(grid, expected) {
		t.Fatalf("Expected %v, got %v", expected, grid)
	}
	x := padOrTruncate(grid, 8)
	if len(x) != 8 || x[4] != Padding || x[7] != Padding {
		t.Fatalf("Grid vector must be padded: %v", x)
	}
	if len(padOrTruncate(x, 2)) != 2 {
		t.Fatal("Long vectors must be truncated")
	}
}

func testCurveIndex(t *testing.T, metric frechet.Metric, trick bool) {
	rnd := rand.New(rand.NewSource(3))
	curves := randomSeries(rnd, 40, 12)
	index, err := NewCurveLSH(CurveConfig{
		Metric:        metric,
		L:             3,
		QueryingTrick: trick,
		Seed:          4,
	}, curves)
	if err != nil {
		t.Fatal(err)
	}
	if index.Delta() <= 0 || index.Window() <= 0 {
		t.Fatal("Delta and window must be positive")
	}
	exact := NewExactCurves(curves, metric)
	for _, idx := range []int{0, 7, 21} {
		query := curves[idx].Copy()
		query.ID = "query"
		nn := index.Nearest(query, 0)
		if nn.IsNull() {
			t.Fatal("Curve stored in the index must be found")
		}
		// the trick may stop at another curve snapped onto the same grid
		if !trick && nn.Dist > 1e-6 {
			t.Fatalf("Expected zero distance to the stored copy, got %v", nn.Dist)
		}
		if truth := exact.Nearest(query); truth.Dist > 1e-6 {
			t.Fatal("Exact search must find the stored copy")
		}
	}
	// perturbed queries are never better than the exact answer
	for i := 0; i < 10; i++ {
		query := curves[rnd.Intn(len(curves))].Copy()
		for j := range query.Points {
			query.Points[j].Y += rnd.NormFloat64()
		}
		res := index.KNN(query, 3, 0)
		if len(res) != 3 {
			t.Fatal("Must return exactly n slots")
		}
		truth := exact.Nearest(query)
		if !res[0].IsNull() && res[0].Dist < truth.Dist-1e-6 {
			t.Fatalf("Approximate distance %v is less than the exact one %v", res[0].Dist, truth.Dist)
		}
	}
}

func TestCurveLSHDiscrete(t *testing.T) {
	t.Parallel()
	testCurveIndex(t, frechet.Discrete, false)
	testCurveIndex(t, frechet.Discrete, true)
}

func TestCurveLSHContinuous(t *testing.T) {
	t.Parallel()
	testCurveIndex(t, frechet.Continuous, true)
}

func TestCurveRangeSearch(t *testing.T) {
	t.Parallel()
	curves := []dataset.Curve{
		{ID: "a", Points: []dataset.Point2d{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		{ID: "b", Points: []dataset.Point2d{{X: 0, Y: 1}, {X: 1, Y: 1}}},
		{ID: "c", Points: []dataset.Point2d{{X: 0, Y: 50}, {X: 1, Y: 50}}},
	}
	index, err := NewCurveLSH(CurveConfig{Delta: 1.0, Seed: 5}, curves)
	if err != nil {
		t.Fatal(err)
	}
	exact := NewExactCurves(curves, frechet.Discrete)
	query := dataset.Curve{ID: "q", Points: []dataset.Point2d{{X: 0, Y: 0}, {X: 1, Y: 0}}}
	// a single bucket per table holds everything
	for _, res := range [][]Neighbor{
		index.RangeSearch(query, 2.0, 0, nil),
		exact.RangeSearch(query, 2.0, 0, nil),
	} {
		if len(res) != 2 || res[0].ID != "a" || res[1].ID != "b" {
			t.Fatalf("Expected a and b, got %+v", res)
		}
	}
	res := index.RangeSearch(query, 2.0, 0, roaring.BitmapOf(0))
	if len(res) != 1 || res[0].ID != "b" {
		t.Fatalf("Excluded curve returned: %+v", res)
	}
	if len(index.RangeSearch(dataset.Curve{}, 2.0, 0, nil)) != 0 || !index.Nearest(dataset.Curve{}, 0).IsNull() {
		t.Fatal("Empty query must give empty results")
	}
	if _, err := NewCurveLSH(CurveConfig{}, []dataset.Curve{{ID: "empty"}}); err == nil {
		t.Fatal("Empty curve must be rejected")
	}
}
