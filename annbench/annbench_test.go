package annbench_test

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	bench "github.com/gasparian/curve-ann-go/annbench"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/lsh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecisionRecall(t *testing.T) {
	p, r := bench.PrecisionRecall([]int{1, 3, 5, 7}, []int{1, 2, 3, 4})
	assert.InDelta(t, 0.5, p, 1e-9)
	assert.InDelta(t, 0.5, r, 1e-9)

	// values falling between ground truth entries don't count
	p, r = bench.PrecisionRecall([]int{0, 2}, []int{1, 3})
	assert.Zero(t, p)
	assert.Zero(t, r)

	p, r = bench.PrecisionRecall(nil, nil)
	assert.Zero(t, p)
	assert.Zero(t, r)
}

func randomItems(rnd *rand.Rand, n, dims int) []dataset.Item {
	items := make([]dataset.Item, n)
	for i := range items {
		coords := make([]float64, dims)
		for j := range coords {
			coords[j] = rnd.Float64() * 100
		}
		items[i] = dataset.NewItem(coords)
	}
	return items
}

func TestEvaluate(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	items := randomItems(rnd, 200, 4)
	queries := randomItems(rnd, 20, 4)
	ids := make([]string, len(queries))
	vecs := make([][]float64, len(queries))
	for i, q := range queries {
		ids[i], vecs[i] = q.ID, q.Coords
	}

	exact := lsh.NewExact(items)
	index, err := lsh.NewLSH(lsh.Config{Seed: 2}, items)
	require.NoError(t, err)

	calls := 0
	report := bench.Evaluate("LSH_Vector", ids, vecs, bench.Searchers[[]float64]{
		Approx: func(q []float64) []lsh.Neighbor { return index.KNN(q, 3, 0) },
		Exact:  func(q []float64) []lsh.Neighbor { return exact.KNN(q, 3, 0) },
		Range:  func(q []float64) []lsh.Neighbor { return index.RangeSearch(q, 20, 0, nil) },
	}, func() { calls++ })

	assert.Equal(t, len(queries), calls)
	require.Len(t, report.Results, len(queries))
	assert.Equal(t, "LSH_Vector", report.Algorithm)
	for _, res := range report.Results {
		if !res.Found() {
			continue
		}
		require.True(t, res.HasRatio)
		assert.GreaterOrEqual(t, res.Ratio, 1.0-1e-9)
	}
	if report.NotFound < len(queries) {
		assert.GreaterOrEqual(t, report.MAF, report.AvgRatio)
		assert.GreaterOrEqual(t, report.AvgRatio, 1.0-1e-9)
	}

	// exact search compared to itself is perfect
	report = bench.Evaluate("Exact", ids, vecs, bench.Searchers[[]float64]{
		Approx: func(q []float64) []lsh.Neighbor { return exact.KNN(q, 3, 0) },
		Exact:  func(q []float64) []lsh.Neighbor { return exact.KNN(q, 3, 0) },
	}, nil)
	assert.Zero(t, report.NotFound)
	assert.InDelta(t, 1.0, report.MAF, 1e-9)
	assert.InDelta(t, 1.0, report.AvgRatio, 1e-9)
	assert.InDelta(t, 1.0, report.Precision, 1e-9)
	assert.InDelta(t, 1.0, report.Recall, 1e-9)
}

func TestWriteReport(t *testing.T) {
	report := &bench.Report{
		Algorithm: "Hypercube",
		Results: []bench.QueryResult{
			{
				QueryID: "q1",
				Approx:  []lsh.Neighbor{{Index: 0, ID: "A", Dist: 1}},
				Exact:   []lsh.Neighbor{{Index: 0, ID: "A", Dist: 1}},
				Range:   []lsh.Neighbor{{Index: 0, ID: "A", Dist: 1}, {Index: 1, ID: "B", Dist: 1.4}},
			},
			{
				QueryID: "q2",
				Approx:  []lsh.Neighbor{lsh.NullNeighbor()},
				Exact:   []lsh.Neighbor{{Index: 2, ID: "C", Dist: 3}},
			},
		},
		MAF: 1,
	}
	var buf bytes.Buffer
	require.NoError(t, bench.WriteReport(&buf, report))
	out := buf.String()
	for _, line := range []string{
		"Algorithm: Hypercube",
		"Query: q1",
		"Approximate Nearest neighbor: A",
		"True Nearest neighbor: A",
		"distanceApproximate: 1",
		"distanceTrue: 1",
		"R-near neighbors:\nA\nB",
		"Query: q2\nApproximate Nearest neighbor NOT FOUND",
		"tApproximateAverage:",
		"tTrueAverage:",
		"MAF: 1",
	} {
		assert.True(t, strings.Contains(out, line), "missing %q in\n%s", line, out)
	}
}

func TestFashionMnist(t *testing.T) {
	absPath, _ := filepath.Abs("../test-data/fashion-mnist-784-euclidean.hdf5")
	if _, err := os.Stat(absPath); err != nil {
		t.Skip("fashion mnist dataset is not downloaded")
	}
	b, err := bench.LoadHDF5(absPath, 5000, 20)
	require.NoError(t, err)
	require.Len(t, b.Train, 5000)
	require.Len(t, b.Test, 20)
	require.Len(t, b.Neighbors, 20)
	assert.Len(t, b.Train[0].Coords, 784)

	index, err := lsh.NewLSH(lsh.Config{Seed: 3}, b.Train)
	require.NoError(t, err)
	exact := lsh.NewExact(b.Train)
	ids := make([]string, len(b.Test))
	vecs := make([][]float64, len(b.Test))
	for i, q := range b.Test {
		ids[i], vecs[i] = q.ID, q.Coords
	}
	report := bench.Evaluate("LSH_Vector", ids, vecs, bench.Searchers[[]float64]{
		Approx: func(q []float64) []lsh.Neighbor { return index.KNN(q, 10, len(b.Train)/4) },
		Exact:  func(q []float64) []lsh.Neighbor { return exact.KNN(q, 10, 0) },
	}, nil)
	t.Logf("Precision: %v, Recall: %v, MAF: %v", report.Precision, report.Recall, report.MAF)
}
