package annbench

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/gasparian/curve-ann-go/common"
	"github.com/gasparian/curve-ann-go/lsh"
	"gonum.org/v1/gonum/stat"
)

// Searchers of the evaluated index; Range is optional
type Searchers[T any] struct {
	Approx func(query T) []lsh.Neighbor
	Exact  func(query T) []lsh.Neighbor
	Range  func(query T) []lsh.Neighbor
}

// QueryResult holds both answers to a single query
type QueryResult struct {
	QueryID    string
	Approx     []lsh.Neighbor
	Exact      []lsh.Neighbor
	Range      []lsh.Neighbor
	ApproxTime time.Duration
	TrueTime   time.Duration
	// Ratio of the approximate and the true nearest distances, valid if HasRatio
	Ratio     float64
	HasRatio  bool
	Precision float64
	Recall    float64
}

// Found reports whether the approximate search returned anything
func (q *QueryResult) Found() bool {
	return len(q.Approx) > 0 && !q.Approx[0].IsNull()
}

// Report aggregates the evaluation over the query set
type Report struct {
	Algorithm string
	Results   []QueryResult
	// averages in microseconds
	ApproxAverage float64
	TrueAverage   float64
	AvgRatio      float64
	// MAF is the max approximation factor over the queries
	MAF       float64
	Precision float64
	Recall    float64
	NotFound  int
}

func ratio(approx, exact lsh.Neighbor) (float64, bool) {
	if approx.IsNull() || exact.IsNull() {
		return 0, false
	}
	if exact.Dist <= common.Tol {
		if approx.Dist <= common.Tol {
			return 1, true
		}
		return 0, false
	}
	return approx.Dist / exact.Dist, true
}

func sortedIndices(res []lsh.Neighbor) []int {
	indices := make([]int, 0, len(res))
	for _, nb := range res {
		if !nb.IsNull() {
			indices = append(indices, nb.Index)
		}
	}
	sort.Ints(indices)
	return indices
}

// Evaluate runs every query through both searchers; onQuery, if set, is called after each query
func Evaluate[T any](algorithm string, ids []string, queries []T, s Searchers[T], onQuery func()) *Report {
	report := &Report{
		Algorithm: algorithm,
		Results:   make([]QueryResult, len(queries)),
	}
	approxTimes := make([]float64, len(queries))
	trueTimes := make([]float64, len(queries))
	ratios := make([]float64, 0, len(queries))
	precisions := make([]float64, 0, len(queries))
	recalls := make([]float64, 0, len(queries))
	for i, query := range queries {
		res := &report.Results[i]
		res.QueryID = ids[i]

		start := time.Now()
		res.Approx = s.Approx(query)
		res.ApproxTime = time.Since(start)

		start = time.Now()
		res.Exact = s.Exact(query)
		res.TrueTime = time.Since(start)

		if s.Range != nil {
			res.Range = s.Range(query)
		}
		approxTimes[i] = float64(res.ApproxTime.Microseconds())
		trueTimes[i] = float64(res.TrueTime.Microseconds())

		if !res.Found() {
			report.NotFound++
		} else if len(res.Exact) > 0 {
			res.Ratio, res.HasRatio = ratio(res.Approx[0], res.Exact[0])
			if res.HasRatio {
				ratios = append(ratios, res.Ratio)
			}
		}
		res.Precision, res.Recall = PrecisionRecall(sortedIndices(res.Approx), sortedIndices(res.Exact))
		precisions = append(precisions, res.Precision)
		recalls = append(recalls, res.Recall)
		if onQuery != nil {
			onQuery()
		}
	}
	if len(queries) > 0 {
		report.ApproxAverage = stat.Mean(approxTimes, nil)
		report.TrueAverage = stat.Mean(trueTimes, nil)
		report.Precision = stat.Mean(precisions, nil)
		report.Recall = stat.Mean(recalls, nil)
	}
	if len(ratios) > 0 {
		report.AvgRatio = stat.Mean(ratios, nil)
		report.MAF = math.Inf(-1)
		for _, r := range ratios {
			report.MAF = math.Max(report.MAF, r)
		}
	}
	return report
}

// WriteReport prints the report in the plain text format of the search tool
func WriteReport(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Algorithm: %s\n\n", r.Algorithm)
	for i := range r.Results {
		res := &r.Results[i]
		fmt.Fprintf(bw, "Query: %s\n", res.QueryID)
		if !res.Found() {
			fmt.Fprintf(bw, "Approximate Nearest neighbor NOT FOUND\n\n")
			continue
		}
		for rank, nb := range res.Approx {
			if nb.IsNull() {
				break
			}
			suffix := ""
			if len(res.Approx) > 1 {
				suffix = fmt.Sprintf("-%d", rank+1)
			}
			fmt.Fprintf(bw, "Approximate Nearest neighbor%s: %s\n", suffix, nb.ID)
			if rank < len(res.Exact) && !res.Exact[rank].IsNull() {
				fmt.Fprintf(bw, "True Nearest neighbor%s: %s\n", suffix, res.Exact[rank].ID)
				fmt.Fprintf(bw, "distanceApproximate: %g\n", nb.Dist)
				fmt.Fprintf(bw, "distanceTrue: %g\n", res.Exact[rank].Dist)
			} else {
				fmt.Fprintf(bw, "distanceApproximate: %g\n", nb.Dist)
			}
		}
		if res.Range != nil {
			fmt.Fprintf(bw, "R-near neighbors:\n")
			for _, nb := range res.Range {
				fmt.Fprintf(bw, "%s\n", nb.ID)
			}
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "\ntApproximateAverage: %g (μs)\n", r.ApproxAverage)
	fmt.Fprintf(bw, "tTrueAverage: %g (μs)\n", r.TrueAverage)
	fmt.Fprintf(bw, "AverageRatio: %g\n", r.AvgRatio)
	fmt.Fprintf(bw, "MAF: %g\n", r.MAF)
	return bw.Flush()
}
