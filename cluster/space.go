package cluster

import (
	"math"

	"github.com/RoaringBitmap/roaring"
	"github.com/gasparian/curve-ann-go/common"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/frechet"
	"github.com/gasparian/curve-ann-go/lsh"
	"gonum.org/v1/gonum/floats"
)

// Space is the set of elements being clustered together with its metric
// and the way to average a group of its elements
type Space[T any] interface {
	Len() int
	At(idx int) T
	ID(idx int) string
	Dist(a, b T) float64
	// Mean averages members; ok is false for an empty group
	Mean(members []T) (mean T, ok bool)
}

// RangeSearcher is an index able to answer range queries over the same elements as the space
type RangeSearcher[T any] interface {
	RangeSearch(query T, radius float64, budget int, exclude *roaring.Bitmap) []lsh.Neighbor
}

// VectorSpace clusters dataset items with the euclidean metric
type VectorSpace struct {
	items []dataset.Item
}

// NewVectorSpace wraps the items; they must share one dimension
func NewVectorSpace(items []dataset.Item) (*VectorSpace, error) {
	if len(items) == 0 {
		return nil, common.ErrEmptyDataset
	}
	for _, it := range items {
		if it.Dim() != items[0].Dim() {
			return nil, common.ErrDimensionsMismatch
		}
	}
	return &VectorSpace{items: items}, nil
}

func (s *VectorSpace) Len() int {
	return len(s.items)
}

func (s *VectorSpace) At(idx int) []float64 {
	return s.items[idx].Coords
}

func (s *VectorSpace) ID(idx int) string {
	return s.items[idx].ID
}

func (s *VectorSpace) Dist(a, b []float64) float64 {
	return common.L2(a, b)
}

// Mean accumulates member/T for every member
func (s *VectorSpace) Mean(members [][]float64) ([]float64, bool) {
	if len(members) == 0 {
		return nil, false
	}
	mean := make([]float64, len(members[0]))
	scale := 1 / float64(len(members))
	for _, m := range members {
		floats.AddScaled(mean, scale, m)
	}
	return mean, true
}

// CurveSpace clusters curves with the selected Fréchet metric;
// groups are averaged along optimal traversals
type CurveSpace struct {
	curves    []dataset.Curve
	metric    frechet.Metric
	filterEps float64
}

// NewCurveSpace wraps the curves. filterEps prunes vertices of mean curves,
// 0 means frechet.DefaultFilterEps
func NewCurveSpace(curves []dataset.Curve, metric frechet.Metric, filterEps float64) (*CurveSpace, error) {
	if len(curves) == 0 {
		return nil, common.ErrEmptyDataset
	}
	for _, c := range curves {
		if c.Len() == 0 {
			return nil, frechet.ErrEmptyCurve
		}
	}
	if filterEps == 0 {
		filterEps = frechet.DefaultFilterEps
	}
	return &CurveSpace{curves: curves, metric: metric, filterEps: filterEps}, nil
}

func (s *CurveSpace) Len() int {
	return len(s.curves)
}

func (s *CurveSpace) At(idx int) dataset.Curve {
	return s.curves[idx]
}

func (s *CurveSpace) ID(idx int) string {
	return s.curves[idx].ID
}

// Dist is +Inf for curves the metric can't compare
func (s *CurveSpace) Dist(a, b dataset.Curve) float64 {
	d, err := s.metric.Distance(a.Points, b.Points)
	if err != nil {
		return math.Inf(1)
	}
	return d
}

// Mean reduces the members pairwise into one mean curve with a generated id
func (s *CurveSpace) Mean(members []dataset.Curve) (dataset.Curve, bool) {
	if len(members) == 0 {
		return dataset.Curve{}, false
	}
	pts := make([][]dataset.Point2d, len(members))
	for i, m := range members {
		pts[i] = m.Points
	}
	mean, err := frechet.MeanOfCurves(pts, s.filterEps)
	if err != nil || len(mean) == 0 {
		return dataset.Curve{}, false
	}
	return dataset.NewCurve(mean), true
}
