package lsh

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/gasparian/curve-ann-go/common"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/frechet"
)

// Exact is the brute force search over the vector dataset, used as the ground truth
type Exact struct {
	items []dataset.Item
}

// NewExact wraps the dataset
func NewExact(items []dataset.Item) *Exact {
	return &Exact{items: items}
}

// KNN scans the whole dataset; budget is ignored
func (e *Exact) KNN(query []float64, n, budget int) []Neighbor {
	nearest := newNearestList(n)
	for idx := range e.items {
		if len(e.items[idx].Coords) != len(query) {
			continue
		}
		dist := common.L2(query, e.items[idx].Coords)
		if dist < nearest.worst() {
			nearest.push(Neighbor{Index: idx, ID: e.items[idx].ID, Dist: dist})
		}
	}
	return nearest.result()
}

// RangeSearch returns all elements strictly closer than radius
func (e *Exact) RangeSearch(query []float64, radius float64, budget int, exclude *roaring.Bitmap) []Neighbor {
	res := make([]Neighbor, 0)
	for idx := range e.items {
		if excluded(exclude, idx) || len(e.items[idx].Coords) != len(query) {
			continue
		}
		dist := common.L2(query, e.items[idx].Coords)
		if dist < radius {
			res = append(res, Neighbor{Index: idx, ID: e.items[idx].ID, Dist: dist})
		}
	}
	sortByDist(res)
	return res
}

// ExactCurves is the brute force curve search with the selected Fréchet metric
type ExactCurves struct {
	curves []dataset.Curve
	metric frechet.Metric
}

// NewExactCurves wraps the curves
func NewExactCurves(curves []dataset.Curve, metric frechet.Metric) *ExactCurves {
	return &ExactCurves{curves: curves, metric: metric}
}

// KNN scans every curve; budget is ignored
func (e *ExactCurves) KNN(query dataset.Curve, n, budget int) []Neighbor {
	nearest := newNearestList(n)
	for idx := range e.curves {
		dist, err := e.metric.Distance(query.Points, e.curves[idx].Points)
		if err != nil {
			continue
		}
		nearest.push(Neighbor{Index: idx, ID: e.curves[idx].ID, Dist: dist})
	}
	return nearest.result()
}

// Nearest returns the single exact nearest curve
func (e *ExactCurves) Nearest(query dataset.Curve) Neighbor {
	return e.KNN(query, 1, 0)[0]
}

// RangeSearch returns all curves strictly closer than radius
func (e *ExactCurves) RangeSearch(query dataset.Curve, radius float64, budget int, exclude *roaring.Bitmap) []Neighbor {
	res := make([]Neighbor, 0)
	for idx := range e.curves {
		if excluded(exclude, idx) {
			continue
		}
		dist, err := e.metric.Distance(query.Points, e.curves[idx].Points)
		if err != nil {
			continue
		}
		if dist < radius {
			res = append(res, Neighbor{Index: idx, ID: e.curves[idx].ID, Dist: dist})
		}
	}
	sortByDist(res)
	return res
}
