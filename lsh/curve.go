package lsh

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring"
	"github.com/gasparian/curve-ann-go/common"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/frechet"
	"github.com/gasparian/curve-ann-go/store"
	"github.com/gasparian/curve-ann-go/store/kv"
	"go.uber.org/zap"
)

// CurveConfig holds parameters of the curve index
type CurveConfig struct {
	K int
	// L is the number of shifted grids (and hash tables)
	L int
	// Delta is the grid resolution, 0 means tuning it from the data
	Delta        float64
	Metric       frechet.Metric
	TableDivisor int
	WindowFactor float64
	Window       float64
	// QueryingTrick returns a candidate at once when its grid curve equals the query's one
	QueryingTrick bool
	Seed          int64
	Logger        *zap.SugaredLogger
}

// CurveDefaults returns config with the default parameters for the metric
func CurveDefaults(metric frechet.Metric) CurveConfig {
	cfg := CurveConfig{
		K:            4,
		L:            5,
		Metric:       metric,
		TableDivisor: 8,
		WindowFactor: 1.0,
	}
	if metric == frechet.Continuous {
		cfg.L = 1
		cfg.QueryingTrick = true
	}
	return cfg
}

func (c *CurveConfig) fillDefaults() {
	def := CurveDefaults(c.Metric)
	if c.K == 0 {
		c.K = def.K
	}
	if c.L == 0 {
		c.L = def.L
	}
	if c.TableDivisor == 0 {
		c.TableDivisor = def.TableDivisor
	}
	if c.WindowFactor == 0 {
		c.WindowFactor = def.WindowFactor
	}
}

func (c *CurveConfig) validate() error {
	if c.K < 0 || c.L < 0 || c.Delta < 0 || c.TableDivisor < 0 || c.WindowFactor < 0 || c.Window < 0 {
		return fmt.Errorf("k=%d L=%d delta=%v: %w", c.K, c.L, c.Delta, ErrBadParams)
	}
	return nil
}

// association keeps together the curve, its grid representation and the hashed vector
type association struct {
	curve int
	grid  []float64
	x     []float64
}

// CurveLSH indexes curves by snapping them to L randomly shifted grids
// and hashing the flattened grid curves with the G functions
type CurveLSH struct {
	config    CurveConfig
	curves    []dataset.Curve
	delta     float64
	window    float64
	dims      int
	tableSize uint64
	shifts    [][2]float64
	g         []*GFunc
	assoc     [][]association
	store     store.Store
	logger    *zap.SugaredLogger
}

// TuneDelta averages the distance between consecutive vertices over a quarter of the curves
func TuneDelta(rnd *rand.Rand, curves []dataset.Curve, logger *zap.SugaredLogger) (float64, error) {
	if len(curves) == 0 {
		return 0, common.ErrEmptyDataset
	}
	var sum float64
	var cnt int
	for s := sampleSize(len(curves)); s > 0; s-- {
		pts := curves[rnd.Intn(len(curves))].Points
		if len(pts) < 2 {
			continue
		}
		var avg float64
		for i := 1; i < len(pts); i++ {
			avg += pts[i-1].Dist(pts[i])
		}
		sum += avg / float64(len(pts)-1)
		cnt++
	}
	delta := 0.0
	if cnt > 0 {
		delta = sum / float64(cnt)
	}
	if delta <= tol {
		common.LoggerOrNop(logger).Warnf("degenerate grid delta %v, falling back to %v", delta, fallbackWindow)
		delta = fallbackWindow
	}
	return delta, nil
}

// NewCurveLSH builds L grids and hashes every curve into every table
func NewCurveLSH(config CurveConfig, curves []dataset.Curve) (*CurveLSH, error) {
	config.fillDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	if len(curves) == 0 {
		return nil, common.ErrEmptyDataset
	}
	maxLen := 0
	for _, c := range curves {
		if c.Len() == 0 {
			return nil, fmt.Errorf("curve %q: %w", c.ID, frechet.ErrEmptyCurve)
		}
		if c.Len() > maxLen {
			maxLen = c.Len()
		}
	}
	logger := common.LoggerOrNop(config.Logger)
	rnd := common.NewRand(config.Seed)

	delta := config.Delta
	if delta == 0 {
		var err error
		delta, err = TuneDelta(rnd, curves, logger)
		if err != nil {
			return nil, err
		}
	}
	window := config.Window
	if window == 0 {
		if len(curves) < 2 {
			window = fallbackWindow
		} else {
			var err error
			window, err = TuneWindow(rnd, len(curves), config.WindowFactor, func(i, j int) float64 {
				d, _ := frechet.DiscreteDistance(curves[i].Points, curves[j].Points)
				return d
			}, logger)
			if err != nil {
				return nil, err
			}
		}
	}
	tableSize := TableSize(len(curves), config.TableDivisor)
	index := &CurveLSH{
		config:    config,
		curves:    curves,
		delta:     delta,
		window:    window,
		dims:      2 * maxLen,
		tableSize: tableSize,
		shifts:    make([][2]float64, config.L),
		g:         make([]*GFunc, config.L),
		assoc:     make([][]association, config.L),
		store:     kv.NewKVStore(config.L, tableSize),
		logger:    logger,
	}
	largest := 0
	for t := 0; t < config.L; t++ {
		index.shifts[t] = [2]float64{rnd.Float64() * delta, rnd.Float64() * delta}
		g, err := NewGFunc(rnd, config.K, index.dims, window, tableSize)
		if err != nil {
			return nil, err
		}
		index.g[t] = g
		index.assoc[t] = make([]association, len(curves))
		for idx := range curves {
			grid := index.gridCurve(curves[idx].Points, t)
			a := association{
				curve: idx,
				grid:  grid,
				x:     padOrTruncate(grid, index.dims),
			}
			index.assoc[t][idx] = a
			bucket := g.Bucket(a.x)
			if err := index.store.SetHash(t, bucket, idx); err != nil {
				return nil, err
			}
			largest = maxInt(largest, index.store.BucketSize(t, bucket))
		}
	}
	logger.Debugf("curve lsh (%v): %d curves, %d grids, delta %.4f, window %.4f, largest bucket %d", config.Metric, len(curves), config.L, delta, window, largest)
	return index, nil
}

// Delta returns the grid resolution in use
func (c *CurveLSH) Delta() float64 {
	return c.delta
}

// Window returns the quantization window in use
func (c *CurveLSH) Window() float64 {
	return c.window
}

func (c *CurveLSH) snap(x, t float64) float64 {
	return math.Floor((x-t)/c.delta+0.5)*c.delta + t
}

// gridCurve maps the curve onto the grid of the table and flattens it
func (c *CurveLSH) gridCurve(points []dataset.Point2d, table int) []float64 {
	tx, ty := c.shifts[table][0], c.shifts[table][1]
	if c.config.Metric == frechet.Continuous {
		filtered := frechet.FilterCurve(points, 2*c.delta)
		flat := make([]float64, 0, 2*len(filtered))
		for _, p := range filtered {
			for _, v := range [2]float64{c.snap(p.X, tx), c.snap(p.Y, tx)} {
				if len(flat) == 0 || flat[len(flat)-1] != v {
					flat = append(flat, v)
				}
			}
		}
		return frechet.MinimaMaxima(flat)
	}
	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		x, y := c.snap(p.X, tx), c.snap(p.Y, ty)
		n := len(flat)
		if n >= 2 && flat[n-2] == x && flat[n-1] == y {
			continue
		}
		flat = append(flat, x, y)
	}
	return flat
}

func sameGrid(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *CurveLSH) distance(query dataset.Curve, idx int) (float64, bool) {
	d, err := c.config.Metric.Distance(query.Points, c.curves[idx].Points)
	if err != nil {
		return 0, false
	}
	return d, true
}

// visit walks over the query buckets of all tables, skipping already seen curves;
// onBucket sees the query grid and the bucket before the walk over it
func (c *CurveLSH) visit(query dataset.Curve, onBucket func(table int, grid []float64, bucket []int) bool, fn func(idx int) bool) {
	seen := roaring.New()
	for t, g := range c.g {
		grid := c.gridCurve(query.Points, t)
		it, err := c.store.GetHashIterator(t, g.Bucket(padOrTruncate(grid, c.dims)))
		if err != nil {
			continue
		}
		bucket := make([]int, 0)
		for idx, ok := it.Next(); ok; idx, ok = it.Next() {
			bucket = append(bucket, idx)
		}
		if onBucket != nil && !onBucket(t, grid, bucket) {
			return
		}
		for _, idx := range bucket {
			if !seen.CheckedAdd(uint32(idx)) {
				continue
			}
			if !fn(idx) {
				return
			}
		}
	}
}

// KNN returns n slots sorted by distance, unfilled slots are null.
// With the querying trick on, a single nearest neighbor search stops at the
// first stored curve having the same grid curve as the query
func (c *CurveLSH) KNN(query dataset.Curve, n, budget int) []Neighbor {
	nearest := newNearestList(n)
	if query.Len() == 0 {
		return nearest.result()
	}
	b := newBudget(budget)
	var onBucket func(table int, grid []float64, bucket []int) bool
	if c.config.QueryingTrick && n == 1 {
		onBucket = func(table int, grid []float64, bucket []int) bool {
			for _, idx := range bucket {
				if !sameGrid(grid, c.assoc[table][idx].grid) {
					continue
				}
				if d, ok := c.distance(query, idx); ok {
					nearest = newNearestList(1)
					nearest.push(Neighbor{Index: idx, ID: c.curves[idx].ID, Dist: d})
					return false
				}
			}
			return true
		}
	}
	c.visit(query, onBucket, func(idx int) bool {
		d, ok := c.distance(query, idx)
		if !ok {
			return true
		}
		nearest.push(Neighbor{Index: idx, ID: c.curves[idx].ID, Dist: d})
		return !b.spend()
	})
	return nearest.result()
}

// Nearest returns the approximate nearest curve, null if nothing was found
func (c *CurveLSH) Nearest(query dataset.Curve, budget int) Neighbor {
	return c.KNN(query, 1, budget)[0]
}

// RangeSearch returns curves strictly closer than radius, sorted by distance
func (c *CurveLSH) RangeSearch(query dataset.Curve, radius float64, budget int, exclude *roaring.Bitmap) []Neighbor {
	res := make([]Neighbor, 0)
	if query.Len() == 0 {
		return res
	}
	b := newBudget(budget)
	c.visit(query, nil, func(idx int) bool {
		if excluded(exclude, idx) {
			return true
		}
		d, ok := c.distance(query, idx)
		if !ok {
			return true
		}
		if d < radius {
			res = append(res, Neighbor{Index: idx, ID: c.curves[idx].ID, Dist: d})
		}
		return !b.spend()
	})
	sortByDist(res)
	return res
}
