package lsh

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/gasparian/curve-ann-go/common"
	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/store"
	"github.com/gasparian/curve-ann-go/store/kv"
	"go.uber.org/zap"
)

// CubeConfig holds parameters of the randomized projection on the hypercube
type CubeConfig struct {
	// K is the hypercube dimension
	K int
	// M is the default number of elements checked per query, negative means no limit
	M int
	// Probes is the maximum number of vertices visited per query
	Probes       int
	WindowFactor float64
	Window       float64
	Seed         int64
	Logger       *zap.SugaredLogger
}

// CubeDefaults returns config with the default parameters
func CubeDefaults() CubeConfig {
	return CubeConfig{
		K:            14,
		M:            10,
		Probes:       2,
		WindowFactor: 1.0,
	}
}

func (c *CubeConfig) fillDefaults() {
	def := CubeDefaults()
	if c.K == 0 {
		c.K = def.K
	}
	if c.M == 0 {
		c.M = def.M
	}
	if c.Probes == 0 {
		c.Probes = def.Probes
	}
	if c.WindowFactor == 0 {
		c.WindowFactor = def.WindowFactor
	}
}

func (c *CubeConfig) validate() error {
	if c.K < 0 || c.Probes < 0 || c.WindowFactor < 0 || c.Window < 0 {
		return fmt.Errorf("k=%d probes=%d: %w", c.K, c.Probes, ErrBadParams)
	}
	if c.K > maxCubeDims {
		return fmt.Errorf("k=%d > %d: %w", c.K, maxCubeDims, cubeDimsErr)
	}
	return nil
}

// Hypercube keeps a single table over 2^k vertices
type Hypercube struct {
	config   CubeConfig
	items    []dataset.Item
	dims     int
	window   float64
	vertices uint64
	f        *FFunc
	store    store.Store
	logger   *zap.SugaredLogger
}

// NewHypercube projects every item onto a vertex of the hypercube
func NewHypercube(config CubeConfig, items []dataset.Item) (*Hypercube, error) {
	config.fillDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrEmptyDataset
	}
	dims := items[0].Dim()
	for _, it := range items {
		if it.Dim() != dims {
			return nil, common.ErrDimensionsMismatch
		}
	}
	logger := common.LoggerOrNop(config.Logger)
	rnd := common.NewRand(config.Seed)

	window := config.Window
	if window == 0 {
		if len(items) < 2 {
			window = fallbackWindow
		} else {
			var err error
			window, err = TuneWindow(rnd, len(items), config.WindowFactor, func(i, j int) float64 {
				return common.L2(items[i].Coords, items[j].Coords)
			}, logger)
			if err != nil {
				return nil, err
			}
		}
	}
	f, err := NewFFunc(rnd, config.K, dims, window)
	if err != nil {
		return nil, err
	}
	vertices := uint64(1) << uint(config.K)
	cube := &Hypercube{
		config:   config,
		items:    items,
		dims:     dims,
		window:   window,
		vertices: vertices,
		f:        f,
		store:    kv.NewKVStore(1, vertices),
		logger:   logger,
	}
	largest := 0
	for idx := range items {
		vertex := f.Vertex(items[idx].Coords)
		if err := cube.store.SetHash(0, vertex, idx); err != nil {
			return nil, err
		}
		largest = maxInt(largest, cube.store.BucketSize(0, vertex))
	}
	logger.Debugf("hypercube: %d items over %d vertices, window %.4f, largest vertex %d", len(items), vertices, window, largest)
	return cube, nil
}

// Window returns the quantization window in use
func (c *Hypercube) Window() float64 {
	return c.window
}

// FindBucket hashes the query with the same F instance used for the dataset
func (c *Hypercube) FindBucket(query []float64) uint64 {
	return c.f.Vertex(query)
}

// nextCombination returns the next bigger number with the same popcount (Gosper's hack)
func nextCombination(x uint64) uint64 {
	c := x & -x
	r := x + c
	return (((r ^ x) >> 2) / c) | r
}

// ProbesInThreshold enumerates vertices by increasing Hamming distance from bucket
// until Probes vertices are collected or the whole cube is visited
func (c *Hypercube) ProbesInThreshold(bucket uint64) []uint64 {
	limit := uint64(c.config.Probes)
	if limit > c.vertices {
		limit = c.vertices
	}
	res := make([]uint64, 0, limit)
	k := uint(c.config.K)
	for dist := uint(0); dist <= k && uint64(len(res)) < limit; dist++ {
		if dist == 0 {
			res = append(res, bucket)
			continue
		}
		for mask := uint64(1)<<dist - 1; mask < c.vertices; mask = nextCombination(mask) {
			res = append(res, bucket^mask)
			if uint64(len(res)) >= limit {
				break
			}
		}
	}
	return res
}

func (c *Hypercube) checkQuery(query []float64) bool {
	if len(query) != c.dims {
		c.logger.Warnf("query of dimension %d, index dimension is %d", len(query), c.dims)
		return false
	}
	return true
}

func (c *Hypercube) budget(limit int) *budget {
	if limit == 0 {
		limit = c.config.M
	}
	return newBudget(limit)
}

func (c *Hypercube) visit(query []float64, fn func(idx int) bool) {
	for _, vertex := range c.ProbesInThreshold(c.FindBucket(query)) {
		it, err := c.store.GetHashIterator(0, vertex)
		if err != nil {
			continue
		}
		for idx, ok := it.Next(); ok; idx, ok = it.Next() {
			if !fn(idx) {
				return
			}
		}
	}
}

// KNN returns n slots sorted by distance, unfilled slots are null.
// budget 0 falls back to M from the config, negative means no limit
func (c *Hypercube) KNN(query []float64, n, budget int) []Neighbor {
	nearest := newNearestList(n)
	if !c.checkQuery(query) {
		return nearest.result()
	}
	b := c.budget(budget)
	c.visit(query, func(idx int) bool {
		nearest.push(Neighbor{
			Index: idx,
			ID:    c.items[idx].ID,
			Dist:  common.L2(query, c.items[idx].Coords),
		})
		return !b.spend()
	})
	return nearest.result()
}

// RangeSearch returns elements strictly closer than radius, sorted by distance
func (c *Hypercube) RangeSearch(query []float64, radius float64, budget int, exclude *roaring.Bitmap) []Neighbor {
	res := make([]Neighbor, 0)
	if !c.checkQuery(query) {
		return res
	}
	b := c.budget(budget)
	c.visit(query, func(idx int) bool {
		if excluded(exclude, idx) {
			return true
		}
		dist := common.L2(query, c.items[idx].Coords)
		if dist < radius {
			res = append(res, Neighbor{Index: idx, ID: c.items[idx].ID, Dist: dist})
		}
		return !b.spend()
	})
	sortByDist(res)
	return res
}
