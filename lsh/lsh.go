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

// Config holds all needed constants for creating the LSH index
type Config struct {
	// K is the number of H functions combined by every G
	K int
	// L is the number of hash tables
	L int
	// TableDivisor sets table size to dataset size / TableDivisor
	TableDivisor int
	// WindowFactor multiplies the sampled mean distance
	WindowFactor float64
	// Window overrides the sampled window when positive
	Window float64
	// QueryingTrick skips candidates whose full G id differs from the query's one
	QueryingTrick bool
	// Seed of the random source, 0 means seeding from the clock
	Seed   int64
	Logger *zap.SugaredLogger
}

// LSHDefaults returns config with the default parameters
func LSHDefaults() Config {
	return Config{
		K:            4,
		L:            5,
		TableDivisor: 2,
		WindowFactor: 1.0,
	}
}

func (c *Config) fillDefaults() {
	def := LSHDefaults()
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

func (c *Config) validate() error {
	if c.K < 0 || c.L < 0 || c.TableDivisor < 0 || c.WindowFactor < 0 || c.Window < 0 {
		return fmt.Errorf("k=%d L=%d divisor=%d: %w", c.K, c.L, c.TableDivisor, ErrBadParams)
	}
	return nil
}

// LSH holds L independent (G function, hash table) pairs over the vector dataset
type LSH struct {
	config    Config
	items     []dataset.Item
	dims      int
	window    float64
	tableSize uint64
	g         []*GFunc
	ids       [][]uint64
	store     store.Store
	logger    *zap.SugaredLogger
}

// NewLSH tunes the window and hashes every item into all L tables.
// Items are referenced, not copied, and must stay unchanged while the index is used
func NewLSH(config Config, items []dataset.Item) (*LSH, error) {
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
	tableSize := TableSize(len(items), config.TableDivisor)

	index := &LSH{
		config:    config,
		items:     items,
		dims:      dims,
		window:    window,
		tableSize: tableSize,
		g:         make([]*GFunc, config.L),
		store:     kv.NewKVStore(config.L, tableSize),
		logger:    logger,
	}
	if config.QueryingTrick {
		index.ids = make([][]uint64, config.L)
	}
	largest := 0
	for t := range index.g {
		g, err := NewGFunc(rnd, config.K, dims, window, tableSize)
		if err != nil {
			return nil, err
		}
		index.g[t] = g
		if config.QueryingTrick {
			index.ids[t] = make([]uint64, len(items))
		}
		for idx := range items {
			id := g.ID(items[idx].Coords)
			if config.QueryingTrick {
				index.ids[t][idx] = id
			}
			bucket := g.BucketOfID(id)
			if err := index.store.SetHash(t, bucket, idx); err != nil {
				return nil, err
			}
			largest = maxInt(largest, index.store.BucketSize(t, bucket))
		}
	}
	logger.Debugf("lsh index: %d items, %d tables of %d buckets, window %.4f, largest bucket %d", len(items), config.L, tableSize, window, largest)
	return index, nil
}

// Window returns the quantization window in use
func (l *LSH) Window() float64 {
	return l.window
}

// TableSize returns number of buckets per table
func (l *LSH) TableSize() uint64 {
	return l.tableSize
}

func (l *LSH) checkQuery(query []float64) bool {
	if len(query) != l.dims {
		l.logger.Warnf("query of dimension %d, index dimension is %d", len(query), l.dims)
		return false
	}
	return true
}

// visit walks over the query buckets of all tables, skipping already seen elements;
// fn returns false to stop the walk
func (l *LSH) visit(query []float64, fn func(idx int) bool) {
	seen := roaring.New()
	for t, g := range l.g {
		id := g.ID(query)
		it, err := l.store.GetHashIterator(t, g.BucketOfID(id))
		if err != nil {
			continue
		}
		for idx, ok := it.Next(); ok; idx, ok = it.Next() {
			if l.config.QueryingTrick && l.ids[t][idx] != id {
				continue
			}
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
// budget limits the number of evaluated elements, 0 means no limit
func (l *LSH) KNN(query []float64, n, budget int) []Neighbor {
	nearest := newNearestList(n)
	if !l.checkQuery(query) {
		return nearest.result()
	}
	b := newBudget(budget)
	l.visit(query, func(idx int) bool {
		nearest.push(Neighbor{
			Index: idx,
			ID:    l.items[idx].ID,
			Dist:  common.L2(query, l.items[idx].Coords),
		})
		return !b.spend()
	})
	return nearest.result()
}

// RangeSearch returns elements strictly closer than radius, sorted by distance.
// Elements from exclude are neither evaluated nor counted against the budget
func (l *LSH) RangeSearch(query []float64, radius float64, budget int, exclude *roaring.Bitmap) []Neighbor {
	res := make([]Neighbor, 0)
	if !l.checkQuery(query) {
		return res
	}
	b := newBudget(budget)
	l.visit(query, func(idx int) bool {
		if excluded(exclude, idx) {
			return true
		}
		dist := common.L2(query, l.items[idx].Coords)
		if dist < radius {
			res = append(res, Neighbor{Index: idx, ID: l.items[idx].ID, Dist: dist})
		}
		return !b.spend()
	})
	sortByDist(res)
	return res
}
