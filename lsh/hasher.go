package lsh

import (
	"errors"
	"math"
	"math/rand"

	"github.com/gasparian/curve-ann-go/common"
)

var (
	// ErrBadParams returned by constructors on invalid configs
	ErrBadParams        = errors.New("bad index parameters")
	dimensionsNumberErr = errors.New("dimensions number must be a positive integer")
	windowSizeErr       = errors.New("window size must be positive")
	cubeDimsErr         = errors.New("hypercube dimension is too large")
)

const (
	// gModulus is the prime-like modulus of the G function, 2^32 - 5
	gModulus uint64 = 1<<32 - 5
	// maxCubeDims bounds hypercube table to 2^maxCubeDims vertices
	maxCubeDims = 24
)

// hasher is one member of the H family: floor((p·v + t) / w)
type hasher struct {
	v []float64
	t float64
	w float64
}

func newHasher(rnd *rand.Rand, dims int, w float64) hasher {
	v := make([]float64, dims)
	for i := range v {
		v[i] = rnd.NormFloat64()
	}
	return hasher{
		v: v,
		t: rnd.Float64() * w,
		w: w,
	}
}

func (h *hasher) hash(vec []float64) int64 {
	prod := common.Dot(vec, h.v)
	return int64(math.Floor((prod + h.t) / h.w))
}

// HFamily holds k independent hashers, drawn once at construction
type HFamily struct {
	dims    int
	hashers []hasher
}

// NewHFamily draws k gaussian projections of size dims with offsets in [0, w)
func NewHFamily(rnd *rand.Rand, k, dims int, w float64) (*HFamily, error) {
	if dims <= 0 {
		return nil, dimensionsNumberErr
	}
	if k <= 0 {
		return nil, ErrBadParams
	}
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return nil, windowSizeErr
	}
	hf := &HFamily{
		dims:    dims,
		hashers: make([]hasher, k),
	}
	for i := range hf.hashers {
		hf.hashers[i] = newHasher(rnd, dims, w)
	}
	return hf, nil
}

// Dims returns expected size of the input vectors
func (hf *HFamily) Dims() int {
	return hf.dims
}

// ProduceKH returns k scalars of the vector
func (hf *HFamily) ProduceKH(vec []float64) []int64 {
	res := make([]int64, len(hf.hashers))
	for i := range hf.hashers {
		res[i] = hf.hashers[i].hash(vec)
	}
	return res
}

// GFunc combines k H values into one id: sum(r_i * h_i) mod M
type GFunc struct {
	h         *HFamily
	r         []uint64
	tableSize uint64
}

// NewGFunc draws the H family and the coefficients r_i in [1, M)
func NewGFunc(rnd *rand.Rand, k, dims int, w float64, tableSize uint64) (*GFunc, error) {
	if tableSize == 0 {
		return nil, ErrBadParams
	}
	hf, err := NewHFamily(rnd, k, dims, w)
	if err != nil {
		return nil, err
	}
	r := make([]uint64, k)
	for i := range r {
		r[i] = 1 + uint64(rnd.Int63n(int64(gModulus-1)))
	}
	return &GFunc{
		h:         hf,
		r:         r,
		tableSize: tableSize,
	}, nil
}

func modM(h int64) uint64 {
	m := int64(gModulus)
	return uint64(((h % m) + m) % m)
}

// ID returns the full hash before reducing it to the table size
func (g *GFunc) ID(vec []float64) uint64 {
	hs := g.h.ProduceKH(vec)
	var sum uint64
	for i, h := range hs {
		// both factors are below 2^32 so the product fits
		sum = (sum + (g.r[i]%gModulus)*modM(h)%gModulus) % gModulus
	}
	return sum
}

// Bucket returns table slot of the vector
func (g *GFunc) Bucket(vec []float64) uint64 {
	return g.ID(vec) % g.tableSize
}

// BucketOfID reduces already computed ID
func (g *GFunc) BucketOfID(id uint64) uint64 {
	return id % g.tableSize
}

// FFunc maps every H value to a random bit, memoized per projected dimension,
// and concatenates k bits into a hypercube vertex.
// The same instance must serve both the index build and the queries
type FFunc struct {
	h    *HFamily
	rnd  *rand.Rand
	bits []map[int64]uint64
}

// NewFFunc creates k-dimensional projection with empty bit memo
func NewFFunc(rnd *rand.Rand, k, dims int, w float64) (*FFunc, error) {
	if k > maxCubeDims {
		return nil, cubeDimsErr
	}
	hf, err := NewHFamily(rnd, k, dims, w)
	if err != nil {
		return nil, err
	}
	bits := make([]map[int64]uint64, k)
	for i := range bits {
		bits[i] = make(map[int64]uint64)
	}
	return &FFunc{
		h:    hf,
		rnd:  rnd,
		bits: bits,
	}, nil
}

func (f *FFunc) bit(dim int, h int64) uint64 {
	b, ok := f.bits[dim][h]
	if !ok {
		b = uint64(f.rnd.Intn(2))
		f.bits[dim][h] = b
	}
	return b
}

// Vertex returns vertex id in [0, 2^k), first projected dimension is the most significant bit
func (f *FFunc) Vertex(vec []float64) uint64 {
	hs := f.h.ProduceKH(vec)
	var vertex uint64
	for i, h := range hs {
		vertex = vertex<<1 | f.bit(i, h)
	}
	return vertex
}
