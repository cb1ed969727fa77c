package lsh

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Neighbor is a search result: dataset index, its id and distance to the query.
// Null slot (nothing found) has Index -1 and infinite distance
type Neighbor struct {
	Index int
	ID    string
	Dist  float64
}

// NullNeighbor returns empty result slot
func NullNeighbor() Neighbor {
	return Neighbor{Index: -1, Dist: math.Inf(1)}
}

// IsNull checks whether the slot was never filled
func (n Neighbor) IsNull() bool {
	return n.Index < 0
}

// nearestList keeps n best candidates sorted by distance
type nearestList struct {
	slots []Neighbor
}

func newNearestList(n int) *nearestList {
	if n < 1 {
		n = 1
	}
	slots := make([]Neighbor, n)
	for i := range slots {
		slots[i] = NullNeighbor()
	}
	return &nearestList{slots: slots}
}

func (l *nearestList) worst() float64 {
	return l.slots[len(l.slots)-1].Dist
}

// push replaces the worst slot if the candidate is strictly closer
func (l *nearestList) push(cand Neighbor) {
	last := len(l.slots) - 1
	if cand.Dist >= l.slots[last].Dist {
		return
	}
	l.slots[last] = cand
	sort.SliceStable(l.slots, func(i, j int) bool {
		return l.slots[i].Dist < l.slots[j].Dist
	})
}

func (l *nearestList) result() []Neighbor {
	return l.slots
}

func sortByDist(res []Neighbor) {
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Dist < res[j].Dist
	})
}

// budget counts evaluated candidates; limit <= 0 means no limit
type budget struct {
	limit   int
	checked int
}

func newBudget(limit int) *budget {
	return &budget{limit: limit}
}

func (b *budget) spend() bool {
	b.checked++
	return b.limit > 0 && b.checked >= b.limit
}

// excluded reports whether the element is in the (optional) exclusion set
func excluded(exclude *roaring.Bitmap, idx int) bool {
	return exclude != nil && exclude.Contains(uint32(idx))
}
