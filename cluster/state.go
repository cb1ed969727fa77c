package cluster

import (
	"github.com/RoaringBitmap/roaring"
)

// unassigned marks elements that no assignment step has reached yet
const unassigned = -1

type claim struct {
	center int
	dist   float64
}

// AssignmentState is the side table of the reverse assignment:
// marked elements are committed to a cluster in the current assignment step,
// claimed ones are tentatively captured by a ball in the current radius round
type AssignmentState struct {
	marked  *roaring.Bitmap
	claimed map[int]claim
}

// NewAssignmentState creates empty state
func NewAssignmentState() *AssignmentState {
	return &AssignmentState{
		marked:  roaring.New(),
		claimed: make(map[int]claim),
	}
}

// Marked returns the bitmap of committed elements, used to exclude them from range searches
func (s *AssignmentState) Marked() *roaring.Bitmap {
	return s.marked
}

// IsMarked checks whether the element is committed
func (s *AssignmentState) IsMarked(idx int) bool {
	return s.marked.Contains(uint32(idx))
}

// Claim captures the element for the center; an element claimed by another
// center goes to the strictly closer one. Returns true if the claim is taken
func (s *AssignmentState) Claim(idx, center int, dist float64) bool {
	prev, ok := s.claimed[idx]
	if ok && (prev.center == center || dist >= prev.dist) {
		return false
	}
	s.claimed[idx] = claim{center: center, dist: dist}
	return true
}

// Commit moves every claimed element into the assignment, in ascending element order,
// marks them and forgets the claims. Returns number of committed elements
func (s *AssignmentState) Commit(assignment []int) int {
	claimed := roaring.New()
	for idx := range s.claimed {
		claimed.Add(uint32(idx))
	}
	it := claimed.Iterator()
	for it.HasNext() {
		idx := int(it.Next())
		assignment[idx] = s.claimed[idx].center
	}
	s.marked.Or(claimed)
	s.claimed = make(map[int]claim)
	return int(claimed.GetCardinality())
}

// Reset unmarks everything before the next assignment step
func (s *AssignmentState) Reset() {
	s.marked.Clear()
	s.claimed = make(map[int]claim)
}
