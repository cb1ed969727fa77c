package cluster

import (
	"math"

	"github.com/RoaringBitmap/roaring"
	"github.com/gasparian/curve-ann-go/common"
	"go.uber.org/zap"
)

const (
	// reverse assignment stops once fewer balls than this share of centers find new elements...
	ballsChangedShare = 0.2
	// ...and at least this number of radius rounds passed
	minRadiusRounds = 5
	maxRadiusRounds = 64
)

// nearestCenter returns the closest center and the distance to it; ties go to the lower index
func nearestCenter[T any](space Space[T], centers []T, x T) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := space.Dist(x, center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// Lloyd assigns every element outside skip to its nearest center
func Lloyd[T any](space Space[T], centers []T, assignment []int, skip *roaring.Bitmap) {
	for idx := 0; idx < space.Len(); idx++ {
		if skip != nil && skip.Contains(uint32(idx)) {
			continue
		}
		assignment[idx], _ = nearestCenter(space, centers, space.At(idx))
	}
}

func minCenterDistance[T any](space Space[T], centers []T) float64 {
	res := math.Inf(1)
	for i := range centers {
		for j := i + 1; j < len(centers); j++ {
			res = math.Min(res, space.Dist(centers[i], centers[j]))
		}
	}
	return res
}

// ReverseAssign grows balls around the centers with range searches over the index,
// doubling the radius every round. Elements captured by a ball are committed once
// the round is over, conflicts go to the closer center. Elements never captured are
// assigned with the Lloyd step. Returns number of radius rounds
func ReverseAssign[T any](space Space[T], centers []T, index RangeSearcher[T], budget int, state *AssignmentState, assignment []int, logger *zap.SugaredLogger) int {
	state.Reset()
	radius := minCenterDistance(space, centers) / 2
	if math.IsInf(radius, 1) {
		radius = math.MaxFloat64 / 2
	}
	if radius <= 0 {
		radius = common.Tol
	}
	threshold := ballsChangedShare * float64(len(centers))
	rounds := 0
	for {
		ballsChanged := 0
		for c, center := range centers {
			found := index.RangeSearch(center, radius, budget, state.Marked())
			if len(found) > 0 {
				ballsChanged++
			}
			for _, nb := range found {
				state.Claim(nb.Index, c, nb.Dist)
			}
		}
		committed := state.Commit(assignment)
		rounds++
		logger.Debugf("reverse assignment round %d: radius %.4f, %d balls changed, %d committed", rounds, radius, ballsChanged, committed)
		if (float64(ballsChanged) < threshold && rounds >= minRadiusRounds) || rounds >= maxRadiusRounds {
			break
		}
		radius = math.Min(radius*2, math.MaxFloat64)
	}
	Lloyd(space, centers, assignment, state.Marked())
	return rounds
}
