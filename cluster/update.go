package cluster

import (
	"go.uber.org/zap"
)

// Members groups element indices by cluster
func Members(assignment []int, k int) [][]int {
	res := make([][]int, k)
	for idx, c := range assignment {
		if c >= 0 && c < k {
			res[c] = append(res[c], idx)
		}
	}
	return res
}

// Update replaces every center with the mean of its members.
// An empty cluster keeps its center. Returns the new centers and the largest center shift
func Update[T any](space Space[T], centers []T, assignment []int, logger *zap.SugaredLogger) ([]T, float64) {
	res := make([]T, len(centers))
	var maxShift float64
	for c, members := range Members(assignment, len(centers)) {
		group := make([]T, len(members))
		for i, idx := range members {
			group[i] = space.At(idx)
		}
		mean, ok := space.Mean(group)
		if !ok {
			logger.Warnf("cluster %d has no members, keeping its center", c)
			res[c] = centers[c]
			continue
		}
		res[c] = mean
		if shift := space.Dist(centers[c], mean); shift > maxShift {
			maxShift = shift
		}
	}
	return res, maxShift
}
