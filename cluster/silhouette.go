package cluster

import (
	"gonum.org/v1/gonum/stat"
)

// Silhouette holds average silhouette of every cluster and of the whole dataset
type Silhouette struct {
	PerCluster []float64
	Overall    float64
}

func meanDist[T any](space Space[T], x T, self int, members []int) float64 {
	dists := make([]float64, 0, len(members))
	for _, idx := range members {
		if idx == self {
			continue
		}
		dists = append(dists, space.Dist(x, space.At(idx)))
	}
	if len(dists) == 0 {
		return 0
	}
	return stat.Mean(dists, nil)
}

// secondNearest returns the nearest non empty cluster other than own, -1 if there is none
func secondNearest[T any](space Space[T], centers []T, members [][]int, x T, own int) int {
	best, bestDist := -1, 0.0
	for c, center := range centers {
		if c == own || len(members[c]) == 0 {
			continue
		}
		if d := space.Dist(x, center); best < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// ComputeSilhouette evaluates s = (b-a)/max(a, b) for every element, where a is the mean
// distance to the rest of its cluster and b is the mean distance to the members of
// the next nearest cluster. Singletons score 0
func ComputeSilhouette[T any](space Space[T], centers []T, assignment []int) Silhouette {
	members := Members(assignment, len(centers))
	perCluster := make([][]float64, len(centers))
	all := make([]float64, 0, len(assignment))
	for idx, own := range assignment {
		if own < 0 || own >= len(centers) {
			continue
		}
		x := space.At(idx)
		var s float64
		if other := secondNearest(space, centers, members, x, own); len(members[own]) > 1 && other >= 0 {
			a := meanDist(space, x, idx, members[own])
			b := meanDist(space, x, idx, members[other])
			if m := max(a, b); m > 0 {
				s = (b - a) / m
			}
		}
		perCluster[own] = append(perCluster[own], s)
		all = append(all, s)
	}
	res := Silhouette{PerCluster: make([]float64, len(centers))}
	for c, values := range perCluster {
		if len(values) > 0 {
			res.PerCluster[c] = stat.Mean(values, nil)
		}
	}
	if len(all) > 0 {
		res.Overall = stat.Mean(all, nil)
	}
	return res
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
