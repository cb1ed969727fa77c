package frechet

import (
	"math"

	"github.com/gasparian/curve-ann-go/dataset"
)

const (
	bisectionEps   = 1e-9
	bisectionSteps = 100
	intervalTol    = 1e-9
)

// interval is a sub-range of [0, 1] on a segment; empty when lo > hi
type interval struct {
	lo, hi float64
}

var emptyInterval = interval{lo: 1, hi: 0}

func (iv interval) empty() bool {
	return iv.lo > iv.hi
}

// freeInterval returns the part of segment ab lying within eps of point c
func freeInterval(c, a, b dataset.Point2d, eps float64) interval {
	dx, dy := b.X-a.X, b.Y-a.Y
	fx, fy := a.X-c.X, a.Y-c.Y
	qa := dx*dx + dy*dy
	qb := 2 * (fx*dx + fy*dy)
	qc := fx*fx + fy*fy - eps*eps
	if qa < 1e-18 {
		if qc <= 0 {
			return interval{lo: 0, hi: 1}
		}
		return emptyInterval
	}
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		// tangent segments may give a tiny negative discriminant
		if disc < -1e-12*(qb*qb+1) {
			return emptyInterval
		}
		disc = 0
	}
	sq := math.Sqrt(disc)
	lo := (-qb - sq) / (2 * qa)
	hi := (-qb + sq) / (2 * qa)
	if lo > 1 || hi < 0 {
		return emptyInterval
	}
	return interval{lo: math.Max(lo, 0), hi: math.Min(hi, 1)}
}

// decide checks whether the continuous Fréchet distance is at most eps
// by propagating reachable free space cell by cell (Alt and Godau).
// Both curves must have at least two vertices
func decide(p, q []dataset.Point2d, eps float64) bool {
	n, m := len(p), len(q)
	if p[0].Dist(q[0]) > eps || p[n-1].Dist(q[m-1]) > eps {
		return false
	}
	// left[i][j]: free part of q segment j seen from vertex p[i]
	// bottom[i][j]: free part of p segment i seen from vertex q[j]
	reachLeft := make([][]interval, n)
	for i := range reachLeft {
		reachLeft[i] = make([]interval, m-1)
	}
	reachBottom := make([][]interval, n-1)
	for i := range reachBottom {
		reachBottom[i] = make([]interval, m)
	}

	reachable := true
	for j := 0; j < m-1; j++ {
		iv := freeInterval(p[0], q[j], q[j+1], eps)
		if !reachable || iv.empty() || iv.lo > intervalTol {
			reachLeft[0][j] = emptyInterval
			reachable = false
			continue
		}
		reachLeft[0][j] = iv
		reachable = iv.hi >= 1-intervalTol
	}
	reachable = true
	for i := 0; i < n-1; i++ {
		iv := freeInterval(q[0], p[i], p[i+1], eps)
		if !reachable || iv.empty() || iv.lo > intervalTol {
			reachBottom[i][0] = emptyInterval
			reachable = false
			continue
		}
		reachBottom[i][0] = iv
		reachable = iv.hi >= 1-intervalTol
	}

	for i := 0; i < n-1; i++ {
		for j := 0; j < m-1; j++ {
			left, bottom := reachLeft[i][j], reachBottom[i][j]
			top := freeInterval(q[j+1], p[i], p[i+1], eps)
			right := freeInterval(p[i+1], q[j], q[j+1], eps)
			switch {
			case !left.empty():
				reachBottom[i][j+1] = top
			case !bottom.empty() && !top.empty():
				reachBottom[i][j+1] = interval{lo: math.Max(top.lo, bottom.lo), hi: top.hi}
			default:
				reachBottom[i][j+1] = emptyInterval
			}
			switch {
			case !bottom.empty():
				reachLeft[i+1][j] = right
			case !left.empty() && !right.empty():
				reachLeft[i+1][j] = interval{lo: math.Max(right.lo, left.lo), hi: right.hi}
			default:
				reachLeft[i+1][j] = emptyInterval
			}
		}
	}
	last := reachLeft[n-1][m-2]
	if !last.empty() && last.hi >= 1-intervalTol {
		return true
	}
	last = reachBottom[n-2][m-1]
	return !last.empty() && last.hi >= 1-intervalTol
}

// pointToCurve is the continuous Fréchet distance between a single point and a polyline
func pointToCurve(c dataset.Point2d, q []dataset.Point2d) float64 {
	var res float64
	for _, v := range q {
		res = max(res, c.Dist(v))
	}
	return res
}

// ContinuousDistance approximates the continuous Fréchet distance with bisection
// over the decision procedure. The discrete distance is used as the upper bound
func ContinuousDistance(p, q []dataset.Point2d) (float64, error) {
	if len(p) == 0 || len(q) == 0 {
		return 0, ErrEmptyCurve
	}
	if len(p) == 1 {
		return pointToCurve(p[0], q), nil
	}
	if len(q) == 1 {
		return pointToCurve(q[0], p), nil
	}
	lo := max(p[0].Dist(q[0]), p[len(p)-1].Dist(q[len(q)-1]))
	if decide(p, q, lo) {
		return lo, nil
	}
	hi, err := DiscreteDistance(p, q)
	if err != nil {
		return 0, err
	}
	for step := 0; step < bisectionSteps && hi-lo > bisectionEps*math.Max(1, hi); step++ {
		mid := (lo + hi) / 2
		if decide(p, q, mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}
