// Package dataset holds the domain types searched and clustered by the indexes:
// plain vectors (items) and 2d polylines (curves).
package dataset

import (
	"math"

	guuid "github.com/google/uuid"
)

// Item is a row of the dataset: identifier plus coordinates of the fixed dimension
type Item struct {
	ID     string
	Coords []float64
}

// Point2d is a curve vertex
type Point2d struct {
	X, Y float64
}

// Curve is an ordered sequence of 2d vertices
type Curve struct {
	ID     string
	Points []Point2d
}

// NewID generates an identifier for programmatically created items and curves
func NewID() string {
	return guuid.NewString()
}

// NewItem creates item with generated id
func NewItem(coords []float64) Item {
	return Item{ID: NewID(), Coords: coords}
}

// NewCurve creates curve with generated id
func NewCurve(points []Point2d) Curve {
	return Curve{ID: NewID(), Points: points}
}

// Dim returns number of coordinates
func (it Item) Dim() int {
	return len(it.Coords)
}

// Len returns number of vertices
func (c Curve) Len() int {
	return len(c.Points)
}

// Copy returns a deep copy of the curve
func (c Curve) Copy() Curve {
	pts := make([]Point2d, len(c.Points))
	copy(pts, c.Points)
	return Curve{ID: c.ID, Points: pts}
}

// Equal checks vertices pointwise with the exact float comparison
func (c Curve) Equal(other Curve) bool {
	if len(c.Points) != len(other.Points) {
		return false
	}
	for i := range c.Points {
		if c.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}

// Dist is euclidean distance between two vertices
func (p Point2d) Dist(q Point2d) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Mid returns the middle of the segment pq
func (p Point2d) Mid(q Point2d) Point2d {
	return Point2d{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// CurveFromSeries turns time series row into a curve: x is the sample index, y is the value
func CurveFromSeries(it Item) Curve {
	pts := make([]Point2d, len(it.Coords))
	for i, v := range it.Coords {
		pts[i] = Point2d{X: float64(i), Y: v}
	}
	return Curve{ID: it.ID, Points: pts}
}

// CurvesFromItems converts every row of the dataset with CurveFromSeries
func CurvesFromItems(items []Item) []Curve {
	curves := make([]Curve, len(items))
	for i, it := range items {
		curves[i] = CurveFromSeries(it)
	}
	return curves
}
