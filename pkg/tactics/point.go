package tactics

import (
	"fmt"
	"math"
)

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Less orders points lexicographically by X then Y.
func (p Point) Less(q Point) bool {
	return p.X < q.X || (p.X == q.X && p.Y < q.Y)
}

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy int) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	dx := float64(q.X - p.X)
	dy := float64(q.Y - p.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// CeilDistanceTo returns the Euclidean distance rounded up to an integer.
func (p Point) CeilDistanceTo(q Point) int {
	return int(math.Ceil(p.DistanceTo(q)))
}

// ManhattanTo returns |dx| + |dy|.
func (p Point) ManhattanTo(q Point) int {
	return abs(q.X-p.X) + abs(q.Y-p.Y)
}

// Adjacent reports whether q is exactly one orthogonal step from p.
func (p Point) Adjacent(q Point) bool {
	return p.ManhattanTo(q) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
