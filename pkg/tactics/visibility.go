package tactics

// LineOfSight is the terrain visibility rule: the target must be within
// maxRange (Euclidean) and every cell strictly between the two endpoints on
// the Bresenham ray must let sight through. High cover always blocks; low
// cover blocks unless both units are standing. Unit occupancy never blocks.
func LineOfSight(g *Grid, maxRange float64, from Point, fromStance Stance, to Point, toStance Stance) bool {
	if g == nil || !g.IsInside(from) || !g.IsInside(to) {
		return false
	}
	if from.DistanceTo(to) > maxRange {
		return false
	}
	low := fromStance
	if toStance.Level() < low.Level() {
		low = toStance
	}

	blocked := false
	walkLine(from, to, func(p Point) bool {
		if p == from || p == to {
			return true
		}
		switch g.At(p) {
		case HighCover:
			blocked = true
		case LowCover:
			blocked = low != Standing
		}
		return !blocked
	})
	return !blocked
}

// walkLine visits the Bresenham cells from a to b inclusive until visit returns false.
func walkLine(a, b Point, visit func(Point) bool) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	p := a
	for {
		if !visit(p) {
			return
		}
		if p == b {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}
