package bot

import (
	"math"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

const roamAttempts = 100

// target picks the point the target-distance term pulls toward: the nearest
// enemy the unit can see, or else the unit's roam target.
func (m *Match) target(snap *Snapshot, oracle DistanceOracle) tactics.Point {
	vision := m.Planner.Params.Role(snap.Self.Role).VisionRange
	best, bestDist := tactics.Point{}, math.MaxInt
	for _, e := range snap.VisibleEnemies(vision) {
		d := oracle.Distance(snap.Self.Pos, e.Pos)
		if d == Unreachable {
			continue
		}
		if d < bestDist {
			best, bestDist = e.Pos, d
		}
	}
	if bestDist != math.MaxInt {
		return best
	}
	return m.roamTarget(snap)
}

// roamTarget keeps one waypoint per unit and draws a new one when the unit
// is within RoamRadius of it or can no longer reach it through this turn's
// occupancy.
func (m *Match) roamTarget(snap *Snapshot) tactics.Point {
	self := snap.Self
	cur, ok := m.roam[self.ID]
	if !ok {
		cur = self.Pos
	}
	paths := BuildSingleSource(snap.Cells, self.Pos)
	if cur.DistanceTo(self.Pos) >= m.RoamRadius && paths.Reachable(cur) {
		return cur
	}

	g := snap.Cells
	for range roamAttempts {
		p := tactics.Pt(m.rng.Intn(g.Width), m.rng.Intn(g.Height))
		if p.DistanceTo(self.Pos) >= m.RoamRadius && paths.Reachable(p) {
			m.roam[self.ID] = p
			return p
		}
	}

	// Cramped or walled-in: fall back to the farthest reachable cell.
	far, farDist := self.Pos, -1
	for i := 0; i < g.Len(); i++ {
		p := g.PointAt(i)
		if d := paths.DistanceTo(p); d != Unreachable && d > farDist {
			far, farDist = p, d
		}
	}
	m.roam[self.ID] = far
	return far
}
