package bot

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// Unreachable is the distance reported between cells with no connecting path.
const Unreachable = math.MaxInt32

// floydWarshallLimit is the largest free-cell count for which the all-pairs
// table is built with Floyd–Warshall; larger grids run BFS from every cell.
const floydWarshallLimit = 256

// DistanceOracle answers shortest-path queries between grid cells.
type DistanceOracle interface {
	Distance(from, to tactics.Point) int
}

// AllPairs holds the shortest 4-connected path length between every pair of
// free cells of a grid. Computed once per match from the terrain alone.
type AllPairs struct {
	width  int
	height int
	index  []int32         // cell index -> free-cell index, -1 when not free
	points []tactics.Point // free-cell index -> point
	dist   []int32         // flat [i*n + j]
	n      int
}

// BuildAllPairs computes the all-pairs table for g. Only Free cells take part.
func BuildAllPairs(g *tactics.Grid) *AllPairs {
	ap := &AllPairs{width: g.Width, height: g.Height, index: make([]int32, g.Len())}
	for i := range ap.index {
		p := g.PointAt(i)
		if g.IsWalkable(p) {
			ap.index[i] = int32(len(ap.points))
			ap.points = append(ap.points, p)
		} else {
			ap.index[i] = -1
		}
	}
	ap.n = len(ap.points)
	ap.dist = make([]int32, ap.n*ap.n)
	if ap.n <= floydWarshallLimit {
		ap.floydWarshall(g)
	} else {
		ap.bfsFromEach(g)
	}
	return ap
}

func (ap *AllPairs) floydWarshall(g *tactics.Grid) {
	n := ap.n
	for i := range ap.dist {
		ap.dist[i] = Unreachable
	}
	var buf []tactics.Point
	for i, p := range ap.points {
		ap.dist[i*n+i] = 0
		buf = g.AppendNeighbors(buf[:0], p)
		for _, q := range buf {
			if j := ap.index[g.Index(q)]; j >= 0 {
				ap.dist[i*n+int(j)] = 1
			}
		}
	}
	for k := range n {
		for i := range n {
			dik := ap.dist[i*n+k]
			if dik == Unreachable {
				continue
			}
			row := ap.dist[i*n : i*n+n]
			krow := ap.dist[k*n : k*n+n]
			for j := range n {
				if krow[j] == Unreachable {
					continue
				}
				if d := dik + krow[j]; d < row[j] {
					row[j] = d
				}
			}
		}
	}
}

func (ap *AllPairs) bfsFromEach(g *tactics.Grid) {
	n := ap.n
	for i := range ap.dist {
		ap.dist[i] = Unreachable
	}
	queue := make([]int32, 0, n)
	var buf []tactics.Point
	for src := range n {
		row := ap.dist[src*n : src*n+n]
		row[src] = 0
		queue = append(queue[:0], int32(src))
		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			buf = g.AppendNeighbors(buf[:0], ap.points[cur])
			for _, q := range buf {
				j := ap.index[g.Index(q)]
				if j < 0 || row[j] != Unreachable {
					continue
				}
				row[j] = row[cur] + 1
				queue = append(queue, j)
			}
		}
	}
}

// Distance returns the path length between two cells, or Unreachable when
// either cell is not free or no path exists.
func (ap *AllPairs) Distance(from, to tactics.Point) int {
	fi, ti := ap.lookup(from), ap.lookup(to)
	if fi < 0 || ti < 0 {
		return Unreachable
	}
	return int(ap.dist[int(fi)*ap.n+int(ti)])
}

// FreeCells returns the number of cells in the table.
func (ap *AllPairs) FreeCells() int { return ap.n }

func (ap *AllPairs) lookup(p tactics.Point) int32 {
	if p.X < 0 || p.X >= ap.width || p.Y < 0 || p.Y >= ap.height {
		return -1
	}
	return ap.index[p.Y*ap.width+p.X]
}

// SingleSource holds BFS distances and predecessors from one start cell.
type SingleSource struct {
	grid  *tactics.Grid
	start tactics.Point
	dist  []int32
	prev  []int32
}

// BuildSingleSource runs BFS from start over walkable cells of g. The start
// cell itself is always expanded even if g marks it blocked.
func BuildSingleSource(g *tactics.Grid, start tactics.Point) *SingleSource {
	ss := &SingleSource{grid: g, start: start, dist: make([]int32, g.Len()), prev: make([]int32, g.Len())}
	for i := range ss.dist {
		ss.dist[i] = Unreachable
		ss.prev[i] = -1
	}
	if !g.IsInside(start) {
		return ss
	}
	si := int32(g.Index(start))
	ss.dist[si] = 0
	queue := []int32{si}
	var buf []tactics.Point
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		buf = g.AppendNeighbors(buf[:0], g.PointAt(int(cur)))
		for _, q := range buf {
			qi := int32(g.Index(q))
			if !g.IsWalkable(q) || ss.dist[qi] != Unreachable {
				continue
			}
			ss.dist[qi] = ss.dist[cur] + 1
			ss.prev[qi] = cur
			queue = append(queue, qi)
		}
	}
	return ss
}

// Start returns the BFS origin.
func (ss *SingleSource) Start() tactics.Point { return ss.start }

// DistanceTo returns the path length from the start to p.
func (ss *SingleSource) DistanceTo(p tactics.Point) int {
	if !ss.grid.IsInside(p) {
		return Unreachable
	}
	return int(ss.dist[ss.grid.Index(p)])
}

// Distance implements DistanceOracle for queries originating at the start cell.
func (ss *SingleSource) Distance(from, to tactics.Point) int {
	if from != ss.start {
		return Unreachable
	}
	return ss.DistanceTo(to)
}

// Reachable reports whether p can be reached from the start.
func (ss *SingleSource) Reachable(p tactics.Point) bool {
	return ss.DistanceTo(p) != Unreachable
}

// NextStep returns the first cell on a shortest path from the start toward
// target, found by walking predecessors back from target.
func (ss *SingleSource) NextStep(target tactics.Point) (tactics.Point, bool) {
	if !ss.Reachable(target) || target == ss.start {
		return ss.start, false
	}
	si := int32(ss.grid.Index(ss.start))
	cur := int32(ss.grid.Index(target))
	for ss.prev[cur] != si {
		cur = ss.prev[cur]
	}
	return ss.grid.PointAt(int(cur)), true
}

// Path returns the cells from the start (exclusive) to target (inclusive).
func (ss *SingleSource) Path(target tactics.Point) []tactics.Point {
	if !ss.Reachable(target) || target == ss.start {
		return nil
	}
	si := int32(ss.grid.Index(ss.start))
	var rev []tactics.Point
	for cur := int32(ss.grid.Index(target)); cur != si; cur = ss.prev[cur] {
		rev = append(rev, ss.grid.PointAt(int(cur)))
	}
	path := make([]tactics.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// gridFingerprint identifies a terrain layout so the all-pairs table can be
// reused across turns while the grid is unchanged.
func gridFingerprint(g *tactics.Grid) uint64 {
	d := xxhash.New()
	var hdr [8]byte
	hdr[0], hdr[1], hdr[2], hdr[3] = byte(g.Width), byte(g.Width>>8), byte(g.Width>>16), byte(g.Width>>24)
	hdr[4], hdr[5], hdr[6], hdr[7] = byte(g.Height), byte(g.Height>>8), byte(g.Height>>16), byte(g.Height>>24)
	d.Write(hdr[:])
	d.Write(g.Bytes())
	return d.Sum64()
}
