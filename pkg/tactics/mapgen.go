package tactics

import (
	"fmt"
	"math/rand"
)

// MapConfig describes a generated arena map.
type MapConfig struct {
	Width      int
	Height     int
	CoverRatio float64 // fraction of cells turned into cover, before mirroring
	Seed       int64
}

// GenerateMap builds a point-symmetric map so that both sides start on equal
// terrain. The 3x3 corners where squads spawn are always kept free.
func GenerateMap(cfg MapConfig) (*Grid, error) {
	if cfg.Width < 6 || cfg.Height < 6 {
		return nil, fmt.Errorf("map %dx%d too small", cfg.Width, cfg.Height)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	g := NewGrid(cfg.Width, cfg.Height)
	half := g.Len() / 2
	for i := 0; i < half; i++ {
		if rng.Float64() >= cfg.CoverRatio {
			continue
		}
		c := LowCover
		if rng.Intn(3) == 0 {
			c = HighCover
		}
		p := g.PointAt(i)
		if inSpawnCorner(g, p) {
			continue
		}
		g.Set(p, c)
		g.Set(Point{X: g.Width - 1 - p.X, Y: g.Height - 1 - p.Y}, c)
	}
	return g, nil
}

func inSpawnCorner(g *Grid, p Point) bool {
	nearLeft := p.X < 3 && p.Y < 3
	nearRight := p.X >= g.Width-3 && p.Y >= g.Height-3
	return nearLeft || nearRight
}

// SpawnPoints returns n free cells in the top-left spawn corner and their
// point-symmetric counterparts for the opposing side.
func SpawnPoints(g *Grid, n int) (home, away []Point) {
	for y := 0; y < 3 && len(home) < n; y++ {
		for x := 0; x < 3 && len(home) < n; x++ {
			p := Point{X: x, Y: y}
			if !g.IsWalkable(p) {
				continue
			}
			home = append(home, p)
			away = append(away, Point{X: g.Width - 1 - x, Y: g.Height - 1 - y})
		}
	}
	return home, away
}

// NewUnit creates a full-health standing unit for the given role.
func NewUnit(p *Params, id, playerID int64, role Role, pos Point) Unit {
	rp := p.Role(role)
	return Unit{
		ID:           id,
		PlayerID:     playerID,
		Role:         role,
		Pos:          pos,
		Stance:       Standing,
		Hitpoints:    rp.MaxHitpoints,
		MaxHitpoints: rp.MaxHitpoints,
		ActionPoints: rp.InitialActionPoints,
	}
}

// PlaceBonuses scatters n mirrored pairs of bonuses on free, unoccupied cells.
func PlaceBonuses(w *World, n int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	kinds := []BonusKind{Medkit, Ration, Grenade}
	for placed, tries := 0, 0; placed < n && tries < 100*n; tries++ {
		p := Point{X: rng.Intn(w.Grid.Width), Y: rng.Intn(w.Grid.Height)}
		q := Point{X: w.Grid.Width - 1 - p.X, Y: w.Grid.Height - 1 - p.Y}
		if p == q || !w.Grid.IsWalkable(p) || w.UnitAt(p) >= 0 || w.UnitAt(q) >= 0 || w.BonusAt(p) >= 0 || w.BonusAt(q) >= 0 {
			continue
		}
		kind := kinds[rng.Intn(len(kinds))]
		w.Bonuses = append(w.Bonuses, Bonus{Kind: kind, Pos: p}, Bonus{Kind: kind, Pos: q})
		placed++
	}
}
