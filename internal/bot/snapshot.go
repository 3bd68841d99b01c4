package bot

import (
	"fmt"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// Snapshot is the planner's working view of one turn: the controlled unit,
// its allies and enemies, and a movement grid with every other unit's cell
// marked Occupied. Terrain keeps the original cells for line of sight.
type Snapshot struct {
	Self    tactics.Unit
	Allies  []tactics.Unit
	Enemies []tactics.Unit
	Bonuses []tactics.Bonus
	Terrain *tactics.Grid
	Cells   *tactics.Grid

	world *tactics.World
}

// NewSnapshot validates w and partitions its units around selfID. Units with
// the Teammate flag are allies; all others are enemies. Dead units are dropped.
func NewSnapshot(w *tactics.World, selfID int64) (*Snapshot, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}
	s := &Snapshot{
		Terrain: w.Grid,
		Cells:   w.Grid.Clone(),
		Bonuses: w.Bonuses,
		world:   w,
	}
	found := false
	for _, u := range w.Units {
		if u.ID == selfID {
			s.Self = u
			found = true
			continue
		}
		if !u.Alive() {
			continue
		}
		s.Cells.Set(u.Pos, tactics.Occupied)
		if u.Teammate {
			s.Allies = append(s.Allies, u)
		} else {
			s.Enemies = append(s.Enemies, u)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: id %d", tactics.ErrNoSelf, selfID)
	}
	return s, nil
}

// IsVisible delegates to the world's line-of-sight oracle.
func (s *Snapshot) IsVisible(maxRange float64, from tactics.Point, fromStance tactics.Stance, to tactics.Point, toStance tactics.Stance) bool {
	return s.world.IsVisible(maxRange, from, fromStance, to, toStance)
}

// VisibleEnemies returns the enemies the controlled unit can currently see.
func (s *Snapshot) VisibleEnemies(vision float64) []tactics.Unit {
	var out []tactics.Unit
	for _, e := range s.Enemies {
		if s.IsVisible(vision, s.Self.Pos, s.Self.Stance, e.Pos, e.Stance) {
			out = append(out, e)
		}
	}
	return out
}
