package tactics

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed snapshots.
var (
	ErrNoGrid        = errors.New("world has no grid")
	ErrOutOfBounds   = errors.New("position outside grid")
	ErrBlockedCell   = errors.New("unit stands on a non-free cell")
	ErrDuplicateUnit = errors.New("duplicate unit")
	ErrNoSelf        = errors.New("controlled unit not in world")
	ErrInvalidStance = errors.New("invalid stance")
	ErrHitpoints     = errors.New("hit points outside 0..max")
)

// Visibility answers whether a shooter with the given range, position and
// stance can see a target at the given position and stance.
type Visibility interface {
	IsVisible(maxRange float64, from Point, fromStance Stance, to Point, toStance Stance) bool
}

// VisibilityFunc adapts a plain function to Visibility.
type VisibilityFunc func(maxRange float64, from Point, fromStance Stance, to Point, toStance Stance) bool

// IsVisible calls f.
func (f VisibilityFunc) IsVisible(maxRange float64, from Point, fromStance Stance, to Point, toStance Stance) bool {
	return f(maxRange, from, fromStance, to, toStance)
}

// World is the per-turn snapshot handed to a bot: terrain, every unit still
// alive and every bonus still on the ground.
type World struct {
	MoveIndex int     `json:"move_index"`
	Grid      *Grid   `json:"grid"`
	Units     []Unit  `json:"units"`
	Bonuses   []Bonus `json:"bonuses"`

	// Sight overrides the terrain line-of-sight rule when set.
	Sight Visibility `json:"-"`
}

// IsVisible consults Sight, falling back to LineOfSight over the terrain.
func (w *World) IsVisible(maxRange float64, from Point, fromStance Stance, to Point, toStance Stance) bool {
	if w.Sight != nil {
		return w.Sight.IsVisible(maxRange, from, fromStance, to, toStance)
	}
	return LineOfSight(w.Grid, maxRange, from, fromStance, to, toStance)
}

// Unit returns the unit with the given id.
func (w *World) Unit(id int64) (Unit, bool) {
	for _, u := range w.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// UnitAt returns the index of the live unit standing on p, or -1.
func (w *World) UnitAt(p Point) int {
	for i := range w.Units {
		if w.Units[i].Pos == p && w.Units[i].Alive() {
			return i
		}
	}
	return -1
}

// BonusAt returns the index of the bonus lying on p, or -1.
func (w *World) BonusAt(p Point) int {
	for i := range w.Bonuses {
		if w.Bonuses[i].Pos == p {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy sharing only the Sight oracle.
func (w *World) Clone() *World {
	c := &World{MoveIndex: w.MoveIndex, Sight: w.Sight}
	if w.Grid != nil {
		c.Grid = w.Grid.Clone()
	}
	c.Units = append([]Unit(nil), w.Units...)
	c.Bonuses = append([]Bonus(nil), w.Bonuses...)
	return c
}

// Validate rejects snapshots the planner cannot reason about: units or
// bonuses outside the grid, units on cover, two units on one cell, repeated
// unit ids and hit points that a heal could not be capped against.
func (w *World) Validate() error {
	if w.Grid == nil || w.Grid.Width <= 0 || w.Grid.Height <= 0 {
		return ErrNoGrid
	}
	ids := make(map[int64]bool, len(w.Units))
	cells := make(map[Point]int64, len(w.Units))
	for _, u := range w.Units {
		if ids[u.ID] {
			return fmt.Errorf("%w: id %d", ErrDuplicateUnit, u.ID)
		}
		ids[u.ID] = true
		if !w.Grid.IsInside(u.Pos) {
			return fmt.Errorf("%w: unit %d at %s", ErrOutOfBounds, u.ID, u.Pos)
		}
		if !w.Grid.IsWalkable(u.Pos) {
			return fmt.Errorf("%w: unit %d at %s is %s", ErrBlockedCell, u.ID, u.Pos, w.Grid.At(u.Pos))
		}
		if other, ok := cells[u.Pos]; ok {
			return fmt.Errorf("%w: units %d and %d share %s", ErrDuplicateUnit, other, u.ID, u.Pos)
		}
		cells[u.Pos] = u.ID
		if u.Stance.Level() < 0 {
			return fmt.Errorf("%w: unit %d has %q", ErrInvalidStance, u.ID, u.Stance)
		}
		if u.MaxHitpoints <= 0 || u.Hitpoints > u.MaxHitpoints {
			return fmt.Errorf("%w: unit %d has %d/%d", ErrHitpoints, u.ID, u.Hitpoints, u.MaxHitpoints)
		}
	}
	for _, b := range w.Bonuses {
		if !w.Grid.IsInside(b.Pos) {
			return fmt.Errorf("%w: %s bonus at %s", ErrOutOfBounds, b.Kind, b.Pos)
		}
	}
	return nil
}
