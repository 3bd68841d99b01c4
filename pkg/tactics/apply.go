package tactics

import (
	"errors"
	"fmt"
)

// ErrIllegalAction is returned by Apply for actions the rules forbid.
var ErrIllegalAction = errors.New("illegal action")

// ApplyResult summarises what an action did to the world.
type ApplyResult struct {
	Damage   int     // total hit points removed from units
	Healed   int     // total hit points restored
	Killed   []int64 // ids of units removed this action
	PickedUp []BonusKind
}

// Apply executes one action for the unit with the given id, mutating w.
// Friend or foe is decided by PlayerID. Units reduced to zero hit points are
// removed from the world.
func Apply(w *World, p *Params, unitID int64, a Action) (ApplyResult, error) {
	var res ApplyResult
	idx := -1
	for i := range w.Units {
		if w.Units[i].ID == unitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return res, fmt.Errorf("%w: unit %d", ErrNoSelf, unitID)
	}
	u := &w.Units[idx]
	role := p.Role(u.Role)

	pay := func(cost int) error {
		if u.ActionPoints < cost {
			return fmt.Errorf("%w: %s costs %d, unit %d has %d", ErrIllegalAction, a.Type, cost, u.ID, u.ActionPoints)
		}
		u.ActionPoints -= cost
		return nil
	}

	switch a.Type {
	case EndTurn:
		u.ActionPoints = 0
		return res, nil

	case Move:
		if !u.Pos.Adjacent(a.Target) || !w.Grid.IsWalkable(a.Target) || w.UnitAt(a.Target) >= 0 {
			return res, fmt.Errorf("%w: move %d to %s", ErrIllegalAction, u.ID, a.Target)
		}
		if err := pay(p.MoveCost(u.Stance)); err != nil {
			return res, err
		}
		u.Pos = a.Target
		if bi := w.BonusAt(u.Pos); bi >= 0 && !u.Holds(w.Bonuses[bi].Kind) {
			kind := w.Bonuses[bi].Kind
			u.SetHolding(kind, true)
			w.Bonuses = append(w.Bonuses[:bi], w.Bonuses[bi+1:]...)
			res.PickedUp = append(res.PickedUp, kind)
		}
		return res, nil

	case RaiseStance, LowerStance:
		next, ok := u.Stance.Raised()
		if a.Type == LowerStance {
			next, ok = u.Stance.Lowered()
		}
		if !ok {
			return res, fmt.Errorf("%w: %s from %s", ErrIllegalAction, a.Type, u.Stance)
		}
		if err := pay(p.StanceChangeCost); err != nil {
			return res, err
		}
		u.Stance = next
		return res, nil

	case Shoot:
		ti := w.UnitAt(a.Target)
		if ti < 0 || w.Units[ti].PlayerID == u.PlayerID {
			return res, fmt.Errorf("%w: no enemy at %s", ErrIllegalAction, a.Target)
		}
		target := w.Units[ti]
		if !w.IsVisible(role.ShootingRange, u.Pos, u.Stance, target.Pos, target.Stance) {
			return res, fmt.Errorf("%w: %s not visible from %s", ErrIllegalAction, target.Pos, u.Pos)
		}
		if err := pay(role.ShootCost); err != nil {
			return res, err
		}
		res.Damage += damageUnit(w, ti, role.Damage(u.Stance))
		res.Killed = removeDead(w)
		return res, nil

	case UseMedkit, Heal:
		if a.Type == UseMedkit && !u.HasMedkit {
			return res, fmt.Errorf("%w: unit %d holds no medkit", ErrIllegalAction, u.ID)
		}
		if a.Type == Heal && u.Role != FieldMedic {
			return res, fmt.Errorf("%w: %s cannot heal", ErrIllegalAction, u.Role)
		}
		ti := w.UnitAt(a.Target)
		if ti < 0 || w.Units[ti].PlayerID != u.PlayerID || (ti != idx && !u.Pos.Adjacent(a.Target)) {
			return res, fmt.Errorf("%w: no adjacent teammate at %s", ErrIllegalAction, a.Target)
		}
		cost, amount := p.FieldMedicHealCost, p.FieldMedicHealBonusHitpoints
		if ti == idx {
			amount = p.FieldMedicHealSelfBonusHitpoints
		}
		if a.Type == UseMedkit {
			cost, amount = p.MedkitUseCost, p.MedkitBonusHitpoints
			if ti == idx {
				amount = p.MedkitHealSelfBonusHitpoints
			}
		}
		if err := pay(cost); err != nil {
			return res, err
		}
		t := &w.Units[ti]
		heal := min(amount, t.MissingHitpoints())
		t.Hitpoints += heal
		res.Healed = heal
		if a.Type == UseMedkit {
			u.HasMedkit = false
		}
		return res, nil

	case ThrowGrenade:
		if !u.HasGrenade {
			return res, fmt.Errorf("%w: unit %d holds no grenade", ErrIllegalAction, u.ID)
		}
		if !w.Grid.IsInside(a.Target) || u.Pos.DistanceTo(a.Target) > p.GrenadeThrowRange {
			return res, fmt.Errorf("%w: grenade target %s out of range", ErrIllegalAction, a.Target)
		}
		if err := pay(p.GrenadeThrowCost); err != nil {
			return res, err
		}
		u.HasGrenade = false
		if ti := w.UnitAt(a.Target); ti >= 0 {
			res.Damage += damageUnit(w, ti, p.GrenadeDirectDamage)
		}
		for _, n := range w.Grid.Neighbors(a.Target) {
			if ni := w.UnitAt(n); ni >= 0 {
				res.Damage += damageUnit(w, ni, p.GrenadeCollateralDamage)
			}
		}
		res.Killed = removeDead(w)
		return res, nil

	case EatRation:
		if !u.HasRation {
			return res, fmt.Errorf("%w: unit %d holds no ration", ErrIllegalAction, u.ID)
		}
		if err := pay(p.FieldRationEatCost); err != nil {
			return res, err
		}
		u.HasRation = false
		u.ActionPoints += p.FieldRationBonusActionPoints
		return res, nil
	}
	return res, fmt.Errorf("%w: unknown action %q", ErrIllegalAction, a.Type)
}

// damageUnit removes up to amount hit points and reports how many were removed.
func damageUnit(w *World, i, amount int) int {
	d := min(amount, w.Units[i].Hitpoints)
	w.Units[i].Hitpoints -= d
	return d
}

func removeDead(w *World) []int64 {
	var killed []int64
	alive := w.Units[:0]
	for _, u := range w.Units {
		if u.Alive() {
			alive = append(alive, u)
		} else {
			killed = append(killed, u.ID)
		}
	}
	w.Units = alive
	return killed
}
