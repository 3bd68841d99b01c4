package bot

import (
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// evalEnv is the read-only context a score is computed against.
type evalEnv struct {
	snap    *Snapshot
	oracle  DistanceOracle
	target  tactics.Point
	params  *tactics.Params
	weights Weights
}

// ScoreTerms is the unweighted breakdown of a position score.
type ScoreTerms struct {
	TargetDistance int
	AllyDistance   int
	NearCommander  bool
	Exposure       int
	Damage         int
	Kills          int
	AllyDamage     int
	Consumables    int
}

// Total applies the weights.
func (t ScoreTerms) Total(w Weights) int {
	score := 0
	score -= w.TargetDistance * t.TargetDistance
	score -= w.AllyCohesion * t.AllyDistance
	if t.NearCommander {
		score += w.AuraBonus
	}
	score -= w.ExposurePenalty * t.Exposure
	score += w.DamageDealt * t.Damage
	score += w.Kill * t.Kills
	score -= w.AllyDamage * t.AllyDamage
	score += w.ConsumablePickup * t.Consumables
	return score
}

// terms computes the score breakdown for a hypothetical state. It has no side effects.
func (e *evalEnv) terms(s *State) ScoreTerms {
	var t ScoreTerms
	snap := e.snap

	t.TargetDistance = e.oracle.Distance(s.Pos, e.target)
	if t.TargetDistance == Unreachable {
		t.TargetDistance = s.Pos.CeilDistanceTo(e.target)
	}

	for i, mate := range snap.Allies {
		if s.hp[1+i] <= 0 {
			continue
		}
		t.AllyDistance += s.Pos.CeilDistanceTo(mate.Pos)
		if mate.Role == tactics.Commander && snap.Self.Role != tactics.Commander &&
			s.Pos.DistanceTo(mate.Pos) < e.params.CommanderAuraRange {
			t.NearCommander = true
		}
	}

	base := 1 + len(snap.Allies)
	for i, enemy := range snap.Enemies {
		if s.hp[base+i] <= 0 {
			continue
		}
		rng := e.params.Role(enemy.Role).ShootingRange
		if snap.IsVisible(rng, enemy.Pos, enemy.Stance, s.Pos, s.Stance) {
			t.Exposure++
		}
	}

	t.Damage = s.Damage
	t.Kills = s.Kills
	t.AllyDamage = s.AllyDamage
	for _, held := range []bool{s.HasMedkit, s.HasRation, s.HasGrenade} {
		if held {
			t.Consumables++
		}
	}
	return t
}

// score is the weighted sum of terms(s).
func (e *evalEnv) score(s *State) int {
	return e.terms(s).Total(e.weights)
}
