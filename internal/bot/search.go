package bot

import (
	"math"
	"time"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// deadlineCheckInterval is how many nodes pass between clock reads.
const deadlineCheckInterval = 128

// State is the controlled unit's hypothetical situation after some prefix of
// actions this turn, plus the score deltas those actions produced. It is a
// value: successors are independent copies and hit points are copied on write.
type State struct {
	Pos    tactics.Point
	Stance tactics.Stance
	Points int

	HasMedkit   bool
	HasRation   bool
	HasGrenade  bool
	UsedRation  bool
	UsedGrenade bool

	Damage     int // dealt to enemies
	AllyDamage int // dealt to allies and self, net of heals
	Kills      int // enemy kills minus ally deaths

	hp       []int    // remaining hit points: self, then Snapshot.Allies, then Snapshot.Enemies
	consumed []uint64 // bonuses already picked up, one bit per index into Snapshot.Bonuses
}

func (s *State) taken(i int) bool {
	return s.consumed[i/64]&(uint64(1)<<(uint(i)%64)) != 0
}

// take marks bonus i as picked up on a private copy of the mask.
func (s *State) take(i int) {
	c := make([]uint64, len(s.consumed))
	copy(c, s.consumed)
	c[i/64] |= uint64(1) << (uint(i) % 64)
	s.consumed = c
}

func (s *State) setHP(i, v int) {
	s.ownHP()
	s.hp[i] = v
}

// ownHP gives s a private copy of the hit-point slice.
func (s *State) ownHP() {
	hp := make([]int, len(s.hp))
	copy(hp, s.hp)
	s.hp = hp
}

// rootState builds the search root from the snapshot.
func rootState(snap *Snapshot) State {
	st := State{
		Pos:        snap.Self.Pos,
		Stance:     snap.Self.Stance,
		Points:     snap.Self.ActionPoints,
		HasMedkit:  snap.Self.HasMedkit,
		HasRation:  snap.Self.HasRation,
		HasGrenade: snap.Self.HasGrenade,
		hp:         make([]int, 0, 1+len(snap.Allies)+len(snap.Enemies)),
		consumed:   make([]uint64, (len(snap.Bonuses)+63)/64),
	}
	st.hp = append(st.hp, snap.Self.Hitpoints)
	for _, u := range snap.Allies {
		st.hp = append(st.hp, u.Hitpoints)
	}
	for _, u := range snap.Enemies {
		st.hp = append(st.hp, u.Hitpoints)
	}
	return st
}

// Options bound and shape the search.
type Options struct {
	MaxDepth      int           // actions per sequence; 0 means bounded by action points only
	EnableStance  bool          // explore raise/lower stance
	EnableGrenade bool          // explore grenade throws
	Deadline      time.Duration // wall-clock budget per decision, read every deadlineCheckInterval nodes; 0 disables
}

// DefaultOptions explores up to eight actions with every branch enabled.
func DefaultOptions() Options {
	return Options{MaxDepth: 8, EnableStance: true, EnableGrenade: true}
}

// Planner runs the turn search for one unit.
type Planner struct {
	Params  *tactics.Params
	Weights Weights
	Options Options
}

// NewPlanner creates a Planner.
func NewPlanner(params *tactics.Params, weights Weights, opts Options) *Planner {
	return &Planner{Params: params, Weights: weights, Options: opts}
}

// Decision is the outcome of one search.
type Decision struct {
	Action    tactics.Action `json:"action"`
	Score     int            `json:"score"`
	BaseScore int            `json:"base_score"` // score of ending the turn immediately
	Nodes     int            `json:"nodes"`
	Target    tactics.Point  `json:"target"`
	TimedOut  bool           `json:"timed_out,omitempty"`
}

// Plan searches every affordable action sequence from the snapshot and
// returns the first action of the highest scoring one. Ending the turn is
// the fallback and wins unless some sequence scores strictly higher; among
// equal scores the first sequence found wins.
func (p *Planner) Plan(snap *Snapshot, oracle DistanceOracle, target tactics.Point) Decision {
	s := &search{
		env: evalEnv{
			snap:    snap,
			oracle:  oracle,
			target:  target,
			params:  p.Params,
			weights: p.Weights,
		},
		opts:      p.Options,
		cur:       tactics.NewAction(tactics.EndTurn),
		best:      tactics.NewAction(tactics.EndTurn),
		bestScore: math.MinInt,
	}
	if p.Options.Deadline > 0 {
		s.deadline = time.Now().Add(p.Options.Deadline)
	}
	s.expand(0, rootState(snap))
	return Decision{
		Action:    s.best,
		Score:     s.bestScore,
		BaseScore: s.baseScore,
		Nodes:     s.nodes,
		Target:    target,
		TimedOut:  s.stopped,
	}
}

// LegalActions lists every action the search would consider as a first
// move, in enumeration order. End turn is always legal and is not listed.
func (p *Planner) LegalActions(snap *Snapshot) []tactics.Action {
	s := &search{env: evalEnv{snap: snap, params: p.Params, weights: p.Weights}, opts: p.Options}
	st := rootState(snap)
	s.pickup(&st)
	var out []tactics.Action
	s.successors(&st, func(a tactics.Action, _ State) {
		out = append(out, a)
	})
	return out
}

type search struct {
	env  evalEnv
	opts Options

	cur       tactics.Action // first action of the branch being explored
	best      tactics.Action
	bestScore int
	baseScore int
	nodes     int

	deadline time.Time
	stopped  bool
}

func (s *search) expand(depth int, st State) {
	s.pickup(&st)
	score := s.env.score(&st)
	s.nodes++
	if depth == 0 {
		s.baseScore = score
	}
	if score > s.bestScore {
		s.bestScore = score
		s.best = s.cur
	}
	if !s.deadline.IsZero() && s.nodes%deadlineCheckInterval == 0 && time.Now().After(s.deadline) {
		s.stopped = true
	}
	if s.stopped || s.opts.MaxDepth > 0 && depth >= s.opts.MaxDepth {
		return
	}
	s.successors(&st, func(a tactics.Action, next State) {
		if s.stopped {
			return
		}
		if depth == 0 {
			s.cur = a
		}
		s.expand(depth+1, next)
	})
}

// pickup grants every untaken bonus under the unit, unless it already holds
// that kind or has used that kind this turn.
func (s *search) pickup(st *State) {
	for i, b := range s.env.snap.Bonuses {
		if b.Pos != st.Pos || st.taken(i) {
			continue
		}
		switch b.Kind {
		case tactics.Medkit:
			if st.HasMedkit {
				continue
			}
			st.HasMedkit = true
		case tactics.Ration:
			if st.HasRation || st.UsedRation {
				continue
			}
			st.HasRation = true
		case tactics.Grenade:
			if st.HasGrenade || st.UsedGrenade {
				continue
			}
			st.HasGrenade = true
		default:
			continue
		}
		st.take(i)
	}
}

// successors yields every legal action from st with the state it leads to,
// in the fixed order medkit, field heal, stance, shoot, move, grenade, ration.
func (s *search) successors(st *State, yield func(tactics.Action, State)) {
	snap, p := s.env.snap, s.env.params

	if st.HasMedkit {
		s.heals(st, tactics.UseMedkit, p.MedkitUseCost, p.MedkitBonusHitpoints, p.MedkitHealSelfBonusHitpoints, yield)
	}
	if snap.Self.Role == tactics.FieldMedic {
		s.heals(st, tactics.Heal, p.FieldMedicHealCost, p.FieldMedicHealBonusHitpoints, p.FieldMedicHealSelfBonusHitpoints, yield)
	}

	if s.opts.EnableStance && st.Points >= p.StanceChangeCost {
		if up, ok := st.Stance.Raised(); ok {
			next := *st
			next.Points -= p.StanceChangeCost
			next.Stance = up
			yield(tactics.NewAction(tactics.RaiseStance), next)
		}
		if down, ok := st.Stance.Lowered(); ok {
			next := *st
			next.Points -= p.StanceChangeCost
			next.Stance = down
			yield(tactics.NewAction(tactics.LowerStance), next)
		}
	}

	role := p.Role(snap.Self.Role)
	if role.ShootCost > 0 && st.Points >= role.ShootCost {
		base := 1 + len(snap.Allies)
		for i, enemy := range snap.Enemies {
			hp := st.hp[base+i]
			if hp <= 0 || !snap.IsVisible(role.ShootingRange, st.Pos, st.Stance, enemy.Pos, enemy.Stance) {
				continue
			}
			dmg := min(role.Damage(st.Stance), hp)
			if dmg <= 0 {
				continue
			}
			next := *st
			next.Points -= role.ShootCost
			next.Damage += dmg
			next.setHP(base+i, hp-dmg)
			if hp == dmg {
				next.Kills++
			}
			yield(tactics.NewTargetAction(tactics.Shoot, enemy.Pos), next)
		}
	}

	if cost := p.MoveCost(st.Stance); cost > 0 && st.Points >= cost {
		var nb [4]tactics.Point
		for _, n := range snap.Cells.AppendNeighbors(nb[:0], st.Pos) {
			if !snap.Cells.IsWalkable(n) {
				continue
			}
			next := *st
			next.Points -= cost
			next.Pos = n
			yield(tactics.NewTargetAction(tactics.Move, n), next)
		}
	}

	if s.opts.EnableGrenade && st.HasGrenade && !st.UsedGrenade && st.Points >= p.GrenadeThrowCost {
		base := 1 + len(snap.Allies)
		for i, enemy := range snap.Enemies {
			if st.hp[base+i] <= 0 || st.Pos.DistanceTo(enemy.Pos) > p.GrenadeThrowRange {
				continue
			}
			yield(tactics.NewTargetAction(tactics.ThrowGrenade, enemy.Pos), s.blast(st, enemy.Pos))
		}
	}

	if st.HasRation && !st.UsedRation && st.Points >= p.FieldRationEatCost {
		next := *st
		next.Points += p.FieldRationBonusActionPoints - p.FieldRationEatCost
		next.HasRation = false
		next.UsedRation = true
		yield(tactics.NewAction(tactics.EatRation), next)
	}
}

// heals yields a heal on every adjacent wounded ally and then on self. The
// amount is capped by missing hit points; zero-point heals are not branches.
func (s *search) heals(st *State, kind tactics.ActionType, cost, mateAmount, selfAmount int, yield func(tactics.Action, State)) {
	if st.Points < cost {
		return
	}
	snap := s.env.snap
	apply := func(idx, maxHP, amount int, target tactics.Point) {
		hp := st.hp[idx]
		if hp <= 0 {
			return
		}
		heal := min(amount, maxHP-hp)
		if heal <= 0 {
			return
		}
		next := *st
		next.Points -= cost
		next.AllyDamage -= heal
		next.setHP(idx, hp+heal)
		if kind == tactics.UseMedkit {
			next.HasMedkit = false
		}
		yield(tactics.NewTargetAction(kind, target), next)
	}
	for i, mate := range snap.Allies {
		if st.Pos.Adjacent(mate.Pos) {
			apply(1+i, mate.MaxHitpoints, mateAmount, mate.Pos)
		}
	}
	apply(0, snap.Self.MaxHitpoints, selfAmount, st.Pos)
}

// blast applies a grenade exploding at center: direct damage to the unit on
// center and collateral damage to every unit orthogonally adjacent to it,
// including the thrower and allies.
func (s *search) blast(st *State, center tactics.Point) State {
	snap, p := s.env.snap, s.env.params
	next := *st
	next.Points -= p.GrenadeThrowCost
	next.HasGrenade = false
	next.UsedGrenade = true
	next.ownHP()

	base := 1 + len(snap.Allies)
	hit := func(idx, amount int) {
		hp := next.hp[idx]
		if hp <= 0 {
			return
		}
		d := min(amount, hp)
		next.hp[idx] = hp - d
		if idx >= base {
			next.Damage += d
			if d == hp {
				next.Kills++
			}
			return
		}
		next.AllyDamage += d
		if d == hp {
			next.Kills--
		}
	}

	if st.Pos == center {
		hit(0, p.GrenadeDirectDamage)
	} else if st.Pos.Adjacent(center) {
		hit(0, p.GrenadeCollateralDamage)
	}
	for i, mate := range snap.Allies {
		if mate.Pos.Adjacent(center) {
			hit(1+i, p.GrenadeCollateralDamage)
		}
	}
	for i, enemy := range snap.Enemies {
		switch {
		case enemy.Pos == center:
			hit(base+i, p.GrenadeDirectDamage)
		case enemy.Pos.Adjacent(center):
			hit(base+i, p.GrenadeCollateralDamage)
		}
	}
	return next
}
