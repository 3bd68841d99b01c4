package bot

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/model"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// DefaultRoamRadius is how close a unit gets to its roam target before a new
// one is drawn.
const DefaultRoamRadius = 5.0

// Match is the caller-owned context for every decision in one match: the
// turn counter, one roam target per unit and the distance table, which is
// rebuilt only when the terrain changes.
type Match struct {
	ID         string
	Planner    *Planner
	RoamRadius float64

	mu          sync.Mutex
	turn        int
	roam        map[int64]tactics.Point
	rng         *rand.Rand
	oracle      *AllPairs
	fingerprint uint64
	oracleBuild int
}

// NewMatch creates a match context. A zero seed draws one from the clock.
func NewMatch(id string, planner *Planner, seed int64) *Match {
	return &Match{
		ID:         id,
		Planner:    planner,
		RoamRadius: DefaultRoamRadius,
		roam:       make(map[int64]tactics.Point),
		rng:        newRng(seed),
	}
}

// NextTurn advances the turn counter and returns the new value.
func (m *Match) NextTurn() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turn++
	return m.turn
}

// Turn returns the current turn counter.
func (m *Match) Turn() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn
}

// RoamTarget returns the stored roam target of a unit.
func (m *Match) RoamTarget(unitID int64) (tactics.Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.roam[unitID]
	return p, ok
}

// OracleBuilds reports how many times the distance table has been computed.
func (m *Match) OracleBuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.oracleBuild
}

// State exports the persistent part of the context.
func (m *Match) State() model.PlannerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := model.PlannerState{Turn: m.turn, RoamTargets: make(map[int64]tactics.Point, len(m.roam))}
	for id, p := range m.roam {
		st.RoamTargets[id] = p
	}
	return st
}

// Restore replaces the turn counter and roam targets with st.
func (m *Match) Restore(st model.PlannerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turn = st.Turn
	m.roam = make(map[int64]tactics.Point, len(st.RoamTargets))
	for id, p := range st.RoamTargets {
		m.roam[id] = p
	}
}

// Decide runs the planner for the unit selfID in world w.
func (m *Match) Decide(w *tactics.World, selfID int64) (Decision, error) {
	if err := m.Planner.Params.Validate(); err != nil {
		return Decision{}, err
	}
	snap, err := NewSnapshot(w, selfID)
	if err != nil {
		return Decision{}, fmt.Errorf("match %s unit %d: %w", m.ID, selfID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	oracle := m.distances(w.Grid)
	target := m.target(snap, oracle)
	d := m.Planner.Plan(snap, oracle, target)

	log.Debug().
		Str("match", m.ID).
		Int("turn", m.turn).
		Int64("unit", selfID).
		Str("role", string(snap.Self.Role)).
		Int("ap", snap.Self.ActionPoints).
		Stringer("pos", snap.Self.Pos).
		Stringer("target", target).
		Int("nodes", d.Nodes).
		Int("score", d.Score).
		Int("baseScore", d.BaseScore).
		Bool("timedOut", d.TimedOut).
		Stringer("action", d.Action).
		Msg("Turn decided")
	return d, nil
}

// distances returns the all-pairs table for g, rebuilding it only when the
// terrain fingerprint changed. Unit occupancy is not part of the table.
func (m *Match) distances(g *tactics.Grid) *AllPairs {
	fp := gridFingerprint(g)
	if m.oracle == nil || fp != m.fingerprint {
		m.oracle = BuildAllPairs(g)
		m.fingerprint = fp
		m.oracleBuild++
		log.Debug().Str("match", m.ID).Int("freeCells", m.oracle.FreeCells()).Msg("Distance table built")
	}
	return m.oracle
}
