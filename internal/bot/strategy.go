package bot

import (
	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// Strategy chooses one action for one unit per call.
type Strategy interface {
	Name() string
	Decide(m *Match, w *tactics.World, selfID int64) (Decision, error)
}

// StrategyFor returns the strategy registered under name. Unknown names get
// the search strategy.
func StrategyFor(name string) Strategy {
	switch name {
	case "hold":
		return HoldStrategy{}
	case "random":
		return RandomStrategy{}
	case "search", "":
		return SearchStrategy{}
	default:
		log.Warn().Str("strategy", name).Msg("Unknown strategy, using search")
		return SearchStrategy{}
	}
}

// --- SearchStrategy ---

// SearchStrategy runs the turn planner.
type SearchStrategy struct{}

func (SearchStrategy) Name() string { return "search" }

func (SearchStrategy) Decide(m *Match, w *tactics.World, selfID int64) (Decision, error) {
	return m.Decide(w, selfID)
}

// --- HoldStrategy ---

// HoldStrategy always ends the turn.
type HoldStrategy struct{}

func (HoldStrategy) Name() string { return "hold" }

func (HoldStrategy) Decide(_ *Match, w *tactics.World, selfID int64) (Decision, error) {
	if _, err := NewSnapshot(w, selfID); err != nil {
		return Decision{}, err
	}
	return Decision{Action: tactics.NewAction(tactics.EndTurn)}, nil
}

// --- RandomStrategy ---

// RandomStrategy picks uniformly among the legal single actions, ending the
// turn with probability one in (legal actions + 1).
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) Decide(m *Match, w *tactics.World, selfID int64) (Decision, error) {
	snap, err := NewSnapshot(w, selfID)
	if err != nil {
		return Decision{}, err
	}
	actions := m.Planner.LegalActions(snap)

	m.mu.Lock()
	i := m.rng.Intn(len(actions) + 1)
	m.mu.Unlock()

	if i == len(actions) {
		return Decision{Action: tactics.NewAction(tactics.EndTurn)}, nil
	}
	return Decision{Action: actions[i]}, nil
}
