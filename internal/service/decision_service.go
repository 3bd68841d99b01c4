package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/bot"
	"github.com/freeeve/trooper-tactics/api/internal/model"
	"github.com/freeeve/trooper-tactics/api/internal/repository"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchFinished  = errors.New("match is finished")
	ErrInvalidRequest = errors.New("invalid decide request")
)

// DecideRequest asks for the next action of one unit.
type DecideRequest struct {
	UnitID   int64           `json:"unit_id"`
	World    *tactics.World  `json:"world"`
	Strategy string          `json:"strategy,omitempty"`
	Params   *tactics.Params `json:"params,omitempty"` // used when the match context is first created
}

// matchKey identifies one player's planner context. Both sides of a match
// may be planned by the same service.
type matchKey struct {
	matchID  string
	playerID int64
}

type liveMatch struct {
	ctx       *bot.Match
	moveIndex int
}

// DecisionService runs the planner for remote callers, keeping one match
// context per player so turn counters and roam targets persist across calls.
type DecisionService struct {
	matchRepo   repository.MatchRepository
	cache       repository.MatchCache
	broadcaster Broadcaster

	params   *tactics.Params
	weights  bot.Weights
	opts     bot.Options
	strategy string

	mu      sync.Mutex
	live    map[matchKey]*liveMatch
	known   map[string]bool // matches already present in the repository
	stopped map[string]bool
}

// NewDecisionService creates a DecisionService. A nil cache keeps planner
// state in memory only.
func NewDecisionService(
	matchRepo repository.MatchRepository,
	cache repository.MatchCache,
	broadcaster Broadcaster,
	params *tactics.Params,
	weights bot.Weights,
	opts bot.Options,
	strategy string,
) *DecisionService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &DecisionService{
		matchRepo:   matchRepo,
		cache:       cache,
		broadcaster: broadcaster,
		params:      params,
		weights:     weights,
		opts:        opts,
		strategy:    strategy,
		live:        make(map[matchKey]*liveMatch),
		known:       make(map[string]bool),
		stopped:     make(map[string]bool),
	}
}

// Params returns the default game constants.
func (s *DecisionService) Params() *tactics.Params { return s.params }

// Decide picks the next action for req.UnitID, records it and broadcasts it
// to the match's subscribers.
func (s *DecisionService) Decide(ctx context.Context, matchID string, req DecideRequest) (*model.Decision, error) {
	if matchID == "" || req.World == nil {
		return nil, fmt.Errorf("%w: match id and world are required", ErrInvalidRequest)
	}
	self, ok := req.World.Unit(req.UnitID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", tactics.ErrNoSelf, req.UnitID)
	}
	if req.Params != nil {
		if err := req.Params.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.ensureMatch(ctx, matchID, req.Strategy); err != nil {
		return nil, err
	}
	lm, err := s.matchFor(ctx, matchKey{matchID, self.PlayerID}, req.Params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if req.World.MoveIndex != lm.moveIndex {
		lm.moveIndex = req.World.MoveIndex
		lm.ctx.NextTurn()
	}
	s.mu.Unlock()

	name := req.Strategy
	if name == "" {
		name = s.strategy
	}
	d, err := bot.StrategyFor(name).Decide(lm.ctx, req.World, req.UnitID)
	if err != nil {
		return nil, err
	}

	dec := &model.Decision{
		MatchID:   matchID,
		Turn:      lm.ctx.Turn(),
		UnitID:    req.UnitID,
		Role:      string(self.Role),
		Action:    d.Action,
		Score:     d.Score,
		BaseScore: d.BaseScore,
		Nodes:     d.Nodes,
	}
	if s.matchRepo != nil {
		if err := s.matchRepo.RecordDecision(ctx, dec); err != nil {
			return nil, fmt.Errorf("record decision: %w", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetPlannerState(ctx, matchID, self.PlayerID, lm.ctx.State()); err != nil {
			log.Warn().Err(err).Str("matchId", matchID).Msg("Failed to save planner state")
		}
	}
	s.broadcaster.BroadcastMatchEvent(matchID, EventDecision, dec)
	return dec, nil
}

// ListDecisions returns every recorded decision of a match.
func (s *DecisionService) ListDecisions(ctx context.Context, matchID string) ([]model.Decision, error) {
	if s.matchRepo == nil {
		return nil, ErrMatchNotFound
	}
	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return s.matchRepo.ListDecisions(ctx, matchID)
}

// FinishMatch closes a match: it is marked finished, its planner state is
// dropped and later decide calls are rejected.
func (s *DecisionService) FinishMatch(ctx context.Context, matchID, winner string, turns int) error {
	if s.matchRepo != nil {
		m, err := s.matchRepo.FindByID(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMatchNotFound
		}
		if err := s.matchRepo.FinishMatch(ctx, matchID, winner, turns); err != nil {
			return err
		}
	}
	if s.cache != nil {
		if err := s.cache.DeleteMatchState(ctx, matchID); err != nil {
			log.Warn().Err(err).Str("matchId", matchID).Msg("Failed to delete planner state")
		}
	}

	s.mu.Lock()
	for k := range s.live {
		if k.matchID == matchID {
			delete(s.live, k)
		}
	}
	s.stopped[matchID] = true
	s.mu.Unlock()

	s.broadcaster.BroadcastMatchEvent(matchID, EventMatchFinished, map[string]any{"winner": winner, "turns": turns})
	log.Info().Str("matchId", matchID).Str("winner", winner).Int("turns", turns).Msg("Match finished")
	return nil
}

// ensureMatch creates the match row on first sight and rejects finished matches.
func (s *DecisionService) ensureMatch(ctx context.Context, matchID, strategy string) error {
	s.mu.Lock()
	stopped, known := s.stopped[matchID], s.known[matchID]
	s.mu.Unlock()
	if stopped {
		return ErrMatchFinished
	}
	if known || s.matchRepo == nil {
		return nil
	}

	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return err
	}
	if m == nil {
		if strategy == "" {
			strategy = s.strategy
		}
		m, err = s.matchRepo.CreateMatch(ctx, &model.Match{ID: matchID, Name: matchID, Status: model.MatchActive, HomeBot: strategy})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m.Status == model.MatchFinished {
		s.stopped[matchID] = true
		return ErrMatchFinished
	}
	s.known[matchID] = true
	return nil
}

// matchFor returns the live context for key, restoring it from the cache
// when this process has not seen the match yet.
func (s *DecisionService) matchFor(ctx context.Context, key matchKey, params *tactics.Params) (*liveMatch, error) {
	s.mu.Lock()
	lm, ok := s.live[key]
	s.mu.Unlock()
	if ok {
		return lm, nil
	}

	if params == nil {
		params = s.params
	}
	lm = &liveMatch{ctx: bot.NewMatch(key.matchID, bot.NewPlanner(params, s.weights, s.opts), 0), moveIndex: -1}
	if s.cache != nil {
		st, err := s.cache.GetPlannerState(ctx, key.matchID, key.playerID)
		if err != nil {
			return nil, fmt.Errorf("load planner state: %w", err)
		}
		if st != nil {
			lm.ctx.Restore(*st)
			log.Info().Str("matchId", key.matchID).Int64("player", key.playerID).Int("turn", st.Turn).Msg("Planner state restored")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[key]; ok {
		return existing, nil
	}
	s.live[key] = lm
	return lm, nil
}
