package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/repository"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// Orchestrator plays one match against a game server: it answers every turn
// event for its units until the match ends.
type Orchestrator struct {
	client      *Client
	matchID     string
	strategy    Strategy
	weights     Weights
	opts        Options
	seed        int64
	turnTimeout time.Duration
	cache       repository.MatchCache

	lastMoveIndex int
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(baseURL, name, matchID string, strategy Strategy, weights Weights, opts Options) *Orchestrator {
	return &Orchestrator{
		client:        NewClient(name, baseURL),
		matchID:       matchID,
		strategy:      strategy,
		weights:       weights,
		opts:          opts,
		turnTimeout:   2 * time.Minute,
		lastMoveIndex: -1,
	}
}

// SetCache enables persisting the match context between turns, so a
// restarted bot keeps its turn counter and roam targets.
func (o *Orchestrator) SetCache(c repository.MatchCache) { o.cache = c }

// SetSeed fixes the random seed of the match context.
func (o *Orchestrator) SetSeed(seed int64) { o.seed = seed }

// Run logs in, joins the match and plays until it ends.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().Str("strategy", o.strategy.Name()).Str("match", o.matchID).Msg("Starting bot")

	if err := o.client.Login(); err != nil {
		return fmt.Errorf("login %s: %w", o.client.Name(), err)
	}
	if err := o.client.JoinMatch(o.matchID); err != nil {
		return fmt.Errorf("join match: %w", err)
	}
	params, err := o.client.GetParams(o.matchID)
	if err != nil {
		return fmt.Errorf("get params: %w", err)
	}
	if err := params.Validate(); err != nil {
		return err
	}
	log.Info().Int64("player", o.client.PlayerID()).Msg("Joined match")

	m := NewMatch(o.matchID, NewPlanner(params, o.weights, o.opts), o.seed)
	if o.cache != nil {
		st, err := o.cache.GetPlannerState(ctx, o.matchID, o.client.PlayerID())
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load planner state, starting fresh")
		} else if st != nil {
			m.Restore(*st)
			log.Info().Int("turn", st.Turn).Int("roamTargets", len(st.RoamTargets)).Msg("Planner state restored")
		}
	}

	if err := o.client.ConnectWS(); err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	defer o.client.CloseWS()
	if err := o.client.SubscribeMatch(o.matchID); err != nil {
		return fmt.Errorf("ws subscribe: %w", err)
	}

	return o.playLoop(ctx, m)
}

// playLoop answers turn events until match_ended or the context is cancelled.
func (o *Orchestrator) playLoop(ctx context.Context, m *Match) error {
	for {
		timeout := time.After(o.turnTimeout)
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping bot")
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("no event for %s", o.turnTimeout)
		case event, ok := <-o.client.Events():
			if !ok {
				return fmt.Errorf("ws connection closed")
			}
			if event.MatchID != "" && event.MatchID != o.matchID {
				continue
			}
			switch event.Type {
			case EventTurn:
				if err := o.handleTurn(ctx, m, event.Data); err != nil {
					return err
				}
			case EventMatchEnded:
				var end MatchEnded
				if err := json.Unmarshal(event.Data, &end); err != nil {
					log.Warn().Err(err).Msg("Malformed match_ended payload")
				}
				log.Info().Int64("winner", end.Winner).Int("turns", end.Turns).Msg("Match ended")
				return nil
			default:
				log.Debug().Str("type", event.Type).Msg("Ignoring event")
			}
		}
	}
}

// handleTurn decides and submits one action. A world the planner rejects is
// returned as an error rather than answered.
func (o *Orchestrator) handleTurn(ctx context.Context, m *Match, data json.RawMessage) error {
	var req TurnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode turn: %w", err)
	}
	if req.World.MoveIndex != o.lastMoveIndex {
		o.lastMoveIndex = req.World.MoveIndex
		m.NextTurn()
	}

	start := time.Now()
	d, err := o.strategy.Decide(m, &req.World, req.UnitID)
	if err != nil {
		return fmt.Errorf("decide unit %d: %w", req.UnitID, err)
	}
	if err := o.client.SubmitAction(o.matchID, req.UnitID, d.Action); err != nil {
		log.Warn().Err(err).Int64("unit", req.UnitID).Msg("Action submission failed, continuing")
		d.Action = tactics.NewAction(tactics.EndTurn)
	}
	log.Info().
		Int("turn", m.Turn()).
		Int64("unit", req.UnitID).
		Stringer("action", d.Action).
		Dur("elapsed", time.Since(start)).
		Msg("Action submitted")

	if o.cache != nil {
		if err := o.cache.SetPlannerState(ctx, o.matchID, o.client.PlayerID(), m.State()); err != nil {
			log.Warn().Err(err).Msg("Failed to save planner state")
		}
	}
	return nil
}
