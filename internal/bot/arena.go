package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/model"
	"github.com/freeeve/trooper-tactics/api/internal/repository"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// Arena sides.
const (
	Home = "home"
	Away = "away"
)

const (
	homePlayer int64 = 1
	awayPlayer int64 = 2

	// maxActionsPerUnit stops a strategy that never ends its turn.
	maxActionsPerUnit = 64
)

// ArenaConfig configures a single bot-vs-bot match.
type ArenaConfig struct {
	Name         string
	HomeStrategy string
	AwayStrategy string
	Width        int
	Height       int
	CoverRatio   float64
	Roles        []tactics.Role // one unit per entry, same squad for both sides
	Bonuses      int            // mirrored bonus pairs
	MaxTurns     int            // cap for a draw
	Seed         int64          // 0 = random
	DryRun       bool           // skip DB writes

	Params  *tactics.Params // nil = DefaultParams
	Weights Weights
	Options Options
}

// ArenaResult describes the outcome of a completed arena match.
type ArenaResult struct {
	MatchID   string
	Winner    string // Home, Away or "" for draw
	Turns     int
	Decisions int
	Survivors map[string]int // side -> live units
	Hitpoints map[string]int // side -> remaining hit points
}

// ParseRoles parses a comma-separated squad like "commander,sniper,soldier".
func ParseRoles(s string) ([]tactics.Role, error) {
	var roles []tactics.Role
	for _, part := range strings.Split(s, ",") {
		r := tactics.Role(strings.TrimSpace(part))
		if r == "" {
			continue
		}
		if !slices.Contains(tactics.AllRoles(), r) {
			return nil, fmt.Errorf("unknown role %q", r)
		}
		roles = append(roles, r)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("empty squad")
	}
	return roles, nil
}

func (cfg *ArenaConfig) defaults() {
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 50
	}
	if cfg.Width == 0 {
		cfg.Width = 16
	}
	if cfg.Height == 0 {
		cfg.Height = 16
	}
	if len(cfg.Roles) == 0 {
		cfg.Roles = []tactics.Role{tactics.Commander, tactics.FieldMedic, tactics.Soldier, tactics.Sniper, tactics.Scout}
	}
	if cfg.Params == nil {
		cfg.Params = tactics.DefaultParams()
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Options == (Options{}) {
		cfg.Options = DefaultOptions()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
}

// side is one squad's controller in an arena match.
type side struct {
	name     string
	playerID int64
	strategy Strategy
	match    *Match
}

// RunMatch plays a full match between two strategies, saving the match and
// every decision through repo. Pass a nil repo for dry-run mode.
func RunMatch(ctx context.Context, cfg ArenaConfig, repo repository.MatchRepository) (*ArenaResult, error) {
	cfg.defaults()
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	grid, err := tactics.GenerateMap(tactics.MapConfig{Width: cfg.Width, Height: cfg.Height, CoverRatio: cfg.CoverRatio, Seed: cfg.Seed})
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}
	world := &tactics.World{Grid: grid}
	home, away := tactics.SpawnPoints(grid, len(cfg.Roles))
	if len(home) < len(cfg.Roles) {
		return nil, fmt.Errorf("squad of %d does not fit the spawn corner", len(cfg.Roles))
	}
	for i, r := range cfg.Roles {
		world.Units = append(world.Units,
			tactics.NewUnit(cfg.Params, int64(i+1), homePlayer, r, home[i]),
			tactics.NewUnit(cfg.Params, int64(i+101), awayPlayer, r, away[i]),
		)
	}
	tactics.PlaceBonuses(world, cfg.Bonuses, cfg.Seed)

	matchID := uuid.NewString()
	if !cfg.DryRun {
		m, err := repo.CreateMatch(ctx, &model.Match{
			ID:      matchID,
			Name:    cfg.Name,
			Status:  model.MatchActive,
			Seed:    cfg.Seed,
			Width:   cfg.Width,
			Height:  cfg.Height,
			HomeBot: cfg.HomeStrategy,
			AwayBot: cfg.AwayStrategy,
		})
		if err != nil {
			return nil, fmt.Errorf("create arena match: %w", err)
		}
		matchID = m.ID
	}

	sides := []*side{
		{name: Home, playerID: homePlayer, strategy: StrategyFor(cfg.HomeStrategy)},
		{name: Away, playerID: awayPlayer, strategy: StrategyFor(cfg.AwayStrategy)},
	}
	for i, s := range sides {
		s.match = NewMatch(matchID, NewPlanner(cfg.Params, cfg.Weights, cfg.Options), cfg.Seed+int64(i)+1)
	}

	result := &ArenaResult{MatchID: matchID}
	for turn := 1; turn <= cfg.MaxTurns; turn++ {
		world.MoveIndex = turn
		result.Turns = turn
		for _, s := range sides {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			n, err := playSide(ctx, cfg, world, s, matchID, turn, repo)
			result.Decisions += n
			if err != nil {
				return nil, fmt.Errorf("turn %d %s: %w", turn, s.name, err)
			}
			if winner := eliminated(world); winner != "" {
				result.Winner = winner
				return finish(ctx, cfg, repo, world, result)
			}
		}
	}
	log.Info().Str("matchId", matchID).Int("turns", result.Turns).Msg("Arena match ended as draw (turn limit)")
	return finish(ctx, cfg, repo, world, result)
}

// playSide refreshes the action points of one squad and lets every live
// unit act until it ends its turn or runs out of options.
func playSide(ctx context.Context, cfg ArenaConfig, world *tactics.World, s *side, matchID string, turn int, repo repository.MatchRepository) (int, error) {
	refreshActionPoints(world, cfg.Params, s.playerID)
	s.match.NextTurn()

	var ids []int64
	for _, u := range world.Units {
		if u.PlayerID == s.playerID {
			ids = append(ids, u.ID)
		}
	}

	decisions := 0
	for _, id := range ids {
		for range maxActionsPerUnit {
			u, ok := world.Unit(id)
			if !ok || u.ActionPoints <= 0 {
				break
			}
			d, err := s.strategy.Decide(s.match, viewFor(world, s.playerID), id)
			if err != nil {
				return decisions, err
			}
			decisions++
			if !cfg.DryRun {
				rec := &model.Decision{
					MatchID:   matchID,
					Turn:      turn,
					UnitID:    id,
					Role:      string(u.Role),
					Action:    d.Action,
					Score:     d.Score,
					BaseScore: d.BaseScore,
					Nodes:     d.Nodes,
				}
				if err := repo.RecordDecision(ctx, rec); err != nil {
					return decisions, fmt.Errorf("record decision: %w", err)
				}
			}
			if d.Action.Type == tactics.EndTurn {
				break
			}
			res, err := tactics.Apply(world, cfg.Params, id, d.Action)
			if err != nil {
				log.Warn().Err(err).Int64("unit", id).Str("side", s.name).Msg("Illegal action, ending unit turn")
				break
			}
			if len(res.Killed) > 0 {
				log.Debug().Int64("unit", id).Ints64("killed", res.Killed).Msg("Units killed")
			}
		}
	}
	return decisions, nil
}

// refreshActionPoints resets the squad's action points to their role value,
// plus the aura bonus for units near a live friendly commander.
func refreshActionPoints(world *tactics.World, p *tactics.Params, playerID int64) {
	var commanders []tactics.Point
	for _, u := range world.Units {
		if u.PlayerID == playerID && u.Role == tactics.Commander && u.Alive() {
			commanders = append(commanders, u.Pos)
		}
	}
	for i := range world.Units {
		u := &world.Units[i]
		if u.PlayerID != playerID {
			continue
		}
		u.ActionPoints = p.Role(u.Role).InitialActionPoints
		if u.Role == tactics.Commander {
			continue
		}
		for _, c := range commanders {
			if u.Pos.DistanceTo(c) < p.CommanderAuraRange {
				u.ActionPoints += p.CommanderAuraBonusActionPoints
				break
			}
		}
	}
}

// viewFor clones the world as playerID sees it: its own units are teammates.
func viewFor(world *tactics.World, playerID int64) *tactics.World {
	view := world.Clone()
	for i := range view.Units {
		view.Units[i].Teammate = view.Units[i].PlayerID == playerID
	}
	return view
}

// eliminated returns the side that won when the other has no units left.
func eliminated(world *tactics.World) string {
	var homeAlive, awayAlive bool
	for _, u := range world.Units {
		if !u.Alive() {
			continue
		}
		switch u.PlayerID {
		case homePlayer:
			homeAlive = true
		case awayPlayer:
			awayAlive = true
		}
	}
	switch {
	case homeAlive && !awayAlive:
		return Home
	case awayAlive && !homeAlive:
		return Away
	}
	return ""
}

func finish(ctx context.Context, cfg ArenaConfig, repo repository.MatchRepository, world *tactics.World, result *ArenaResult) (*ArenaResult, error) {
	result.Survivors = map[string]int{Home: 0, Away: 0}
	result.Hitpoints = map[string]int{Home: 0, Away: 0}
	for _, u := range world.Units {
		if !u.Alive() {
			continue
		}
		name := Home
		if u.PlayerID == awayPlayer {
			name = Away
		}
		result.Survivors[name]++
		result.Hitpoints[name] += u.Hitpoints
	}
	if !cfg.DryRun {
		if err := repo.FinishMatch(ctx, result.MatchID, result.Winner, result.Turns); err != nil {
			return nil, fmt.Errorf("finish match: %w", err)
		}
	}
	if result.Winner != "" {
		log.Info().Str("matchId", result.MatchID).Str("winner", result.Winner).Int("turns", result.Turns).Msg("Arena match won")
	}
	return result, nil
}
