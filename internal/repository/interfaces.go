package repository

import (
	"context"

	"github.com/freeeve/trooper-tactics/api/internal/model"
)

// MatchRepository defines match and decision data operations.
type MatchRepository interface {
	CreateMatch(ctx context.Context, m *model.Match) (*model.Match, error)
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListFinished(ctx context.Context, limit int) ([]model.Match, error)
	RecordDecision(ctx context.Context, d *model.Decision) error
	ListDecisions(ctx context.Context, matchID string) ([]model.Decision, error)
	FinishMatch(ctx context.Context, id, winner string, turns int) error
}

// MatchCache defines live planner state operations (Redis).
type MatchCache interface {
	SetPlannerState(ctx context.Context, matchID string, playerID int64, st model.PlannerState) error
	GetPlannerState(ctx context.Context, matchID string, playerID int64) (*model.PlannerState, error)
	DeleteMatchState(ctx context.Context, matchID string) error
}
