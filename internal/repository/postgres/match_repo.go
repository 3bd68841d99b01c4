package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freeeve/trooper-tactics/api/internal/model"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// MatchRepo handles match and decision database operations.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

const matchColumns = `id, name, status, seed, width, height, home_bot, away_bot, winner, turns, created_at, finished_at`

func scanMatch(row interface{ Scan(...any) error }) (*model.Match, error) {
	var m model.Match
	var winner sql.NullString
	if err := row.Scan(&m.ID, &m.Name, &m.Status, &m.Seed, &m.Width, &m.Height, &m.HomeBot, &m.AwayBot,
		&winner, &m.Turns, &m.CreatedAt, &m.FinishedAt); err != nil {
		return nil, err
	}
	m.Winner = winner.String
	return &m, nil
}

// CreateMatch inserts a new match. An empty ID lets the database assign one.
func (r *MatchRepo) CreateMatch(ctx context.Context, in *model.Match) (*model.Match, error) {
	status := in.Status
	if status == "" {
		status = model.MatchActive
	}
	var row *sql.Row
	if in.ID == "" {
		row = r.db.QueryRowContext(ctx,
			`INSERT INTO matches (name, status, seed, width, height, home_bot, away_bot)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING `+matchColumns,
			in.Name, status, in.Seed, in.Width, in.Height, in.HomeBot, in.AwayBot)
	} else {
		row = r.db.QueryRowContext(ctx,
			`INSERT INTO matches (id, name, status, seed, width, height, home_bot, away_bot)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
			 RETURNING `+matchColumns,
			in.ID, in.Name, status, in.Seed, in.Width, in.Height, in.HomeBot, in.AwayBot)
	}
	m, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return m, nil
}

// FindByID returns a match by ID, or nil when it does not exist.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return m, nil
}

// ListFinished returns the most recently finished matches.
func (r *MatchRepo) ListFinished(ctx context.Context, limit int) ([]model.Match, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE status = $1 ORDER BY finished_at DESC LIMIT $2`,
		model.MatchFinished, limit)
	if err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// RecordDecision inserts one planner decision and fills in its ID and timestamp.
func (r *MatchRepo) RecordDecision(ctx context.Context, d *model.Decision) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO decisions (match_id, turn, unit_id, role, action, target_x, target_y, score, base_score, nodes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		d.MatchID, d.Turn, d.UnitID, d.Role, string(d.Action.Type), d.Action.Target.X, d.Action.Target.Y,
		d.Score, d.BaseScore, d.Nodes,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// ListDecisions returns a match's decisions in the order they were made.
func (r *MatchRepo) ListDecisions(ctx context.Context, matchID string) ([]model.Decision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, turn, unit_id, role, action, target_x, target_y, score, base_score, nodes, created_at
		 FROM decisions WHERE match_id = $1 ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []model.Decision
	for rows.Next() {
		var d model.Decision
		var action string
		if err := rows.Scan(&d.ID, &d.MatchID, &d.Turn, &d.UnitID, &d.Role, &action,
			&d.Action.Target.X, &d.Action.Target.Y, &d.Score, &d.BaseScore, &d.Nodes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Action.Type = tactics.ActionType(action)
		out = append(out, d)
	}
	return out, rows.Err()
}

// FinishMatch marks a match finished. An empty winner records a draw.
func (r *MatchRepo) FinishMatch(ctx context.Context, id, winner string, turns int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $2, winner = NULLIF($3, ''), turns = $4, finished_at = now() WHERE id = $1`,
		id, model.MatchFinished, winner, turns)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish match %s: not found", id)
	}
	return nil
}
