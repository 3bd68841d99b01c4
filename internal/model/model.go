package model

import (
	"time"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// Match statuses.
const (
	MatchActive   = "active"
	MatchFinished = "finished"
)

// Match represents one played or ongoing match.
type Match struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"` // active, finished
	Seed       int64      `json:"seed"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	HomeBot    string     `json:"home_bot"`
	AwayBot    string     `json:"away_bot"`
	Winner     string     `json:"winner,omitempty"`
	Turns      int        `json:"turns"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Decision is one action chosen by the planner for one unit.
type Decision struct {
	ID        int64          `json:"id"`
	MatchID   string         `json:"match_id"`
	Turn      int            `json:"turn"`
	UnitID    int64          `json:"unit_id"`
	Role      string         `json:"role"`
	Action    tactics.Action `json:"action"`
	Score     int            `json:"score"`
	BaseScore int            `json:"base_score"`
	Nodes     int            `json:"nodes"`
	CreatedAt time.Time      `json:"created_at"`
}

// PlannerState is the part of a match context that outlives a single turn.
type PlannerState struct {
	Turn        int                     `json:"turn"`
	RoamTargets map[int64]tactics.Point `json:"roam_targets"`
}
