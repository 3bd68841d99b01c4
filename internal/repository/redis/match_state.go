package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/trooper-tactics/api/internal/model"
)

// plannerKey holds one hash per match: field = player id, value = JSON state.
func plannerKey(matchID string) string { return "match:" + matchID + ":planner" }

// SetPlannerState stores the planner context of one player in a match.
func (c *Client) SetPlannerState(ctx context.Context, matchID string, playerID int64, st model.PlannerState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal planner state: %w", err)
	}
	key := plannerKey(matchID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatInt(playerID, 10), data)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set planner state: %w", err)
	}
	return nil
}

// GetPlannerState retrieves a player's planner context, or nil when none is stored.
func (c *Client) GetPlannerState(ctx context.Context, matchID string, playerID int64) (*model.PlannerState, error) {
	data, err := c.rdb.HGet(ctx, plannerKey(matchID), strconv.FormatInt(playerID, 10)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get planner state: %w", err)
	}
	var st model.PlannerState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode planner state: %w", err)
	}
	return &st, nil
}

// DeleteMatchState removes every player's planner context for a match.
func (c *Client) DeleteMatchState(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, plannerKey(matchID)).Err()
}
