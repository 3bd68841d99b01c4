package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/freeeve/trooper-tactics/api/internal/model"
)

type mockMatchRepo struct {
	mu        sync.Mutex
	matches   map[string]*model.Match
	decisions map[string][]model.Decision
	nextID    int64
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{
		matches:   make(map[string]*model.Match),
		decisions: make(map[string][]model.Decision),
	}
}

func (m *mockMatchRepo) CreateMatch(_ context.Context, in *model.Match) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *in
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("match-%d", len(m.matches)+1)
	}
	cp.CreatedAt = time.Now()
	m.matches[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockMatchRepo) FindByID(_ context.Context, id string) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *mockMatchRepo) ListFinished(_ context.Context, limit int) ([]model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Match
	for _, g := range m.matches {
		if g.Status == model.MatchFinished && len(out) < limit {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) RecordDecision(_ context.Context, d *model.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now()
	m.decisions[d.MatchID] = append(m.decisions[d.MatchID], *d)
	return nil
}

func (m *mockMatchRepo) ListDecisions(_ context.Context, matchID string) ([]model.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Decision(nil), m.decisions[matchID]...), nil
}

func (m *mockMatchRepo) FinishMatch(_ context.Context, id, winner string, turns int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.matches[id]
	if !ok {
		return fmt.Errorf("finish match %s: not found", id)
	}
	now := time.Now()
	g.Status, g.Winner, g.Turns, g.FinishedAt = model.MatchFinished, winner, turns, &now
	return nil
}

type mockCache struct {
	mu      sync.Mutex
	states  map[string]model.PlannerState
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{states: make(map[string]model.PlannerState)}
}

func cacheKey(matchID string, playerID int64) string { return fmt.Sprintf("%s:%d", matchID, playerID) }

func (c *mockCache) SetPlannerState(_ context.Context, matchID string, playerID int64, st model.PlannerState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[cacheKey(matchID, playerID)] = st
	return nil
}

func (c *mockCache) GetPlannerState(_ context.Context, matchID string, playerID int64) (*model.PlannerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[cacheKey(matchID, playerID)]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (c *mockCache) DeleteMatchState(_ context.Context, matchID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, matchID)
	return nil
}

type broadcastEvent struct {
	matchID   string
	eventType string
	data      any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *recordingBroadcaster) BroadcastMatchEvent(matchID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{matchID, eventType, data})
}
