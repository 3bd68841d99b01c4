package service

import (
	"context"
	"errors"
	"testing"

	"github.com/freeeve/trooper-tactics/api/internal/bot"
	"github.com/freeeve/trooper-tactics/api/internal/model"
	"github.com/freeeve/trooper-tactics/api/internal/repository"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

func newTestService(repo *mockMatchRepo, cache *mockCache, b Broadcaster) *DecisionService {
	var c repository.MatchCache
	if cache != nil {
		c = cache
	}
	opts := bot.DefaultOptions()
	opts.MaxDepth = 3
	return NewDecisionService(repo, c, b, tactics.DefaultParams(), bot.DefaultWeights(), opts, "search")
}

func testWorld(moveIndex int) *tactics.World {
	p := tactics.DefaultParams()
	self := tactics.NewUnit(p, 1, 1, tactics.Soldier, tactics.Pt(0, 0))
	self.Teammate = true
	enemy := tactics.NewUnit(p, 2, 2, tactics.Soldier, tactics.Pt(3, 0))
	return &tactics.World{MoveIndex: moveIndex, Grid: tactics.NewGrid(6, 6), Units: []tactics.Unit{self, enemy}}
}

func TestDecide_RecordsAndBroadcasts(t *testing.T) {
	repo, cache, b := newMockMatchRepo(), newMockCache(), &recordingBroadcaster{}
	svc := newTestService(repo, cache, b)
	ctx := context.Background()

	dec, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: testWorld(1)})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if dec.Action.Type == tactics.EndTurn {
		t.Errorf("expected an attack with an enemy in range, got %s", dec.Action)
	}
	if dec.Turn != 1 || dec.Role != string(tactics.Soldier) || dec.ID == 0 {
		t.Errorf("unexpected decision %+v", dec)
	}

	if m, _ := repo.FindByID(ctx, "m1"); m == nil || m.HomeBot != "search" {
		t.Errorf("expected match row created, got %+v", m)
	}
	if len(repo.decisions["m1"]) != 1 {
		t.Errorf("expected one recorded decision, got %d", len(repo.decisions["m1"]))
	}
	if st, _ := cache.GetPlannerState(ctx, "m1", 1); st == nil || st.Turn != 1 {
		t.Errorf("expected planner state at turn 1, got %+v", st)
	}
	if len(b.events) != 1 || b.events[0].eventType != EventDecision || b.events[0].matchID != "m1" {
		t.Errorf("unexpected broadcasts %+v", b.events)
	}
}

func TestDecide_TurnAdvancesOnNewMoveIndex(t *testing.T) {
	svc := newTestService(newMockMatchRepo(), newMockCache(), nil)
	ctx := context.Background()

	for i, mi := range []int{4, 4, 5, 7} {
		dec, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: testWorld(mi), Strategy: "hold"})
		if err != nil {
			t.Fatal(err)
		}
		want := []int{1, 1, 2, 3}[i]
		if dec.Turn != want {
			t.Errorf("call %d (move %d): expected turn %d, got %d", i, mi, want, dec.Turn)
		}
	}
}

func TestDecide_SeparateContextsPerPlayer(t *testing.T) {
	cache := newMockCache()
	svc := newTestService(newMockMatchRepo(), cache, nil)
	ctx := context.Background()

	w := testWorld(1)
	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: w, Strategy: "hold"}); err != nil {
		t.Fatal(err)
	}
	w = testWorld(1)
	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 2, World: w, Strategy: "hold"}); err != nil {
		t.Fatal(err)
	}
	for _, player := range []int64{1, 2} {
		if st, _ := cache.GetPlannerState(ctx, "m1", player); st == nil || st.Turn != 1 {
			t.Errorf("player %d: expected its own context at turn 1, got %+v", player, st)
		}
	}
}

func TestDecide_RestoresFromCache(t *testing.T) {
	cache := newMockCache()
	cache.SetPlannerState(context.Background(), "m1", 1, model.PlannerState{Turn: 20})
	svc := newTestService(newMockMatchRepo(), cache, nil)

	dec, err := svc.Decide(context.Background(), "m1", DecideRequest{UnitID: 1, World: testWorld(3), Strategy: "hold"})
	if err != nil {
		t.Fatal(err)
	}
	if dec.Turn != 21 {
		t.Errorf("expected turn 21 after restoring 20, got %d", dec.Turn)
	}
}

func TestDecide_BadRequests(t *testing.T) {
	svc := newTestService(newMockMatchRepo(), nil, nil)
	ctx := context.Background()

	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("missing world: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 9, World: testWorld(1)}); !errors.Is(err, tactics.ErrNoSelf) {
		t.Errorf("missing unit: expected ErrNoSelf, got %v", err)
	}

	bad := tactics.DefaultParams()
	bad.GrenadeThrowCost = 0
	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: testWorld(1), Params: bad}); !errors.Is(err, tactics.ErrInvalidParams) {
		t.Errorf("bad params: expected ErrInvalidParams, got %v", err)
	}

	w := testWorld(1)
	w.Grid.Set(tactics.Pt(3, 0), tactics.HighCover)
	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: w}); !errors.Is(err, tactics.ErrBlockedCell) {
		t.Errorf("unit on cover: expected ErrBlockedCell, got %v", err)
	}
}

func TestFinishMatch(t *testing.T) {
	repo, cache, b := newMockMatchRepo(), newMockCache(), &recordingBroadcaster{}
	svc := newTestService(repo, cache, b)
	ctx := context.Background()

	if err := svc.FinishMatch(ctx, "nope", "", 0); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}

	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: testWorld(1), Strategy: "hold"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.FinishMatch(ctx, "m1", "home", 12); err != nil {
		t.Fatalf("FinishMatch: %v", err)
	}
	if m, _ := repo.FindByID(ctx, "m1"); m.Status != model.MatchFinished || m.Winner != "home" {
		t.Errorf("match not finished: %+v", m)
	}
	if len(cache.deleted) != 1 {
		t.Errorf("expected planner state deleted, got %v", cache.deleted)
	}
	if last := b.events[len(b.events)-1]; last.eventType != EventMatchFinished {
		t.Errorf("expected match_finished broadcast, got %s", last.eventType)
	}
	if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: testWorld(2)}); !errors.Is(err, ErrMatchFinished) {
		t.Errorf("expected ErrMatchFinished after finishing, got %v", err)
	}
}

func TestListDecisions(t *testing.T) {
	svc := newTestService(newMockMatchRepo(), nil, nil)
	ctx := context.Background()

	if _, err := svc.ListDecisions(ctx, "m1"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
	for mi := 1; mi <= 3; mi++ {
		if _, err := svc.Decide(ctx, "m1", DecideRequest{UnitID: 1, World: testWorld(mi), Strategy: "hold"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := svc.ListDecisions(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2].Turn != 3 {
		t.Errorf("unexpected decisions %+v", got)
	}
}
