//go:build integration

package bot

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/freeeve/trooper-tactics/api/internal/model"
	"github.com/freeeve/trooper-tactics/api/internal/repository/postgres"
	"github.com/freeeve/trooper-tactics/api/internal/testutil"
)

// arenaMatches returns ARENA_MATCHES as int, or the provided default.
func arenaMatches(defaultN int) int {
	if s := os.Getenv("ARENA_MATCHES"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return defaultN
}

// TestSearchVsRandomDB plays search against random with every match and
// decision stored for review.
// Run with: go test -tags integration -run TestSearchVsRandomDB -v -count=1
func TestSearchVsRandomDB(t *testing.T) {
	db := testutil.SetupDB(t)
	repo := postgres.NewMatchRepo(db)
	ctx := context.Background()

	opts := DefaultOptions()
	opts.MaxDepth = 5

	n := arenaMatches(4)
	wins, draws, losses := 0, 0, 0
	for i := range n {
		cfg := ArenaConfig{
			Name:         "search-vs-random",
			HomeStrategy: "search",
			AwayStrategy: "random",
			Width:        14,
			Height:       14,
			CoverRatio:   0.1,
			Bonuses:      2,
			MaxTurns:     30,
			Seed:         int64(i + 1),
			Options:      opts,
		}
		result, err := RunMatch(ctx, cfg, repo)
		if err != nil {
			t.Fatalf("match %d failed: %v", i+1, err)
		}

		m, err := repo.FindByID(ctx, result.MatchID)
		if err != nil || m == nil {
			t.Fatalf("match %d not stored: %v", i+1, err)
		}
		if m.Status != model.MatchFinished || m.Winner != result.Winner || m.Turns != result.Turns {
			t.Errorf("match %d stored as %+v, result %+v", i+1, m, result)
		}
		ds, err := repo.ListDecisions(ctx, result.MatchID)
		if err != nil {
			t.Fatal(err)
		}
		if len(ds) != result.Decisions {
			t.Errorf("match %d: %d decisions stored, %d played", i+1, len(ds), result.Decisions)
		}

		switch result.Winner {
		case Home:
			wins++
		case "":
			draws++
		default:
			losses++
		}
		t.Logf("Match %d: winner=%q turns=%d survivors=%v", i+1, result.Winner, result.Turns, result.Survivors)
	}

	t.Logf("search vs random over %d matches: %d wins, %d draws, %d losses", n, wins, draws, losses)
	if losses > wins {
		t.Errorf("search lost more often than it won against random (%d vs %d)", losses, wins)
	}
}
