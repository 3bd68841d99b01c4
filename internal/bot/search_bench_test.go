package bot

import (
	"context"
	"fmt"
	"testing"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// benchWorld builds a two-squad skirmish on a generated map, with the home
// squad already advanced halfway so enemies are in play.
func benchWorld(b *testing.B, size int) *tactics.World {
	b.Helper()
	p := tactics.DefaultParams()
	grid, err := tactics.GenerateMap(tactics.MapConfig{Width: size, Height: size, CoverRatio: 0.15, Seed: 42})
	if err != nil {
		b.Fatalf("generate map: %v", err)
	}
	roles := tactics.AllRoles()
	home, away := tactics.SpawnPoints(grid, len(roles))
	w := &tactics.World{Grid: grid}
	for i, r := range roles {
		u := tactics.NewUnit(p, int64(i+1), homePlayer, r, home[i])
		u.Teammate = true
		w.Units = append(w.Units, u)
		w.Units = append(w.Units, tactics.NewUnit(p, int64(i+101), awayPlayer, r, away[i]))
	}
	tactics.PlaceBonuses(w, 3, 42)
	return w
}

func BenchmarkBuildAllPairs_FloydWarshall(b *testing.B) {
	g := benchWorld(b, 16).Grid
	b.ReportAllocs()
	for b.Loop() {
		BuildAllPairs(g)
	}
}

func BenchmarkBuildAllPairs_BFS(b *testing.B) {
	g := benchWorld(b, 32).Grid
	b.ReportAllocs()
	for b.Loop() {
		BuildAllPairs(g)
	}
}

func BenchmarkPlan(b *testing.B) {
	for _, depth := range []int{4, 6, 8} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			w := benchWorld(b, 16)
			snap, err := NewSnapshot(w, 1)
			if err != nil {
				b.Fatal(err)
			}
			opts := DefaultOptions()
			opts.MaxDepth = depth
			planner := NewPlanner(tactics.DefaultParams(), DefaultWeights(), opts)
			oracle := BuildAllPairs(w.Grid)
			target := w.Units[1].Pos

			b.ReportAllocs()
			for b.Loop() {
				planner.Plan(snap, oracle, target)
			}
		})
	}
}

func BenchmarkMatchDecide(b *testing.B) {
	w := benchWorld(b, 16)
	m := NewMatch("bench", NewPlanner(tactics.DefaultParams(), DefaultWeights(), DefaultOptions()), 1)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := m.Decide(w, 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRunMatch_SearchVsRandom(b *testing.B) {
	opts := DefaultOptions()
	opts.MaxDepth = 4
	var seed int64
	for b.Loop() {
		seed++
		cfg := ArenaConfig{
			HomeStrategy: "search",
			AwayStrategy: "random",
			Width:        12,
			Height:       12,
			MaxTurns:     20,
			Seed:         seed,
			DryRun:       true,
			Options:      opts,
		}
		if _, err := RunMatch(context.Background(), cfg, nil); err != nil {
			b.Fatal(err)
		}
	}
}
