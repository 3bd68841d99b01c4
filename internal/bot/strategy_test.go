package bot

import (
	"testing"

	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct{ name, want string }{
		{"search", "search"},
		{"", "search"},
		{"hold", "hold"},
		{"random", "random"},
		{"nonsense", "search"},
	}
	for _, tt := range tests {
		if got := StrategyFor(tt.name).Name(); got != tt.want {
			t.Errorf("StrategyFor(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestHoldStrategy_EndsTurn(t *testing.T) {
	p := tactics.DefaultParams()
	w := openWorld(5, 5,
		testUnit(p, 1, true, tactics.Soldier, tactics.Pt(0, 0)),
		testUnit(p, 2, false, tactics.Soldier, tactics.Pt(1, 0)),
	)
	d, err := HoldStrategy{}.Decide(shallowMatch(1), w, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action.Type != tactics.EndTurn {
		t.Errorf("expected end_turn, got %s", d.Action)
	}
	if _, err := (HoldStrategy{}).Decide(shallowMatch(1), w, 3); err == nil {
		t.Error("expected an error for a missing unit")
	}
}

func TestRandomStrategy_PicksLegalActions(t *testing.T) {
	p := tactics.DefaultParams()
	w := openWorld(5, 5,
		testUnit(p, 1, true, tactics.Soldier, tactics.Pt(2, 2)),
		testUnit(p, 2, false, tactics.Soldier, tactics.Pt(4, 2)),
	)
	m := shallowMatch(3)
	snap, _ := NewSnapshot(w, 1)
	legal := map[tactics.Action]bool{tactics.NewAction(tactics.EndTurn): true}
	for _, a := range m.Planner.LegalActions(snap) {
		legal[a] = true
	}

	seen := map[tactics.ActionType]bool{}
	for range 50 {
		d, err := RandomStrategy{}.Decide(m, w, 1)
		if err != nil {
			t.Fatal(err)
		}
		if !legal[d.Action] {
			t.Fatalf("illegal action %s", d.Action)
		}
		seen[d.Action.Type] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected some variety over 50 draws, got %v", seen)
	}
}
