package tactics

import (
	"encoding/json"
	"testing"
)

func TestNeighbors_Order(t *testing.T) {
	g := NewGrid(3, 3)
	got := g.Neighbors(Pt(1, 1))
	want := []Point{Pt(0, 1), Pt(1, 0), Pt(2, 1), Pt(1, 2)}
	if len(got) != len(want) {
		t.Fatalf("expected %d neighbors, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("neighbor %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNeighbors_Corner(t *testing.T) {
	g := NewGrid(3, 3)
	got := g.Neighbors(Pt(0, 0))
	if len(got) != 2 || got[0] != Pt(1, 0) || got[1] != Pt(0, 1) {
		t.Errorf("unexpected corner neighbors %v", got)
	}
}

func TestParseGrid(t *testing.T) {
	g := MustParseGrid(
		"..#",
		".l.",
	)
	if g.Width != 3 || g.Height != 2 {
		t.Fatalf("expected 3x2, got %dx%d", g.Width, g.Height)
	}
	if g.At(Pt(2, 0)) != HighCover {
		t.Errorf("expected high cover at (2,0), got %s", g.At(Pt(2, 0)))
	}
	if g.At(Pt(1, 1)) != LowCover {
		t.Errorf("expected low cover at (1,1), got %s", g.At(Pt(1, 1)))
	}
	if g.IsWalkable(Pt(1, 1)) {
		t.Error("low cover should not be walkable")
	}
	if g.IsWalkable(Pt(5, 5)) {
		t.Error("out-of-bounds cell should not be walkable")
	}
	if _, err := ParseGrid([]string{"..", "..."}); err == nil {
		t.Error("expected error for ragged rows")
	}
	if _, err := ParseGrid([]string{".x"}); err == nil {
		t.Error("expected error for unknown glyph")
	}
}

func TestGridJSON(t *testing.T) {
	g := MustParseGrid("..#", "l..")
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Grid
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, row := range g.Rows() {
		if back.Rows()[i] != row {
			t.Errorf("row %d: expected %q, got %q", i, row, back.Rows()[i])
		}
	}
	if err := json.Unmarshal([]byte(`{"width":4,"height":1,"rows":["..."]}`), &back); err == nil {
		t.Error("expected header mismatch error")
	}
}

func TestPointOrdering(t *testing.T) {
	if !Pt(1, 5).Less(Pt(2, 0)) {
		t.Error("expected (1,5) < (2,0)")
	}
	if !Pt(1, 1).Less(Pt(1, 2)) {
		t.Error("expected (1,1) < (1,2)")
	}
	if Pt(1, 1).Less(Pt(1, 1)) {
		t.Error("point should not be less than itself")
	}
	if d := Pt(0, 0).CeilDistanceTo(Pt(1, 1)); d != 2 {
		t.Errorf("expected ceil distance 2, got %d", d)
	}
}
