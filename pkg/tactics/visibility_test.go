package tactics

import "testing"

func TestLineOfSight(t *testing.T) {
	g := MustParseGrid(
		".....",
		"..l..",
		"..#..",
		".....",
	)
	tests := []struct {
		name     string
		rng      float64
		from, to Point
		fs, ts   Stance
		want     bool
	}{
		{"open row", 10, Pt(0, 0), Pt(4, 0), Standing, Standing, true},
		{"out of range", 3, Pt(0, 0), Pt(4, 0), Standing, Standing, false},
		{"low cover standing", 10, Pt(0, 1), Pt(4, 1), Standing, Standing, true},
		{"low cover kneeling", 10, Pt(0, 1), Pt(4, 1), Kneeling, Standing, false},
		{"low cover prone target", 10, Pt(0, 1), Pt(4, 1), Standing, Prone, false},
		{"high cover", 10, Pt(0, 2), Pt(4, 2), Standing, Standing, false},
		{"adjacent", 1, Pt(1, 2), Pt(1, 3), Prone, Prone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineOfSight(g, tt.rng, tt.from, tt.fs, tt.to, tt.ts); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWorldIsVisible_Override(t *testing.T) {
	w := &World{Grid: MustParseGrid("..#..")}
	if w.IsVisible(10, Pt(0, 0), Standing, Pt(4, 0), Standing) {
		t.Error("terrain rule should block through high cover")
	}
	w.Sight = VisibilityFunc(func(float64, Point, Stance, Point, Stance) bool { return true })
	if !w.IsVisible(10, Pt(0, 0), Standing, Pt(4, 0), Standing) {
		t.Error("override should be consulted")
	}
}
