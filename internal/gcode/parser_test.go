package gcode

import (
	"math"
	"testing"
)

func TestParse_SkipsCommentsAndNonMotion(t *testing.T) {
	code := `; header comment
(parenthetical comment)
G90
G21
M3 S18000
G0 X0.000 Y0.000 (inline)
G0 Z5.000 ; retract
`
	moves := Parse(code)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[1].Type != MoveRetract {
		t.Errorf("expected MoveRetract, got %d", moves[1].Type)
	}
}

func TestParse_StateTracking(t *testing.T) {
	code := `G0 X10.000 Y20.000
G0 Z5.000
G1 Z-6.000 F500.0
G1 X100.000 Y20.000 F1500.0
G1 X100.000 Y80.000
G0 Z5.000
`
	moves := Parse(code)
	if len(moves) != 6 {
		t.Fatalf("expected 6 moves, got %d", len(moves))
	}

	wantTypes := []MoveType{MoveRapid, MoveRetract, MovePlunge, MoveFeed, MoveFeed, MoveRetract}
	for i, want := range wantTypes {
		if moves[i].Type != want {
			t.Errorf("move %d: type %d, want %d", i, moves[i].Type, want)
		}
	}
	if moves[2].From != [3]float64{10, 20, 5} {
		t.Errorf("plunge should start at (10,20,5), got %v", moves[2].From)
	}
	if moves[4].From != [3]float64{100, 20, -6} || moves[4].To[1] != 80 {
		t.Errorf("unexpected feed move %+v", moves[4])
	}
	if moves[4].FeedRate != 1500 {
		t.Errorf("expected sticky feed rate 1500, got %.1f", moves[4].FeedRate)
	}
}

func TestParse_ArcCenter(t *testing.T) {
	code := `G0 X19.000 Y0.000
G1 Z-2.000 F300
G2 X19.000 Y0.000 I-19.000 J0.000 F1000
G0 X5 Y5
G03 X5 Y-5 I-5 J-5
`
	moves := Parse(code)
	if len(moves) != 5 {
		t.Fatalf("expected 5 moves, got %d", len(moves))
	}
	full := moves[2]
	if full.Type != MoveArcCW {
		t.Fatalf("expected MoveArcCW, got %d", full.Type)
	}
	if full.CenterX != 0 || full.CenterY != 0 {
		t.Errorf("expected centre (0,0), got (%.3f,%.3f)", full.CenterX, full.CenterY)
	}
	if math.Abs(full.Radius()-19) > 1e-9 {
		t.Errorf("expected radius 19, got %f", full.Radius())
	}
	if moves[4].Type != MoveArcCCW || moves[4].CenterX != 0 || moves[4].CenterY != 0 {
		t.Errorf("unexpected G03 move %+v", moves[4])
	}
	if moves[3].Radius() != 0 {
		t.Error("linear moves have no radius")
	}
}

func TestCutReachIgnoresRapids(t *testing.T) {
	code := `G0 X50 Y50
G1 Z-1
G1 X3 Y4
G1 X0 Y0
`
	moves := Parse(code)
	// the feed from (50,50) counts, the rapid to it does not
	if got := CutReach(moves); math.Abs(got-math.Hypot(50, 50)) > 1e-9 {
		t.Errorf("CutReach = %f", got)
	}
	if got := CutReach(moves[:1]); got != 0 {
		t.Errorf("rapids only: CutReach = %f, want 0", got)
	}
	if got := MaxDepth(moves); got != 1 {
		t.Errorf("MaxDepth = %f, want 1", got)
	}
}

func TestClassifyMove(t *testing.T) {
	tests := []struct {
		name  string
		rapid bool
		from  [3]float64
		to    [3]float64
		want  MoveType
	}{
		{"rapid XY", true, [3]float64{0, 0, 5}, [3]float64{10, 20, 5}, MoveRapid},
		{"rapid retract", true, [3]float64{10, 20, -6}, [3]float64{10, 20, 5}, MoveRetract},
		{"feed XY", false, [3]float64{0, 0, -6}, [3]float64{100, 0, -6}, MoveFeed},
		{"plunge", false, [3]float64{10, 20, 5}, [3]float64{10, 20, -6}, MovePlunge},
		{"retract feed", false, [3]float64{10, 20, -6}, [3]float64{10, 20, 0}, MoveRetract},
		{"feed with slight Z", false, [3]float64{0, 0, -6}, [3]float64{100, 0, -6.0001}, MoveFeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMove(tt.rapid, tt.from, tt.to); got != tt.want {
				t.Errorf("classifyMove() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	tests := map[string]string{
		"G1 X1 ; cut":        "G1 X1",
		"(note) G0 X1 (more)": "G0 X1",
		"G0 X1 (unterminated": "G0 X1",
		"  ":                  "",
	}
	for in, want := range tests {
		if got := stripComments(in); got != want {
			t.Errorf("stripComments(%q) = %q, want %q", in, got, want)
		}
	}
}
