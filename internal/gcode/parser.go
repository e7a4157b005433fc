package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear cut in the XY plane
	MovePlunge                  // G1 with Z decreasing
	MoveRetract                 // G0/G1 with Z increasing
	MoveArcCW                   // G2
	MoveArcCCW                  // G3
)

// Move is a single parsed motion command. Arcs carry their centre; an arc
// that ends where it starts is a full circle.
type Move struct {
	Type     MoveType
	From     [3]float64
	To       [3]float64
	CenterX  float64
	CenterY  float64
	FeedRate float64
}

// IsCut reports whether the tool removes material during the move.
func (m Move) IsCut() bool {
	return m.Type == MoveFeed || m.Type == MoveArcCW || m.Type == MoveArcCCW
}

// Radius returns the arc radius, or 0 for linear moves.
func (m Move) Radius() float64 {
	if m.Type != MoveArcCW && m.Type != MoveArcCCW {
		return 0
	}
	return math.Hypot(m.From[0]-m.CenterX, m.From[1]-m.CenterY)
}

var wordRe = regexp.MustCompile(`([XYZFIJ])\s*(-?\d*\.?\d+)`)

// Parse reads absolute-mode GCode into structured moves. Comments and
// non-motion words are skipped; modal position and feed rate carry over
// between lines.
func Parse(code string) []Move {
	var moves []Move
	var pos [3]float64
	feed := 0.0

	for _, line := range strings.Split(code, "\n") {
		line = strings.ToUpper(stripComments(line))
		if line == "" {
			continue
		}

		cmd := commandOf(line)
		if cmd < 0 {
			continue
		}

		to := pos
		var i, j float64
		for _, m := range wordRe.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				to[0] = v
			case "Y":
				to[1] = v
			case "Z":
				to[2] = v
			case "F":
				feed = v
			case "I":
				i = v
			case "J":
				j = v
			}
		}

		mv := Move{From: pos, To: to, FeedRate: feed}
		switch cmd {
		case 2:
			mv.Type = MoveArcCW
		case 3:
			mv.Type = MoveArcCCW
		default:
			mv.Type = classifyMove(cmd == 0, pos, to)
		}
		if cmd >= 2 {
			mv.CenterX, mv.CenterY = pos[0]+i, pos[1]+j
		}
		moves = append(moves, mv)
		pos = to
	}
	return moves
}

// stripComments removes ";" line comments and "( ... )" inline comments.
func stripComments(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		open := strings.Index(line, "(")
		if open < 0 {
			break
		}
		end := strings.Index(line[open:], ")")
		if end < 0 {
			line = line[:open]
			break
		}
		line = line[:open] + line[open+end+1:]
	}
	return strings.TrimSpace(line)
}

// commandOf returns 0-3 for G0/G1/G2/G3 lines (with or without a leading
// zero) and -1 for everything else.
func commandOf(line string) int {
	word := strings.Fields(line)[0]
	switch word {
	case "G0", "G00":
		return 0
	case "G1", "G01":
		return 1
	case "G2", "G02":
		return 2
	case "G3", "G03":
		return 3
	}
	return -1
}

// classifyMove determines the MoveType of a linear move.
func classifyMove(rapid bool, from, to [3]float64) MoveType {
	zDelta := to[2] - from[2]
	hasXY := from[0] != to[0] || from[1] != to[1]

	switch {
	case rapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// CutReach returns the largest distance from the origin reached by the tool
// centre during cutting moves. Arcs are bounded by their full circle.
func CutReach(moves []Move) float64 {
	reach := 0.0
	for _, m := range moves {
		if !m.IsCut() {
			continue
		}
		d := math.Max(math.Hypot(m.From[0], m.From[1]), math.Hypot(m.To[0], m.To[1]))
		if m.Radius() > 0 {
			d = math.Max(d, math.Hypot(m.CenterX, m.CenterY)+m.Radius())
		}
		reach = math.Max(reach, d)
	}
	return reach
}

// MaxDepth returns the deepest Z reached, as a positive number.
func MaxDepth(moves []Move) float64 {
	depth := 0.0
	for _, m := range moves {
		depth = math.Max(depth, -m.To[2])
	}
	return depth
}
