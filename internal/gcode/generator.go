package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/circlepack/internal/model"
)

// Generator produces GCode for cutting a packed layout out of a circular blank.
// Machine coordinates put the circle centre at X0 Y0.
type Generator struct {
	Settings model.CNCSettings
	profile  model.GCodeProfile
}

func New(settings model.CNCSettings) *Generator {
	return NewWithProfile(settings, model.GetProfile(settings.GCodeProfile))
}

// NewWithProfile ignores settings.GCodeProfile and emits profile's dialect.
func NewWithProfile(settings model.CNCSettings, profile model.GCodeProfile) *Generator {
	return &Generator{
		Settings: settings,
		profile:  profile,
	}
}

// Generate produces the full program: every rectangle outline first, then the
// blank so the parts stay held while they are cut.
func (g *Generator) Generate(cfg model.PackingConfig, result model.PackingResult) string {
	var b strings.Builder

	g.writeHeader(&b, cfg, result)

	for i, placement := range result.Placements {
		g.writeRectangle(&b, placement, i)
	}
	if g.Settings.CutBlank && result.Radius > 0 {
		g.writeBlank(&b, result.Radius)
	}

	g.writeFooter(&b)
	return b.String()
}

func (g *Generator) writeHeader(b *strings.Builder, cfg model.PackingConfig, result model.PackingResult) {
	p := g.profile
	stats := model.ComputeStats(result, 0, 0)

	b.WriteString(g.comment(fmt.Sprintf("circlepack GCode, R=%.4fmm (%s)", result.Radius, result.Mode)))
	b.WriteString(g.comment(fmt.Sprintf("Rectangles: %d, Density: %.1f%%", len(result.Placements), stats.Density)))
	b.WriteString(g.comment(fmt.Sprintf("Padding: inner %.2fmm, outer %.2fmm", cfg.PaddingInner, cfg.PaddingOuter)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %.1fmm passes", g.Settings.CutDepth, g.Settings.PassDepth)))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	// Initial safe Z retract
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" && !containsLine(p.EndCode, p.SpindleStop) {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// writeRectangle cuts the rotated outline of one placement, offset outside
// by the tool radius.
func (g *Generator) writeRectangle(b *strings.Builder, p model.Placement, index int) {
	path := ToolPath(p, g.Settings.ToolDiameter/2, g.Settings.UseClimb)

	label := p.Rectangle.Label
	if label == "" {
		label = model.DefaultLabel(index)
	}
	rot := ""
	if p.Angle != 0 {
		rot = fmt.Sprintf(" rotated %.1f deg", p.Angle)
	}
	b.WriteString(g.comment(fmt.Sprintf("--- Rectangle %d: %s (%.1f x %.1f) at (%.3f, %.3f)%s ---",
		index+1, label, p.Rectangle.Width, p.Rectangle.Height, p.X, p.Y, rot)))

	g.eachPass(b, func(depth float64) {
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(path[0].X), g.format(path[0].Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))

		for i := 1; i < len(path); i++ {
			b.WriteString(g.feed(path[i], i == 1))
		}
		b.WriteString(g.feed(path[0], false))

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	})

	b.WriteString("\n")
}

// writeBlank cuts the circle out as one full arc per pass, outside by the
// tool radius.
func (g *Generator) writeBlank(b *strings.Builder, radius float64) {
	r := radius + g.Settings.ToolDiameter/2
	arc := g.profile.ArcCW
	if !g.Settings.UseClimb {
		arc = g.profile.ArcCCW
	}

	b.WriteString(g.comment(fmt.Sprintf("--- Blank: circle R=%.3f (tool path R=%.3f) ---", radius, r)))

	g.eachPass(b, func(depth float64) {
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(r), g.format(0)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s I%s J%s F%s\n", arc,
			g.format(r), g.format(0), g.format(-r), g.format(0), g.format(g.Settings.FeedRate)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	})
}

// eachPass calls cut once per depth step down to CutDepth.
func (g *Generator) eachPass(b *strings.Builder, cut func(depth float64)) {
	n := g.NumPasses()
	for pass := 1; pass <= n; pass++ {
		depth := math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.CutDepth)
		if n == 1 {
			depth = g.Settings.CutDepth
		}
		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, n, depth)))
		cut(depth)
	}
}

// NumPasses returns how many depth steps reach CutDepth. A non-positive
// PassDepth cuts in a single pass.
func (g *Generator) NumPasses() int {
	if g.Settings.PassDepth <= 0 || g.Settings.PassDepth >= g.Settings.CutDepth {
		return 1
	}
	return int(math.Ceil(g.Settings.CutDepth/g.Settings.PassDepth - 1e-9))
}

func (g *Generator) feed(pt model.Point2D, withRate bool) string {
	if withRate {
		return fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove, g.format(pt.X), g.format(pt.Y), g.format(g.Settings.FeedRate))
	}
	return fmt.Sprintf("%s X%s Y%s\n", g.profile.FeedMove, g.format(pt.X), g.format(pt.Y))
}

// ToolPath returns the tool centre corners for cutting p from the outside:
// the rectangle grown by toolRadius on every side, keeping sharp corners.
// Climb milling an outside profile runs clockwise.
func ToolPath(p model.Placement, toolRadius float64, climb bool) [4]model.Point2D {
	grown := p
	grown.Rectangle.Width += 2 * toolRadius
	grown.Rectangle.Height += 2 * toolRadius
	c := grown.Corners() // counter-clockwise
	if climb {
		return [4]model.Point2D{c[0], c[3], c[2], c[1]}
	}
	return c
}

// comment wraps text in the profile's comment syntax.
// Parenthesised comments cannot nest, so inner parentheses become brackets.
func (g *Generator) comment(text string) string {
	if g.profile.CommentSuffix == ")" {
		text = strings.NewReplacer("(", "[", ")", "]").Replace(text)
	}
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	s := fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
	if strings.Trim(s, "-0.") == "" {
		// avoid "-0.000"
		s = strings.TrimPrefix(s, "-")
	}
	return s
}

func containsLine(lines []string, s string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == s {
			return true
		}
	}
	return false
}
