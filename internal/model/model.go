package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// RotationMode controls how rectangle angles are chosen during a solve.
type RotationMode int

const (
	RotationFixed0     RotationMode = iota // All rectangles stay at 0 degrees
	RotationDiscrete90                     // Every combination of {0, 90}
	RotationDiscrete45                     // Every combination of {0, 45, 90, 135}
	RotationFree                           // Angles optimized jointly in [0, 180)
)

func (m RotationMode) String() string {
	switch m {
	case RotationDiscrete90:
		return "DISCRETE_90"
	case RotationDiscrete45:
		return "DISCRETE_45"
	case RotationFree:
		return "FREE"
	default:
		return "FIXED_0"
	}
}

// ParseRotationMode accepts the canonical mode names case-insensitively.
func ParseRotationMode(s string) (RotationMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIXED_0", "FIXED":
		return RotationFixed0, nil
	case "DISCRETE_90":
		return RotationDiscrete90, nil
	case "DISCRETE_45":
		return RotationDiscrete45, nil
	case "FREE":
		return RotationFree, nil
	}
	return RotationFixed0, fmt.Errorf("unknown rotation mode %q", s)
}

func (m RotationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *RotationMode) UnmarshalText(b []byte) error {
	parsed, err := ParseRotationMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// AllRotationModes returns the modes in the order the multi-stage search tries them.
func AllRotationModes() []RotationMode {
	return []RotationMode{RotationFixed0, RotationDiscrete90, RotationDiscrete45, RotationFree}
}

// Angles returns the allowed angle set in degrees. FREE has no discrete set.
func (m RotationMode) Angles() []float64 {
	switch m {
	case RotationFixed0:
		return []float64{0}
	case RotationDiscrete90:
		return []float64{0, 90}
	case RotationDiscrete45:
		return []float64{0, 45, 90, 135}
	default:
		return nil
	}
}

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the distance from the origin.
func (p Point2D) Dist() float64 {
	return math.Hypot(p.X, p.Y)
}

// Rectangle is one inner shape to be packed.
type Rectangle struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Width  float64 `json:"width"`  // mm
	Height float64 `json:"height"` // mm
}

func NewRectangle(label string, w, h float64) Rectangle {
	return Rectangle{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Width:  w,
		Height: h,
	}
}

// DefaultLabel is the identifier given to the i-th (0-based) rectangle when none is supplied.
func DefaultLabel(i int) string {
	return fmt.Sprintf("Rect_%d", i+1)
}

func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

// IsSquare reports whether a quarter turn maps the rectangle onto itself.
func (r Rectangle) IsSquare() bool {
	return math.Abs(r.Width-r.Height) < 1e-9
}

// PackingConfig is the input to one solve call.
type PackingConfig struct {
	Rectangles   []Rectangle `json:"rectangles"`
	PaddingInner float64     `json:"padding_inner"`           // Min gap between rectangles (mm)
	PaddingOuter float64     `json:"padding_outer"`           // Min gap to the circle boundary (mm)
	TargetRadius *float64    `json:"target_radius,omitempty"` // Optional upper bound on R (mm)
}

// HasTarget reports whether a target radius is set.
func (c PackingConfig) HasTarget() bool {
	return c.TargetRadius != nil
}

// Target returns the target radius, or +Inf when unset.
func (c PackingConfig) Target() float64 {
	if c.TargetRadius == nil {
		return math.Inf(1)
	}
	return *c.TargetRadius
}

func (c *PackingConfig) SetTarget(r float64) {
	c.TargetRadius = &r
}

func (c *PackingConfig) ClearTarget() {
	c.TargetRadius = nil
}

// Validate checks the configuration before any optimization starts.
func (c PackingConfig) Validate() error {
	if len(c.Rectangles) == 0 {
		return &ConfigurationError{Field: "rectangles", Reason: "at least one rectangle is required", Err: ErrNoRectangles}
	}
	for i, r := range c.Rectangles {
		if !(r.Width > 0) || !(r.Height > 0) || math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0) {
			return &ConfigurationError{
				Field:  fmt.Sprintf("rectangles[%d]", i),
				Reason: fmt.Sprintf("dimensions must be positive, got %gx%g", r.Width, r.Height),
				Err:    ErrInvalidDimension,
			}
		}
	}
	if c.PaddingInner < 0 || math.IsNaN(c.PaddingInner) {
		return &ConfigurationError{Field: "padding_inner", Reason: fmt.Sprintf("must be >= 0, got %g", c.PaddingInner), Err: ErrNegativePadding}
	}
	if c.PaddingOuter < 0 || math.IsNaN(c.PaddingOuter) {
		return &ConfigurationError{Field: "padding_outer", Reason: fmt.Sprintf("must be >= 0, got %g", c.PaddingOuter), Err: ErrNegativePadding}
	}
	if c.TargetRadius != nil && (*c.TargetRadius < 0 || math.IsNaN(*c.TargetRadius)) {
		return &ConfigurationError{Field: "target_radius", Reason: fmt.Sprintf("must be >= 0, got %g", *c.TargetRadius), Err: ErrNegativeTarget}
	}
	return nil
}

// Labels returns the display identifier of every rectangle, falling back to Rect_N.
func (c PackingConfig) Labels() []string {
	labels := make([]string, len(c.Rectangles))
	for i, r := range c.Rectangles {
		labels[i] = r.Label
		if labels[i] == "" {
			labels[i] = DefaultLabel(i)
		}
	}
	return labels
}

// Placement is a rectangle positioned inside the circle.
type Placement struct {
	Rectangle Rectangle `json:"rectangle"`
	X         float64   `json:"x"`     // Center from circle origin (mm)
	Y         float64   `json:"y"`     // Center from circle origin (mm)
	Angle     float64   `json:"angle"` // Counter-clockwise rotation in degrees
}

// Corners returns the four corners in edge order, starting at the
// unrotated top-right corner.
func (p Placement) Corners() [4]Point2D {
	rad := p.Angle * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	hw, hh := p.Rectangle.Width/2, p.Rectangle.Height/2
	offsets := [4][2]float64{{hw, hh}, {-hw, hh}, {-hw, -hh}, {hw, -hh}}
	var out [4]Point2D
	for i, o := range offsets {
		out[i] = Point2D{
			X: p.X + o[0]*c - o[1]*s,
			Y: p.Y + o[0]*s + o[1]*c,
		}
	}
	return out
}

// Attempt records one fixed-angle sub-problem of a discrete rotation mode.
type Attempt struct {
	Angles     []float64 `json:"angles"` // degrees, one per rectangle
	Radius     float64   `json:"radius"`
	Success    bool      `json:"success"`
	Valid      bool      `json:"valid"`
	FitsTarget bool      `json:"fits_target"`
	Message    string    `json:"message"`
}

// ModeOutcome records one stage of a multi-stage solve. Err is set when the
// stage failed and produced no result.
type ModeOutcome struct {
	Mode       RotationMode `json:"mode"`
	Radius     float64      `json:"radius"`
	Success    bool         `json:"success"`
	Valid      bool         `json:"valid"`
	FitsTarget bool         `json:"fits_target"`
	Err        string       `json:"error,omitempty"`
	ElapsedMS  int64        `json:"elapsed_ms"`
}

func (o ModeOutcome) Failed() bool {
	return o.Err != ""
}

// PackingResult is the engine's answer for one solve call.
type PackingResult struct {
	Radius      float64       `json:"radius"` // mm
	Placements  []Placement   `json:"placements"`
	Success     bool          `json:"success"`     // Optimizer converged on its own tolerance
	Valid       bool          `json:"valid"`       // No overlap or containment violation
	FitsTarget  bool          `json:"fits_target"` // True when no target is set
	Mode        RotationMode  `json:"mode"`
	Message     string        `json:"message"`
	Penalty     float64       `json:"penalty"`
	Iterations  int           `json:"iterations"`
	Evaluations int           `json:"evaluations"`
	Attempts    []Attempt     `json:"attempts,omitempty"`
	Outcomes    []ModeOutcome `json:"outcomes,omitempty"`
}

// Diameter returns 2R.
func (r PackingResult) Diameter() float64 {
	return 2 * r.Radius
}

// CircleArea returns the area of the container circle.
func (r PackingResult) CircleArea() float64 {
	return math.Pi * r.Radius * r.Radius
}

// StageBudget is the optimizer budget for one rotation mode.
type StageBudget struct {
	MaxIter int     `json:"max_iter" yaml:"max_iter"`
	PopSize int     `json:"pop_size" yaml:"pop_size"` // Population multiplier per dimension
	Tol     float64 `json:"tol" yaml:"tol"`           // Relative convergence tolerance; ignored when a target is set
}

// SolverSettings holds every tunable of the packing engine.
type SolverSettings struct {
	ContainmentWeight float64 `json:"containment_weight"`
	OverlapWeight     float64 `json:"overlap_weight"`
	ValidityEpsilon   float64 `json:"validity_epsilon"` // Max residual penalty of a valid layout
	TargetEpsilon     float64 `json:"target_epsilon"`   // Slack when comparing R to the target
	DegenerateEdge    float64 `json:"degenerate_edge"`  // Edges shorter than this have no normal
	BoundsScale       float64 `json:"bounds_scale"`     // Search box is BoundsScale x sum of longest sides

	Fixed    StageBudget `json:"fixed"`
	Discrete StageBudget `json:"discrete"`
	Free     StageBudget `json:"free"`

	// Differential evolution
	MutationMin float64 `json:"mutation_min"` // Dither range for the differential weight
	MutationMax float64 `json:"mutation_max"`
	Crossover   float64 `json:"crossover"`
	Polish      bool    `json:"polish"` // Nelder-Mead refinement of the final candidate

	// Settle repairs a nearly feasible final candidate (penalty below
	// SettleTolerance) by spreading the rectangles and re-fitting R. Off by
	// default: validity is then judged on the optimizer's own best vector.
	Settle          bool    `json:"settle"`
	SettleTolerance float64 `json:"settle_tolerance"`

	Seed                  int64 `json:"seed"`
	Workers               int   `json:"workers"` // Concurrent discrete sub-problems, 1 = sequential
	DedupeSymmetricAngles bool  `json:"dedupe_symmetric_angles"`
}

func DefaultSolverSettings() SolverSettings {
	return SolverSettings{
		ContainmentWeight: 1000,
		OverlapWeight:     10000,
		ValidityEpsilon:   1e-4,
		TargetEpsilon:     1e-4,
		DegenerateEdge:    1e-9,
		BoundsScale:       1.5,
		Fixed:             StageBudget{MaxIter: 2000, PopSize: 20, Tol: 0.01},
		Discrete:          StageBudget{MaxIter: 600, PopSize: 10, Tol: 0.01},
		Free:              StageBudget{MaxIter: 1000, PopSize: 15, Tol: 0.05},
		MutationMin:       0.5,
		MutationMax:       1.0,
		Crossover:         0.7,
		Polish:            true,
		SettleTolerance:   1e-2,
		Seed:              42,
		Workers:           1,
	}
}

// Budget returns the optimizer budget used for mode.
func (s SolverSettings) Budget(mode RotationMode) StageBudget {
	switch mode {
	case RotationDiscrete90, RotationDiscrete45:
		return s.Discrete
	case RotationFree:
		return s.Free
	default:
		return s.Fixed
	}
}

// Validate rejects settings the optimizer cannot run with.
func (s SolverSettings) Validate() error {
	budgets := []struct {
		name string
		b    StageBudget
	}{{"fixed", s.Fixed}, {"discrete", s.Discrete}, {"free", s.Free}}
	for _, sb := range budgets {
		if sb.b.MaxIter < 1 {
			return fmt.Errorf("%s budget: max_iter must be >= 1, got %d", sb.name, sb.b.MaxIter)
		}
		if sb.b.PopSize < 1 {
			return fmt.Errorf("%s budget: pop_size must be >= 1, got %d", sb.name, sb.b.PopSize)
		}
		if sb.b.Tol < 0 {
			return fmt.Errorf("%s budget: tol must be >= 0, got %g", sb.name, sb.b.Tol)
		}
	}
	if s.MutationMin <= 0 || s.MutationMax < s.MutationMin || s.MutationMax > 2 {
		return fmt.Errorf("mutation range must satisfy 0 < min <= max <= 2, got (%g, %g)", s.MutationMin, s.MutationMax)
	}
	if s.Crossover < 0 || s.Crossover > 1 {
		return fmt.Errorf("crossover must be in [0, 1], got %g", s.Crossover)
	}
	if s.BoundsScale <= 0 {
		return fmt.Errorf("bounds_scale must be > 0, got %g", s.BoundsScale)
	}
	if s.SettleTolerance < 0 {
		return fmt.Errorf("settle_tolerance must be >= 0, got %g", s.SettleTolerance)
	}
	if s.ContainmentWeight <= 0 || s.OverlapWeight <= 0 {
		return fmt.Errorf("penalty weights must be > 0")
	}
	return nil
}

// CNCSettings holds the machining parameters for cutting a packed layout.
type CNCSettings struct {
	ToolDiameter float64 `json:"tool_diameter"` // End mill diameter in mm
	FeedRate     float64 `json:"feed_rate"`     // Cutting feed rate mm/min
	PlungeRate   float64 `json:"plunge_rate"`   // Plunge feed rate mm/min
	SpindleSpeed int     `json:"spindle_speed"` // RPM
	SafeZ        float64 `json:"safe_z"`        // Safe retract height mm
	CutDepth     float64 `json:"cut_depth"`     // Total material thickness mm
	PassDepth    float64 `json:"pass_depth"`    // Depth per pass mm
	UseClimb     bool    `json:"use_climb"`     // Climb vs conventional milling
	CutBlank     bool    `json:"cut_blank"`     // Also cut the circular blank

	// GCode post-processor profile
	GCodeProfile string `json:"gcode_profile"`
}

func DefaultCNCSettings() CNCSettings {
	return CNCSettings{
		ToolDiameter: 3.0,
		FeedRate:     1200.0,
		PlungeRate:   400.0,
		SpindleSpeed: 18000,
		SafeZ:        5.0,
		CutDepth:     6.0,
		PassDepth:    2.0,
		UseClimb:     true,
		CutBlank:     true,
		GCodeProfile: "Generic",
	}
}

// GCodeProfile defines a post-processor configuration for different CNC controllers.
type GCodeProfile struct {
	Name        string `json:"name"`        // Profile name
	Description string `json:"description"` // Profile description
	Units       string `json:"units"`       // "mm" or "inches"

	// Startup codes
	StartCode    []string `json:"start_code"`    // Commands at start of file
	SpindleStart string   `json:"spindle_start"` // Spindle on command (e.g., "M3 S%d")
	SpindleStop  string   `json:"spindle_stop"`  // Spindle off command
	HomeAll      string   `json:"home_all"`      // Home all axes command
	HomeXY       string   `json:"home_xy"`       // Home XY only command

	// Motion settings
	AbsoluteMode string `json:"absolute_mode"` // G90 or equivalent
	FeedMode     string `json:"feed_mode"`     // Feed rate mode
	RapidMove    string `json:"rapid_move"`    // G0 or equivalent
	FeedMove     string `json:"feed_move"`     // G1 or equivalent
	ArcCW        string `json:"arc_cw"`        // G2 or equivalent
	ArcCCW       string `json:"arc_ccw"`       // G3 or equivalent

	// End codes
	EndCode []string `json:"end_code"` // Commands at end of file

	// Comment style
	CommentPrefix string `json:"comment_prefix"` // Comment start (e.g., ";")
	CommentSuffix string `json:"comment_suffix"` // Comment end (if needed, e.g., ")" for Fanuc)

	DecimalPlaces int `json:"decimal_places"` // Number of decimal places for coordinates

	IsBuiltIn bool `json:"is_built_in"`
}

// Built-in GCode profiles
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "$H",
		HomeXY:        "$H",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
		IsBuiltIn:     true,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		HomeXY:        "G28 X0 Y0",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M5", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
		IsBuiltIn:     true,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		HomeXY:        "G28 X0 Y0",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
		IsBuiltIn:     true,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		HomeXY:        "G28 X0 Y0",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		ArcCW:         "G2",
		ArcCCW:        "G3",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
		IsBuiltIn:     true,
	},
}

// Project ties everything together for save/load.
type Project struct {
	Name       string         `json:"name"`
	Config     PackingConfig  `json:"config"`
	MultiStage bool           `json:"multi_stage"` // Escalate through every rotation mode
	Mode       RotationMode   `json:"mode"`        // Used when MultiStage is false
	Solver     SolverSettings `json:"solver"`
	CNC        CNCSettings    `json:"cnc"`
	Result     *PackingResult `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		Name:       "Untitled",
		Config:     PackingConfig{Rectangles: []Rectangle{}},
		MultiStage: true,
		Mode:       RotationFixed0,
		Solver:     DefaultSolverSettings(),
		CNC:        DefaultCNCSettings(),
	}
}
