package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/circlepack/internal/config"
	"github.com/piwi3910/circlepack/internal/importer"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/spf13/cobra"
)

// recommendedCount is the rectangle count the default budgets are tuned for.
const recommendedCount = 4

// inputFlags describe where the rectangles come from and how they are
// constrained. Padding and target flags override a problem file.
type inputFlags struct {
	jsonFile      string
	importFile    string
	targetFromDXF bool
	padInner      float64
	padOuter      float64
	target        float64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.jsonFile, "json", "f", "", "JSON problem file")
	fl.StringVar(&f.importFile, "import", "", "import rectangles from a CSV, XLSX or DXF file")
	fl.BoolVar(&f.targetFromDXF, "target-from-dxf", false, "use the largest circle of an imported DXF as target radius")
	fl.Float64Var(&f.padInner, "pad-inner", 0, "minimum gap between rectangles (mm)")
	fl.Float64Var(&f.padOuter, "pad-outer", 0, "minimum gap between rectangles and the circle (mm)")
	fl.Float64Var(&f.target, "target", 0, "target radius (mm)")
	cmd.MarkFlagsMutuallyExclusive("json", "import")
}

// problem assembles the packing problem from the flags and positional W,H
// arguments.
func (f *inputFlags) problem(cmd *cobra.Command, args []string, logger *log.Logger) (importer.Problem, error) {
	p := importer.Problem{OutputFormat: importer.OutputCLI}

	switch {
	case f.jsonFile != "":
		if len(args) > 0 {
			return p, errors.New("positional rectangles cannot be combined with --json")
		}
		loaded, err := importer.LoadProblem(f.jsonFile)
		if err != nil {
			return p, err
		}
		p = loaded

	case f.importFile != "":
		res := importer.ImportFile(f.importFile)
		for _, w := range res.Warnings {
			logger.Warn(w)
		}
		if len(res.Errors) > 0 {
			return p, fmt.Errorf("import %s: %s", f.importFile, strings.Join(res.Errors, "; "))
		}
		p.Config.Rectangles = res.Rectangles
		if f.targetFromDXF {
			r, ok := res.LargestCircle()
			if !ok {
				return p, fmt.Errorf("--target-from-dxf: no circle in %s", f.importFile)
			}
			p.Config.SetTarget(r)
		}
		rects, err := parseRectangles(args, len(p.Config.Rectangles))
		if err != nil {
			return p, err
		}
		p.Config.Rectangles = append(p.Config.Rectangles, rects...)

	default:
		if len(args) == 0 {
			return p, errors.New("no rectangles given: pass W,H arguments, --json or --import")
		}
		rects, err := parseRectangles(args, 0)
		if err != nil {
			return p, err
		}
		p.Config.Rectangles = rects
	}

	fl := cmd.Flags()
	if fl.Changed("pad-inner") {
		p.Config.PaddingInner = f.padInner
	}
	if fl.Changed("pad-outer") {
		p.Config.PaddingOuter = f.padOuter
	}
	if fl.Changed("target") {
		p.Config.SetTarget(f.target)
	}

	if n := len(p.Config.Rectangles); n != recommendedCount {
		logger.Warnf("Input has %d rectangles. The solver is tuned for %d but will try.", n, recommendedCount)
	}
	if err := p.Config.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// parseRectangles parses "W,H" arguments (an "x" separator is accepted too).
// Labels continue numbering after offset existing rectangles.
func parseRectangles(args []string, offset int) ([]model.Rectangle, error) {
	rects := make([]model.Rectangle, 0, len(args))
	for i, arg := range args {
		parts := strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == 'x' || r == 'X' })
		if len(parts) != 2 {
			return nil, fmt.Errorf("rectangle %q: expected W,H", arg)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("rectangle %q: invalid width", arg)
		}
		h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("rectangle %q: invalid height", arg)
		}
		rects = append(rects, model.NewRectangle(model.DefaultLabel(offset+i), w, h))
	}
	return rects, nil
}

// solverFlags select the rotation strategy and solver tuning.
type solverFlags struct {
	mode       string
	seed       int64
	workers    int
	polish     bool
	configFile string
	timeout    time.Duration
}

func (f *solverFlags) register(cmd *cobra.Command, withMode bool) {
	fl := cmd.Flags()
	if withMode {
		fl.StringVar(&f.mode, "mode", "multi", "rotation mode: multi, FIXED_0, DISCRETE_90, DISCRETE_45 or FREE")
	}
	fl.Int64Var(&f.seed, "seed", 42, "random seed")
	fl.IntVar(&f.workers, "workers", 1, "parallel discrete sub-problems (0 = one per CPU)")
	fl.BoolVar(&f.polish, "polish", true, "refine the best candidate with Nelder-Mead")
	fl.StringVar(&f.configFile, "config", "", "YAML solver tuning file")
	fl.DurationVar(&f.timeout, "timeout", 0, "stop the search after this long and keep the best layout (0 = no limit)")
}

// settings resolves solver settings. Only flags given on the command line
// override the YAML file and the environment.
func (f *solverFlags) settings(cmd *cobra.Command) (model.SolverSettings, error) {
	o := &config.CLIOverrides{ConfigFile: f.configFile}
	fl := cmd.Flags()
	if fl.Changed("seed") {
		o.Seed = &f.seed
	}
	if fl.Changed("workers") {
		o.Workers = &f.workers
	}
	if fl.Changed("polish") {
		o.Polish = &f.polish
	}
	return config.Load(model.DefaultSolverSettings(), o)
}

// modeSelection parses --mode. multi is reported as true.
func (f *solverFlags) modeSelection() (bool, model.RotationMode, error) {
	if f.mode == "" || strings.EqualFold(f.mode, "multi") {
		return true, model.RotationFixed0, nil
	}
	m, err := model.ParseRotationMode(f.mode)
	return false, m, err
}
