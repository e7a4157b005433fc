package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/circlepack/internal/cache"
	"github.com/piwi3910/circlepack/internal/engine"
	"github.com/piwi3910/circlepack/internal/export"
	"github.com/piwi3910/circlepack/internal/importer"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/project"
	"github.com/spf13/cobra"
)

// progressEvery is how often, in generations, verbose progress is logged.
const progressEvery = 100

type solveOptions struct {
	input   inputFlags
	solver  solverFlags
	noCache bool
	formats string
	outBase string
	save    string
	gui     bool
	json    bool
}

func (a *app) solveCommand() *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve [W,H ...]",
		Short: "Pack rectangles into the smallest circle",
		Long: `Pack rectangles into the smallest enclosing circle.

Rectangles are given as W,H arguments, a JSON problem file (--json) or an
imported CSV, XLSX or DXF list (--import). By default every rotation mode is
tried in turn (FIXED_0, DISCRETE_90, DISCRETE_45, FREE) and the search stops
at the first valid layout that meets the target radius.`,
		Example: `  circlepack solve 20,10 20,10 20,10 20,10
  circlepack solve 20,10 15,15 --pad-inner 1 --target 20 --export png,dxf
  circlepack solve -f problem.json --mode FREE --timeout 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSolve(cmd, args, opts)
		},
	}

	opts.input.register(cmd)
	opts.solver.register(cmd, true)
	fl := cmd.Flags()
	fl.BoolVar(&opts.noCache, "no-cache", false, "always solve, ignoring cached results")
	fl.StringVar(&opts.formats, "export", "", "export formats: png,svg,dxf,pdf,xlsx,json,labels or all")
	fl.StringVarP(&opts.outBase, "out", "o", "packing", "base path of exported files")
	fl.StringVar(&opts.save, "save", "", "save the problem and result as a project file")
	fl.BoolVar(&opts.gui, "gui", false, "show the result in a window")
	fl.BoolVar(&opts.json, "print-json", false, "print the result document as JSON instead of a report")

	return cmd
}

func (a *app) runSolve(cmd *cobra.Command, args []string, opts solveOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	problem, err := opts.input.problem(cmd, args, logger)
	if err != nil {
		return err
	}
	cfg := problem.Config

	settings, err := opts.solver.settings(cmd)
	if err != nil {
		return err
	}
	multi, mode, err := opts.solver.modeSelection()
	if err != nil {
		return err
	}

	// Formats are checked before the solve so a typo does not waste a run.
	formats, err := export.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	modeName := "multi"
	if !multi {
		modeName = mode.String()
	}
	c := cache.Open(opts.noCache)
	defer c.Close()
	key := cache.ResultKey(cfg, modeName, settings)

	result, cached, err := cache.LoadResult(ctx, c, key, cfg)
	if err != nil {
		logger.Warn("Cache read failed", "err", err)
	}
	if cached {
		logger.Debug("Using cached result", "key", key)
	} else {
		var complete bool
		result, complete, err = runSolver(ctx, cfg, settings, multi, mode, opts.solver.timeout, logger)
		if err != nil {
			return err
		}
		if result.Valid && complete {
			if err := cache.StoreResult(ctx, c, key, result); err != nil {
				logger.Warn("Cache write failed", "err", err)
			}
		}
	}

	if opts.json {
		if err := export.WriteJSON(out, cfg, result); err != nil {
			return err
		}
	} else {
		printResult(cfg, result, cached)
	}

	if len(formats) > 0 {
		written, err := export.Export(opts.outBase, formats, cfg, result)
		for _, path := range written {
			printFile(path)
		}
		if err != nil {
			return err
		}
	}

	if opts.save != "" {
		p := model.NewProject()
		p.Name = project.NameFromPath(opts.save)
		p.Config = cfg
		p.MultiStage = multi
		p.Mode = mode
		p.Solver = settings
		p.Result = &result
		if err := project.Save(opts.save, p); err != nil {
			return err
		}
		printFile(opts.save)
	}

	if opts.gui || problem.OutputFormat == importer.OutputGUI {
		if a.show == nil {
			printWarning("GUI output is not available in this build")
			return nil
		}
		return a.show(cfg, result)
	}
	return nil
}

// runSolver solves cfg with an optional deadline. On timeout the best layout
// found so far is returned with complete set to false.
func runSolver(ctx context.Context, cfg model.PackingConfig, settings model.SolverSettings, multi bool, mode model.RotationMode, timeout time.Duration, logger *log.Logger) (result model.PackingResult, complete bool, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	solver := engine.New(settings,
		engine.WithLogger(logger),
		engine.WithProgress(progressLogger(logger)),
	)
	prog := newProgress(logger)

	if multi {
		result, err = solver.SolveMultiStage(ctx, cfg)
	} else {
		result, err = solver.Solve(ctx, cfg, mode)
	}
	if err != nil {
		return result, false, fmt.Errorf("solve: %w", err)
	}
	prog.done(fmt.Sprintf("Solved %d rectangles, R=%.4f", len(cfg.Rectangles), result.Radius))
	return result, ctx.Err() == nil, nil
}

func progressLogger(logger *log.Logger) engine.ProgressFunc {
	return func(mode model.RotationMode, p engine.Progress) {
		if p.Iteration%progressEvery == 0 {
			logger.Debug("Generation", "mode", mode, "iter", p.Iteration, "max", p.MaxIter, "best", p.BestValue)
		}
	}
}

// printResult prints the human-readable report of a solve.
func printResult(cfg model.PackingConfig, result model.PackingResult, cached bool) {
	stats := model.ComputeStats(result, 0, 0)

	printTitle(fmt.Sprintf("Packing Solution (R=%.4fmm)", result.Radius))
	printKeyValue("Radius", fmt.Sprintf("%.4f mm", result.Radius))
	printKeyValue("Diameter", fmt.Sprintf("%.4f mm", result.Diameter()))
	printKeyValue("Mode", result.Mode.String())
	printKeyValue("Valid", yesNo(result.Valid))
	if cfg.HasTarget() {
		printKeyValue("Target", fmt.Sprintf("%.4f mm (%s)", cfg.Target(), fitWord(result.FitsTarget)))
	}
	printKeyValue("Padding", fmt.Sprintf("inner %g mm, outer %g mm", cfg.PaddingInner, cfg.PaddingOuter))
	printKeyValue("Density", fmt.Sprintf("%.1f%%", stats.Density))
	if len(result.Placements) > 1 {
		printKeyValue("Min gap", fmt.Sprintf("%.4f mm", stats.MinGap))
	}
	printKeyValue("Clearance", fmt.Sprintf("%.4f mm", stats.MinClearance))
	status := iconFresh
	if cached {
		status = iconCached
	}
	printKeyValue("Result", fmt.Sprintf("%s, %d generations, %d evaluations", status, result.Iterations, result.Evaluations))
	if result.Message != "" {
		printDetail("%s", result.Message)
	}
	printNewline()

	rows := make([][]string, 0, len(result.Placements))
	for i, p := range result.Placements {
		label := p.Rectangle.Label
		if label == "" {
			label = model.DefaultLabel(i)
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%gx%g", p.Rectangle.Width, p.Rectangle.Height),
			fmt.Sprintf("%.4f", p.X),
			fmt.Sprintf("%.4f", p.Y),
			fmt.Sprintf("%.2f", p.Angle),
		})
	}
	printTable([]string{"Rectangle", "Size", "X", "Y", "Angle"}, rows)

	if len(result.Outcomes) > 0 {
		printNewline()
		rows = rows[:0]
		for _, o := range result.Outcomes {
			radius := fmt.Sprintf("%.4f", o.Radius)
			if o.Failed() {
				radius = "-"
			}
			rows = append(rows, []string{o.Mode.String(), radius, yesNo(o.Valid), yesNo(o.FitsTarget), fmt.Sprintf("%dms", o.ElapsedMS), o.Err})
		}
		printTable([]string{"Stage", "Radius", "Valid", "Fits", "Time", "Error"}, rows)
	}

	printNewline()
	switch {
	case result.Valid && result.FitsTarget:
		printSuccess("Valid layout found")
	case result.Valid:
		printWarning("Valid layout found, but it does not meet the target radius")
	default:
		printWarning("No valid layout found; the best attempt is shown")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func fitWord(fits bool) string {
	if fits {
		return "met"
	}
	return "missed"
}
