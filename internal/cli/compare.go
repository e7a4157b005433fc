package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/piwi3910/circlepack/internal/engine"
	"github.com/spf13/cobra"
)

func (a *app) compareCommand() *cobra.Command {
	var (
		input  inputFlags
		solver solverFlags
	)

	cmd := &cobra.Command{
		Use:   "compare [W,H ...]",
		Short: "Solve the same problem with every rotation mode",
		Long: `Solve the same problem once per rotation mode and once with the
multi-stage search, then print the results side by side. The best row is
marked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			problem, err := input.problem(cmd, args, logger)
			if err != nil {
				return err
			}
			settings, err := solver.settings(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if solver.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, solver.timeout)
				defer cancel()
			}

			prog := newProgress(logger)
			results := engine.CompareModes(ctx, problem.Config, settings, engine.WithLogger(logger))
			prog.done(fmt.Sprintf("Compared %d scenarios", len(results)))

			best := engine.BestComparison(results)
			rows := make([][]string, 0, len(results))
			for i, r := range results {
				mark := ""
				if i == best {
					mark = iconSuccess
				}
				if r.Err != nil {
					rows = append(rows, []string{mark, r.Scenario.Name, "-", "-", "-", "-", r.Elapsed.Round(time.Millisecond).String(), r.Err.Error()})
					continue
				}
				rows = append(rows, []string{
					mark,
					r.Scenario.Name,
					fmt.Sprintf("%.4f", r.Result.Radius),
					fmt.Sprintf("%.1f%%", r.Stats.Density),
					yesNo(r.Result.Valid),
					yesNo(r.Result.FitsTarget),
					r.Elapsed.Round(time.Millisecond).String(),
					r.Result.Mode.String(),
				})
			}

			printTitle("Rotation Mode Comparison")
			printTable([]string{"", "Scenario", "Radius", "Density", "Valid", "Fits", "Time", "Mode"}, rows)
			printNewline()
			if best < 0 {
				printError("Every scenario failed")
				return nil
			}
			b := results[best]
			printSuccess("Best: %s with R=%.4f", b.Scenario.Name, b.Result.Radius)
			return nil
		},
	}

	input.register(cmd)
	solver.register(cmd, false)
	return cmd
}
