package cli

import (
	"github.com/piwi3910/circlepack/internal/gcode"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/project"
	"github.com/spf13/cobra"
)

func gcodeCommand() *cobra.Command {
	var (
		settings     = model.DefaultCNCSettings()
		output       string
		noBlank      bool
		conventional bool
		listProfiles bool
	)

	cmd := &cobra.Command{
		Use:   "gcode FILE",
		Short: "Generate a CNC program for a saved layout",
		Long: `Generate G-code that cuts every rectangle of a solved layout and, unless
--no-blank is given, the circular blank around them. Settings stored in a
project file are used as defaults; flags override them.`,
		Example: `  circlepack gcode part.circlepack.json --tool 6 --depth 12 --profile Grbl
  circlepack gcode --list-profiles`,
		Args: func(cmd *cobra.Command, args []string) error {
			if listProfiles {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := project.LoadCustomProfilesFromDefault(); err != nil {
				loggerFromContext(cmd.Context()).Warn("Loading custom profiles failed", "err", err)
			}
			if listProfiles {
				printTitle("G-code Profiles")
				rows := [][]string{}
				for _, p := range model.AllProfiles() {
					rows = append(rows, []string{p.Name, p.Description})
				}
				printTable([]string{"Name", "Description"}, rows)
				return nil
			}

			layout, err := loadLayout(args[0])
			if err != nil {
				return err
			}
			if ev := checkLayout(loggerFromContext(cmd.Context()), layout); !ev.Valid {
				printWarning("Layout has overlaps or parts outside the circle (penalty %.4g)", ev.Penalty)
			}
			cnc := settings
			if layout.CNC != nil {
				cnc = mergeCNC(*layout.CNC, settings, cmd)
			}
			if cmd.Flags().Changed("no-blank") {
				cnc.CutBlank = !noBlank
			}
			if cmd.Flags().Changed("conventional") {
				cnc.UseClimb = !conventional
			}

			for _, w := range gcode.FormatClearanceWarnings(gcode.CheckClearance(layout.Config, layout.Result, cnc)) {
				printWarning("%s", w)
			}

			gen := gcode.New(cnc)
			code := gen.Generate(layout.Config, layout.Result)

			if output == "" {
				output = baseName(args[0]) + ".nc"
			}
			if err := project.ExportGCode(output, code); err != nil {
				return err
			}
			moves := gcode.Parse(code)
			printSuccess("Wrote G-code for %d rectangles (%d passes, profile %s)", len(layout.Result.Placements), gen.NumPasses(), cnc.GCodeProfile)
			printDetail("%d moves, reach %.3f mm, depth %.3f mm", len(moves), gcode.CutReach(moves), gcode.MaxDepth(moves))
			printFile(output)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&settings.ToolDiameter, "tool", settings.ToolDiameter, "end mill diameter (mm)")
	fl.Float64Var(&settings.CutDepth, "depth", settings.CutDepth, "material thickness (mm)")
	fl.Float64Var(&settings.PassDepth, "pass", settings.PassDepth, "depth per pass (mm)")
	fl.Float64Var(&settings.FeedRate, "feed", settings.FeedRate, "cutting feed rate (mm/min)")
	fl.Float64Var(&settings.PlungeRate, "plunge", settings.PlungeRate, "plunge feed rate (mm/min)")
	fl.IntVar(&settings.SpindleSpeed, "spindle", settings.SpindleSpeed, "spindle speed (RPM)")
	fl.Float64Var(&settings.SafeZ, "safe-z", settings.SafeZ, "safe retract height (mm)")
	fl.StringVar(&settings.GCodeProfile, "profile", settings.GCodeProfile, "post-processor profile")
	fl.BoolVar(&noBlank, "no-blank", false, "do not cut the circular blank")
	fl.BoolVar(&conventional, "conventional", false, "use conventional instead of climb milling")
	fl.BoolVar(&listProfiles, "list-profiles", false, "list available profiles and exit")
	fl.StringVarP(&output, "out", "o", "", "output file (default: input name with .nc)")
	return cmd
}

// mergeCNC applies the flags the user set on top of saved project settings.
func mergeCNC(saved, flags model.CNCSettings, cmd *cobra.Command) model.CNCSettings {
	fl := cmd.Flags()
	set := func(name string, apply func()) {
		if fl.Changed(name) {
			apply()
		}
	}
	set("tool", func() { saved.ToolDiameter = flags.ToolDiameter })
	set("depth", func() { saved.CutDepth = flags.CutDepth })
	set("pass", func() { saved.PassDepth = flags.PassDepth })
	set("feed", func() { saved.FeedRate = flags.FeedRate })
	set("plunge", func() { saved.PlungeRate = flags.PlungeRate })
	set("spindle", func() { saved.SpindleSpeed = flags.SpindleSpeed })
	set("safe-z", func() { saved.SafeZ = flags.SafeZ })
	set("profile", func() { saved.GCodeProfile = flags.GCodeProfile })
	return saved
}
