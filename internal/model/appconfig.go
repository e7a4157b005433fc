package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultPaddingInner float64 `json:"default_padding_inner"`
	DefaultPaddingOuter float64 `json:"default_padding_outer"`
	DefaultMultiStage   bool    `json:"default_multi_stage"`
	DefaultSeed         int64   `json:"default_seed"`
	DefaultWorkers      int     `json:"default_workers"`
	DefaultPolish       bool    `json:"default_polish"`

	// Default CNC settings applied to new projects
	DefaultToolDiameter float64 `json:"default_tool_diameter"`
	DefaultFeedRate     float64 `json:"default_feed_rate"`
	DefaultPlungeRate   float64 `json:"default_plunge_rate"`
	DefaultSpindleSpeed int     `json:"default_spindle_speed"`
	DefaultSafeZ        float64 `json:"default_safe_z"`
	DefaultCutDepth     float64 `json:"default_cut_depth"`
	DefaultPassDepth    float64 `json:"default_pass_depth"`
	DefaultGCodeProfile string  `json:"default_gcode_profile"`

	// Application preferences
	AutoSaveInterval int      `json:"auto_save_interval"` // minutes, 0 = disabled
	RecentProjects   []string `json:"recent_projects"`
	Theme            string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with the same values a
// fresh NewProject() would carry.
func DefaultAppConfig() AppConfig {
	solver := DefaultSolverSettings()
	cnc := DefaultCNCSettings()
	return AppConfig{
		DefaultPaddingInner: 0,
		DefaultPaddingOuter: 0,
		DefaultMultiStage:   true,
		DefaultSeed:         solver.Seed,
		DefaultWorkers:      solver.Workers,
		DefaultPolish:       solver.Polish,
		DefaultToolDiameter: cnc.ToolDiameter,
		DefaultFeedRate:     cnc.FeedRate,
		DefaultPlungeRate:   cnc.PlungeRate,
		DefaultSpindleSpeed: cnc.SpindleSpeed,
		DefaultSafeZ:        cnc.SafeZ,
		DefaultCutDepth:     cnc.CutDepth,
		DefaultPassDepth:    cnc.PassDepth,
		DefaultGCodeProfile: cnc.GCodeProfile,
		AutoSaveInterval:    0,
		RecentProjects:      []string{},
		Theme:               "system",
	}
}

// ApplyToProject copies the saved defaults into a project.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToProject(p *Project) {
	p.Config.PaddingInner = c.DefaultPaddingInner
	p.Config.PaddingOuter = c.DefaultPaddingOuter
	p.MultiStage = c.DefaultMultiStage
	p.Solver.Seed = c.DefaultSeed
	if c.DefaultWorkers > 0 {
		p.Solver.Workers = c.DefaultWorkers
	}
	p.Solver.Polish = c.DefaultPolish

	p.CNC.ToolDiameter = c.DefaultToolDiameter
	p.CNC.FeedRate = c.DefaultFeedRate
	p.CNC.PlungeRate = c.DefaultPlungeRate
	p.CNC.SpindleSpeed = c.DefaultSpindleSpeed
	p.CNC.SafeZ = c.DefaultSafeZ
	p.CNC.CutDepth = c.DefaultCutDepth
	p.CNC.PassDepth = c.DefaultPassDepth
	p.CNC.GCodeProfile = c.DefaultGCodeProfile
}
