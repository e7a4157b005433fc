package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/circlepack/internal/model"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvSeed    = "CIRCLEPACK_SEED"
	EnvWorkers = "CIRCLEPACK_WORKERS"
	EnvPolish  = "CIRCLEPACK_POLISH"
)

// yamlConfig is the solver tuning file. Every field is optional; absent
// fields keep the value from lower-precedence sources.
type yamlConfig struct {
	Seed                  *int64         `yaml:"seed"`
	Workers               *int           `yaml:"workers"`
	Polish                *bool          `yaml:"polish"`
	Settle                *bool          `yaml:"settle"`
	SettleTolerance       *float64       `yaml:"settle_tolerance"`
	DedupeSymmetricAngles *bool          `yaml:"dedupe_symmetric_angles"`
	Crossover             *float64       `yaml:"crossover"`
	BoundsScale           *float64       `yaml:"bounds_scale"`
	Mutation              *yamlMutation  `yaml:"mutation"`
	Weights               *yamlWeights   `yaml:"weights"`
	Tolerances            *yamlTolerance `yaml:"tolerances"`
	Stages                *yamlStages    `yaml:"stages"`
}

type yamlMutation struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type yamlWeights struct {
	Containment *float64 `yaml:"containment"`
	Overlap     *float64 `yaml:"overlap"`
}

type yamlTolerance struct {
	Validity *float64 `yaml:"validity"`
	Target   *float64 `yaml:"target"`
}

type yamlStages struct {
	Fixed    *yamlBudget `yaml:"fixed"`
	Discrete *yamlBudget `yaml:"discrete"`
	Free     *yamlBudget `yaml:"free"`
}

type yamlBudget struct {
	MaxIter *int     `yaml:"max_iter"`
	PopSize *int     `yaml:"pop_size"`
	Tol     *float64 `yaml:"tol"`
}

// CLIOverrides holds command-line flag overrides. Nil fields were not set.
type CLIOverrides struct {
	ConfigFile string
	Seed       *int64
	Workers    *int
	Polish     *bool
}

// Load resolves solver settings starting from base (usually
// model.DefaultSolverSettings), then environment, YAML file and CLI flags.
func Load(base model.SolverSettings, overrides *CLIOverrides) (model.SolverSettings, error) {
	s := base

	if err := applyEnvConfig(&s); err != nil {
		return model.SolverSettings{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return model.SolverSettings{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&s, yamlCfg)
	}

	if overrides != nil {
		applyCLIOverrides(&s, overrides)
	}

	if err := s.Validate(); err != nil {
		return model.SolverSettings{}, fmt.Errorf("solver settings: %w", err)
	}
	if s.Workers < 0 {
		return model.SolverSettings{}, fmt.Errorf("solver settings: workers must be >= 0, got %d", s.Workers)
	}
	return s, nil
}

// loadFromFile loads configuration from a YAML file. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func loadFromFile(path string) (*yamlConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	var yamlCfg yamlConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&yamlCfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &yamlCfg, nil
}

func applyYAMLConfig(s *model.SolverSettings, y *yamlConfig) {
	setInt64(&s.Seed, y.Seed)
	setInt(&s.Workers, y.Workers)
	setBool(&s.Polish, y.Polish)
	setBool(&s.Settle, y.Settle)
	setFloat(&s.SettleTolerance, y.SettleTolerance)
	setBool(&s.DedupeSymmetricAngles, y.DedupeSymmetricAngles)
	setFloat(&s.Crossover, y.Crossover)
	setFloat(&s.BoundsScale, y.BoundsScale)

	if m := y.Mutation; m != nil {
		setFloat(&s.MutationMin, m.Min)
		setFloat(&s.MutationMax, m.Max)
	}
	if w := y.Weights; w != nil {
		setFloat(&s.ContainmentWeight, w.Containment)
		setFloat(&s.OverlapWeight, w.Overlap)
	}
	if t := y.Tolerances; t != nil {
		setFloat(&s.ValidityEpsilon, t.Validity)
		setFloat(&s.TargetEpsilon, t.Target)
	}
	if st := y.Stages; st != nil {
		applyBudget(&s.Fixed, st.Fixed)
		applyBudget(&s.Discrete, st.Discrete)
		applyBudget(&s.Free, st.Free)
	}
}

func applyBudget(b *model.StageBudget, y *yamlBudget) {
	if y == nil {
		return
	}
	setInt(&b.MaxIter, y.MaxIter)
	setInt(&b.PopSize, y.PopSize)
	setFloat(&b.Tol, y.Tol)
}

// applyEnvConfig applies environment variable configuration. Malformed
// values are errors rather than being ignored.
func applyEnvConfig(s *model.SolverSettings) error {
	if raw := strings.TrimSpace(os.Getenv(EnvSeed)); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvSeed, raw)
		}
		s.Seed = v
	}
	if raw := strings.TrimSpace(os.Getenv(EnvWorkers)); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return fmt.Errorf("%s: expected a non-negative integer, got %q", EnvWorkers, raw)
		}
		s.Workers = v
	}
	if raw := strings.TrimSpace(os.Getenv(EnvPolish)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvPolish, raw)
		}
		s.Polish = v
	}
	return nil
}

func applyCLIOverrides(s *model.SolverSettings, o *CLIOverrides) {
	setInt64(&s.Seed, o.Seed)
	setInt(&s.Workers, o.Workers)
	setBool(&s.Polish, o.Polish)
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
