// Package config resolves solver tuning from multiple sources (YAML file,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. The result is a validated
// model.SolverSettings.
package config
