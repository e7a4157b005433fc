package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/circlepack/internal/engine"
	"github.com/piwi3910/circlepack/internal/export"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/project"
)

var (
	errNoResult  = errors.New("file holds no solved layout; run solve with --save or --export json first")
	errNoFormats = errors.New("no export format selected")
)

// savedLayout is a solved problem read back from disk.
type savedLayout struct {
	Config model.PackingConfig
	Result model.PackingResult
	// CNC and Solver are set when the layout came from a project file.
	CNC    *model.CNCSettings
	Solver *model.SolverSettings
}

// loadLayout reads a project file or an exported JSON result document.
func loadLayout(path string) (savedLayout, error) {
	if strings.HasSuffix(path, project.Extension) {
		p, err := project.Load(path)
		if err != nil {
			return savedLayout{}, err
		}
		if p.Result == nil {
			return savedLayout{}, errNoResult
		}
		cnc, solver := p.CNC, p.Solver
		return savedLayout{Config: p.Config, Result: *p.Result, CNC: &cnc, Solver: &solver}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return savedLayout{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	doc, err := export.ReadJSON(f)
	if err != nil {
		return savedLayout{}, err
	}
	if len(doc.Result.Placements) == 0 {
		return savedLayout{}, errNoResult
	}
	return savedLayout{Config: doc.Config, Result: doc.Result}, nil
}

// checkLayout re-scores a loaded layout and warns when a layout stored as
// valid no longer passes the overlap and containment test, which happens
// when a file is edited by hand.
func checkLayout(logger *log.Logger, l savedLayout) engine.Evaluation {
	settings := model.DefaultSolverSettings()
	if l.Solver != nil {
		settings = *l.Solver
	}
	ev := engine.Evaluate(l.Config, settings, l.Result.Placements, l.Result.Radius)
	if l.Result.Valid && !ev.Valid {
		logger.Warn("Stored layout is marked valid but fails the check", "penalty", ev.Penalty)
	}
	return ev
}

// baseName strips the project or JSON extension from path.
func baseName(path string) string {
	for _, ext := range []string{project.Extension, ".json"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}
