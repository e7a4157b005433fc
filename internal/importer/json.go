package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/piwi3910/circlepack/internal/model"
)

// ErrInvalidProblem is wrapped by every validation failure of a problem file.
var ErrInvalidProblem = errors.New("invalid problem file")

// Output formats a problem file may request.
const (
	OutputCLI = "CLI"
	OutputGUI = "GUI"
)

// Problem is a packing problem loaded from a JSON problem file.
type Problem struct {
	Config       model.PackingConfig
	OutputFormat string // OutputCLI or OutputGUI
}

type problemFile struct {
	InnerShape            json.RawMessage        `json:"innerShape"`
	OuterShape            *outerShape            `json:"outerShape"`
	AdditionalConstraints *additionalConstraints `json:"additionalConstraints"`
	ResultOutput          *struct {
		OutputFormat string `json:"outputFormat"`
	} `json:"resultOutput"`
}

type innerShape struct {
	Shape      string   `json:"shape"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Identifier string   `json:"identifier"`
}

type outerShape struct {
	Shape    string   `json:"shape"`
	Radius   *float64 `json:"radius,omitempty"`
	Diameter *float64 `json:"diameter,omitempty"`
}

type amount struct {
	Amount float64 `json:"amount"`
}

type additionalConstraints struct {
	PaddingBetweenInnerShapes         *amount `json:"paddingBetweenInnerShapes"`
	PaddingBetweenInnerShapesAndOuter *amount `json:"paddingBetweenInnerShapesAndOuter"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProblem, fmt.Sprintf(format, args...))
}

// LoadProblem reads and validates a JSON problem file.
func LoadProblem(path string) (Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, fmt.Errorf("reading problem file: %w", err)
	}
	return ParseProblem(data)
}

// ParseProblem validates a JSON problem document and converts it into a
// packing configuration. A radius or diameter on the outer shape becomes the
// target radius.
func ParseProblem(data []byte) (Problem, error) {
	var pf problemFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return Problem{}, invalid("invalid JSON: %v", err)
	}

	if len(pf.InnerShape) == 0 || string(pf.InnerShape) == "null" {
		return Problem{}, invalid("missing required field 'innerShape'")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(pf.InnerShape, &items); err != nil {
		return Problem{}, invalid("'innerShape' must be a list")
	}
	if len(items) == 0 {
		return Problem{}, invalid("'innerShape' must contain at least one rectangle")
	}

	p := Problem{OutputFormat: OutputCLI}
	for i, raw := range items {
		var item innerShape
		if err := json.Unmarshal(raw, &item); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return Problem{}, invalid("dimensions for item %d must be numbers", i)
			}
			return Problem{}, invalid("item %d: %v", i, err)
		}
		if item.Shape != "rectangle" {
			return Problem{}, invalid("item %d in 'innerShape' must be a shape of type 'rectangle'", i)
		}
		if item.Width == nil || item.Height == nil {
			return Problem{}, invalid("item %d missing 'width' or 'height'", i)
		}
		label := item.Identifier
		if label == "" {
			label = model.DefaultLabel(i)
		}
		p.Config.Rectangles = append(p.Config.Rectangles, model.NewRectangle(label, *item.Width, *item.Height))
	}

	if o := pf.OuterShape; o != nil {
		if o.Shape != "" && o.Shape != "circle" {
			return Problem{}, invalid("only 'circle' outerShape is supported")
		}
		switch {
		case o.Radius != nil && o.Diameter != nil:
			return Problem{}, invalid("cannot specify both 'radius' and 'diameter' in outerShape")
		case o.Radius != nil:
			p.Config.SetTarget(*o.Radius)
		case o.Diameter != nil:
			p.Config.SetTarget(*o.Diameter / 2)
		}
	}

	if ac := pf.AdditionalConstraints; ac != nil {
		if ac.PaddingBetweenInnerShapes != nil {
			p.Config.PaddingInner = ac.PaddingBetweenInnerShapes.Amount
		}
		if ac.PaddingBetweenInnerShapesAndOuter != nil {
			p.Config.PaddingOuter = ac.PaddingBetweenInnerShapesAndOuter.Amount
		}
	}

	if pf.ResultOutput != nil && pf.ResultOutput.OutputFormat != "" {
		switch f := strings.ToUpper(pf.ResultOutput.OutputFormat); f {
		case OutputCLI, OutputGUI:
			p.OutputFormat = f
		default:
			return Problem{}, invalid("unknown outputFormat %q", pf.ResultOutput.OutputFormat)
		}
	}

	return p, nil
}

// ProblemFromConfig builds the JSON problem document for cfg, the inverse
// of ParseProblem.
func ProblemFromConfig(cfg model.PackingConfig, outputFormat string) ([]byte, error) {
	type outItem struct {
		Shape      string  `json:"shape"`
		Width      float64 `json:"width"`
		Height     float64 `json:"height"`
		Identifier string  `json:"identifier,omitempty"`
	}
	doc := struct {
		InnerShape            []outItem             `json:"innerShape"`
		OuterShape            *outerShape           `json:"outerShape,omitempty"`
		AdditionalConstraints additionalConstraints `json:"additionalConstraints"`
		ResultOutput          map[string]string     `json:"resultOutput"`
	}{
		AdditionalConstraints: additionalConstraints{
			PaddingBetweenInnerShapes:         &amount{Amount: cfg.PaddingInner},
			PaddingBetweenInnerShapesAndOuter: &amount{Amount: cfg.PaddingOuter},
		},
		ResultOutput: map[string]string{"outputFormat": outputFormat},
	}
	for _, r := range cfg.Rectangles {
		doc.InnerShape = append(doc.InnerShape, outItem{Shape: "rectangle", Width: r.Width, Height: r.Height, Identifier: r.Label})
	}
	if cfg.HasTarget() {
		radius := cfg.Target()
		doc.OuterShape = &outerShape{Shape: "circle", Radius: &radius}
	}
	return json.MarshalIndent(doc, "", "  ")
}
