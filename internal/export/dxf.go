package export

import (
	"fmt"

	"github.com/piwi3910/circlepack/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	LayerContainer  = "CONTAINER"
	LayerConstraint = "CONSTRAINT"
	LayerShapes     = "SHAPES"
	LayerText       = "TEXT"
)

// ExportDXF writes the layout as a DXF drawing in millimetres with the circle
// centred on the origin. Each rectangle becomes a closed LWPOLYLINE on the
// SHAPES layer with its identifier on the TEXT layer.
func ExportDXF(path string, cfg model.PackingConfig, result model.PackingResult) error {
	sc, err := newScene(cfg, result)
	if err != nil {
		return err
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
		lt    *table.LineType
	}{
		{LayerContainer, color.Red, dxf.DefaultLineType},
		{LayerConstraint, dxf.DefaultColor, table.LT_HIDDEN},
		{LayerShapes, color.Green, dxf.DefaultLineType},
		{LayerText, dxf.DefaultColor, dxf.DefaultLineType},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, l.lt, false); err != nil {
			return fmt.Errorf("adding layer %s: %w", l.name, err)
		}
	}

	if err := d.ChangeLayer(LayerContainer); err != nil {
		return err
	}
	if _, err := d.Circle(0, 0, 0, sc.Radius); err != nil {
		return fmt.Errorf("container circle: %w", err)
	}

	if sc.ConstraintRadius > 0 {
		if err := d.ChangeLayer(LayerConstraint); err != nil {
			return err
		}
		if _, err := d.Circle(0, 0, 0, sc.ConstraintRadius); err != nil {
			return fmt.Errorf("constraint circle: %w", err)
		}
	}

	if err := d.ChangeLayer(LayerShapes); err != nil {
		return err
	}
	for _, s := range sc.Shapes {
		vertices := make([][]float64, 0, 4)
		for _, c := range s.Corners {
			vertices = append(vertices, []float64{c.X, c.Y})
		}
		if _, err := d.LwPolyline(true, vertices...); err != nil {
			return fmt.Errorf("outline of %s: %w", s.Label, err)
		}
	}

	if err := d.ChangeLayer(LayerText); err != nil {
		return err
	}
	for _, s := range sc.Shapes {
		height := s.MinSide / 4
		// Approximate centring: DXF TEXT is anchored at its lower-left corner.
		x := s.Center.X - float64(len(s.Label))*height*0.3
		y := s.Center.Y - height/2
		if _, err := d.Text(s.Label, x, y, 0, height); err != nil {
			return fmt.Errorf("label of %s: %w", s.Label, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving DXF: %w", err)
	}
	return nil
}
