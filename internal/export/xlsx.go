package export

import (
	"fmt"

	"github.com/piwi3910/circlepack/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook.
const (
	SheetSummary    = "Summary"
	SheetPlacements = "Placements"
	SheetStages     = "Stages"
)

// ExportXLSX writes a workbook with a summary sheet, one row per placement
// (centre, angle and rotated corners) and, for multi-stage results, one row
// per stage outcome.
func ExportXLSX(path string, cfg model.PackingConfig, result model.PackingResult) error {
	if len(result.Placements) == 0 {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	stats := model.ComputeStats(result, 0, 0)
	target := "none"
	if cfg.HasTarget() {
		target = fmt.Sprintf("%g", cfg.Target())
	}
	summary := [][]interface{}{
		{"Radius (mm)", result.Radius},
		{"Diameter (mm)", result.Diameter()},
		{"Mode", result.Mode.String()},
		{"Valid", result.Valid},
		{"Fits target", result.FitsTarget},
		{"Target radius (mm)", target},
		{"Inner padding (mm)", cfg.PaddingInner},
		{"Outer padding (mm)", cfg.PaddingOuter},
		{"Rectangle area (mm²)", stats.RectangleArea},
		{"Density (%)", stats.Density},
		{"Min gap (mm)", stats.MinGap},
		{"Min clearance (mm)", stats.MinClearance},
		{"Message", result.Message},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 22); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetPlacements); err != nil {
		return err
	}
	rows := [][]interface{}{{
		"Identifier", "Width", "Height", "X", "Y", "Angle",
		"X1", "Y1", "X2", "Y2", "X3", "Y3", "X4", "Y4",
	}}
	for i, p := range result.Placements {
		row := []interface{}{placementLabel(p, i), p.Rectangle.Width, p.Rectangle.Height, p.X, p.Y, p.Angle}
		for _, c := range p.Corners() {
			row = append(row, c.X, c.Y)
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetPlacements, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetPlacements, "A1", "N1", bold); err != nil {
		return err
	}

	if len(result.Outcomes) > 0 {
		if _, err := f.NewSheet(SheetStages); err != nil {
			return err
		}
		rows := [][]interface{}{{"Mode", "Radius", "Valid", "Fits", "Elapsed (ms)", "Error"}}
		for _, o := range result.Outcomes {
			rows = append(rows, []interface{}{o.Mode.String(), o.Radius, o.Valid, o.FitsTarget, o.ElapsedMS, o.Err})
		}
		if err := writeRows(f, SheetStages, rows); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetStages, "A1", "F1", bold); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
