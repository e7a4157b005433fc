package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/circlepack/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	summaryWidth = 95.0 // left column next to the drawing
	reportQRSize = 40.0
)

// ExportPDF generates a PDF report: the layout drawing with a summary and a
// QR code of the result on the first page, followed by the placement table
// and, for multi-stage results, the per-stage outcomes.
func ExportPDF(path string, cfg model.PackingConfig, result model.PackingResult) error {
	sc, err := newScene(cfg, result)
	if err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	if err := renderLayoutPage(pdf, sc, cfg, result); err != nil {
		return err
	}

	pdf.AddPage()
	renderPlacementPage(pdf, result)

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the summary column and the circle on the current page.
func renderLayoutPage(pdf *fpdf.Fpdf, sc scene, cfg model.PackingConfig, result model.PackingResult) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, sc.title(), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, sc.subtitle(), "", 0, "L", false, 0, "")

	y := drawAreaTop + 3
	stats := model.ComputeStats(result, 0, 0)
	target := "none"
	if cfg.HasTarget() {
		target = fmt.Sprintf("%.4f mm", cfg.Target())
	}
	summaryItems := []struct {
		label string
		value string
	}{
		{"Radius", fmt.Sprintf("%.4f mm", result.Radius)},
		{"Diameter", fmt.Sprintf("%.4f mm", result.Diameter())},
		{"Target radius", target},
		{"Mode", result.Mode.String()},
		{"Valid", yesNo(result.Valid)},
		{"Fits target", yesNo(result.FitsTarget)},
		{"Rectangles", fmt.Sprintf("%d", len(result.Placements))},
		{"Density", fmt.Sprintf("%.1f%%", stats.Density)},
		{"Min gap", fmt.Sprintf("%.3f mm", stats.MinGap)},
		{"Min clearance", fmt.Sprintf("%.3f mm", stats.MinClearance)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(40, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if result.Message != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(marginLeft, y+2)
		pdf.MultiCell(summaryWidth-10, 4, result.Message, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	if err := drawResultQR(pdf, result, marginLeft, pageHeight-marginBottom-reportQRSize); err != nil {
		return err
	}

	drawCircleLayout(pdf, sc)
	return nil
}

// drawCircleLayout scales the scene into the area right of the summary column.
func drawCircleLayout(pdf *fpdf.Fpdf, sc scene) {
	areaX := marginLeft + summaryWidth
	areaW := pageWidth - marginRight - areaX
	areaH := pageHeight - drawAreaTop - marginBottom
	side := math.Min(areaW, areaH)
	scale := side / (2 * sc.Extent)
	cx := areaX + areaW/2
	cy := drawAreaTop + areaH/2

	toPage := func(p model.Point2D) fpdf.PointType {
		return fpdf.PointType{X: cx + p.X*scale, Y: cy - p.Y*scale}
	}
	polygon := func(pts [4]model.Point2D) []fpdf.PointType {
		out := make([]fpdf.PointType, len(pts))
		for i, p := range pts {
			out[i] = toPage(p)
		}
		return out
	}

	pdf.SetDrawColor(0, 0, 255)
	pdf.SetLineWidth(0.4)
	pdf.SetDashPattern([]float64{3, 1.5}, 0)
	pdf.Circle(cx, cy, sc.Radius*scale, "D")

	if sc.ConstraintRadius > 0 {
		pdf.SetDrawColor(128, 128, 128)
		pdf.SetLineWidth(0.2)
		pdf.SetDashPattern([]float64{0.6, 1.2}, 0)
		pdf.Circle(cx, cy, sc.ConstraintRadius*scale, "D")
	}
	pdf.SetDashPattern([]float64{}, 0)

	for _, s := range sc.Shapes {
		if sc.PaddingInner > 0 {
			pdf.SetAlpha(haloAlpha, "Normal")
			pdf.SetDrawColor(255, 0, 0)
			pdf.SetLineWidth(0.2)
			pdf.SetDashPattern([]float64{0.6, 0.9}, 0)
			pdf.Polygon(polygon(s.Halo), "D")
			pdf.SetDashPattern([]float64{}, 0)
		}

		pdf.SetAlpha(fillAlpha, "Normal")
		pdf.SetFillColor(s.Color.R, s.Color.G, s.Color.B)
		pdf.Polygon(polygon(s.Corners), "F")
		pdf.SetAlpha(1, "Normal")
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(polygon(s.Corners), "D")

		c := toPage(s.Center)
		pdf.SetFont("Helvetica", "B", labelFontSize(s.MinSide*scale))
		w := pdf.GetStringWidth(s.Label)
		pdf.SetXY(c.X-w/2, c.Y-2)
		pdf.CellFormat(w, 4, s.Label, "", 0, "C", false, 0, "")
	}

	// Diameter annotation below the circle
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	dia := fmt.Sprintf("Diameter %.2f mm", 2*sc.Radius)
	w := pdf.GetStringWidth(dia)
	pdf.SetXY(cx-w/2, cy+sc.Radius*scale+1)
	pdf.CellFormat(w, 4, dia, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawResultQR places a QR code of the compact result JSON.
func drawResultQR(pdf *fpdf.Fpdf, result model.PackingResult, x, y float64) error {
	type qrPlacement struct {
		ID    string  `json:"id"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Angle float64 `json:"a"`
	}
	payload := struct {
		Radius     float64       `json:"r"`
		Placements []qrPlacement `json:"p"`
	}{Radius: round4(result.Radius)}
	for i, p := range result.Placements {
		payload.Placements = append(payload.Placements, qrPlacement{
			ID: placementLabel(p, i), X: round4(p.X), Y: round4(p.Y), Angle: round4(p.Angle),
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal QR payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Low, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("result_qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("result_qr", x, y, reportQRSize, reportQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

// renderPlacementPage lists every placement and the stage outcomes.
func renderPlacementPage(pdf *fpdf.Fpdf, result model.PackingResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Placements", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	colWidths := []float64{40, 30, 30, 35, 35, 30, 60}
	headers := []string{"Identifier", "Width", "Height", "X", "Y", "Angle", "Farthest corner"}
	var rows [][]string
	for i, p := range result.Placements {
		far := 0.0
		for _, c := range p.Corners() {
			far = math.Max(far, c.Dist())
		}
		rows = append(rows, []string{
			placementLabel(p, i),
			fmt.Sprintf("%.2f", p.Rectangle.Width),
			fmt.Sprintf("%.2f", p.Rectangle.Height),
			fmt.Sprintf("%.4f", p.X),
			fmt.Sprintf("%.4f", p.Y),
			fmt.Sprintf("%.2f\xb0", p.Angle),
			fmt.Sprintf("%.4f mm", far),
		})
	}
	y = drawTable(pdf, y, colWidths, headers, rows)

	if len(result.Outcomes) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, "Stages", "", 0, "L", false, 0, "")
		y += 9

		var stageRows [][]string
		for _, o := range result.Outcomes {
			radius := fmt.Sprintf("%.4f", o.Radius)
			if o.Failed() {
				radius = "-"
			}
			stageRows = append(stageRows, []string{
				o.Mode.String(), radius, yesNo(o.Valid), yesNo(o.FitsTarget),
				fmt.Sprintf("%d ms", o.ElapsedMS), o.Err,
			})
		}
		drawTable(pdf, y,
			[]float64{40, 35, 25, 25, 30, 105},
			[]string{"Mode", "Radius", "Valid", "Fits", "Elapsed", "Error"},
			stageRows)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, "Generated by circlepack", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawTable renders a header row and zebra-striped body rows, returning the
// y position below the table.
func drawTable(pdf *fpdf.Fpdf, y float64, colWidths []float64, headers []string, rows [][]string) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}
	return y
}

// labelFontSize picks a font size that fits a rectangle whose shorter side
// is side mm on the page.
func labelFontSize(side float64) float64 {
	switch {
	case side > 30:
		return 10
	case side > 15:
		return 8
	case side > 8:
		return 6
	default:
		return 5
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
