package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/circlepack/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo is the payload of a label's QR code.
type LabelInfo struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"`
}

// CollectLabelInfos returns one label per placement, coordinates rounded
// to four decimals.
func CollectLabelInfos(result model.PackingResult) []LabelInfo {
	labels := make([]LabelInfo, 0, len(result.Placements))
	for i, p := range result.Placements {
		labels = append(labels, LabelInfo{
			ID:     p.Rectangle.ID,
			Label:  placementLabel(p, i),
			Width:  p.Rectangle.Width,
			Height: p.Rectangle.Height,
			X:      round4(p.X),
			Y:      round4(p.Y),
			Angle:  round4(p.Angle),
		})
	}
	return labels
}

// labelSheet describes a page of equally sized sticker cells, in mm.
type labelSheet struct {
	paper        string
	top, left    float64
	cellW, cellH float64
	cols, rows   int
	qr, pad      float64
}

// avery5160 is US Letter with 3 x 10 address labels.
var avery5160 = labelSheet{
	paper: "Letter",
	top:   12.7,
	left:  4.8,
	cellW: 66.7,
	cellH: 25.4,
	cols:  3,
	rows:  10,
	qr:    20,
	pad:   2,
}

func (s labelSheet) perPage() int { return s.cols * s.rows }

// cell returns the top-left corner of the i-th label on its page.
func (s labelSheet) cell(i int) (x, y float64) {
	i %= s.perPage()
	return s.left + float64(i%s.cols)*s.cellW, s.top + float64(i/s.cols)*s.cellH
}

type labelLine struct {
	style   string
	size    float64
	height  float64
	r, g, b int
	text    string
}

func (s labelSheet) lines(info LabelInfo) []labelLine {
	lines := []labelLine{
		{"B", 9, 4.5, 0, 0, 0, info.Label},
		{"", 7, 3.5, 0, 0, 0, fmt.Sprintf("%.1f x %.1f mm", info.Width, info.Height)},
		{"", 6, 3, 100, 100, 100, fmt.Sprintf("@ (%.2f, %.2f)", info.X, info.Y)},
	}
	if info.Angle != 0 {
		lines = append(lines, labelLine{"I", 6, 3, 150, 100, 0, fmt.Sprintf("Rotated %.1f\xb0", info.Angle)})
	}
	return lines
}

// ExportLabels writes a PDF with one QR-coded sticker per placed
// rectangle. The QR code holds the LabelInfo as JSON.
func ExportLabels(path string, result model.PackingResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return ErrNothingToExport
	}

	sheet := avery5160
	pdf := fpdf.New("P", "mm", sheet.paper, "")
	pdf.SetAutoPageBreak(false, 0)
	for i, info := range labels {
		if i%sheet.perPage() == 0 {
			pdf.AddPage()
		}
		if err := sheet.draw(pdf, i, info); err != nil {
			return fmt.Errorf("label %q: %w", info.Label, err)
		}
	}
	return pdf.OutputFileAndClose(path)
}

func (s labelSheet) draw(pdf *fpdf.Fpdf, i int, info LabelInfo) error {
	x, y := s.cell(i)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, s.cellW, s.cellH, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encoding QR code: %w", err)
	}
	name := fmt.Sprintf("qr_%d", i)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x+s.cellW-s.qr-s.pad, y+(s.cellH-s.qr)/2, s.qr, s.qr, false, opts, 0, "")

	textW := s.cellW - s.qr - 3*s.pad
	ty := y + s.pad
	for n, line := range s.lines(info) {
		pdf.SetFont("Helvetica", line.style, line.size)
		pdf.SetTextColor(line.r, line.g, line.b)
		pdf.SetXY(x+s.pad, ty)
		text := line.text
		if n == 0 {
			text = fitText(pdf, text, textW)
		}
		pdf.CellFormat(textW, line.height, text, "", 1, "L", false, 0, "")
		ty += line.height + 0.5
	}
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// fitText shortens s with an ellipsis until it fits width at the current font.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
