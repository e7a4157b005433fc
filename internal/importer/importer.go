// Package importer reads packing problems and rectangle lists from JSON
// problem files, CSV, Excel and DXF drawings. The tabular importers detect
// delimiters and header columns automatically.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/circlepack/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation. Circles lists the
// radii of circles found in a DXF drawing. Row problems are collected in
// Errors; the remaining rows are still imported.
type ImportResult struct {
	Rectangles []model.Rectangle
	Circles    []float64
	Errors     []string
	Warnings   []string
}

// OK reports whether at least one rectangle was imported without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Rectangles) > 0
}

func (r *ImportResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ColumnMapping holds the column index of each field, -1 when absent.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
}

// positional is the mapping of header-less data.
var positional = ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}

// columnRoles lists the accepted header names per field, lower case.
var columnRoles = []struct {
	index   func(m *ColumnMapping) *int
	aliases []string
}{
	{func(m *ColumnMapping) *int { return &m.Label }, []string{"label", "name", "identifier", "id", "rectangle", "description", "desc", "piece", "item"}},
	{func(m *ColumnMapping) *int { return &m.Width }, []string{"width", "w", "length", "len", "x"}},
	{func(m *ColumnMapping) *int { return &m.Height }, []string{"height", "h", "depth", "d", "y"}},
	{func(m *ColumnMapping) *int { return &m.Quantity }, []string{"quantity", "qty", "count", "num", "amount", "pcs", "pieces"}},
}

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

func readRecords(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and
// pipe that splits the most lines into the same number of columns as the
// first line. Splits into a single column never win.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readRecords(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		width := len(records[0])
		consistent := 0
		for _, row := range records {
			if len(row) == width {
				consistent++
			}
		}
		if score := consistent*10 + width; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// DetectColumns matches a header row case-insensitively against the known
// column names. When no cell matches it returns the positional mapping
// Label, Width, Height, Quantity and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Label: -1, Width: -1, Height: -1, Quantity: -1}
	found := false
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, role := range columnRoles {
			idx := role.index(&m)
			if *idx != -1 || !contains(role.aliases, name) {
				continue
			}
			*idx = i
			found = true
		}
	}
	if !found {
		return positional, false
	}
	return m, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseRow turns one data row into rectangles. Quantity defaults to one;
// larger quantities number the copies Label_1, Label_2 and so on. Rows
// without a label continue the Rect_N numbering after count.
func parseRow(row []string, m ColumnMapping, count int) ([]model.Rectangle, error) {
	dim := func(name string, idx int) (float64, error) {
		s := cell(row, idx)
		if s == "" {
			return 0, fmt.Errorf("missing %s value", name)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s '%s'", name, s)
		}
		return v, nil
	}

	width, err := dim("width", m.Width)
	if err != nil {
		return nil, err
	}
	height, err := dim("height", m.Height)
	if err != nil {
		return nil, err
	}
	qty := 1
	if s := cell(row, m.Quantity); s != "" {
		if qty, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("invalid quantity '%s'", s)
		}
	}
	if width <= 0 || height <= 0 || qty <= 0 {
		return nil, fmt.Errorf("width, height and quantity must be positive")
	}

	label := cell(row, m.Label)
	rects := make([]model.Rectangle, qty)
	for i := range rects {
		name := label
		if name == "" {
			name = model.DefaultLabel(count + i)
		} else if qty > 1 {
			name = fmt.Sprintf("%s_%d", label, i+1)
		}
		rects[i] = model.NewRectangle(name, width, height)
	}
	return rects, nil
}

// ImportCSV imports rectangles from a CSV file, detecting the delimiter
// and the header.
func ImportCSV(path string) ImportResult {
	var result ImportResult

	data, err := os.ReadFile(path)
	if err != nil {
		result.errorf("Cannot open file: %v", err)
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.errorf("File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimiterNames[delimiter]))
	}

	records, err := readRecords(bytes.NewReader(data), delimiter)
	if err != nil {
		result.errorf("Cannot read CSV: %v", err)
		return result
	}
	importRows(&result, records, "Line")
	return result
}

// ImportCSVFromReader imports rectangles from CSV data with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	var result ImportResult
	records, err := readRecords(reader, delimiter)
	if err != nil {
		result.errorf("Cannot read CSV: %v", err)
		return result
	}
	importRows(&result, records, "Line")
	return result
}

// ImportExcel imports rectangles from the first sheet of a workbook.
func ImportExcel(path string) ImportResult {
	var result ImportResult

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.errorf("Cannot open Excel file: %v", err)
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.errorf("Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.errorf("Cannot read Excel data: %v", err)
		return result
	}
	if len(rows) == 0 {
		result.errorf("Sheet is empty")
		return result
	}
	importRows(&result, rows, "Row")
	return result
}

// importRows parses tabular data into result. prefix names rows in errors.
func importRows(result *ImportResult, rows [][]string, prefix string) {
	if len(rows) == 0 {
		result.errorf("File is empty")
		return
	}

	m, header := DetectColumns(rows[0])
	start := 0
	switch {
	case header:
		start = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		var missing []string
		if m.Width == -1 {
			missing = append(missing, "Width")
		}
		if m.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.errorf("Required columns not found in header: %s", strings.Join(missing, ", "))
			return
		}
	case len(rows[0]) >= 3:
		// An unrecognised header still has a non-numeric width cell.
		if _, err := strconv.ParseFloat(cell(rows[0], positional.Width), 64); err != nil {
			start = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := start; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		rects, err := parseRow(rows[i], m, len(result.Rectangles))
		if err != nil {
			result.errorf("%s %d: %v", prefix, i+1, err)
			continue
		}
		result.Rectangles = append(result.Rectangles, rects...)
	}
}

// ImportFile picks the importer from the file extension: .csv, .txt, .tsv,
// .xlsx, .xls, .xlsm or .dxf.
func ImportFile(path string) ImportResult {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xls", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	}
	return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(path))}}
}
