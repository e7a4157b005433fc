package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/circlepack/internal/model"
)

func labels(rects []model.Rectangle) []string {
	out := make([]string, len(rects))
	for i, r := range rects {
		out[i] = r.Label
	}
	return out
}

func fromCSV(data string) ImportResult {
	return ImportCSVFromReader(strings.NewReader(data), ',')
}

func TestDetectCSVDelimiter(t *testing.T) {
	for _, delim := range []rune{',', ';', '\t', '|'} {
		sep := string(delim)
		data := strings.Join([]string{
			strings.Join([]string{"Label", "Width", "Height", "Qty"}, sep),
			strings.Join([]string{"A", "20", "10", "2"}, sep),
			strings.Join([]string{"B", "12.5", "6", "1"}, sep),
		}, "\n")
		assert.Equal(t, delim, DetectCSVDelimiter([]byte(data)), "delimiter %q", sep)
	}
	// Single column data falls back to comma.
	assert.Equal(t, ',', DetectCSVDelimiter([]byte("20\n12\n")))
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name   string
		row    []string
		want   ColumnMapping
		header bool
	}{
		{"standard", []string{"Label", "Width", "Height", "Quantity"}, ColumnMapping{0, 1, 2, 3}, true},
		{"short aliases", []string{"name", "W", "H", "qty"}, ColumnMapping{0, 1, 2, 3}, true},
		{"reordered", []string{"Qty", "Height", "Width", "Label"}, ColumnMapping{3, 2, 1, 0}, true},
		{"no quantity", []string{" ID ", "Length", "Depth"}, ColumnMapping{0, 1, 2, -1}, true},
		{"first alias wins", []string{"Width", "W", "Height"}, ColumnMapping{-1, 0, 2, -1}, true},
		{"data row", []string{"Bar", "20", "10", "1"}, ColumnMapping{0, 1, 2, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, header := DetectColumns(tt.row)
			assert.Equal(t, tt.header, header)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportCSVFromReader(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		want     []string
		warnings int
	}{
		{"header", "Label,Width,Height,Quantity\nBar,20,10,1\nBlock,12,6,1\n", []string{"Bar", "Block"}, 1},
		{"quantity expands", "Label,Width,Height,Quantity\nBar,20,10,3\nBlock,12,6,1\n", []string{"Bar_1", "Bar_2", "Bar_3", "Block"}, 1},
		{"quantity optional", "Width,Height\n20,10\n12,6\n", []string{"Rect_1", "Rect_2"}, 1},
		{"no header", "Bar,20,10,1\nBlock,12,6,1\n", []string{"Bar", "Block"}, 0},
		{"unknown header", "Part,Size A,Size B\nBar,20,10\n", []string{"Bar"}, 1},
		{"empty rows", "Label,Width,Height,Quantity\nBar,20,10,1\n\n,,,\nBlock,12,6,1\n", []string{"Bar", "Block"}, 1},
		{"empty label", "Label,Width,Height,Quantity\nBar,20,10,1\n,12,6,2\n", []string{"Bar", "Rect_2", "Rect_3"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fromCSV(tt.data)
			require.Empty(t, result.Errors)
			assert.Equal(t, tt.want, labels(result.Rectangles))
			assert.Len(t, result.Warnings, tt.warnings)
			assert.True(t, result.OK())
		})
	}
}

func TestImportCSVFromReaderTrimsAndParsesDecimals(t *testing.T) {
	result := fromCSV("Label , Width , Height , Quantity\n Bar , 20.5 , 10.25 , 1 \n")
	require.Len(t, result.Rectangles, 1, "errors: %v", result.Errors)
	r := result.Rectangles[0]
	assert.Equal(t, "Bar", r.Label)
	assert.Equal(t, 20.5, r.Width)
	assert.Equal(t, 10.25, r.Height)
	assert.NotEmpty(t, r.ID)
}

func TestImportCSVFromReaderRejectsBadRows(t *testing.T) {
	rows := map[string]string{
		"invalid width":    "Bar,abc,10,1",
		"invalid height":   "Bar,20,xyz,1",
		"invalid quantity": "Bar,20,10,abc",
		"negative width":   "Bar,-20,10,1",
		"zero height":      "Bar,20,0,1",
		"zero quantity":    "Bar,20,10,0",
		"missing height":   "Bar,20,,1",
	}
	for name, row := range rows {
		t.Run(name, func(t *testing.T) {
			result := fromCSV("Label,Width,Height,Quantity\n" + row + "\n")
			require.Len(t, result.Errors, 1)
			assert.True(t, strings.HasPrefix(result.Errors[0], "Line 2:"), result.Errors[0])
			assert.Empty(t, result.Rectangles)
			assert.False(t, result.OK())
		})
	}
}

func TestImportCSVFromReaderKeepsGoodRows(t *testing.T) {
	result := fromCSV("Label,Width,Height,Quantity\nGood,20,10,2\nBad,abc,10,2\nAlsoGood,12,6,1\n")
	assert.Len(t, result.Rectangles, 3)
	assert.Equal(t, []string{"Line 3: invalid width 'abc'"}, result.Errors)
	assert.False(t, result.OK(), "a result with errors is not OK")
}

func TestImportCSVFromReaderMissingColumns(t *testing.T) {
	result := fromCSV("Label,Width,Quantity\nBar,20,1\n")
	assert.Equal(t, []string{"Required columns not found in header: Height"}, result.Errors)
	assert.Empty(t, result.Rectangles)

	result = fromCSV("Label,Qty\nBar,1\n")
	assert.Equal(t, []string{"Required columns not found in header: Width, Height"}, result.Errors)
}

func TestImportCSVFromReaderEmpty(t *testing.T) {
	result := fromCSV("")
	assert.NotEmpty(t, result.Errors)
	assert.False(t, result.OK())
}

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rects.csv")
	content := "Label;Width;Height;Quantity\nBar;20;10;2\nBlock;12;6;1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	result := ImportCSV(path)
	assert.Len(t, result.Rectangles, 3, "errors: %v", result.Errors)
	assert.Contains(t, result.Warnings, "Detected semicolon delimiter")
	assert.Contains(t, result.Warnings, "Detected header row, skipping")
}

func TestImportCSVErrors(t *testing.T) {
	if result := ImportCSV("/nonexistent/path/file.csv"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := filepath.Join(t.TempDir(), "blank.csv")
	require.NoError(t, os.WriteFile(path, []byte("  \n\n"), 0644))
	assert.Equal(t, []string{"File is empty"}, ImportCSV(path).Errors)
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rects.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &row))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportExcel(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
		want []string
	}{
		{"header", [][]any{{"Label", "Width", "Height", "Quantity"}, {"Bar", 20, 10, 2}, {"Block", 12, 6, 1}}, []string{"Bar_1", "Bar_2", "Block"}},
		{"no header", [][]any{{"Bar", 20, 10, 1}, {"Block", 12.5, 6, 1}}, []string{"Bar", "Block"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ImportExcel(writeWorkbook(t, tt.rows))
			require.Empty(t, result.Errors)
			assert.Equal(t, tt.want, labels(result.Rectangles))
		})
	}
}

func TestImportExcelErrors(t *testing.T) {
	if result := ImportExcel("/nonexistent/file.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	result := ImportExcel(writeWorkbook(t, [][]any{{"Label", "Width", "Height"}, {"Bar", "abc", 10}}))
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Row 2:"), result.Errors[0])

	result = ImportExcel(writeWorkbook(t, nil))
	assert.Equal(t, []string{"Sheet is empty"}, result.Errors)
}

func TestImportedRectanglesFormValidConfig(t *testing.T) {
	result := fromCSV("Bar,20,10,2\n")
	cfg := model.PackingConfig{Rectangles: result.Rectangles}
	assert.NoError(t, cfg.Validate())
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rects.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("Label,Width,Height\nBar,20,10\n"), 0644))
	assert.Len(t, ImportFile(csvPath).Rectangles, 1)

	xlsxPath := writeWorkbook(t, [][]any{{"Label", "Width", "Height"}, {"Bar", 20, 10}})
	assert.Len(t, ImportFile(xlsxPath).Rectangles, 1)

	res := ImportFile(filepath.Join(dir, "shapes.svg"))
	assert.Equal(t, []string{`Unsupported file type ".svg"`}, res.Errors)
}
