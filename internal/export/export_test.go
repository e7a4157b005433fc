package export

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/circlepack/internal/importer"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewScene(t *testing.T) {
	sc, err := newScene(buildTestConfig(), buildTestResult())
	require.NoError(t, err)

	assert.Equal(t, 18.0, sc.Radius)
	assert.Equal(t, 17.0, sc.ConstraintRadius)
	assert.InDelta(t, 21.6, sc.Extent, 1e-12)
	require.Len(t, sc.Shapes, 3)
	assert.Equal(t, "Rect_3", sc.Shapes[2].Label)
	assert.Equal(t, 3.0, sc.Shapes[2].MinSide)

	// halo grows each side by half the inner padding
	halo := sc.Shapes[0].Halo
	assert.InDelta(t, 10.5, halo[0].X, 1e-12)
	assert.InDelta(t, 11, halo[0].Y, 1e-12)

	cfg := buildTestConfig()
	cfg.PaddingOuter = 0
	sc, err = newScene(cfg, buildTestResult())
	require.NoError(t, err)
	assert.Zero(t, sc.ConstraintRadius)

	_, err = newScene(cfg, model.PackingResult{})
	assert.True(t, errors.Is(err, ErrNothingToExport))
}

func TestGridStep(t *testing.T) {
	tests := []struct {
		span, want float64
	}{
		{8, 1},
		{40, 5},
		{43.2, 10},
		{150, 20},
		{0, 1},
	}
	for _, tt := range tests {
		if got := gridStep(tt.span); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("gridStep(%g) = %g, want %g", tt.span, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("PNG, svg,png,,dxf")
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatPNG, FormatSVG, FormatDXF}, got)

	all, err := ParseFormats("all")
	require.NoError(t, err)
	assert.Equal(t, AllFormats(), all)

	_, err = ParseFormats("png,bmp")
	assert.Error(t, err)

	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Equal(t, "_labels.pdf", FormatLabels.Extension())
}

func TestExport_AllFormats(t *testing.T) {
	base := filepath.Join(t.TempDir(), "solution")

	paths, err := Export(base, AllFormats(), buildTestConfig(), buildTestResult())
	require.NoError(t, err)
	require.Len(t, paths, len(AllFormats()))

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Greater(t, info.Size(), int64(0), p)
	}
}

func TestExport_StopsOnError(t *testing.T) {
	base := filepath.Join(t.TempDir(), "empty")
	paths, err := Export(base, []Format{FormatJSON, FormatPNG}, buildTestConfig(), model.PackingResult{})
	require.Error(t, err)
	assert.Len(t, paths, 1, "JSON of an empty result is still written")
	assert.True(t, errors.Is(err, ErrNothingToExport))
}

func TestRenderSVG(t *testing.T) {
	data, err := RenderSVG(buildTestConfig(), buildTestResult())
	require.NoError(t, err)
	svg := string(data)

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `id="container"`)
	assert.Contains(t, svg, `id="constraint"`)
	assert.Equal(t, 3, strings.Count(svg, `id="rect-`))
	// one halo per rectangle
	assert.Equal(t, 3, strings.Count(svg, `stroke="red"`))
	assert.Contains(t, svg, "Packing Solution (R=18.0000mm)")
	assert.Contains(t, svg, ">Bar A<")
	// y is mirrored: top edge of Bar A at model y=10.5
	assert.Contains(t, svg, "10.0000,-10.5000")
}

func TestRenderSVG_EscapesLabels(t *testing.T) {
	result := buildTestResult()
	result.Placements[0].Rectangle.Label = "A&B <1>"

	data, err := RenderSVG(buildTestConfig(), result)
	require.NoError(t, err)
	assert.Contains(t, string(data), "A&amp;B &lt;1&gt;")
}

func TestRenderSVG_NoPadding(t *testing.T) {
	cfg := buildTestConfig()
	cfg.PaddingInner, cfg.PaddingOuter = 0, 0

	data, err := RenderSVG(cfg, buildTestResult())
	require.NoError(t, err)
	assert.NotContains(t, string(data), `id="constraint"`)
	assert.NotContains(t, string(data), `stroke="red"`)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, buildTestConfig(), buildTestResult(), 400))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())

	// background stays white in the corner
	r, g, b, _ := img.At(1, 399).RGBA()
	assert.Equal(t, uint32(0xffff), r&g&b)
}

func TestRenderImage_DefaultSize(t *testing.T) {
	img, err := RenderImage(buildTestConfig(), buildTestResult(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultImageSize, img.Bounds().Dx())
}

func TestExportDXF_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.dxf")
	require.NoError(t, ExportDXF(path, buildTestConfig(), buildTestResult()))

	imported := importer.ImportDXF(path)
	require.Empty(t, imported.Errors)
	require.Len(t, imported.Rectangles, 3)

	var areas float64
	for _, r := range imported.Rectangles {
		areas += r.Area()
	}
	assert.InDelta(t, 418, areas, 1e-6)

	r, ok := imported.LargestCircle()
	require.True(t, ok)
	assert.InDelta(t, 18, r, 1e-9)
	assert.Len(t, imported.Circles, 2, "container and constraint circles")
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.xlsx")
	require.NoError(t, ExportXLSX(path, buildTestConfig(), buildTestResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetPlacements, SheetStages}, f.GetSheetList())

	rows, err := f.GetRows(SheetPlacements)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Identifier", rows[0][0])
	assert.Equal(t, "Bar A", rows[1][0])
	assert.Len(t, rows[1], 14)

	radius, err := f.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "18", radius)

	stages, err := f.GetRows(SheetStages)
	require.NoError(t, err)
	assert.Len(t, stages, 3)
}

func TestExportJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.json")
	require.NoError(t, ExportJSON(path, buildTestConfig(), buildTestResult()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, err := ReadJSON(f)
	require.NoError(t, err)
	assert.Equal(t, 18.0, doc.Result.Radius)
	assert.Equal(t, model.RotationDiscrete90, doc.Result.Mode)
	require.Len(t, doc.Result.Placements, 3)
	assert.Equal(t, 90.0, doc.Result.Placements[2].Angle)
	assert.Equal(t, 20.0, doc.Config.Target())
	assert.Greater(t, doc.Stats.Density, 0.0)
}
