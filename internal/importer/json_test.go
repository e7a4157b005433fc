package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleProblem = `{
  "innerShape": [
    {"shape": "rectangle", "width": 20, "height": 10, "identifier": "Bar"},
    {"shape": "rectangle", "width": 12, "height": 6}
  ],
  "outerShape": {"shape": "circle", "diameter": 40},
  "additionalConstraints": {
    "paddingBetweenInnerShapes": {"amount": 1.5},
    "paddingBetweenInnerShapesAndOuter": {"amount": 2}
  },
  "resultOutput": {"outputFormat": "GUI"}
}`

func TestParseProblem(t *testing.T) {
	p, err := ParseProblem([]byte(exampleProblem))
	require.NoError(t, err)

	require.Len(t, p.Config.Rectangles, 2)
	assert.Equal(t, "Bar", p.Config.Rectangles[0].Label)
	assert.Equal(t, "Rect_2", p.Config.Rectangles[1].Label)
	assert.Equal(t, 12.0, p.Config.Rectangles[1].Width)
	assert.Equal(t, 1.5, p.Config.PaddingInner)
	assert.Equal(t, 2.0, p.Config.PaddingOuter)
	require.True(t, p.Config.HasTarget())
	assert.Equal(t, 20.0, p.Config.Target())
	assert.Equal(t, OutputGUI, p.OutputFormat)
}

func TestParseProblem_Defaults(t *testing.T) {
	p, err := ParseProblem([]byte(`{"innerShape":[{"shape":"rectangle","width":1,"height":2}]}`))
	require.NoError(t, err)

	assert.Equal(t, OutputCLI, p.OutputFormat)
	assert.False(t, p.Config.HasTarget())
	assert.Zero(t, p.Config.PaddingInner)
	assert.Zero(t, p.Config.PaddingOuter)
}

func TestParseProblem_Radius(t *testing.T) {
	p, err := ParseProblem([]byte(`{"innerShape":[{"shape":"rectangle","width":1,"height":2}],"outerShape":{"shape":"circle","radius":7}}`))
	require.NoError(t, err)
	assert.Equal(t, 7.0, p.Config.Target())
}

func TestParseProblem_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing innerShape", `{}`},
		{"innerShape not a list", `{"innerShape": {"shape": "rectangle"}}`},
		{"empty innerShape", `{"innerShape": []}`},
		{"wrong shape", `{"innerShape": [{"shape": "circle", "width": 1, "height": 1}]}`},
		{"missing height", `{"innerShape": [{"shape": "rectangle", "width": 1}]}`},
		{"string dimension", `{"innerShape": [{"shape": "rectangle", "width": "1", "height": 1}]}`},
		{"radius and diameter", `{"innerShape": [{"shape": "rectangle", "width": 1, "height": 1}], "outerShape": {"radius": 1, "diameter": 2}}`},
		{"square outer shape", `{"innerShape": [{"shape": "rectangle", "width": 1, "height": 1}], "outerShape": {"shape": "square"}}`},
		{"unknown output", `{"innerShape": [{"shape": "rectangle", "width": 1, "height": 1}], "resultOutput": {"outputFormat": "TTY"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProblem([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProblem), "got %v", err)
		})
	}
}

func TestLoadProblem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.json")
	require.NoError(t, os.WriteFile(path, []byte(exampleProblem), 0644))

	p, err := LoadProblem(path)
	require.NoError(t, err)
	assert.Len(t, p.Config.Rectangles, 2)

	_, err = LoadProblem(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestProblemFromConfig_RoundTrip(t *testing.T) {
	p, err := ParseProblem([]byte(exampleProblem))
	require.NoError(t, err)

	data, err := ProblemFromConfig(p.Config, OutputCLI)
	require.NoError(t, err)

	again, err := ParseProblem(data)
	require.NoError(t, err)
	assert.Equal(t, p.Config.Labels(), again.Config.Labels())
	assert.Equal(t, p.Config.Target(), again.Config.Target())
	assert.Equal(t, p.Config.PaddingInner, again.Config.PaddingInner)
	assert.Equal(t, OutputCLI, again.OutputFormat)
}
