package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/circlepack/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatPNG    Format = "png"
	FormatSVG    Format = "svg"
	FormatDXF    Format = "dxf"
	FormatPDF    Format = "pdf"
	FormatXLSX   Format = "xlsx"
	FormatJSON   Format = "json"
	FormatLabels Format = "labels"
)

// AllFormats lists every supported format.
func AllFormats() []Format {
	return []Format{FormatPNG, FormatSVG, FormatDXF, FormatPDF, FormatXLSX, FormatJSON, FormatLabels}
}

// Extension returns the file name suffix written for f.
func (f Format) Extension() string {
	if f == FormatLabels {
		return "_labels.pdf"
	}
	return "." + string(f)
}

// ParseFormats parses a comma separated list such as "png,svg". Duplicates
// are dropped; "all" selects every format.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if part == "all" {
			return AllFormats(), nil
		}
		f := Format(part)
		if !isKnown(f) {
			return nil, fmt.Errorf("unknown export format %q", part)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func isKnown(f Format) bool {
	for _, k := range AllFormats() {
		if f == k {
			return true
		}
	}
	return false
}

// Export writes result in every requested format to base+extension and
// returns the written paths. It stops at the first failure.
func Export(base string, formats []Format, cfg model.PackingConfig, result model.PackingResult) ([]string, error) {
	var written []string
	for _, f := range formats {
		path := base + f.Extension()
		if err := Write(path, f, cfg, result); err != nil {
			return written, fmt.Errorf("export %s: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Write exports result to path in format f.
func Write(path string, f Format, cfg model.PackingConfig, result model.PackingResult) error {
	switch f {
	case FormatPNG:
		return ExportPNG(path, cfg, result, DefaultImageSize)
	case FormatSVG:
		return ExportSVG(path, cfg, result)
	case FormatDXF:
		return ExportDXF(path, cfg, result)
	case FormatPDF:
		return ExportPDF(path, cfg, result)
	case FormatXLSX:
		return ExportXLSX(path, cfg, result)
	case FormatJSON:
		return ExportJSON(path, cfg, result)
	case FormatLabels:
		return ExportLabels(path, result)
	}
	return fmt.Errorf("unknown export format %q", f)
}
