package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/piwi3910/circlepack/internal/model"
)

// Document is the JSON form of an exported solve.
type Document struct {
	Config model.PackingConfig `json:"config"`
	Result model.PackingResult `json:"result"`
	Stats  model.PackingStats  `json:"stats"`
}

// WriteJSON encodes the configuration, result and statistics to w.
func WriteJSON(w io.Writer, cfg model.PackingConfig, result model.PackingResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{
		Config: cfg,
		Result: result,
		Stats:  model.ComputeStats(result, 0, 0),
	})
}

// ExportJSON writes the JSON document to path.
func ExportJSON(path string, cfg model.PackingConfig, result model.PackingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteJSON(f, cfg, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON decodes a document written by WriteJSON.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decoding result document: %w", err)
	}
	return doc, nil
}
