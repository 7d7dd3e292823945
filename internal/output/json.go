package output

import (
	"encoding/json"
	"io"

	"github.com/ib-77/vrcdecode/pkg/vrc"
)

// JSONFormatter outputs data in JSON format.
type JSONFormatter struct{}

// WriteReports writes a single report as an object and several as an array.
func (f *JSONFormatter) WriteReports(w io.Writer, reports []Report) error {
	if len(reports) == 1 {
		return writeJSON(w, reports[0])
	}
	return writeJSON(w, reports)
}

func (f *JSONFormatter) WriteSchema(w io.Writer, schema []vrc.SchemaEntry) error {
	return writeJSON(w, schema)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
