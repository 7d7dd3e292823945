package output

import (
	"io"

	"github.com/ib-77/vrcdecode/pkg/vrc"
)

// Formatter is the interface for output formatting.
type Formatter interface {
	WriteReports(w io.Writer, reports []Report) error
	WriteSchema(w io.Writer, schema []vrc.SchemaEntry) error
}

// NewFormatter creates a new formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &TableFormatter{}
	}
}
