package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/vrcdecode/pkg/vrc"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Report is the result document of one decode, shared by the command line
// and the HTTP service.
type Report struct {
	ID            string             `json:"id"`
	Success       bool               `json:"success"`
	Data          *vrc.VehicleRecord `json:"data,omitempty"`
	DecodedString string             `json:"decodedString,omitempty"`
	Provenance    vrc.Provenance     `json:"provenance,omitempty"`
	InvalidText   bool               `json:"invalidText"`
	FieldCount    int                `json:"fieldCount,omitempty"`
	ErrorKind     vrc.Kind           `json:"errorKind,omitempty"`
	Message       string             `json:"message"`
	Warnings      []string           `json:"warnings,omitempty"`
	Duration      string             `json:"duration"`
}

// NewReport builds the report for a single decode.
func NewReport(d vrc.Decoded, err error, elapsed time.Duration) Report {
	r := Report{
		ID:       uuid.NewString(),
		Duration: elapsed.String(),
	}

	if err != nil {
		r.ErrorKind = vrc.KindOf(err)
		r.Message = err.Error()
		return r
	}

	rec := d.Record
	r.Success = true
	r.Data = &rec
	r.DecodedString = d.Text
	r.Provenance = d.Provenance
	r.InvalidText = d.InvalidText
	r.FieldCount = d.FieldCount
	r.Message = "decoded"
	for _, w := range d.Warnings {
		r.Warnings = append(r.Warnings, w.Error())
	}
	return r
}

// FromOutcome builds the report of one batch item.
func FromOutcome(o vrc.Outcome) Report {
	return NewReport(o.Decoded, o.Err, o.Elapsed)
}

// FromOutcomes keeps the order of outcomes.
func FromOutcomes(outcomes []vrc.Outcome) []Report {
	reports := make([]Report, len(outcomes))
	for i, o := range outcomes {
		reports[i] = FromOutcome(o)
	}
	return reports
}

// Failed counts the unsuccessful reports.
func Failed(reports []Report) int {
	n := 0
	for _, r := range reports {
		if !r.Success {
			n++
		}
	}
	return n
}
