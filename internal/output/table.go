package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"

	"github.com/ib-77/vrcdecode/pkg/vrc"
)

var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	dimLabel  = color.New(color.FgHiBlack).SprintFunc()
)

// TableFormatter outputs data in human-readable table format.
type TableFormatter struct{}

// WriteReports writes every report followed by a summary line.
func (f *TableFormatter) WriteReports(w io.Writer, reports []Report) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := f.writeReport(w, r); err != nil {
			return err
		}
	}

	if len(reports) > 1 {
		failed := Failed(reports)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s decoded, %s failed\n",
			humanize.Comma(int64(len(reports)-failed)),
			humanize.Comma(int64(failed)))
	}
	return nil
}

func (f *TableFormatter) writeReport(w io.Writer, r Report) error {
	if !r.Success {
		fmt.Fprintf(w, "%s %s (%s)\n", failLabel("FAILED"), r.ErrorKind, dimLabel(r.ID))
		fmt.Fprintf(w, "Message:     %s\n", r.Message)
		fmt.Fprintf(w, "Duration:    %s\n", r.Duration)
		return nil
	}

	fmt.Fprintf(w, "%s (%s)\n", okLabel("OK"), dimLabel(r.ID))
	fmt.Fprintf(w, "Provenance:  %s\n", r.Provenance)
	fmt.Fprintf(w, "Fields:      %s\n", humanize.Comma(int64(r.FieldCount)))
	fmt.Fprintf(w, "Text:        %s (%s)\n",
		humanize.Bytes(uint64(len(r.DecodedString))), english.Plural(len([]rune(r.DecodedString)), "character", ""))
	if r.InvalidText {
		fmt.Fprintf(w, "Invalid:     %s\n", failLabel("code units replaced"))
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "Warning:     %s\n", warn)
	}
	fmt.Fprintf(w, "Duration:    %s\n", r.Duration)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTRIBUTE\tVALUE")
	if r.Data != nil {
		for name, v := range r.Data.All() {
			if v == "" {
				v = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\n", name, v)
		}
	}
	return tw.Flush()
}

func (f *TableFormatter) WriteSchema(w io.Writer, schema []vrc.SchemaEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POSITION\tATTRIBUTE")
	for _, e := range schema {
		fmt.Fprintf(tw, "%d\t%s\n", e.Position, e.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d attributes, at least %d fields required\n", len(schema), vrc.MinFields)
	return nil
}
