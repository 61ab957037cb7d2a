package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderHuman writes the line-oriented form: one violation per line in the
// fixed `<path>:<line>: [<severity>] <rule_id>: <message>` shape, followed
// by the summary line.
func RenderHuman(w io.Writer, r *Report) error {
	for _, v := range r.Violations {
		if _, err := fmt.Fprintf(w, "%s:%d: [%s] %s: %s\n", v.File, v.Line, v.Severity, v.RuleID, v.Message); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d errors, %d warnings\n", r.Summary.Errors, r.Summary.Warnings)
	return err
}

// RenderJSON writes the machine-readable form with stable field names,
// suitable for CI ingestion.
func RenderJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
