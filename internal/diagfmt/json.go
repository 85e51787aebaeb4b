package diagfmt

import (
	"encoding/json"
	"io"

	"nominal/internal/diag"
)

// NoteJSON is a note in JSON output.
type NoteJSON struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// DiagnosticJSON is a diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity diag.Severity `json:"severity"`
	Code     string        `json:"code"`
	Subject  string        `json:"subject,omitempty"`
	Message  string        `json:"message"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// JSON writes items as one indented document. Count is the number of
// diagnostics before truncation.
func JSON(w io.Writer, items []diag.Diagnostic, opts JSONOpts) error {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items)), Count: len(items)}
	for i, d := range items {
		if opts.Max > 0 && i >= opts.Max {
			break
		}
		dj := DiagnosticJSON{
			Severity: d.Severity,
			Code:     d.Code.ID(),
			Subject:  d.Subject,
			Message:  d.Message,
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Subject: n.Subject, Message: n.Msg})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
