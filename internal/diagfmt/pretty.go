package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"nominal/internal/diag"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgBlue)
	noteColor  = color.New(color.Faint)
)

// Pretty prints one line per diagnostic:
//
//	<SEV> <CODE> <subject>: <message>
//
// followed by its notes when asked.
func Pretty(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) {
	for _, d := range items {
		sev := d.Severity.String()
		if opts.Color {
			sev = severityColor(d.Severity).Sprint(sev)
		}
		if d.Subject == "" {
			fmt.Fprintf(w, "%s %s: %s\n", sev, d.Code.ID(), d.Message)
		} else {
			fmt.Fprintf(w, "%s %s %s: %s\n", sev, d.Code.ID(), d.Subject, d.Message)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			label := "note"
			if opts.Color {
				label = noteColor.Sprint(label)
			}
			fmt.Fprintf(w, "  %s %s: %s\n", label, n.Subject, n.Msg)
		}
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warnColor
	}
	return infoColor
}
