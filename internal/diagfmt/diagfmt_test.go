package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"nominal/internal/diag"
)

func sampleItems() []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.ClpDuplicateClass, "app.Widget", "class declared twice").
			WithNote("first.toml", "first declared here"),
		diag.NewError(diag.CmpClassNotFound, "", "class not found"),
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleItems(), PrettyOpts{ShowNotes: true})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "WARNING "+diag.ClpDuplicateClass.ID()+" app.Widget: ") {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "  note first.toml: first declared here" {
		t.Errorf("note line = %q", lines[1])
	}
	if lines[2] != "ERROR "+diag.CmpClassNotFound.ID()+": class not found" {
		t.Errorf("last line = %q", lines[2])
	}

	buf.Reset()
	Pretty(&buf, sampleItems(), PrettyOpts{})
	if strings.Contains(buf.String(), "note") {
		t.Errorf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestJSONTruncates(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleItems(), JSONOpts{Max: 1, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Severity != diag.SevWarning || d.Subject != "app.Widget" || len(d.Notes) != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
}
