package diag

import "fmt"

// Severity orders diagnostics; a bag sorts the most severe first.
type Severity uint8

const (
	// SevNote carries context that does not affect the outcome of a query.
	SevNote Severity = iota
	SevWarning
	// SevError marks a class path or signature problem that degraded a
	// symbol.
	SevError
)

var severityNames = [...]string{
	SevNote:    "NOTE",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// MarshalText writes the label printed by String.
func (s Severity) MarshalText() ([]byte, error) {
	if int(s) >= len(severityNames) {
		return nil, fmt.Errorf("diag: invalid severity %d", uint8(s))
	}
	return []byte(severityNames[s]), nil
}

// UnmarshalText accepts the labels written by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("diag: unknown severity %q", text)
}
