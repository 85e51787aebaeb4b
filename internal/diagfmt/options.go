// Package diagfmt renders collected diagnostics for people and tools.
package diagfmt

// Format selects a rendering.
type Format uint8

const (
	FormatPretty Format = iota
	FormatJSON
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // truncates the output, not the Bag
	IncludeNotes bool
}
