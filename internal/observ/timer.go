// Package observ measures how long the phases of a CLI run take: opening
// the session, loading the class path, answering the query.
package observ

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Phase is one timed step.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer records phases in the order they begin.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer creates an empty Timer on the wall clock.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4), now: time.Now} }

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes the phase at idx. Unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// Phases returns the recorded phases.
func (t *Timer) Phases() []Phase { return t.phases }

// PhaseReport is a phase in serializable form.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report holds every phase and their total.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report summarizes the phases in milliseconds.
func (t *Timer) Report() Report {
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		report.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	report.TotalMS = millis(total)
	return report
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	width := runewidth.StringWidth("total")
	for _, p := range report.Phases {
		width = max(width, runewidth.StringWidth(p.Name))
	}
	var b strings.Builder
	b.WriteString("timings:\n")
	row := func(name string, ms float64, note string) {
		b.WriteString("  ")
		b.WriteString(runewidth.FillRight(name, width))
		fmt.Fprintf(&b, " %8.2f ms", ms)
		if note != "" {
			b.WriteString("  // " + note)
		}
		b.WriteByte('\n')
	}
	for _, p := range report.Phases {
		row(p.Name, p.DurationMS, p.Note)
	}
	row("total", report.TotalMS, "")
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
