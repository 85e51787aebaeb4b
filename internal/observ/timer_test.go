package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	open := tm.Begin("open")
	tm.End(open, "3 classes")
	query := tm.Begin("query")
	tm.End(query, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	if r.Phases[0].DurationMS != 2 || r.Phases[0].Note != "3 classes" {
		t.Errorf("open = %+v", r.Phases[0])
	}
	if r.TotalMS != 4 {
		t.Errorf("total = %v", r.TotalMS)
	}

	s := tm.Summary()
	for _, want := range []string{"open ", "query", "total", "// 3 classes"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary lacks %q:\n%s", want, s)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	r := NewTimer().Report()
	if r.TotalMS != 0 || len(r.Phases) != 0 {
		t.Fatalf("report = %+v", r)
	}
}
