package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeCompletion) {
		t.Fatalf("phase level must not emit completion events")
	}
	if !LevelDetail.ShouldEmit(ScopeCompletion) {
		t.Fatalf("detail level must emit completion events")
	}
	if LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail level must not emit node events")
	}
	if !LevelDebug.ShouldEmit(ScopeNode) {
		t.Fatalf("debug level emits everything")
	}
	if LevelOff.ShouldEmit(ScopeSession) {
		t.Fatalf("off emits nothing")
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}

func TestStreamTracerStampsSession(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Format: FormatNDJSON, Output: &buf, Session: "s-1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	span := Begin(tr, ScopeQuery, "lub", 0)
	span.WithExtra("arity", "2").End("ok")
	Begin(tr, ScopeNode, "hidden", span.ID()).End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 events, got %d: %q", len(lines), buf.String())
	}
	for _, l := range lines {
		if !strings.Contains(l, `"session":"s-1"`) {
			t.Fatalf("event without session: %s", l)
		}
	}
	if !strings.Contains(lines[1], `"arity":"2"`) {
		t.Fatalf("extra missing from end event: %s", lines[1])
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeNode, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if r.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", r.Dropped())
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(buf.String(), "• c") {
		t.Fatalf("text dump missing event: %q", buf.String())
	}
}

func TestTeeFansOutByLevel(t *testing.T) {
	debug := NewRingTracer(8, LevelDebug)
	phase := NewRingTracer(8, LevelPhase)
	tr := Tee(debug, phase, Nop, nil)
	if tr.Level() != LevelDebug {
		t.Fatalf("tee level = %v, want the highest child level", tr.Level())
	}
	Point(tr, ScopeQuery, "subtype", "", 0)
	Point(tr, ScopeNode, "step", "", 0)
	if len(debug.Snapshot()) != 2 {
		t.Errorf("debug tracer got %d events", len(debug.Snapshot()))
	}
	if got := phase.Snapshot(); len(got) != 1 || got[0].Name != "subtype" {
		t.Errorf("phase tracer got %+v", got)
	}
}

func TestTeeCollapses(t *testing.T) {
	if Tee() != Nop || Tee(nil, Nop) != Nop {
		t.Fatalf("tee of nothing should be Nop")
	}
	r := NewRingTracer(1, LevelDebug)
	if Tee(r, Nop) != Tracer(r) {
		t.Fatalf("tee of one tracer should be that tracer")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer should be Nop")
	}
	r := NewRingTracer(1, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not recovered from context")
	}
}

func TestNopSpanIsSafe(t *testing.T) {
	s := Begin(nil, ScopeQuery, "x", 0)
	if s.End("") != 0 || s.ID() != 0 {
		t.Fatalf("nop span should be inert")
	}
}
