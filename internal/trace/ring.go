package trace

import (
	"io"
	"slices"
	"sync"
)

const defaultRingSize = 4096

// RingTracer keeps the most recent events in memory so a failed query can
// be explained after the fact.
type RingTracer struct {
	level Level

	mu    sync.Mutex
	buf   []Event
	total int
}

// NewRingTracer keeps up to size events; a non-positive size uses the
// default.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{level: level, buf: make([]Event, 0, size)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) < cap(t.buf) {
		t.buf = append(t.buf, *ev)
	} else {
		t.buf[t.total%cap(t.buf)] = *ev
	}
	t.total++
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) < cap(t.buf) {
		return slices.Clone(t.buf)
	}
	start := t.total % cap(t.buf)
	return slices.Concat(t.buf[start:], t.buf[:start])
}

// Dropped is the number of events overwritten by newer ones.
func (t *RingTracer) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - len(t.buf)
}

// Dump writes the kept events to w, oldest first.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
