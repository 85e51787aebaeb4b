package trace

import "errors"

// Nop discards every event. It is the tracer used when tracing is off.
var Nop Tracer = nop{}

type nop struct{}

func (nop) Emit(*Event)   {}
func (nop) Flush() error  { return nil }
func (nop) Close() error  { return nil }
func (nop) Level() Level  { return LevelOff }
func (nop) Enabled() bool { return false }

// Tee sends every event to each enabled tracer whose level admits it.
// With no enabled tracer it returns Nop, with one it returns that tracer.
func Tee(tracers ...Tracer) Tracer {
	var live []Tracer
	for _, tr := range tracers {
		if tr != nil && tr.Enabled() {
			live = append(live, tr)
		}
	}
	switch len(live) {
	case 0:
		return Nop
	case 1:
		return live[0]
	}
	tt := &tee{tracers: live}
	for _, tr := range live {
		tt.level = max(tt.level, tr.Level())
	}
	return tt
}

type tee struct {
	tracers []Tracer
	level   Level
}

// Emit hands each tracer its own copy; tracers may stamp fields.
func (t *tee) Emit(ev *Event) {
	for _, tr := range t.tracers {
		if tr.Level().ShouldEmit(ev.Scope) {
			copied := *ev
			tr.Emit(&copied)
		}
	}
}

func (t *tee) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *tee) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *tee) Level() Level  { return t.level }
func (t *tee) Enabled() bool { return true }
