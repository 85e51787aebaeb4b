package scope

import (
	"fmt"
	"iter"
	"slices"
	"testing"

	"nominal/internal/names"
)

type testSym struct {
	name *names.Name
	kind string
}

func (s *testSym) Name() *names.Name { return s.name }

func newSym(tab *names.Table, name, kind string) *testSym {
	return &testSym{name: tab.FromString(name), kind: kind}
}

func collect[S Symbol](seq iter.Seq[S]) []S {
	var out []S
	for s := range seq {
		out = append(out, s)
	}
	return out
}

func TestEnterLookupShadowing(t *testing.T) {
	tab := names.NewTable()
	s := New[*testSym](nil)
	a1 := newSym(tab, "a", "var")
	a2 := newSym(tab, "a", "method")
	b := newSym(tab, "b", "var")
	s.Enter(a1)
	s.Enter(b)
	s.Enter(a2)

	got, ok := s.Lookup(tab.FromString("a"), nil)
	if !ok || got != a2 {
		t.Fatalf("expected newest entry, got %v", got)
	}
	got, ok = s.Lookup(tab.FromString("a"), func(x *testSym) bool { return x.kind == "var" })
	if !ok || got != a1 {
		t.Fatalf("filtered lookup should skip to the older entry")
	}
	all := collect(s.SymbolsByName(tab.FromString("a"), nil))
	if !slices.Equal(all, []*testSym{a2, a1}) {
		t.Fatalf("SymbolsByName = %v", all)
	}
	if _, ok := s.Lookup(tab.FromString("missing"), nil); ok {
		t.Fatalf("lookup of an absent name succeeded")
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestDupLeaveRestoresParentView(t *testing.T) {
	tab := names.NewTable()
	outer := New[*testSym](nil)
	x := newSym(tab, "x", "var")
	outer.Enter(x)

	inner := outer.Dup(nil)
	if outer.Shared() != 1 {
		t.Fatalf("shared = %d after Dup", outer.Shared())
	}
	shadow := newSym(tab, "x", "var")
	y := newSym(tab, "y", "var")
	inner.Enter(shadow)
	inner.Enter(y)

	if got, _ := inner.Lookup(tab.FromString("x"), nil); got != shadow {
		t.Fatalf("inner should see its own x")
	}
	if got, _ := outer.Lookup(tab.FromString("x"), nil); got != shadow {
		// the parent shares the table while the child is live
		t.Fatalf("shared table should expose the child entry")
	}

	back := inner.Leave()
	if back != outer {
		t.Fatalf("Leave returned the wrong scope")
	}
	if outer.Shared() != 0 {
		t.Fatalf("shared = %d after Leave", outer.Shared())
	}
	if got, _ := outer.Lookup(tab.FromString("x"), nil); got != x {
		t.Fatalf("outer x not restored")
	}
	if _, ok := outer.Lookup(tab.FromString("y"), nil); ok {
		t.Fatalf("child entry survived Leave")
	}
	if n := len(outer.tab.entries); n != 3 {
		t.Fatalf("arena not trimmed, %d entries", n)
	}
}

func TestEnterIntoSharedScopePanics(t *testing.T) {
	tab := names.NewTable()
	outer := New[*testSym](nil)
	_ = outer.Dup(nil)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	outer.Enter(newSym(tab, "z", "var"))
}

func TestGrowthKeepsEverySymbol(t *testing.T) {
	tab := names.NewTable()
	s := New[*testSym](nil)
	syms := make([]*testSym, 0, 500)
	for i := range 500 {
		sym := newSym(tab, fmt.Sprintf("n%d", i), "var")
		syms = append(syms, sym)
		s.Enter(sym)
	}
	for _, sym := range syms {
		if got, ok := s.Lookup(sym.name, nil); !ok || got != sym {
			t.Fatalf("lost %s after growth", sym.name)
		}
	}
	if len(s.tab.slots) <= initialSize {
		t.Fatalf("table did not grow")
	}
}

func TestGrowthWhileNested(t *testing.T) {
	tab := names.NewTable()
	outer := New[*testSym](nil)
	keep := newSym(tab, "keep", "var")
	outer.Enter(keep)
	inner := outer.Dup(nil)
	for i := range 64 {
		inner.Enter(newSym(tab, fmt.Sprintf("t%d", i), "var"))
	}
	inner.Leave()
	if got, ok := outer.Lookup(keep.name, nil); !ok || got != keep {
		t.Fatalf("outer entry lost after nested growth")
	}
	if _, ok := outer.Lookup(tab.FromString("t3"), nil); ok {
		t.Fatalf("nested entry visible after Leave")
	}
}

func TestRemove(t *testing.T) {
	tab := names.NewTable()
	s := New[*testSym](nil)
	a := newSym(tab, "a", "var")
	b := newSym(tab, "b", "var")
	a2 := newSym(tab, "a", "var")
	s.Enter(a)
	s.Enter(b)
	s.Enter(a2)
	if !s.Remove(a) {
		t.Fatalf("Remove(a) = false")
	}
	if s.Remove(a) {
		t.Fatalf("second Remove(a) should be a no-op")
	}
	if got := collect(s.SymbolsByName(a.name, nil)); !slices.Equal(got, []*testSym{a2}) {
		t.Fatalf("after remove: %v", got)
	}
	if got := collect(s.Local(nil)); !slices.Equal(got, []*testSym{a2, b}) {
		t.Fatalf("sibling chain after remove: %v", got)
	}
}

func TestSymbolsWalksEnclosingScopes(t *testing.T) {
	tab := names.NewTable()
	outer := New[*testSym](nil)
	a := newSym(tab, "a", "var")
	outer.Enter(a)
	inner := outer.Dup(nil)
	b := newSym(tab, "b", "var")
	inner.Enter(b)
	if got := collect(inner.Symbols(nil)); !slices.Equal(got, []*testSym{b, a}) {
		t.Fatalf("Symbols = %v", got)
	}
}

func TestDupUnsharedIsIndependent(t *testing.T) {
	tab := names.NewTable()
	outer := New[*testSym](nil)
	a := newSym(tab, "a", "var")
	outer.Enter(a)
	copyScope := outer.DupUnshared()
	b := newSym(tab, "b", "var")
	copyScope.Enter(b)
	outer.Enter(newSym(tab, "c", "var"))
	if _, ok := outer.Lookup(b.name, nil); ok {
		t.Fatalf("unshared copy leaked into the parent")
	}
	if got, ok := copyScope.Lookup(a.name, nil); !ok || got != a {
		t.Fatalf("copy lost the inherited entry")
	}
	if copyScope.Leave() != outer || outer.Shared() != 0 {
		t.Fatalf("leaving an unshared copy must not touch the parent")
	}
}

func TestErrorScopeFallsBackToOwner(t *testing.T) {
	tab := names.NewTable()
	owner := newSym(tab, "Broken", "class")
	s := NewError(owner)
	got, ok := s.Lookup(tab.FromString("anything"), nil)
	if !ok || got != owner {
		t.Fatalf("error scope should resolve misses to its owner")
	}
	if _, ok := s.Lookup(tab.FromString("anything"), func(x *testSym) bool { return x.kind == "method" }); ok {
		t.Fatalf("fallback must respect the filter")
	}
}

type countingListener struct{ added, removed int }

func (c *countingListener) SymbolAdded(*testSym, View[*testSym])   { c.added++ }
func (c *countingListener) SymbolRemoved(*testSym, View[*testSym]) { c.removed++ }

func TestCompoundScopeMark(t *testing.T) {
	tab := names.NewTable()
	first := New[*testSym](nil)
	second := New[*testSym](nil)
	a := newSym(tab, "m", "method")
	first.Enter(a)

	c := NewCompound[*testSym](nil)
	l := &countingListener{}
	c.AddListener(l)
	c.AddSubScope(first)
	m0 := c.Mark()
	c.AddSubScope(second)
	if c.Mark() == m0 {
		t.Fatalf("AddSubScope must bump the mark")
	}

	b := newSym(tab, "m", "method")
	m1 := c.Mark()
	second.Enter(b)
	if c.Mark() == m1 {
		t.Fatalf("sub-scope change must bump the mark")
	}
	if got, _ := c.Lookup(a.name, nil); got != b {
		t.Fatalf("later sub-scopes are consulted first")
	}
	if got := collect(c.SymbolsByName(a.name, nil)); !slices.Equal(got, []*testSym{b, a}) {
		t.Fatalf("SymbolsByName = %v", got)
	}
	m2 := c.Mark()
	first.Remove(a)
	if c.Mark() == m2 || l.removed != 1 {
		t.Fatalf("removal not observed: mark %d->%d, removed %d", m2, c.Mark(), l.removed)
	}
	if l.added != 3 {
		t.Fatalf("listener saw %d additions, want 3", l.added)
	}
}
