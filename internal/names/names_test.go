package names

import "testing"

func TestTableInternsByIdentity(t *testing.T) {
	tab := NewTable()
	a := tab.FromString("lang.Object")
	b := tab.FromString("lang.Object")
	if a != b {
		t.Fatalf("expected same pointer for equal text")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("hash mismatch")
	}
	if tab.ByIndex(a.Index()) != a {
		t.Fatalf("ByIndex(%d) did not return the name", a.Index())
	}
	if tab.Empty.Index() != 0 || !tab.Empty.IsEmpty() {
		t.Fatalf("empty name must be first and empty")
	}
}

func TestTableNormalizesText(t *testing.T) {
	tab := NewTable()
	composed := tab.FromString("caf\u00e9")
	decomposed := tab.FromString("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("canonically equivalent names should intern to one entry")
	}
	if n, ok := tab.Lookup("cafe\u0301"); !ok || n != composed {
		t.Fatalf("lookup of decomposed text failed")
	}
}

func TestQualifiedParts(t *testing.T) {
	tab := NewTable()
	full := tab.FromString("util.List")
	if got := tab.ShortName(full).String(); got != "List" {
		t.Fatalf("ShortName = %q", got)
	}
	if got := tab.PackagePart(full).String(); got != "util" {
		t.Fatalf("PackagePart = %q", got)
	}
	if got := tab.PackagePart(tab.FromString("Top")); got != tab.Empty {
		t.Fatalf("PackagePart of a simple name should be empty, got %q", got)
	}
	if got := tab.Qualified(tab.Empty, tab.FromString("X")).String(); got != "X" {
		t.Fatalf("Qualified with empty prefix = %q", got)
	}
	if got := tab.Qualified(tab.FromString("a.b"), tab.FromString("C")).String(); got != "a.b.C" {
		t.Fatalf("Qualified = %q", got)
	}
}

func TestSortedOrdersByText(t *testing.T) {
	tab := NewTable()
	in := []*Name{tab.FromString("b"), tab.FromString("a"), tab.FromString("c")}
	out := Sorted(in)
	if out[0].String() != "a" || out[2].String() != "c" {
		t.Fatalf("unexpected order: %v", out)
	}
	if in[0].String() != "b" {
		t.Fatalf("Sorted must not mutate its input")
	}
}
