package flags

import (
	"slices"
	"testing"
)

func TestStringsFollowBitOrder(t *testing.T) {
	f := Static | Public | Interface
	got := f.Strings()
	want := []string{"public", "static", "interface"}
	if !slices.Equal(got, want) {
		t.Fatalf("Strings() = %v, want %v", got, want)
	}
	if Flags(0).Strings() != nil {
		t.Fatalf("zero flags should have no labels")
	}
}

func TestParseRoundTrip(t *testing.T) {
	f, unknown := Parse([]string{"public", " ABSTRACT ", "bogus", ""})
	if f != Public|Abstract {
		t.Fatalf("Parse = %v", f)
	}
	if !slices.Equal(unknown, []string{"bogus"}) {
		t.Fatalf("unknown = %v", unknown)
	}
}

func TestModifierView(t *testing.T) {
	f := Final | Public | Static | Synthetic
	mods := f.Modifiers()
	want := []Modifier{ModPublic, ModStatic, ModFinal}
	if !slices.Equal(mods, want) {
		t.Fatalf("Modifiers() = %v, want %v", mods, want)
	}
	if FromModifiers(mods...) != Public|Static|Final {
		t.Fatalf("FromModifiers did not invert Modifiers")
	}
	if got := f.ModifierString(); got != "public static final" {
		t.Fatalf("ModifierString() = %q", got)
	}
}

func TestAccessMask(t *testing.T) {
	if (Protected | Static | Final).Access() != Protected {
		t.Fatalf("Access should keep only visibility bits")
	}
	if !(Public | Static).Has(Public | Static) {
		t.Fatalf("Has should require all bits")
	}
	if (Public).Has(Public | Static) {
		t.Fatalf("Has must fail when a bit is missing")
	}
	if !(Public).Any(Public | Static) {
		t.Fatalf("Any should accept a partial match")
	}
}
