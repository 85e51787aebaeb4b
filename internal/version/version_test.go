package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestStringDefaultsToDev(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "  "
	if got := String(); got != "dev" {
		t.Fatalf("String() = %q, want dev", got)
	}
	Version = " 1.2.3 "
	if got := String(); got != "1.2.3" {
		t.Fatalf("String() = %q, want 1.2.3", got)
	}
}

func TestColoredKeepsText(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = orig, origNoColor })
	color.NoColor = true

	tests := []string{"0.1.0-dev", "1.2.3-rc.1+build.123", "2.0", "dev"}
	for _, v := range tests {
		t.Run(v, func(t *testing.T) {
			Version = v
			if got := Colored(); got != v {
				t.Fatalf("Colored() = %q, want %q", got, v)
			}
		})
	}
}
