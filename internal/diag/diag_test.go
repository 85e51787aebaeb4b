package diag

import "testing"

func TestFragmentString(t *testing.T) {
	f := Frag(FnNoAbstracts, "demo.Marker")
	if got := f.String(); got != "no abstract method found in interface: demo.Marker" {
		t.Fatalf("String() = %q", got)
	}
	if got := Frag(TypNoGLB).String(); got != "no greatest lower bound: more than one class" {
		t.Fatalf("String() = %q", got)
	}
	var fe *FragmentError
	err := Err(CmpClassNotFound, "lang.Missing")
	if e, ok := err.(*FragmentError); !ok {
		t.Fatalf("Err returned %T", err)
	} else {
		fe = e
	}
	if fe.Fragment.Code != CmpClassNotFound {
		t.Fatalf("code = %v", fe.Fragment.Code)
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		CmpCyclic:            "CMP1002",
		TypNoGLB:             "TYP2001",
		FnNotAFunctionalIntf: "FNI3001",
		AnnNoContainer:       "ANN4001",
		ClpBadSignature:      "CLP5002",
		CfgInvalid:           "CFG6001",
		OpAmbiguous:          "OPR7002",
		UnknownCode:          "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", c, got, want)
		}
	}
}

func TestDedupReporterAndBag(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	ReportFragment(r, "lang.Missing", Frag(CmpClassNotFound, "lang.Missing"))
	ReportFragment(r, "lang.Missing", Frag(CmpClassNotFound, "lang.Missing"))
	ReportWarning(r, AnnDuplicate, "demo.A", "duplicate").WithNote("demo.B", "first here").Emit()
	if bag.Len() != 2 {
		t.Fatalf("bag has %d items, want 2", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Subject != "demo.A" {
		t.Fatalf("sort by subject failed: %+v", bag.Items())
	}
	if !bag.HasErrors() {
		t.Fatalf("expected an error diagnostic")
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("note lost")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(TypNoLUB, "x", "m")) {
		t.Fatalf("first Add failed")
	}
	if bag.Add(NewError(TypNoLUB, "y", "m")) {
		t.Fatalf("Add beyond the limit succeeded")
	}
	other := NewBag(2)
	other.Add(NewError(TypNoGLB, "z", "m"))
	bag.Merge(other)
	if bag.Len() != 2 || bag.Cap() != 2 {
		t.Fatalf("merge: len %d cap %d", bag.Len(), bag.Cap())
	}
}

func TestSeverityText(t *testing.T) {
	for _, sev := range []Severity{SevNote, SevWarning, SevError} {
		text, err := sev.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", sev, err)
		}
		var back Severity
		if err := back.UnmarshalText(text); err != nil || back != sev {
			t.Fatalf("UnmarshalText(%q) = %v, %v", text, back, err)
		}
	}
	if _, err := Severity(9).MarshalText(); err == nil {
		t.Errorf("out of range severity marshaled")
	}
	var s Severity
	if err := s.UnmarshalText([]byte("warning")); err == nil {
		t.Errorf("lower-case label accepted")
	}
	if !(SevError > SevWarning && SevWarning > SevNote) {
		t.Errorf("severities are not ordered")
	}
}
