package classpath_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nominal/internal/classpath"
	"nominal/internal/code"
	"nominal/internal/config"
	"nominal/internal/diag"
	"nominal/internal/flags"
	"nominal/internal/testkit"
)

const shapes = `
[[class]]
name = "geo.Shape"
flags = ["public", "abstract"]
typeparams = ["T extends lang.Number & lang.Comparable<T>"]

  [[class.method]]
  name = "area"
  flags = ["public", "abstract"]
  returns = "T"

  [[class.method]]
  name = "scale"
  flags = ["public"]
  typeparams = ["X extends lang.Exception"]
  params = ["double"]
  returns = "geo.Shape<T>"
  throws = ["X"]

[[class]]
name = "geo.Outer"
flags = ["public"]
typeparams = ["A"]

[[class]]
name = "geo.Outer$Inner"
flags = ["public"]
typeparams = ["B"]

  [[class.field]]
  name = "pair"
  type = "util.Map<A, B>"

[[class]]
name = "geo.Outer$Nested"
flags = ["public", "static"]
`

func TestParseType(t *testing.T) {
	s := testkit.Session(t, shapes)
	tests := []struct {
		text string
		want string
	}{
		{"int", "int"},
		{"int[][]", "int[][]"},
		{"lang.String", "lang.String"},
		{"util.List<? extends lang.Number>", "util.List<? extends lang.Number>"},
		{"util.Map<lang.String, ?>", "util.Map<lang.String,?>"},
		{"util.Map$Entry<lang.String, lang.Integer>[]", "util.Map.Entry<lang.String,lang.Integer>[]"},
		{"util.Comparator<? super lang.Integer>", "util.Comparator<? super lang.Integer>"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := testkit.Type(t, s, tt.text)
			if got.String() != tt.want {
				t.Fatalf("ParseType(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	s := testkit.Session(t)
	for _, text := range []string{"", "util.List<", "int[", "util.List<int>>", "? extends lang.Object", "void[]", "util.List<? super int>", "a..b", "lang.String#"} {
		t.Run(text, func(t *testing.T) {
			if _, err := s.ParseType(text); err == nil {
				t.Fatalf("ParseType(%q) succeeded", text)
			}
		})
	}
	_, err := s.ParseType("util.List<")
	var se *classpath.SignatureError
	if !errors.As(err, &se) || se.Pos != len("util.List<") {
		t.Fatalf("error = %v, want a SignatureError at the end", err)
	}
}

func TestCompleteClass(t *testing.T) {
	s := testkit.Session(t, shapes)
	shape := testkit.Class(t, s, "geo.Shape")
	testkit.NoErrors(t, s)

	if shape.Flags()&(flags.Public|flags.Abstract) != flags.Public|flags.Abstract {
		t.Fatalf("flags = %s", shape.Flags())
	}
	if shape.Origin != "inline" {
		t.Fatalf("origin = %q", shape.Origin)
	}
	tparams := shape.TypeParameters()
	if len(tparams) != 1 || tparams[0].String() != "T" {
		t.Fatalf("type parameters = %v", tparams)
	}
	bounds := s.Types.GetBounds(tparams[0])
	if got := code.TypesString(bounds); got != "lang.Number,lang.Comparable<T>" {
		t.Fatalf("bounds of T = %s", got)
	}
	if sup := shape.Superclass(); sup != s.Syms.ObjectType {
		t.Fatalf("superclass = %v", sup)
	}

	area := testkit.Method(t, s, shape, "area")
	if area.ReturnType() != tparams[0] {
		t.Fatalf("area returns %v, want the class variable", area.ReturnType())
	}
	scale := testkit.Method(t, s, shape, "scale")
	if scale.Type().Tag() != code.TagForAll {
		t.Fatalf("scale type = %v, want generic", scale.Type())
	}
	x := scale.Type().TypeArguments()[0]
	if x.TSym().RawFlags()&flags.Throws == 0 {
		t.Fatalf("thrown type variable %v not marked", x)
	}
	if got := scale.Type().ThrownTypes(); len(got) != 1 || got[0] != x {
		t.Fatalf("thrown = %v", got)
	}
}

func TestMemberClasses(t *testing.T) {
	s := testkit.Session(t, shapes)
	outer := testkit.Class(t, s, "geo.Outer")
	inner := testkit.Class(t, s, "geo.Outer$Inner")
	nested := testkit.Class(t, s, "geo.Outer$Nested")

	if inner.Owner() != code.Symbol(outer) {
		t.Fatalf("inner owner = %v", inner.Owner())
	}
	if inner.Type().EnclosingType() != outer.Type() {
		t.Fatalf("inner enclosing type = %v", inner.Type().EnclosingType())
	}
	if nested.Type().EnclosingType().Tag() != code.TagNone {
		t.Fatalf("static member class has enclosing type %v", nested.Type().EnclosingType())
	}
	if got := code.TypesString(inner.Type().AllParams()); got != "A,B" {
		t.Fatalf("all params = %s", got)
	}
	n, _ := s.Names.Lookup("pair")
	field, ok := inner.Members().Lookup(n, nil)
	if !ok || field.Type().String() != "util.Map<A,B>" {
		t.Fatalf("field pair = %v", field)
	}
	n, _ = s.Names.Lookup("Inner")
	if sym, ok := outer.Members().Lookup(n, nil); !ok || sym != code.Symbol(inner) {
		t.Fatalf("Inner is not a member of Outer")
	}
}

func TestPackageCompletion(t *testing.T) {
	s := testkit.Session(t, shapes)
	n := s.Names.FromString("geo")
	pkg := s.Syms.EnterPackage(n)
	_ = pkg.Members()
	if !pkg.Exists {
		t.Fatalf("package geo not found")
	}
	var got []string
	for sym := range pkg.Members().Symbols(nil) {
		got = append(got, sym.Name().String())
	}
	if strings.Join(got, ",") != "Outer,Shape" && strings.Join(got, ",") != "Shape,Outer" {
		t.Fatalf("package members = %v", got)
	}
}

func TestRecordedParamNames(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "geo.Grid"
flags = ["public"]

  [[class.method]]
  name = "cell"
  flags = ["public"]
  params = ["int", "int", "int"]
  paramnames = ["arg1", ""]
  returns = "int"

  [[class.method]]
  name = "fill"
  flags = ["public"]
  params = ["int", "lang.String"]
  paramnames = ["count", "label"]
`)
	grid := testkit.Class(t, s, "geo.Grid")
	testkit.NoErrors(t, s)
	tests := []struct {
		method string
		want   []string
	}{
		{"cell", []string{"arg1", "arg1$", "arg2"}},
		{"fill", []string{"count", "label"}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			ps := testkit.Method(t, s, grid, tt.method).Params(s.Names)
			if len(ps) != len(tt.want) {
				t.Fatalf("params = %v, want %v", ps, tt.want)
			}
			for i, p := range ps {
				if p.Name().String() != tt.want[i] {
					t.Errorf("param %d = %s, want %s", i, p.Name(), tt.want[i])
				}
			}
		})
	}
}

func TestTooManyParamNamesFailsCompletion(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "bad.Names"

  [[class.method]]
  name = "run"
  params = ["int"]
  paramnames = ["a", "b"]
`)
	c := s.Syms.EnterClass(s.Names.FromString("bad.Names"))
	if err := c.Complete(); err == nil {
		t.Fatal("Complete() succeeded with more names than parameters")
	}
}

func TestMissingClassDegrades(t *testing.T) {
	s := testkit.Session(t)
	typ := testkit.Type(t, s, "nowhere.Missing")
	c := typ.TSym()
	err := c.Complete()
	var cf *code.CompletionFailure
	if !errors.As(err, &cf) || cf.Fragment.Code != diag.CmpClassNotFound {
		t.Fatalf("Complete() = %v, want class not found", err)
	}
	if c.Kind() != code.KindError || !c.Type().IsErroneous() {
		t.Fatalf("missing class not degraded: %v %v", c.Kind(), c.Type())
	}
	if again := c.Complete(); again != err {
		t.Fatalf("second completion = %v, want the remembered failure", again)
	}
}

func TestBadSignatureFailsCompletion(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "bad.Broken"
extends = "util.List<"
`)
	c := s.Syms.EnterClass(s.Names.FromString("bad.Broken"))
	err := c.Complete()
	var cf *code.CompletionFailure
	if !errors.As(err, &cf) || cf.Fragment.Code != diag.CmpBadSignature {
		t.Fatalf("Complete() = %v, want bad signature", err)
	}
	var se *classpath.SignatureError
	if !errors.As(err, &se) {
		t.Fatalf("failure does not wrap the signature error: %v", err)
	}
}

func TestDuplicateClassKeepsFirst(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "dup.A"
flags = ["public"]
`, `
[[class]]
name = "dup.A"
flags = ["final"]
`)
	a := testkit.Class(t, s, "dup.A")
	if a.Flags()&flags.Final != 0 {
		t.Fatalf("second declaration won: %s", a.Flags())
	}
	items := s.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ClpDuplicateClass || len(items[0].Notes) != 1 {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestUnknownFlagReported(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "f.A"
flags = ["public", "sealed"]
`)
	_ = testkit.Class(t, s, "f.A")
	items := s.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ClpUnknownFlag {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestYAMLManifest(t *testing.T) {
	s := testkit.SessionYAML(t, `
class:
  - name: y.Box
    flags: [public]
    typeparams: [T]
    method:
      - name: get
        flags: [public]
        returns: T
`)
	box := testkit.Class(t, s, "y.Box")
	get := testkit.Method(t, s, box, "get")
	if get.ReturnType() != box.TypeParameters()[0] {
		t.Fatalf("get returns %v", get.ReturnType())
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	if _, err := classpath.Decode(classpath.FormatTOML, []byte("[[class]]\nname = \"a.B\"\nextend = \"a.C\"\n")); err == nil {
		t.Fatalf("TOML manifest with a misspelled key was accepted")
	}
	if _, err := classpath.Decode(classpath.FormatYAML, []byte("class:\n  - name: a.B\n    extend: a.C\n")); err == nil {
		t.Fatalf("YAML manifest with a misspelled key was accepted")
	}
	if _, err := classpath.Decode(classpath.FormatTOML, []byte("schema = 7\n")); err == nil {
		t.Fatalf("future schema was accepted")
	}
}

func TestPackKeepsDescriptors(t *testing.T) {
	core, err := classpath.Core()
	if err != nil {
		t.Fatalf("core: %v", err)
	}
	var buf bytes.Buffer
	if err := classpath.WritePack(&buf, core); err != nil {
		t.Fatalf("WritePack: %v", err)
	}
	m, err := classpath.ReadPack(&buf)
	if err != nil {
		t.Fatalf("ReadPack: %v", err)
	}
	if len(m.Classes) != len(core.Classes) {
		t.Fatalf("pack has %d classes, want %d", len(m.Classes), len(core.Classes))
	}

	// A session built from the pack alone answers like one built from
	// the embedded manifest.
	opts := config.Default()
	opts.NoCore = true
	s := testkit.SessionWith(t, opts, classpath.FormatTOML)
	s.AddManifest(m, "core.ntp")
	integer := testkit.Type(t, s, "lang.Integer")
	if !s.Types.IsSubtype(integer, testkit.Type(t, s, "lang.Comparable<lang.Integer>")) {
		t.Fatalf("Integer is not Comparable<Integer> after a pack round trip")
	}
	integerClass := testkit.Class(t, s, "lang.Integer")
	n, _ := s.Names.Lookup("MIN_VALUE")
	v, ok := integerClass.Members().Lookup(n, nil)
	if !ok || v.(*code.VarSymbol).ConstValue() != int32(-2147483648) {
		t.Fatalf("MIN_VALUE constant lost in the pack")
	}
}

func TestReadAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.toml")
	second := filepath.Join(dir, "b.yaml")
	third := filepath.Join(dir, "c"+classpath.PackExt)
	if err := os.WriteFile(first, []byte("[[class]]\nname = \"o.A\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("class:\n  - name: o.B\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := classpath.WritePackFile(third, &classpath.Manifest{Classes: []classpath.ClassDesc{{Name: "o.C"}}}); err != nil {
		t.Fatal(err)
	}
	entries, err := classpath.ReadAll(t.Context(), []string{first, second, third}, 2)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	for i, want := range []string{"o.A", "o.B", "o.C"} {
		if got := entries[i].Manifest.Classes[0].Name; got != want {
			t.Fatalf("entry %d = %s, want %s", i, got, want)
		}
	}
	if _, err := classpath.ReadAll(t.Context(), []string{first, filepath.Join(dir, "x.txt")}, 0); !errors.Is(err, classpath.ErrUnknownFormat) {
		t.Fatalf("ReadAll(unknown) = %v", err)
	}
}

func TestAnnotations(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "an.Tag"
flags = ["public", "annotation"]
annotation = [
  { type = "lang.annotation.Retention", values = { value = "RUNTIME" } },
  { type = "lang.annotation.Repeatable", values = { value = "an.Tags" } },
]

  [[class.method]]
  name = "value"
  returns = "lang.String"

  [[class.method]]
  name = "weight"
  returns = "int"
  default = 1

[[class]]
name = "an.Tags"
flags = ["public", "annotation"]
annotation = [{ type = "lang.annotation.Retention", values = { value = "RUNTIME" } }]

  [[class.method]]
  name = "value"
  returns = "an.Tag[]"

[[class]]
name = "an.Tagged"
flags = ["public"]
annotation = [
  { type = "an.Tag", values = { value = "a" } },
  { type = "an.Tag", values = { value = "b", weight = 2 } },
  { type = "lang.Deprecated" },
]
`)
	tagged := testkit.Class(t, s, "an.Tagged")
	testkit.NoErrors(t, s)
	tags := testkit.Class(t, s, "an.Tags")
	tag := testkit.Class(t, s, "an.Tag")

	if got := s.Types.Retention(tag); got != code.RetentionRuntime {
		t.Fatalf("retention of Tag = %v", got)
	}
	if got := s.Types.Retention(s.Syms.OverrideType.TSym()); got != code.RetentionSource {
		t.Fatalf("retention of Override = %v", got)
	}
	if got := s.Types.Retention(testkit.Class(t, s, "an.Tagged")); got != code.RetentionClass {
		t.Fatalf("retention without meta-annotation = %v", got)
	}
	weight := testkit.Method(t, s, tag, "weight")
	if c, ok := weight.DefaultValue.(*code.Constant); !ok || c.Value != int32(1) {
		t.Fatalf("weight default = %v", weight.DefaultValue)
	}

	container := tagged.Attribute(tags)
	if container == nil || !container.IsSynthesized() {
		t.Fatalf("repeated Tag not wrapped in a synthesized Tags: %v", tagged.Metadata().DeclarationAttributes())
	}
	arr, ok := container.Member(s.Names.Value).(*code.Array)
	if !ok || len(arr.Values) != 2 {
		t.Fatalf("container value = %v", container.Member(s.Names.Value))
	}
	if tagged.Attribute(tag) != nil {
		t.Fatalf("repeated annotations kept next to their container")
	}
	if tagged.Attribute(s.Syms.DeprecatedType.TSym()) == nil {
		t.Fatalf("Deprecated lost")
	}
}

func TestRepeatedWithoutContainerReported(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "an.Once"
flags = ["public", "annotation"]

[[class]]
name = "an.Twice"
annotation = [{ type = "an.Once" }, { type = "an.Once" }]
`)
	twice := testkit.Class(t, s, "an.Twice")
	if twice.Attribute(testkit.Class(t, s, "an.Once")) != nil {
		t.Fatalf("repeated non-repeatable annotation kept")
	}
	items := s.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.AnnNoContainer {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestBadAnnotationValueReported(t *testing.T) {
	s := testkit.Session(t, `
[[class]]
name = "an.Bad"
annotation = [{ type = "lang.annotation.Retention", values = { value = "FOREVER" } }]
`)
	bad := testkit.Class(t, s, "an.Bad")
	if bad.Attribute(s.Syms.RetentionType.TSym()) != nil {
		t.Fatalf("invalid annotation stored")
	}
	items := s.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ClpBadValue {
		t.Fatalf("diagnostics = %v", items)
	}
}
