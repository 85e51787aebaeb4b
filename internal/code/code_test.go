package code

import (
	"errors"
	"strings"
	"testing"

	"nominal/internal/flags"
	"nominal/internal/names"
)

type fixture struct {
	tab    *names.Table
	root   *PackageSymbol
	lang   *PackageSymbol
	object *ClassSymbol
	number *ClassSymbol
	intg   *ClassSymbol
}

func newFixture() *fixture {
	tab := names.NewTable()
	f := &fixture{tab: tab}
	f.root = NewPackageSymbol(tab, tab.Empty, nil)
	f.lang = NewPackageSymbol(tab, tab.Lang, f.root)
	f.object = f.class("Object", flags.Public, nil)
	f.number = f.class("Number", flags.Public|flags.Abstract, f.object.Type())
	f.intg = f.class("Integer", flags.Public|flags.Final, f.number.Type())
	return f
}

func (f *fixture) class(name string, fl flags.Flags, super Type) *ClassSymbol {
	c := NewClassSymbol(f.tab, fl, f.tab.FromString(name), f.lang)
	ct := c.ClassType()
	ct.SetTypeArguments(nil)
	if super != nil {
		ct.SetSupertypeField(super)
	} else {
		ct.SetSupertypeField(NoType)
	}
	ct.SetInterfacesField(nil)
	f.lang.RawMembers().Enter(c)
	return c
}

func TestClassNames(t *testing.T) {
	f := newFixture()
	inner := NewClassSymbol(f.tab, flags.Static, f.tab.FromString("Entry"), f.intg)
	if got := inner.QualifiedName().String(); got != "lang.Integer.Entry" {
		t.Fatalf("qualified name = %q", got)
	}
	if got := inner.FlatName().String(); got != "lang.Integer$Entry" {
		t.Fatalf("flat name = %q", got)
	}
	if inner.OutermostClass() != f.intg || inner.Package() != f.lang {
		t.Fatalf("unexpected enclosing symbols")
	}
}

func TestCompletionRunsOnce(t *testing.T) {
	f := newFixture()
	c := NewClassSymbol(f.tab, 0, f.tab.FromString("Lazy"), f.lang)
	calls := 0
	c.SetCompleter(CompleterFunc(func(sym Symbol) error {
		calls++
		sym.AddFlags(flags.Public)
		return nil
	}))
	if c.CompletionState() != Uncompleted {
		t.Fatalf("state = %v", c.CompletionState())
	}
	if c.Flags()&flags.Public == 0 {
		t.Fatalf("completer did not run")
	}
	_ = c.Members()
	if calls != 1 {
		t.Fatalf("completer ran %d times", calls)
	}
}

func TestCompletionCycle(t *testing.T) {
	f := newFixture()
	c := NewClassSymbol(f.tab, 0, f.tab.FromString("Loop"), f.lang)
	var inner error
	c.SetCompleter(CompleterFunc(func(sym Symbol) error {
		inner = sym.Complete()
		return nil
	}))
	if err := c.Complete(); err != nil {
		t.Fatalf("outer completion failed: %v", err)
	}
	if !errors.Is(inner, ErrCyclicCompletion) {
		t.Fatalf("re-entrant completion = %v, want cycle", inner)
	}
}

func TestCompletionFailureDegrades(t *testing.T) {
	f := newFixture()
	c := NewClassSymbol(f.tab, flags.Abstract, f.tab.FromString("Missing"), f.lang)
	boom := errors.New("not on class path")
	c.SetCompleter(CompleterFunc(func(Symbol) error { return boom }))
	err := c.Complete()
	var cf *CompletionFailure
	if !errors.As(err, &cf) || cf.Sym != c || !errors.Is(err, boom) {
		t.Fatalf("unexpected failure %v", err)
	}
	if c.Kind() != KindError || !c.Type().IsErroneous() {
		t.Fatalf("symbol not degraded: kind %v type %v", c.Kind(), c.Type())
	}
	if c.RawFlags()&(flags.Public|flags.Static) != flags.Public|flags.Static {
		t.Fatalf("flags = %v", c.RawFlags())
	}
	if sym, ok := c.Members().Lookup(f.tab.FromString("anything"), nil); !ok || sym != Symbol(c) {
		t.Fatalf("error members should resolve to the class")
	}
	if again := c.Complete(); again != err {
		t.Fatalf("second completion returned %v", again)
	}
}

func TestPackageCompletionFailureDegrades(t *testing.T) {
	f := newFixture()
	p := NewPackageSymbol(f.tab, f.tab.FromString("broken"), f.root)
	p.SetCompleter(CompleterFunc(func(Symbol) error { return errors.New("unreadable") }))
	if err := p.Complete(); err == nil {
		t.Fatal("completion succeeded")
	}
	if p.Kind() != KindPackage || p.Type().Tag() != TagPackage {
		t.Fatalf("package changed shape: kind %v type %v", p.Kind(), p.Type())
	}
	if p.RawFlags()&(flags.Public|flags.Static) != flags.Public|flags.Static {
		t.Fatalf("flags = %v", p.RawFlags())
	}
	if sym, ok := p.Members().Lookup(f.tab.FromString("Anything"), nil); !ok || sym != Symbol(p) {
		t.Fatalf("error members should resolve to the package, got %v", sym)
	}
}

func TestGenericClassType(t *testing.T) {
	f := newFixture()
	box := NewClassSymbol(f.tab, flags.Public, f.tab.FromString("Box"), f.lang)
	tv := NewTypeVariableSymbol(0, f.tab.FromString("T"), box, f.object.Type())
	box.ClassType().SetTypeArguments([]Type{tv.Type()})
	box.ClassType().SetSupertypeField(f.object.Type())

	decl := box.Type()
	if !decl.IsParameterized() || decl.IsRaw() {
		t.Fatalf("declared type should be parameterized, not raw")
	}
	raw := NewClassType(NoType, nil, box)
	if !raw.IsRaw() {
		t.Fatalf("Box without arguments should be raw")
	}
	inst := NewClassType(NoType, []Type{f.intg.Type()}, box)
	if got := inst.String(); got != "lang.Box<lang.Integer>" {
		t.Fatalf("String() = %q", got)
	}
	if !Contains(inst, f.intg.Type()) || Contains(inst, f.number.Type()) {
		t.Fatalf("Contains mismatch")
	}
	same := inst.Map(func(t Type) Type { return t })
	if same != Type(inst) {
		t.Fatalf("identity map must return the receiver")
	}
}

func TestConstTypeKeepsBase(t *testing.T) {
	f := newFixture()
	str := f.class("String", flags.Public|flags.Final, f.object.Type())
	ct := str.ClassType()
	a, b := ct.ConstType("x"), ct.ConstType("x")
	if a == b {
		t.Fatalf("constant types must be distinct values")
	}
	if BaseType(a) != BaseType(b) || BaseType(a) != Type(ct) {
		t.Fatalf("constant types must share their base")
	}
	if a.ConstValue() != "x" {
		t.Fatalf("const value = %v", a.ConstValue())
	}
}

func TestAnnotatedTypeNeverNests(t *testing.T) {
	f := newFixture()
	ann := NewTypeCompound(NewCompound(f.object.Type(), nil), "")
	once := Annotate(f.intg.Type(), []*TypeCompound{ann})
	twice := Annotate(once, []*TypeCompound{ann})
	at, ok := twice.(*AnnotatedType)
	if !ok {
		t.Fatalf("expected annotated type")
	}
	if _, nested := at.Type.(*AnnotatedType); nested {
		t.Fatalf("annotated type wraps another annotated type")
	}
	if len(at.Annotations) != 2 || Unannotated(twice) != f.intg.Type() {
		t.Fatalf("annotations not merged")
	}
}

type identityOps struct{}

func (identityOps) IsSameTypeStrict(a, b Type) bool { return a == b }

func (identityOps) Subst(t Type, from, to []Type) Type {
	var apply func(Type) Type
	apply = func(t Type) Type {
		for i, f := range from {
			if t == f {
				return to[i]
			}
		}
		return t.Map(apply)
	}
	return apply(t)
}

func TestUndetVarLowerBound(t *testing.T) {
	f := newFixture()
	m := NewMethodSymbol(flags.Public, f.tab.FromString("m"), nil, f.object)
	tv := NewTypeVariableSymbol(0, f.tab.FromString("T"), m, f.number.Type()).TypeVar()

	var seen []InferenceBound
	l := UndetVarListenerFunc(func(_ *UndetVar, ib InferenceBound, _ Type, _ bool) { seen = append(seen, ib) })
	uv := NewUndetVar(tv, []Type{f.number.Type()}, identityOps{}, nil)
	uv.Listener = l
	uv.AddBound(BoundLower, f.intg.Type(), identityOps{})

	if lower := uv.Bounds(BoundLower); len(lower) != 1 || lower[0] != f.intg.Type() {
		t.Fatalf("lower bounds = %v", lower)
	}
	if upper := uv.Bounds(BoundUpper); len(upper) != 1 || upper[0] != f.number.Type() {
		t.Fatalf("upper bounds = %v", upper)
	}
	if len(seen) != 1 || seen[0] != BoundLower {
		t.Fatalf("listener saw %v", seen)
	}
	uv.AddBound(BoundLower, f.intg.Type(), identityOps{})
	if len(uv.Bounds(BoundLower)) != 1 || len(seen) != 1 {
		t.Fatalf("duplicate bound was recorded")
	}
	if got := uv.String(); got != "T?" {
		t.Fatalf("String() = %q", got)
	}
}

func TestUndetVarSubstBounds(t *testing.T) {
	f := newFixture()
	m := NewMethodSymbol(flags.Public, f.tab.FromString("m"), nil, f.object)
	box := NewClassSymbol(f.tab, flags.Public, f.tab.FromString("Box"), f.lang)
	a := NewTypeVariableSymbol(0, f.tab.FromString("A"), m, f.object.Type()).TypeVar()
	b := NewTypeVariableSymbol(0, f.tab.FromString("B"), m, f.object.Type()).TypeVar()
	boxOfB := NewClassType(NoType, []Type{b}, box)

	uv := NewUndetVar(a, nil, identityOps{}, nil)
	uv.AddBound(BoundEq, boxOfB, identityOps{})
	uv.AddBound(BoundUpper, f.number.Type(), identityOps{})

	var updates int
	uv.Listener = UndetVarListenerFunc(func(_ *UndetVar, ib InferenceBound, _ Type, update bool) {
		if ib != BoundEq || !update {
			t.Errorf("unexpected notification %v update=%v", ib, update)
		}
		updates++
	})
	uv.SubstBounds([]Type{b}, []Type{f.intg.Type()}, identityOps{})
	eq := uv.Bounds(BoundEq)
	if len(eq) != 1 || eq[0].TypeArguments()[0] != f.intg.Type() {
		t.Fatalf("eq bounds = %v", eq)
	}
	if updates != 1 {
		t.Fatalf("listener fired %d times", updates)
	}
	if up := uv.Bounds(BoundUpper); len(up) != 1 || up[0] != f.number.Type() {
		t.Fatalf("independent bound changed: %v", up)
	}
}

func TestLazyConstValue(t *testing.T) {
	f := newFixture()
	v := NewVarSymbol(flags.Static|flags.Final, f.tab.FromString("K"), NewPrimType(TagInt, nil), f.intg)
	evals := 0
	v.SetLazyConstValue(func() any {
		evals++
		if v.ConstValue() != nil {
			t.Errorf("recursive evaluation should see nil")
		}
		return int32(7)
	})
	if v.ConstValue() != int32(7) || v.ConstValue() != int32(7) || evals != 1 {
		t.Fatalf("lazy constant evaluated %d times", evals)
	}
}

func TestSynthesizedParams(t *testing.T) {
	f := newFixture()
	mt := NewMethodType([]Type{f.intg.Type(), f.number.Type()}, NewPrimType(TagVoid, nil), nil, nil)
	m := NewMethodSymbol(flags.Public, f.tab.FromString("set"), mt, f.intg)
	ps := m.Params(f.tab)
	if len(ps) != 2 || ps[0].Name().String() != "arg0" || ps[1].Name().String() != "arg1" {
		t.Fatalf("params = %v", ps)
	}
	if ps[1].Type() != f.number.Type() || ps[1].Owner() != Symbol(m) {
		t.Fatalf("param type/owner wrong")
	}
	if got := m.String(); got != "set(lang.Integer,lang.Number)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestPartiallyRecordedParams(t *testing.T) {
	f := newFixture()
	it := f.intg.Type()
	mt := NewMethodType([]Type{it, it, it, it}, NewPrimType(TagVoid, nil), nil, nil)
	m := NewMethodSymbol(flags.Public, f.tab.FromString("move"), mt, f.intg)
	m.SetParamNames([]*names.Name{f.tab.FromString("arg1"), f.tab.Empty, f.tab.FromString("arg2$")})
	var got []string
	for _, p := range m.Params(f.tab) {
		got = append(got, p.Name().String())
	}
	if want := "arg1 arg1$ arg2$ arg3"; strings.Join(got, " ") != want {
		t.Fatalf("params = %v, want %s", got, want)
	}
	if c := m.WithType(mt); c.Params(f.tab)[1].Name().String() != "arg1$" {
		t.Fatalf("copy lost the parameters")
	}
}

func TestWithTypeKeepsBaseSymbol(t *testing.T) {
	f := newFixture()
	mt := NewMethodType([]Type{f.number.Type()}, f.number.Type(), nil, nil)
	m := NewMethodSymbol(flags.Public, f.tab.FromString("next"), mt, f.number)
	if m.BaseSymbol() != m {
		t.Fatalf("base of an original method = %v", m.BaseSymbol())
	}
	narrowed := NewMethodType([]Type{f.intg.Type()}, f.intg.Type(), nil, nil)
	c := m.WithType(narrowed)
	again := c.WithType(mt)
	if c.BaseSymbol() != m || again.BaseSymbol() != m {
		t.Fatalf("copies do not lead back to the declared method")
	}
	var sym Symbol = c
	if sym.Kind() != KindMethod || sym.Owner() != Symbol(f.number) || c.Type() != narrowed {
		t.Fatalf("copy = %v %v %v", sym.Kind(), sym.Owner(), c.Type())
	}
}

func TestCompoundString(t *testing.T) {
	f := newFixture()
	anno := f.class("Retention", flags.Public|flags.Interface|flags.Annotation, f.object.Type())
	value := NewMethodSymbol(flags.Public|flags.Abstract, f.tab.Value, nil, anno)
	other := NewMethodSymbol(flags.Public|flags.Abstract, f.tab.FromString("since"), nil, anno)
	str := f.class("String", flags.Public|flags.Final, f.object.Type()).Type()

	single := NewCompound(anno.Type(), []Pair{{value, NewConstant(str, "a")}})
	if got := single.String(); got != `@lang.Retention("a")` {
		t.Fatalf("single = %q", got)
	}
	multi := NewCompound(anno.Type(), []Pair{{value, NewConstant(NewPrimType(TagLong, nil), int64(3))}, {other, NewConstant(NewPrimType(TagChar, nil), 'x')}})
	if got := multi.String(); got != `@lang.Retention(value=3L, since='x')` {
		t.Fatalf("multi = %q", got)
	}
	if multi.Member(other.Name()) == nil || multi.Member(f.tab.FromString("nope")) != nil {
		t.Fatalf("Member lookup mismatch")
	}
}

func TestRepeatedAnnotationsResolveOnFlush(t *testing.T) {
	f := newFixture()
	tag := f.class("Tag", flags.Public|flags.Interface|flags.Annotation, f.object.Type())
	tags := f.class("Tags", flags.Public|flags.Interface|flags.Annotation, f.object.Type())
	once := f.class("Once", flags.Public|flags.Interface|flags.Annotation, f.object.Type())
	target := NewMethodSymbol(flags.Public, f.tab.FromString("run"), nil, f.intg)

	var processed int
	ctx := NewRepeatedContext(func(repeated []*Compound, on Symbol) *Compound {
		processed++
		if on != Symbol(target) {
			t.Errorf("container requested for %v", on)
		}
		vals := make([]Attribute, len(repeated))
		for i, r := range repeated {
			vals[i] = r
		}
		c := NewCompound(tags.Type(), []Pair{{NewMethodSymbol(0, f.tab.Value, nil, tags), NewArray(nil, vals)}})
		c.SetSynthesized(true)
		return c
	})
	ctx.Add(NewCompound(tag.Type(), nil))
	ctx.Add(NewCompound(once.Type(), nil))
	ctx.Add(NewCompound(tag.Type(), nil))

	md := target.Metadata()
	md.Start()
	md.SetDeclarationAttributesWithCompletion(ctx)
	attrs := md.DeclarationAttributes()
	if len(attrs) != 2 || !attrs[0].IsPlaceholder() || attrs[1].Type() != once.Type() {
		t.Fatalf("before flush: %v", attrs)
	}
	ctx.Flush()
	attrs = md.DeclarationAttributes()
	if processed != 1 || len(attrs) != 2 {
		t.Fatalf("after flush: %v (processed %d)", attrs, processed)
	}
	if attrs[0].Type() != tags.Type() || !attrs[0].IsSynthesized() {
		t.Fatalf("placeholder not replaced by container: %v", attrs[0])
	}
	if target.Attribute(once) == nil || target.Attribute(tag) != nil {
		t.Fatalf("Attribute lookup mismatch")
	}
}

func TestWildcardString(t *testing.T) {
	f := newFixture()
	ext := NewWildcardType(f.number.Type(), BoundExtends, nil)
	sup := NewWildcardType(f.intg.Type(), BoundSuper, nil)
	unb := NewWildcardType(f.object.Type(), BoundUnbound, nil)
	cases := []struct {
		w          *WildcardType
		want       string
		ext, super bool
	}{
		{ext, "? extends lang.Number", true, false},
		{sup, "? super lang.Integer", false, true},
		{unb, "?", true, true},
	}
	for _, c := range cases {
		if c.w.String() != c.want || c.w.IsExtendsBound() != c.ext || c.w.IsSuperBound() != c.super {
			t.Errorf("%s: extends=%v super=%v", c.w, c.w.IsExtendsBound(), c.w.IsSuperBound())
		}
	}
}
