package symtab

import (
	"testing"

	"nominal/internal/code"
	"nominal/internal/flags"
	"nominal/internal/names"
)

type countingFinder struct{ calls map[string]int }

func (f *countingFinder) Complete(sym code.Symbol) error {
	f.calls[sym.FlatName().String()]++
	if c, ok := sym.(*code.ClassSymbol); ok {
		c.ClassType().SetTypeArguments(nil)
		c.AddFlags(flags.Public)
	}
	return nil
}

func TestWellKnownClassesAreLazy(t *testing.T) {
	f := &countingFinder{calls: map[string]int{}}
	s := New(names.NewTable(), f)
	if len(f.calls) != 0 {
		t.Fatalf("construction completed %v", f.calls)
	}
	obj := s.ObjectType.TSym()
	if obj.QualifiedName().String() != "lang.Object" || obj.Package().QualifiedName().String() != "lang" {
		t.Fatalf("object symbol = %v in %v", obj, obj.Package())
	}
	_ = obj.Flags()
	if f.calls["lang.Object"] != 1 {
		t.Fatalf("object completed %d times", f.calls["lang.Object"])
	}
	if again := s.EnterClass(s.Names.FromString("lang.Object")); again != obj {
		t.Fatalf("EnterClass is not idempotent")
	}
}

func TestEnterNestedClass(t *testing.T) {
	s := New(names.NewTable(), nil)
	inner := s.EnterClass(s.Names.FromString("util.Map$Entry"))
	outer, ok := s.LookupClass(s.Names.FromString("util.Map"))
	if !ok || inner.Owner() != code.Symbol(outer) {
		t.Fatalf("outer class not entered as owner")
	}
	if inner.QualifiedName().String() != "util.Map.Entry" || inner.FlatName().String() != "util.Map$Entry" {
		t.Fatalf("names = %s / %s", inner.QualifiedName(), inner.FlatName())
	}
	if sym, ok := outer.RawMembers().Lookup(s.Names.FromString("Entry"), nil); !ok || sym != code.Symbol(inner) {
		t.Fatalf("inner class not a member of outer")
	}
	pkg, ok := s.LookupPackage(s.Names.FromString("util"))
	if !ok || !pkg.RawMembers().Includes(outer) {
		t.Fatalf("outer class not a member of its package")
	}
}

func TestPrimitives(t *testing.T) {
	s := New(names.NewTable(), nil)
	for _, p := range s.PrimTypes() {
		got, ok := s.LookupPrim(p.String())
		if !ok || got != p {
			t.Errorf("LookupPrim(%s) = %v", p, got)
		}
		if p.TSym().Type() != code.Type(p) {
			t.Errorf("%s symbol type mismatch", p)
		}
	}
	if n, ok := s.BoxedName(code.TagInt); !ok || n.String() != "lang.Integer" {
		t.Fatalf("boxed int = %v", n)
	}
	if _, ok := s.LookupPrim("String"); ok {
		t.Fatalf("String is not primitive")
	}
}

func TestArrayClass(t *testing.T) {
	s := New(names.NewTable(), nil)
	length, ok := s.ArrayClass.RawMembers().Lookup(s.Names.Length, nil)
	if !ok || length.Type() != code.Type(s.IntType) {
		t.Fatalf("array length = %v", length)
	}
	ifaces, _ := s.ArrayClassType.InterfacesField()
	if len(ifaces) != 2 || ifaces[0] != s.CloneableType || ifaces[1] != s.SerializableType {
		t.Fatalf("array interfaces = %v", ifaces)
	}
	if s.ArrayCloneMethod.ReturnType() != s.ObjectType {
		t.Fatalf("clone returns %v", s.ArrayCloneMethod.ReturnType())
	}
}

func TestErrorSymbol(t *testing.T) {
	s := New(names.NewTable(), nil)
	if s.ErrSymbol.Kind() != code.KindError || !s.ErrType.IsErroneous() {
		t.Fatalf("error symbol not erroneous")
	}
	if s.ErrSymbol.RawFlags()&flags.Public == 0 {
		t.Fatalf("error symbol must be public")
	}
}

func TestUnnamedPackage(t *testing.T) {
	s := New(names.NewTable(), nil)
	root, unnamed := s.RootPackage, s.UnnamedPackage
	if root == unnamed {
		t.Fatal("unnamed package is the root package")
	}
	if root.IsUnnamed() || !unnamed.IsUnnamed() {
		t.Fatalf("IsUnnamed: root=%v unnamed=%v", root.IsUnnamed(), unnamed.IsUnnamed())
	}
	if unnamed.Owner() != code.Symbol(root) {
		t.Fatalf("unnamed package owner = %v", unnamed.Owner())
	}
	top := s.EnterClass(s.Names.FromString("Main"))
	if top.Owner() != code.Symbol(unnamed) || top.QualifiedName().String() != "Main" {
		t.Fatalf("Main entered in %v as %s", top.Owner(), top.QualifiedName())
	}
	if got, ok := unnamed.RawMembers().Lookup(top.Name(), nil); !ok || got != code.Symbol(top) {
		t.Fatalf("unnamed package members lookup = %v", got)
	}
	if p, ok := s.LookupPackage(s.Names.Empty); !ok || p != root {
		t.Fatalf("empty package name resolves to %v", p)
	}
}

func TestOperatorTable(t *testing.T) {
	s := New(names.NewTable(), nil)
	plus := s.Operators.Lookup("+")
	var concat, errs, arith int
	for _, op := range plus {
		switch op.Opcode {
		case code.OpStringAdd:
			concat++
		case code.OpError:
			errs++
		case code.OpAdd:
			arith++
		}
	}
	if concat != 15 || errs != 13 || arith != 4 {
		t.Fatalf("+ overloads: concat=%d error=%d arith=%d", concat, errs, arith)
	}
	shl := s.Operators.Lookup("<<")
	if len(shl) != 4 {
		t.Fatalf("<< overloads = %d", len(shl))
	}
	mixed := shl[1].Type()
	if mixed.ParameterTypes()[0] != code.Type(s.IntType) || mixed.ReturnType() != code.Type(s.IntType) {
		t.Fatalf("int << long should yield int, got %v", mixed)
	}
	n, _ := s.Names.Lookup("&&")
	if sym, ok := s.PredefClass.RawMembers().Lookup(n, nil); !ok || sym.Kind() != code.KindOperator {
		t.Fatalf("operators must be members of the predefined class")
	}
	if s.Operators.Lookup("@@") != nil {
		t.Fatalf("unknown operator found")
	}
}
