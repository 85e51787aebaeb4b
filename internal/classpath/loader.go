// Package classpath reads class descriptors and completes the classes and
// packages of a symbol table from them.
//
// Descriptors come from TOML or YAML manifests and from msgpack class
// packs. A Loader holds every descriptor of a session and fills in a class
// the first time the engine looks inside it: flags, type parameters,
// supertypes, members and annotations.
package classpath

import (
	"errors"
	"fmt"
	"strings"

	"nominal/internal/code"
	"nominal/internal/diag"
	"nominal/internal/flags"
	"nominal/internal/names"
	"nominal/internal/symtab"
	"nominal/internal/trace"
	"nominal/internal/types"
)

// ErrUnbound is returned when a loader completes a symbol before Bind.
var ErrUnbound = errors.New("classpath: loader is not bound to a symbol table")

type entry struct {
	desc   *ClassDesc
	origin string
}

// Loader completes classes and packages from class descriptors. It is the
// Finder of one session's symbol table and is not safe for concurrent use.
type Loader struct {
	names    *names.Table
	reporter diag.Reporter
	tracer   trace.Tracer

	syms  *symtab.Symtab
	types *types.Types

	classes     map[*names.Name]*entry
	packages    map[*names.Name][]*names.Name
	subpackages map[*names.Name][]*names.Name
	nested      map[*names.Name][]*names.Name

	depth   int
	pending []*code.RepeatedContext
}

// NewLoader creates an empty loader. reporter receives problems found
// while completing; tracer may be nil.
func NewLoader(tab *names.Table, reporter diag.Reporter, tracer trace.Tracer) *Loader {
	if tracer == nil {
		tracer = trace.Nop
	}
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Loader{
		names:       tab,
		reporter:    reporter,
		tracer:      tracer,
		classes:     make(map[*names.Name]*entry),
		packages:    make(map[*names.Name][]*names.Name),
		subpackages: make(map[*names.Name][]*names.Name),
		nested:      make(map[*names.Name][]*names.Name),
	}
}

// Bind attaches the symbol table the loader completes and the engine it
// uses for bounds and repeated annotations. The table must have been
// created with the loader as its finder.
func (l *Loader) Bind(syms *symtab.Symtab, t *types.Types) {
	l.syms = syms
	l.types = t
}

// Add registers the classes of m. A class already registered keeps its
// first descriptor; later duplicates are reported and skipped.
func (l *Loader) Add(m *Manifest, origin string) {
	for i := range m.Classes {
		d := &m.Classes[i]
		flat := l.names.FromString(strings.TrimSpace(d.Name))
		if flat.IsEmpty() {
			diag.ReportFragment(l.reporter, origin, diag.Frag(diag.ClpBadSignature, "class without a name"))
			continue
		}
		if prev, ok := l.classes[flat]; ok {
			diag.ReportWarning(l.reporter, diag.ClpDuplicateClass, flat.String(),
				diag.Frag(diag.ClpDuplicateClass, flat, origin).String()).
				WithNote(prev.origin, "first declared here").
				Emit()
			continue
		}
		l.classes[flat] = &entry{desc: d, origin: origin}
		pkg, outer, nested := splitFlat(l.names, flat)
		if nested {
			l.nested[outer] = append(l.nested[outer], flat)
			continue
		}
		if len(l.packages[pkg]) == 0 {
			l.addPackage(pkg)
		}
		l.packages[pkg] = append(l.packages[pkg], flat)
	}
}

func (l *Loader) addPackage(pkg *names.Name) {
	for !pkg.IsEmpty() {
		parent := l.names.PackagePart(pkg)
		for _, sub := range l.subpackages[parent] {
			if sub == pkg {
				return
			}
		}
		l.subpackages[parent] = append(l.subpackages[parent], pkg)
		pkg = parent
	}
}

// Has reports whether a descriptor for the flat name was added.
func (l *Loader) Has(flat *names.Name) bool {
	_, ok := l.classes[flat]
	return ok
}

// Len counts the registered classes.
func (l *Loader) Len() int { return len(l.classes) }

// Complete fills in sym from its descriptor. Repeated annotations found
// during a completion are resolved into their containers once the
// outermost completion has finished.
func (l *Loader) Complete(sym code.Symbol) error {
	if l.syms == nil {
		return ErrUnbound
	}
	sp := trace.Begin(l.tracer, trace.ScopeCompletion, "complete", 0).WithExtra("symbol", sym.FlatName().String())
	l.depth++
	var err error
	switch s := sym.(type) {
	case *code.PackageSymbol:
		l.completePackage(s)
	case *code.ClassSymbol:
		err = l.completeClass(s)
	}
	l.depth--
	if l.depth == 0 {
		l.flush()
	}
	if err != nil {
		sp.End(err.Error())
		return err
	}
	sp.End(sym.Kind().String())
	return nil
}

func (l *Loader) flush() {
	for len(l.pending) > 0 {
		ctx := l.pending[0]
		l.pending = l.pending[1:]
		ctx.Flush()
	}
}

func (l *Loader) completePackage(p *code.PackageSymbol) {
	full := p.QualifiedName()
	for _, sub := range l.subpackages[full] {
		l.syms.EnterPackage(sub)
	}
	for _, flat := range l.packages[full] {
		l.syms.EnterClass(flat)
		p.Exists = true
	}
}

func (l *Loader) completeClass(c *code.ClassSymbol) error {
	e, ok := l.classes[c.FlatName()]
	if !ok {
		return code.NewCompletionFailure(c, diag.Frag(diag.CmpClassNotFound, c.FlatName()))
	}
	d := e.desc
	c.Origin = e.origin

	fl := l.parseFlags(d.Flags, c)
	if fl&flags.Annotation != 0 {
		fl |= flags.Interface
	}
	if fl&flags.Interface != 0 {
		fl |= flags.Abstract
	}
	owner, member := c.Owner().(*code.ClassSymbol)
	if member && (fl&flags.Interface != 0 || fl&flags.Enum != 0 || owner.RawFlags()&flags.Interface != 0) {
		fl |= flags.Static
	}
	c.SetFlags(fl)

	fail := func(err error) error {
		return &code.CompletionFailure{Sym: c, Fragment: diag.Frag(diag.CmpBadSignature, c.FlatName(), err), Err: err}
	}

	ct := c.ClassType()
	var outerEnv *env
	if member && fl&flags.Static == 0 {
		ct.SetEnclosingType(owner.Type())
		outerEnv = classEnv(owner)
	}
	tps, e2, err := declareTypeParams(l.syms, d.TypeParams, c, outerEnv)
	if err != nil {
		return fail(err)
	}
	ct.SetTypeArguments(typeVars(tps))
	for _, n := range l.nested[c.FlatName()] {
		l.syms.EnterClass(n)
	}
	if err := boundTypeParams(l.syms, tps, l.types.SetBounds); err != nil {
		return fail(err)
	}

	isObject := c.FlatName() == l.syms.ObjectType.TSym().FlatName()
	var super code.Type = code.NoType
	switch {
	case fl&flags.Interface != 0 || d.Extends == "" && !isObject:
		super = l.syms.ObjectType
		if d.Extends != "" {
			return fail(fmt.Errorf("interface %s cannot extend a class", c))
		}
	case d.Extends != "":
		if super, err = parseType(l.syms, d.Extends, e2); err != nil {
			return fail(err)
		}
	}
	ct.SetSupertypeField(super)

	ifaces := make([]code.Type, 0, len(d.Implements)+1)
	for _, text := range d.Implements {
		it, err := parseType(l.syms, text, e2)
		if err != nil {
			return fail(err)
		}
		ifaces = append(ifaces, it)
	}
	if fl&flags.Annotation != 0 && !containsSym(ifaces, l.syms.AnnotationType.TSym()) {
		ifaces = append(ifaces, l.syms.AnnotationType)
	}
	ct.SetInterfacesField(ifaces)

	// Annotations are read once every member is entered: an annotation
	// type may annotate its own declaration.
	annotated := []annotatedSym{{c, d.Annotations}}
	for i := range d.Fields {
		v, err := l.enterField(c, &d.Fields[i], e2)
		if err != nil {
			return fail(err)
		}
		annotated = append(annotated, annotatedSym{v, d.Fields[i].Annotations})
	}
	for i := range d.Methods {
		m, err := l.enterMethod(c, &d.Methods[i], e2)
		if err != nil {
			return fail(err)
		}
		annotated = append(annotated, annotatedSym{m, d.Methods[i].Annotations})
	}
	for _, a := range annotated {
		l.annotate(a.sym, a.annos)
	}
	return nil
}

type annotatedSym struct {
	sym   code.Symbol
	annos []AnnotationDesc
}

// classEnv exposes the type parameters of c and of the classes whose
// instances enclose it.
func classEnv(c *code.ClassSymbol) *env {
	var outer *env
	if owner, ok := c.Owner().(*code.ClassSymbol); ok && c.RawFlags()&flags.Static == 0 {
		outer = classEnv(owner)
	}
	e := newEnv(outer)
	for _, tv := range c.ClassType().TypeArguments() {
		e.vars[tv.TSym().Name().String()] = tv
	}
	return e
}

func containsSym(ts []code.Type, sym code.Symbol) bool {
	for _, t := range ts {
		if t.TSym() == sym {
			return true
		}
	}
	return false
}

func (l *Loader) parseFlags(words []string, on code.Symbol) flags.Flags {
	fl, unknown := flags.Parse(words)
	for _, w := range unknown {
		diag.ReportWarning(l.reporter, diag.ClpUnknownFlag, on.FlatName().String(),
			diag.Frag(diag.ClpUnknownFlag, w).String()).Emit()
	}
	return fl
}

func (l *Loader) enterField(c *code.ClassSymbol, d *FieldDesc, e *env) (*code.VarSymbol, error) {
	typ, err := parseType(l.syms, d.Type, e)
	if err != nil {
		return nil, err
	}
	fl := l.parseFlags(d.Flags, c)
	if c.RawFlags()&flags.Interface != 0 {
		fl |= flags.InterfaceVarFlags
	}
	if fl&flags.Enum != 0 {
		fl |= flags.Public | flags.Static | flags.Final
	}
	v := code.NewVarSymbol(fl, l.names.FromString(d.Name), typ, c)
	if d.Const != nil {
		val, err := constant(typ, d.Const)
		if err != nil {
			return nil, fmt.Errorf("constant %s: %w", d.Name, err)
		}
		v.SetConstValue(val)
	}
	c.RawMembers().Enter(v)
	return v, nil
}

func (l *Loader) enterMethod(c *code.ClassSymbol, d *MethodDesc, outer *env) (*code.MethodSymbol, error) {
	fl := l.parseFlags(d.Flags, c)
	switch {
	case c.RawFlags()&flags.Annotation != 0:
		fl |= flags.Public | flags.Abstract
	case c.RawFlags()&flags.Interface != 0:
		if fl&flags.Private == 0 {
			fl |= flags.Public
		}
		if fl&(flags.Static|flags.Default|flags.Private) == 0 {
			fl |= flags.Abstract
		}
	}
	m := code.NewMethodSymbol(fl, l.names.FromString(d.Name), nil, c)
	tps, e, err := declareTypeParams(l.syms, d.TypeParams, m, outer)
	if err != nil {
		return nil, err
	}
	if err := boundTypeParams(l.syms, tps, l.types.SetBounds); err != nil {
		return nil, err
	}
	params := make([]code.Type, 0, len(d.Params))
	for _, text := range d.Params {
		pt, err := parseType(l.syms, text, e)
		if err != nil {
			return nil, err
		}
		params = append(params, pt)
	}
	if len(d.ParamNames) > len(params) {
		return nil, fmt.Errorf("method %s names %d parameters but declares %d", d.Name, len(d.ParamNames), len(params))
	}
	if len(d.ParamNames) > 0 {
		pns := make([]*names.Name, len(d.ParamNames))
		for i, n := range d.ParamNames {
			pns[i] = l.names.FromString(n)
		}
		m.SetParamNames(pns)
	}
	if fl&flags.Varargs != 0 {
		if len(params) == 0 || params[len(params)-1].Tag() != code.TagArray {
			return nil, fmt.Errorf("varargs method %s needs a trailing array parameter", d.Name)
		}
		va := *params[len(params)-1].(*code.ArrayType)
		va.Varargs = true
		params[len(params)-1] = &va
	}
	var result code.Type = l.syms.VoidType
	if d.Returns != "" && !m.IsConstructor() {
		if result, err = parseType(l.syms, d.Returns, e); err != nil {
			return nil, err
		}
	}
	thrown := make([]code.Type, 0, len(d.Throws))
	for _, text := range d.Throws {
		tt, err := parseType(l.syms, text, e)
		if err != nil {
			return nil, err
		}
		if tv, ok := tt.(*code.TypeVar); ok && tv.TSym().Owner() == code.Symbol(m) {
			tv.TSym().AddFlags(flags.Throws)
		}
		thrown = append(thrown, tt)
	}
	var mt code.Type = code.NewMethodType(params, result, thrown, l.syms.MethodClass)
	if len(tps) > 0 {
		mt = code.NewForAll(typeVars(tps), mt)
	}
	m.SetType(mt)
	if d.Default != nil {
		def, err := l.attribute(result, d.Default)
		if err != nil {
			return nil, fmt.Errorf("default of %s: %w", d.Name, err)
		}
		m.DefaultValue = def
	}
	c.RawMembers().Enter(m)
	return m, nil
}

// lookupMember finds the first member of c named name with the Go type S
// that satisfies filter.
func lookupMember[S code.Symbol](c *code.ClassSymbol, name *names.Name, filter func(S) bool) (S, bool) {
	for sym := range c.Members().SymbolsByName(name, nil) {
		s, ok := sym.(S)
		if ok && (filter == nil || filter(s)) {
			return s, true
		}
	}
	var zero S
	return zero, false
}
