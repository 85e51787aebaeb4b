package classpath

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"nominal/internal/code"
	"nominal/internal/flags"
	"nominal/internal/names"
	"nominal/internal/symtab"
)

// Signature syntax:
//
//	type     = prim dims | class dims | var dims
//	class    = flatname [targs] { "." ident [targs] }
//	targs    = "<" targ { "," targ } ">"
//	targ     = type | "?" [ ("extends" | "super") type ]
//	dims     = { "[]" }
//	typaram  = ident [ "extends" type { "&" type } ]
//
// Class names are flat: packages separated by '.', member classes by '$'.
// A '.' after type arguments selects an inner class of that instance.

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokDot
	tokLAngle
	tokRAngle
	tokComma
	tokQuestion
	tokAmp
	tokLBrack
	tokRBrack
)

func (k tokKind) String() string {
	switch k {
	case tokEOF:
		return "end of signature"
	case tokIdent:
		return "identifier"
	case tokDot:
		return "'.'"
	case tokLAngle:
		return "'<'"
	case tokRAngle:
		return "'>'"
	case tokComma:
		return "','"
	case tokQuestion:
		return "'?'"
	case tokAmp:
		return "'&'"
	case tokLBrack:
		return "'['"
	case tokRBrack:
		return "']'"
	}
	return "invalid"
}

type sigToken struct {
	kind tokKind
	text string
	pos  int
}

// SignatureError locates a syntax or resolution problem in a signature.
type SignatureError struct {
	Text string
	Pos  int
	Msg  string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature %q at %d: %s", e.Text, e.Pos, e.Msg)
}

func tokenize(text string) ([]sigToken, error) {
	var toks []sigToken
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
			continue
		case isIdentStart(r):
			start := i
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			toks = append(toks, sigToken{kind: tokIdent, text: text[start:i], pos: start})
			continue
		}
		kind, ok := punct[r]
		if !ok {
			return nil, &SignatureError{Text: text, Pos: i, Msg: fmt.Sprintf("unexpected %q", r)}
		}
		toks = append(toks, sigToken{kind: kind, text: string(r), pos: i})
		i += size
	}
	return append(toks, sigToken{kind: tokEOF, pos: len(text)}), nil
}

var punct = map[rune]tokKind{
	'.': tokDot,
	'<': tokLAngle,
	'>': tokRAngle,
	',': tokComma,
	'?': tokQuestion,
	'&': tokAmp,
	'[': tokLBrack,
	']': tokRBrack,
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// env maps type variable names to their types, innermost declaration
// first.
type env struct {
	vars  map[string]code.Type
	outer *env
}

func newEnv(outer *env) *env {
	return &env{vars: make(map[string]code.Type), outer: outer}
}

func (e *env) lookup(name string) (code.Type, bool) {
	for ; e != nil; e = e.outer {
		if t, ok := e.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

type sigParser struct {
	syms *symtab.Symtab
	text string
	toks []sigToken
	pos  int
	env  *env
}

func newSigParser(syms *symtab.Symtab, text string, e *env) (*sigParser, error) {
	text = norm.NFC.String(strings.TrimSpace(text))
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	return &sigParser{syms: syms, text: text, toks: toks, env: e}, nil
}

func (p *sigParser) peek() sigToken { return p.toks[p.pos] }

func (p *sigParser) next() sigToken {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *sigParser) errorf(at sigToken, format string, args ...any) error {
	return &SignatureError{Text: p.text, Pos: at.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *sigParser) expect(kind tokKind) (sigToken, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", kind, t.kind)
	}
	return t, nil
}

func (p *sigParser) keyword(word string) bool {
	t := p.peek()
	if t.kind == tokIdent && t.text == word {
		p.pos++
		return true
	}
	return false
}

func (p *sigParser) done() error {
	if t := p.peek(); t.kind != tokEOF {
		return p.errorf(t, "unexpected %s", t.kind)
	}
	return nil
}

func (p *sigParser) parseType() (code.Type, error) {
	var t code.Type
	first, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if v, ok := p.env.lookup(first.text); ok && p.peek().kind != tokDot {
		t = v
	} else if prim, ok := p.syms.LookupPrim(first.text); ok && p.peek().kind != tokDot {
		t = prim
	} else {
		t, err = p.parseClass(first)
		if err != nil {
			return nil, err
		}
	}
	return p.parseDims(t)
}

func (p *sigParser) parseDims(t code.Type) (code.Type, error) {
	for p.peek().kind == tokLBrack {
		p.next()
		if _, err := p.expect(tokRBrack); err != nil {
			return nil, err
		}
		if t.Tag() == code.TagVoid {
			return nil, p.errorf(p.peek(), "array of void")
		}
		t = code.NewArrayType(t, p.syms.ArrayClass)
	}
	return t, nil
}

// parseClass reads a flat class name starting at first, then any type
// arguments and inner class selections.
func (p *sigParser) parseClass(first sigToken) (code.Type, error) {
	var sb strings.Builder
	sb.WriteString(first.text)
	for p.peek().kind == tokDot {
		p.next()
		id, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		sb.WriteByte('.')
		sb.WriteString(id.text)
	}
	flat := sb.String()
	sym := p.syms.EnterClass(p.syms.Names.FromString(flat))
	outer := p.implicitOuter(sym)
	t, err := p.applyArgs(sym, outer)
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokDot {
		p.next()
		id, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		flat += "$" + id.text
		sym = p.syms.EnterClass(p.syms.Names.FromString(flat))
		if t, err = p.applyArgs(sym, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// implicitOuter is the enclosing instance type of a member class named
// without its outer type arguments: the erasure of the outer class for an
// inner class, nothing for a static one.
func (p *sigParser) implicitOuter(sym *code.ClassSymbol) code.Type {
	owner, ok := sym.Owner().(*code.ClassSymbol)
	if !ok || sym.Flags()&(flags.Static|flags.Interface) != 0 {
		return code.NoType
	}
	return code.NewClassType(p.implicitOuter(owner), nil, owner)
}

func (p *sigParser) applyArgs(sym *code.ClassSymbol, outer code.Type) (code.Type, error) {
	if p.peek().kind != tokLAngle {
		return code.NewClassType(outer, nil, sym), nil
	}
	p.next()
	var args []code.Type
	for {
		a, err := p.parseTypeArg()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.peek().kind != tokComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokRAngle); err != nil {
		return nil, err
	}
	return code.NewClassType(outer, args, sym), nil
}

func (p *sigParser) parseTypeArg() (code.Type, error) {
	if p.peek().kind != tokQuestion {
		at := p.peek()
		t, err := p.parseType()
		if err == nil && t.IsPrimitiveOrVoid() {
			return nil, p.errorf(at, "primitive type argument %s", t)
		}
		return t, err
	}
	p.next()
	kind := code.BoundUnbound
	switch {
	case p.keyword("extends"):
		kind = code.BoundExtends
	case p.keyword("super"):
		kind = code.BoundSuper
	default:
		return code.NewWildcardType(p.syms.ObjectType, code.BoundUnbound, p.syms.BoundClass), nil
	}
	bound, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if bound.IsPrimitiveOrVoid() {
		return nil, p.errorf(p.peek(), "primitive wildcard bound %s", bound)
	}
	return code.NewWildcardType(bound, kind, p.syms.BoundClass), nil
}

// parseTypeParamHead reads the variable name of a type parameter and
// leaves the parser at its bounds.
func (p *sigParser) parseTypeParamHead() (string, error) {
	id, err := p.expect(tokIdent)
	if err != nil {
		return "", err
	}
	return id.text, nil
}

func (p *sigParser) parseBounds() ([]code.Type, error) {
	if !p.keyword("extends") {
		return nil, p.done()
	}
	var bounds []code.Type
	for {
		b, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if b.IsPrimitiveOrVoid() || b.Tag() == code.TagArray {
			return nil, p.errorf(p.peek(), "invalid bound %s", b)
		}
		bounds = append(bounds, b)
		if p.peek().kind != tokAmp {
			break
		}
		p.next()
	}
	return bounds, p.done()
}

// ParseType reads a type written in signature syntax. Class names are
// entered into syms and completed lazily, so an unknown class yields an
// erroneous type on first use rather than a parse error.
func ParseType(syms *symtab.Symtab, text string) (code.Type, error) {
	return parseType(syms, text, nil)
}

func parseType(syms *symtab.Symtab, text string, e *env) (code.Type, error) {
	p, err := newSigParser(syms, text, e)
	if err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return t, p.done()
}

// typeParam is a declared type parameter before its bounds are read.
type typeParam struct {
	sym    *code.TypeVariableSymbol
	parser *sigParser
}

// declareTypeParams creates the variables of a parameter list in a new
// scope nested in outer. Bounds are read by boundTypeParams once every
// variable of the list is visible, so F-bounds resolve.
func declareTypeParams(syms *symtab.Symtab, texts []string, owner code.Symbol, outer *env) ([]typeParam, *env, error) {
	e := newEnv(outer)
	out := make([]typeParam, 0, len(texts))
	for _, text := range texts {
		p, err := newSigParser(syms, text, e)
		if err != nil {
			return nil, nil, err
		}
		name, err := p.parseTypeParamHead()
		if err != nil {
			return nil, nil, err
		}
		if _, dup := e.vars[name]; dup {
			return nil, nil, p.errorf(p.toks[0], "duplicate type parameter %s", name)
		}
		sym := code.NewTypeVariableSymbol(0, syms.Names.FromString(name), owner, nil)
		e.vars[name] = sym.TypeVar()
		out = append(out, typeParam{sym: sym, parser: p})
	}
	return out, e, nil
}

func typeVars(tps []typeParam) []code.Type {
	if len(tps) == 0 {
		return nil
	}
	out := make([]code.Type, len(tps))
	for i, tp := range tps {
		out[i] = tp.sym.TypeVar()
	}
	return out
}

// boundTypeParams reads the bounds of declared parameters and installs
// them with setBounds. A parameter without bounds is bounded by the root
// class.
func boundTypeParams(syms *symtab.Symtab, tps []typeParam, setBounds func(*code.TypeVar, []code.Type)) error {
	for _, tp := range tps {
		bounds, err := tp.parser.parseBounds()
		if err != nil {
			return err
		}
		if len(bounds) == 0 {
			bounds = []code.Type{syms.ObjectType}
		}
		setBounds(tp.sym.TypeVar(), bounds)
	}
	return nil
}

// splitFlat splits a flat class name into its package and the chain of
// outer class names, outermost first.
func splitFlat(tab *names.Table, flat *names.Name) (pkg *names.Name, outer *names.Name, nested bool) {
	text := flat.String()
	simple := text
	if dot := strings.LastIndexByte(text, '.'); dot >= 0 {
		simple = text[dot+1:]
	}
	pkg = tab.PackagePart(flat)
	if dollar := strings.LastIndexByte(simple, '$'); dollar > 0 && dollar < len(simple)-1 {
		return pkg, tab.FromString(text[:len(text)-len(simple)+dollar]), true
	}
	return pkg, nil, false
}
