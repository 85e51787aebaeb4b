package classpath

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"fortio.org/safecast"

	"nominal/internal/code"
	"nominal/internal/diag"
	"nominal/internal/flags"
)

// annotate stores the declaration annotations of sym. Annotations of the
// same type repeated on one declaration are wrapped into their container
// when the outermost completion ends.
func (l *Loader) annotate(sym code.Symbol, descs []AnnotationDesc) {
	if len(descs) == 0 {
		return
	}
	ctx := code.NewRepeatedContext(l.types.ContainerFunc(l.reporter))
	for _, d := range descs {
		annoType, err := parseType(l.syms, d.Type, nil)
		if err == nil {
			var c *code.Compound
			if c, err = l.compound(annoType, d.Values); err == nil {
				ctx.Add(c)
				continue
			}
		}
		diag.ReportFragment(l.reporter, sym.FlatName().String(), diag.Frag(diag.ClpBadValue, d.Type, err))
	}
	sym.Metadata().SetDeclarationAttributesWithCompletion(ctx)
	l.pending = append(l.pending, ctx)
}

// compound builds an annotation of annoType from element values keyed by
// element name.
func (l *Loader) compound(annoType code.Type, values map[string]any) (*code.Compound, error) {
	asym, ok := annoType.TSym().(*code.ClassSymbol)
	if !ok || annoType.IsErroneous() || !asym.IsAnnotationType() {
		return nil, fmt.Errorf("%s is not an annotation type", annoType)
	}
	pairs := make([]code.Pair, 0, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		elem, ok := lookupMember(asym, l.names.FromString(key), func(m *code.MethodSymbol) bool {
			return len(m.Type().ParameterTypes()) == 0
		})
		if !ok {
			return nil, fmt.Errorf("%s has no element %s", annoType, key)
		}
		v, err := l.attribute(elem.ReturnType(), values[key])
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", key, err)
		}
		pairs = append(pairs, code.Pair{Sym: elem, Value: v})
	}
	return code.NewCompound(annoType, pairs), nil
}

// attribute converts a raw element value to an attribute of type rt.
func (l *Loader) attribute(rt code.Type, raw any) (code.Attribute, error) {
	switch {
	case rt.Tag() == code.TagArray:
		elem := rt.(*code.ArrayType).Elem
		list, ok := raw.([]any)
		if !ok {
			list = []any{raw}
		}
		vals := make([]code.Attribute, len(list))
		for i, r := range list {
			v, err := l.attribute(elem, r)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return code.NewArray(rt, vals), nil
	case rt.IsPrimitive() || rt.TSym() == l.syms.StringType.TSym():
		v, err := constant(rt, raw)
		if err != nil {
			return nil, err
		}
		return code.NewConstant(rt, v), nil
	case rt.TSym() == l.syms.ClassType.TSym():
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("class literal must be a type name, got %T", raw)
		}
		ct, err := parseType(l.syms, s, nil)
		if err != nil {
			return nil, err
		}
		return code.NewClass(rt, ct), nil
	}
	csym, ok := rt.TSym().(*code.ClassSymbol)
	if !ok {
		return nil, fmt.Errorf("unsupported element type %s", rt)
	}
	switch {
	case csym.IsEnum():
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("enum constant must be a name, got %T", raw)
		}
		v, ok := lookupMember(csym, l.names.FromString(s), func(v *code.VarSymbol) bool {
			return v.Flags()&flags.Enum != 0
		})
		if !ok {
			return nil, fmt.Errorf("%s has no constant %s", rt, s)
		}
		return code.NewEnum(rt, v), nil
	case csym.IsAnnotationType():
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("nested annotation must be a table, got %T", raw)
		}
		return l.compound(rt, m)
	}
	return nil, fmt.Errorf("unsupported element type %s", rt)
}

// constant converts a decoded scalar to the Go representation of a
// constant of type t: int8, uint16, int16, int32, int64, float32,
// float64, bool or string.
func constant(t code.Type, raw any) (any, error) {
	tag := t.Tag()
	if tag == code.TagClass {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("string constant expected, got %T", raw)
		}
		return s, nil
	}
	switch tag {
	case code.TagBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("boolean constant expected, got %T", raw)
		}
		return b, nil
	case code.TagChar:
		if s, ok := raw.(string); ok {
			rs := []rune(s)
			if len(rs) != 1 {
				return nil, fmt.Errorf("char constant must be one character, got %q", s)
			}
			return safecast.Conv[uint16](rs[0])
		}
	case code.TagFloat, code.TagDouble:
		f, ok := floatValue(raw)
		if !ok {
			return nil, fmt.Errorf("numeric constant expected, got %T", raw)
		}
		if tag == code.TagFloat {
			if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
				return nil, fmt.Errorf("%v overflows float", f)
			}
			return float32(f), nil
		}
		return f, nil
	}
	n, ok := intValue(raw)
	if !ok {
		return nil, fmt.Errorf("integral constant expected, got %T", raw)
	}
	switch tag {
	case code.TagByte:
		return safecast.Conv[int8](n)
	case code.TagChar:
		return safecast.Conv[uint16](n)
	case code.TagShort:
		return safecast.Conv[int16](n)
	case code.TagInt:
		return safecast.Conv[int32](n)
	case code.TagLong:
		return n, nil
	}
	return nil, fmt.Errorf("no constants of type %s", t)
}

// intValue accepts the integer types TOML, YAML and msgpack decode into.
func intValue(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		n, err := safecast.Conv[int64](v)
		return n, err == nil
	}
	return 0, false
}

func floatValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	n, ok := intValue(raw)
	return float64(n), ok
}
