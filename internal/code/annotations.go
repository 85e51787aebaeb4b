package code

import "fmt"

// RetentionPolicy says how long an annotation is kept.
type RetentionPolicy uint8

const (
	RetentionSource RetentionPolicy = iota
	RetentionClass
	RetentionRuntime
)

func (r RetentionPolicy) String() string {
	switch r {
	case RetentionSource:
		return "SOURCE"
	case RetentionClass:
		return "CLASS"
	case RetentionRuntime:
		return "RUNTIME"
	default:
		return fmt.Sprintf("RetentionPolicy(%d)", uint8(r))
	}
}

type declState uint8

const (
	declNotStarted declState = iota
	declInProgress
	declDone
)

// Metadata holds the annotations attached to a symbol. Declaration
// annotations go through three states: not started, in progress while the
// annotation pass runs, and done.
type Metadata struct {
	sym       Symbol
	state     declState
	decl      []*Compound
	typeAttrs []*TypeCompound
}

func newMetadata(sym Symbol) *Metadata { return &Metadata{sym: sym} }

// IsStarted reports whether declaration annotations were ever requested or set.
func (m *Metadata) IsStarted() bool { return m.state != declNotStarted }

// PendingCompletion is true between Start and the final set.
func (m *Metadata) PendingCompletion() bool { return m.state == declInProgress }

// Start marks the declaration annotations as being computed.
func (m *Metadata) Start() {
	if m.state == declNotStarted {
		m.state = declInProgress
	}
}

// DeclarationAttributes returns the declaration annotations, empty until
// they have been set.
func (m *Metadata) DeclarationAttributes() []*Compound {
	if m == nil || m.state != declDone {
		return nil
	}
	return m.decl
}

// TypeAttributes returns the type annotations on the symbol's signature.
func (m *Metadata) TypeAttributes() []*TypeCompound {
	if m == nil {
		return nil
	}
	return m.typeAttrs
}

func (m *Metadata) IsEmpty() bool {
	return m == nil || len(m.DeclarationAttributes()) == 0 && len(m.typeAttrs) == 0
}

// SetDeclarationAttributes stores the final declaration annotations.
func (m *Metadata) SetDeclarationAttributes(as []*Compound) {
	m.decl = as
	m.state = declDone
}

// AppendDeclarationAttributes adds annotations after the existing ones.
func (m *Metadata) AppendDeclarationAttributes(as []*Compound) {
	if len(as) == 0 {
		return
	}
	m.decl = append(m.DeclarationAttributes(), as...)
	m.state = declDone
}

func (m *Metadata) SetTypeAttributes(as []*TypeCompound) { m.typeAttrs = as }

func (m *Metadata) AppendTypeAttributes(as []*TypeCompound) {
	m.typeAttrs = append(m.typeAttrs, as...)
}

// SetDeclarationAttributesWithCompletion stores the annotations collected
// in ctx. Annotation types seen once are stored directly; repeated ones
// are stored as placeholders and resolved into their containers when ctx
// is flushed. A nil ctx stores no annotations.
func (m *Metadata) SetDeclarationAttributesWithCompletion(ctx *RepeatedContext) {
	if ctx == nil {
		m.SetDeclarationAttributes(nil)
		return
	}
	out := make([]*Compound, 0, len(ctx.groups))
	repeated := false
	for _, g := range ctx.groups {
		if len(g.annos) == 1 {
			out = append(out, g.annos[0])
			continue
		}
		out = append(out, NewPlaceholder(ctx, g.annos, m.sym))
		repeated = true
	}
	m.SetDeclarationAttributes(out)
	if repeated {
		ctx.Defer(func() { m.replacePlaceholders(ctx) })
	}
}

func (m *Metadata) replacePlaceholders(ctx *RepeatedContext) {
	out := make([]*Compound, 0, len(m.decl))
	for _, a := range m.decl {
		if !a.IsPlaceholder() {
			out = append(out, a)
			continue
		}
		if r := ctx.resolve(a, m.sym); r != nil {
			out = append(out, r)
		}
	}
	m.decl = out
}

// ContainerFunc synthesizes the container annotation for repeated
// annotations on sym, or returns nil when no valid container exists.
type ContainerFunc func(repeated []*Compound, on Symbol) *Compound

type annoGroup struct {
	tsym  Symbol
	annos []*Compound
}

// RepeatedContext collects the annotations of one declaration, grouped by
// annotation type in order of first appearance, and runs deferred work
// once every non-repeated annotation is in place.
type RepeatedContext struct {
	groups  []annoGroup
	process ContainerFunc
	queue   []func()
}

func NewRepeatedContext(process ContainerFunc) *RepeatedContext {
	return &RepeatedContext{process: process}
}

// Add records one annotation occurrence.
func (c *RepeatedContext) Add(a *Compound) {
	var ts Symbol
	if a.Type() != nil {
		ts = a.Type().TSym()
	}
	for i := range c.groups {
		if c.groups[i].tsym == ts {
			c.groups[i].annos = append(c.groups[i].annos, a)
			return
		}
	}
	c.groups = append(c.groups, annoGroup{tsym: ts, annos: []*Compound{a}})
}

// Len counts distinct annotation types seen.
func (c *RepeatedContext) Len() int { return len(c.groups) }

// Defer queues fn until Flush.
func (c *RepeatedContext) Defer(fn func()) { c.queue = append(c.queue, fn) }

// Flush runs the queued work, including work queued while flushing.
func (c *RepeatedContext) Flush() {
	for len(c.queue) > 0 {
		fn := c.queue[0]
		c.queue = c.queue[1:]
		fn()
	}
}

func (c *RepeatedContext) resolve(ph *Compound, on Symbol) *Compound {
	if c.process == nil {
		return nil
	}
	r := c.process(ph.placeholderFor, on)
	for r != nil && r.IsPlaceholder() {
		r = c.process(r.placeholderFor, on)
	}
	return r
}
