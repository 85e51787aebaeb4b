package scope

import (
	"iter"

	"nominal/internal/names"
)

// CompoundScope is a read-only union of other scopes. Its mark changes
// whenever a sub-scope is added or any sub-scope gains or loses a symbol,
// which lets callers invalidate caches derived from the union.
type CompoundScope[S Symbol] struct {
	owner     S
	subScopes []View[S]
	mark      int
	listeners []Listener[S]
}

func NewCompound[S Symbol](owner S) *CompoundScope[S] {
	return &CompoundScope[S]{owner: owner}
}

func (c *CompoundScope[S]) Owner() S { return c.owner }

// Mark is a counter bumped on every observed change.
func (c *CompoundScope[S]) Mark() int { return c.mark }

// AddSubScope makes v part of the union. Later sub-scopes are consulted first.
func (c *CompoundScope[S]) AddSubScope(v View[S]) {
	if v == nil {
		return
	}
	c.subScopes = append([]View[S]{v}, c.subScopes...)
	v.AddListener(c)
	c.mark++
	var zero S
	for _, l := range c.listeners {
		l.SymbolAdded(zero, c)
	}
}

// SubScopes returns the sub-scopes in lookup order.
func (c *CompoundScope[S]) SubScopes() []View[S] { return c.subScopes }

func (c *CompoundScope[S]) SymbolAdded(sym S, _ View[S]) {
	c.mark++
	for _, l := range c.listeners {
		l.SymbolAdded(sym, c)
	}
}

func (c *CompoundScope[S]) SymbolRemoved(sym S, _ View[S]) {
	c.mark++
	for _, l := range c.listeners {
		l.SymbolRemoved(sym, c)
	}
}

func (c *CompoundScope[S]) AddListener(l Listener[S]) {
	c.listeners = append(c.listeners, l)
}

func (c *CompoundScope[S]) Lookup(name *names.Name, filter Filter[S]) (S, bool) {
	for _, sub := range c.subScopes {
		if sym, ok := sub.Lookup(name, filter); ok {
			return sym, true
		}
	}
	var zero S
	return zero, false
}

func (c *CompoundScope[S]) SymbolsByName(name *names.Name, filter Filter[S]) iter.Seq[S] {
	return func(yield func(S) bool) {
		for _, sub := range c.subScopes {
			for sym := range sub.SymbolsByName(name, filter) {
				if !yield(sym) {
					return
				}
			}
		}
	}
}

func (c *CompoundScope[S]) Symbols(filter Filter[S]) iter.Seq[S] {
	return func(yield func(S) bool) {
		for _, sub := range c.subScopes {
			for sym := range sub.Symbols(filter) {
				if !yield(sym) {
					return
				}
			}
		}
	}
}
