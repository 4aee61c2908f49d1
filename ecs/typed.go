package ecs

import "github.com/rotisserie/eris"

// Add attaches v as e's c component. See World.AddComponent.
func Add[T any](w *World, e Entity, c *Component[T], v T) error {
	return w.AddComponent(e, c.With(v))
}

// Get returns a copy of e's c value, or false if e is dead or has none.
func Get[T any](w *World, e Entity, c *Component[T]) (T, bool) {
	if !w.Alive(e) {
		var zero T
		return zero, false
	}
	return Lookup(w.registry, e, c)
}

// Mut returns a pointer to e's c value in storage, or nil if e is dead or has
// none. Bool and tag components have no addressable storage and always return
// nil. Mut panics with ErrReadonly for readonly component types.
func Mut[T any](w *World, e Entity, c *Component[T]) *T {
	if c.readonly {
		panic(eris.Wrapf(ErrReadonly, "mutable access to %s", c.name))
	}
	if !w.Alive(e) {
		return nil
	}
	return typedStoreOf(w.registry, c).ptr(e)
}

// accessor hands out *T for one component type during typed iteration.
// Mutable value types point into storage; everything else points at a
// scratch copy, so writes through it are dropped.
type accessor[T any] struct {
	st      typedStore[T]
	direct  bool
	scratch T
}

func newAccessor[T any](w *World, c *Component[T]) *accessor[T] {
	return &accessor[T]{
		st:     typedStoreOf(w.registry, c),
		direct: c.shape == ShapeValue && !c.readonly,
	}
}

func (a *accessor[T]) at(e Entity) (*T, bool) {
	if a.direct {
		p := a.st.ptr(e)
		return p, p != nil
	}
	v, ok := a.st.set().Get(int(e))
	a.scratch = v
	return &a.scratch, ok
}

// each walks q's cached entities, holding the cache steady while fn runs.
func (w *World) each(q *Query, fn func(e Entity) bool) {
	c := w.fresh(q)
	entities := c.entities
	c.iterating++
	defer func() { c.iterating-- }()
	for _, e := range entities {
		if !fn(e) {
			return
		}
	}
}

// Each1 calls fn for every entity matching q with a pointer to its a value.
// Entities lacking a are skipped. The usual iteration rules apply: queue
// structural changes with Commands.
func Each1[A any](w *World, q *Query, a *Component[A], fn func(Entity, *A)) {
	pa := newAccessor(w, a)
	w.each(q, func(e Entity) bool {
		if va, ok := pa.at(e); ok {
			fn(e, va)
		}
		return true
	})
}

// Each2 is Each1 for two component types.
func Each2[A, B any](w *World, q *Query, a *Component[A], b *Component[B], fn func(Entity, *A, *B)) {
	pa, pb := newAccessor(w, a), newAccessor(w, b)
	w.each(q, func(e Entity) bool {
		va, ok := pa.at(e)
		if !ok {
			return true
		}
		if vb, ok := pb.at(e); ok {
			fn(e, va, vb)
		}
		return true
	})
}

// Each3 is Each1 for three component types.
func Each3[A, B, C any](w *World, q *Query, a *Component[A], b *Component[B], c *Component[C], fn func(Entity, *A, *B, *C)) {
	pa, pb, pc := newAccessor(w, a), newAccessor(w, b), newAccessor(w, c)
	w.each(q, func(e Entity) bool {
		va, ok := pa.at(e)
		if !ok {
			return true
		}
		vb, ok := pb.at(e)
		if !ok {
			return true
		}
		if vc, ok := pc.at(e); ok {
			fn(e, va, vb, vc)
		}
		return true
	})
}
