package ecs

import (
	"github.com/plus3/sparsecs/ecs/sparse"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// componentStore is the registry's type-erased handle on one component
// type's sparse set.
type componentStore interface {
	sparse.Store

	// value returns what World.Get hands out for e: a pointer into storage
	// for mutable value types, a detached copy for readonly ones.
	value(e Entity) any
	// fetch writes column col of a row-major batch with the given stride.
	// Every entity must be present.
	fetch(entities []Entity, out []any, col, stride int)
	// release returns wrappers placed in column col by fetch.
	release(out []any, col, stride int)

	rentWrapper() any
	returnWrapper(w any)

	encode(e Entity) (yaml.Node, error)
	decode(e Entity, n *yaml.Node) error
}

// typedStore is implemented by every store for its element type.
type typedStore[T any] interface {
	componentStore
	set() sparse.Set[T]
	upsert(e Entity, v T) bool
	// ptr returns a pointer into storage, or nil when the shape cannot
	// provide one.
	ptr(e Entity) *T
}

// valueStore backs ShapeValue component types.
type valueStore[T any] struct {
	*sparse.Dense[T]
	readonly bool
	wrappers []*T
}

func newValueStore[T any](capacity int, readonly bool) *valueStore[T] {
	return &valueStore[T]{
		Dense:    sparse.NewDense[T](capacity),
		readonly: readonly,
	}
}

func (s *valueStore[T]) set() sparse.Set[T] { return s.Dense }

func (s *valueStore[T]) upsert(e Entity, v T) bool { return s.Upsert(int(e), v) }

func (s *valueStore[T]) ptr(e Entity) *T { return s.Ptr(int(e)) }

func (s *valueStore[T]) value(e Entity) any {
	if s.readonly {
		v := s.GetUnchecked(int(e))
		return &v
	}
	return s.PtrUnchecked(int(e))
}

func (s *valueStore[T]) fetch(entities []Entity, out []any, col, stride int) {
	if s.readonly {
		for i, e := range entities {
			w := s.rent()
			*w = s.GetUnchecked(int(e))
			out[i*stride+col] = w
		}
		return
	}
	for i, e := range entities {
		out[i*stride+col] = s.PtrUnchecked(int(e))
	}
}

func (s *valueStore[T]) release(out []any, col, stride int) {
	if !s.readonly {
		return
	}
	for i := col; i < len(out); i += stride {
		if w, ok := out[i].(*T); ok {
			s.giveBack(w)
		}
	}
}

func (s *valueStore[T]) rent() *T {
	if n := len(s.wrappers); n > 0 {
		w := s.wrappers[n-1]
		s.wrappers[n-1] = nil
		s.wrappers = s.wrappers[:n-1]
		return w
	}
	return new(T)
}

func (s *valueStore[T]) giveBack(w *T) {
	var zero T
	*w = zero
	s.wrappers = append(s.wrappers, w)
}

func (s *valueStore[T]) rentWrapper() any { return s.rent() }

func (s *valueStore[T]) returnWrapper(w any) {
	if p, ok := w.(*T); ok && p != nil {
		s.giveBack(p)
	}
}

func (s *valueStore[T]) encode(e Entity) (yaml.Node, error) {
	var n yaml.Node
	v, ok := s.Get(int(e))
	if !ok {
		return n, eris.Wrapf(ErrMissingComponent, "entity %d", e)
	}
	if err := n.Encode(v); err != nil {
		return n, eris.Wrapf(err, "encode entity %d", e)
	}
	return n, nil
}

func (s *valueStore[T]) decode(e Entity, n *yaml.Node) error {
	var v T
	if err := n.Decode(&v); err != nil {
		return eris.Wrapf(err, "decode entity %d", e)
	}
	s.Upsert(int(e), v)
	return nil
}

// boolStore backs ShapeBool component types. Booleans box into interfaces
// without allocating, so it needs no wrappers.
type boolStore struct {
	*sparse.Bools
}

func newBoolStore(capacity int) *boolStore {
	return &boolStore{Bools: sparse.NewBools(capacity)}
}

func (s *boolStore) set() sparse.Set[bool]        { return s.Bools }
func (s *boolStore) upsert(e Entity, v bool) bool { return s.Upsert(int(e), v) }
func (s *boolStore) ptr(Entity) *bool             { return nil }
func (s *boolStore) value(e Entity) any           { return s.GetUnchecked(int(e)) }

func (s *boolStore) fetch(entities []Entity, out []any, col, stride int) {
	for i, e := range entities {
		out[i*stride+col] = s.GetUnchecked(int(e))
	}
}

func (s *boolStore) release([]any, int, int) {}
func (s *boolStore) rentWrapper() any        { return new(bool) }
func (s *boolStore) returnWrapper(any)       {}

func (s *boolStore) encode(e Entity) (yaml.Node, error) {
	var n yaml.Node
	v, ok := s.Get(int(e))
	if !ok {
		return n, eris.Wrapf(ErrMissingComponent, "entity %d", e)
	}
	err := n.Encode(v)
	return n, err
}

func (s *boolStore) decode(e Entity, n *yaml.Node) error {
	var v bool
	if err := n.Decode(&v); err != nil {
		return eris.Wrapf(err, "decode entity %d", e)
	}
	s.Upsert(int(e), v)
	return nil
}

// tagStore backs ShapeTag component types.
type tagStore struct {
	*sparse.Tags
}

func newTagStore(capacity int) *tagStore {
	return &tagStore{Tags: sparse.NewTags(capacity)}
}

func (s *tagStore) set() sparse.Set[struct{}]        { return s.Tags }
func (s *tagStore) upsert(e Entity, _ struct{}) bool { return s.Upsert(int(e), struct{}{}) }
func (s *tagStore) ptr(Entity) *struct{}             { return nil }
func (s *tagStore) value(Entity) any                 { return struct{}{} }
func (s *tagStore) release([]any, int, int)          {}
func (s *tagStore) rentWrapper() any                 { return &struct{}{} }
func (s *tagStore) returnWrapper(any)                {}
func (s *tagStore) encode(Entity) (yaml.Node, error) { return yaml.Node{}, nil }
func (s *tagStore) decode(e Entity, _ *yaml.Node) error {
	s.Upsert(int(e), struct{}{})
	return nil
}

func (s *tagStore) fetch(entities []Entity, out []any, col, stride int) {
	for i := range entities {
		out[i*stride+col] = struct{}{}
	}
}
