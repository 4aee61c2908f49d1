package ecs

import (
	"reflect"
	"weak"

	"github.com/kamstrup/intmap"
	"github.com/plus3/sparsecs/ecs/bitset"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// World owns entity ids, their signatures and the per-query result caches.
// It is not safe for concurrent use; the World, its Registry and every store
// must be treated as a single unit.
type World struct {
	registry *Registry

	signatures []*bitset.Bitset
	alive      *bitset.Bitset
	cemetery   []Entity

	caches     []*queryCache
	cacheIndex *intmap.Map[uint64, *queryCache]

	refs       *intmap.Map[Entity, weak.Pointer[EntityRef]]
	singletons map[reflect.Type]any

	pool      *bitset.Pool
	rowBufs   [][]any
	scheduler *Scheduler

	log *zap.Logger
}

// NewWorld creates a world backed by registry. A nil registry gets a fresh
// one built with the same options. It panics with ErrSharedRegistry if
// registry already backs another world.
func NewWorld(registry *Registry, opts ...Option) *World {
	o := buildOptions(opts)
	if registry == nil {
		registry = NewRegistry(opts...)
	}
	if registry.owner != nil {
		panic(ErrSharedRegistry)
	}
	w := &World{
		registry:   registry,
		signatures: make([]*bitset.Bitset, 0, o.capacity),
		alive:      bitset.New(o.capacity),
		cemetery:   make([]Entity, 0, 64),
		cacheIndex: intmap.New[uint64, *queryCache](16),
		refs:       intmap.New[Entity, weak.Pointer[EntityRef]](256),
		singletons: make(map[reflect.Type]any),
		pool:       bitset.NewPool(64),
		log:        o.log,
	}
	w.scheduler = newScheduler(w, o.log)
	registry.owner = w
	return w
}

// Registry returns the world's component registry.
func (w *World) Registry() *Registry { return w.registry }

// Scheduler returns the world's system scheduler.
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// NewQuery compiles a query against the world's registry.
func (w *World) NewQuery(opts ...QueryOption) (*Query, error) {
	return NewQuery(w.registry, opts...)
}

// Len returns the number of live entities.
func (w *World) Len() int { return w.alive.Count() }

// Alive reports whether e is a live entity.
func (w *World) Alive(e Entity) bool { return w.alive.Get(int(e)) }

// allocate pops a recycled id or appends a new one. The returned entity has
// an empty signature.
func (w *World) allocate() Entity {
	if n := len(w.cemetery); n > 0 {
		e := w.cemetery[n-1]
		w.cemetery = w.cemetery[:n-1]
		w.signatures[e].Reset()
		if ce := w.log.Check(zap.DebugLevel, "recycled entity id"); ce != nil {
			ce.Write(zap.Uint32("entity", uint32(e)), zap.Int("cemetery", len(w.cemetery)))
		}
		return e
	}
	e := Entity(len(w.signatures))
	w.signatures = append(w.signatures, bitset.New(max(w.registry.Len(), 1)))
	return e
}

// Create makes a new entity holding the given components and returns it.
func (w *World) Create(insts ...Instance) Entity {
	e := w.allocate()
	sig := w.signatures[e]
	for _, inst := range insts {
		w.registry.write(e, inst)
	}
	w.registry.fillInstances(sig, insts)
	w.markDirty(sig)
	w.alive.Set(int(e), true)
	return e
}

// AddComponent attaches inst to e, replacing any existing value of the same
// type.
func (w *World) AddComponent(e Entity, inst Instance) error {
	if !w.Alive(e) {
		return eris.Wrapf(ErrDeadEntity, "add %s to entity %d", inst.Type().Name(), e)
	}
	sig := w.signatures[e]
	id := int(w.registry.Register(inst.Type()))
	if sig.Get(id) {
		w.registry.write(e, inst)
		return nil
	}

	// Queries can stop matching (none) or start matching (all) on an add, so
	// both states are dirtied.
	w.markDirty(sig)
	w.registry.write(e, inst)
	sig.Set(id, true)
	w.markDirty(sig)
	return nil
}

// RemoveComponent detaches ct from e. It reports false if e is dead or has no
// ct component.
func (w *World) RemoveComponent(e Entity, ct ComponentType) bool {
	if !w.Alive(e) {
		return false
	}
	te, ok := w.registry.lookup(ct)
	if !ok {
		return false
	}
	sig := w.signatures[e]
	if !sig.Get(int(te.id)) {
		return false
	}

	w.markDirty(sig)
	te.store.Delete(int(e))
	sig.Set(int(te.id), false)
	w.markDirty(sig)
	return true
}

// Remove destroys e and recycles its id. It reports false if e was not alive.
func (w *World) Remove(e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	sig := w.signatures[e]
	w.markDirty(sig)
	w.registry.RemoveAll(e)
	sig.Reset()
	w.alive.Set(int(e), false)
	w.cemetery = append(w.cemetery, e)
	w.invalidateRef(e)
	return true
}

// Has reports whether e is alive and has a ct component.
func (w *World) Has(e Entity, ct ComponentType) bool {
	if !w.Alive(e) {
		return false
	}
	te, ok := w.registry.lookup(ct)
	return ok && w.signatures[e].Get(int(te.id))
}

// Signature returns a copy of e's signature, or nil if e is not alive.
func (w *World) Signature(e Entity) *bitset.Bitset {
	if !w.Alive(e) {
		return nil
	}
	return w.signatures[e].Clone()
}

// Get returns e's components of the given types, in order. Mutable value
// types come back as *T pointing into storage, readonly ones as *T copies,
// bools as bool and tags as struct{}. It fails with ErrMissingComponent
// unless e has every type.
func (w *World) Get(e Entity, types ...ComponentType) ([]any, error) {
	if !w.Alive(e) {
		return nil, eris.Wrapf(ErrDeadEntity, "get from entity %d", e)
	}
	sig := w.signatures[e]
	need := w.pool.Rent()
	w.registry.FillBitset(need, types...)
	ok := sig.IsSupersetOf(need)
	w.pool.Return(need)
	if !ok {
		return nil, eris.Wrapf(ErrMissingComponent, "entity %d has %s, wants %s", e, w.describe(sig), typeNames(types))
	}

	out := make([]any, len(types))
	for j, ct := range types {
		out[j] = w.registry.entry(ct).store.value(e)
	}
	return out, nil
}

// MustGet is like Get but panics on error.
func (w *World) MustGet(e Entity, types ...ComponentType) []any {
	out, err := w.Get(e, types...)
	if err != nil {
		panic(err)
	}
	return out
}

// describe renders a signature as type names.
func (w *World) describe(sig *bitset.Bitset) string {
	var types []ComponentType
	for id := range sig.Ones() {
		if ct, ok := w.registry.TypeOf(TypeID(id)); ok {
			types = append(types, ct)
		}
	}
	return typeNames(types)
}

func typeNames(types []ComponentType) string {
	s := "["
	for i, ct := range types {
		if i > 0 {
			s += " "
		}
		s += ct.Name()
	}
	return s + "]"
}
