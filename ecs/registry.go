package ecs

import (
	"github.com/kamstrup/intmap"
	"github.com/plus3/sparsecs/ecs/bitset"
	"github.com/plus3/sparsecs/ecs/sparse"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TypeID is a component type's id within one Registry. It is also the bit
// the type occupies in signatures.
type TypeID int

type typeEntry struct {
	id    TypeID
	ct    ComponentType
	store componentStore
}

// Registry owns component type ids and the per-type storage. Each World has
// its own Registry, allowing multiple independent worlds to coexist without
// interference. A Registry backs at most one World; NewWorld panics with
// ErrSharedRegistry on reuse.
type Registry struct {
	entries  []*typeEntry
	bySerial *intmap.Map[uint64, *typeEntry]
	capacity int
	log      *zap.Logger
	owner    *World
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		entries:  make([]*typeEntry, 0, 32),
		bySerial: intmap.New[uint64, *typeEntry](32),
		capacity: o.capacity,
		log:      o.log,
	}
}

// entry returns the registration for ct, creating it on first use.
func (r *Registry) entry(ct ComponentType) *typeEntry {
	if te, ok := r.bySerial.Get(ct.Serial()); ok {
		return te
	}
	te := &typeEntry{
		id:    TypeID(len(r.entries)),
		ct:    ct,
		store: ct.newStore(r.capacity),
	}
	r.entries = append(r.entries, te)
	r.bySerial.Put(ct.Serial(), te)
	r.log.Debug("registered component type",
		zap.String("name", ct.Name()),
		zap.Int("id", int(te.id)),
		zap.Stringer("shape", ct.Shape()),
		zap.Bool("readonly", ct.Readonly()),
	)
	return te
}

// lookup returns the registration for ct without creating one.
func (r *Registry) lookup(ct ComponentType) (*typeEntry, bool) {
	return r.bySerial.Get(ct.Serial())
}

// Register returns ct's id, registering it if needed. Registering the same
// handle again returns the same id and storage.
func (r *Registry) Register(ct ComponentType) TypeID {
	return r.entry(ct).id
}

// Registered reports whether ct has been registered.
func (r *Registry) Registered(ct ComponentType) bool {
	_, ok := r.lookup(ct)
	return ok
}

// Store returns the backing store for ct.
func (r *Registry) Store(ct ComponentType) sparse.Store {
	return r.entry(ct).store
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Types returns the registered types ordered by id.
func (r *Registry) Types() []ComponentType {
	types := make([]ComponentType, len(r.entries))
	for i, te := range r.entries {
		types[i] = te.ct
	}
	return types
}

// TypeOf returns the component type registered under id.
func (r *Registry) TypeOf(id TypeID) (ComponentType, bool) {
	if id < 0 || int(id) >= len(r.entries) {
		return nil, false
	}
	return r.entries[id].ct, true
}

// TypeByName resolves a registered type by name.
func (r *Registry) TypeByName(name string) (ComponentType, error) {
	var found ComponentType
	for _, te := range r.entries {
		if te.ct.Name() != name {
			continue
		}
		if found != nil {
			return nil, eris.Wrapf(ErrAmbiguousType, "name %q", name)
		}
		found = te.ct
	}
	if found == nil {
		return nil, eris.Wrapf(ErrUnknownType, "name %q", name)
	}
	return found, nil
}

// TypeSignature returns a fresh single-bit signature for ct.
func (r *Registry) TypeSignature(ct ComponentType) *bitset.Bitset {
	return bitset.Of(int(r.entry(ct).id))
}

// BitsetFromTypes returns a fresh signature with exactly the given types set.
func (r *Registry) BitsetFromTypes(types ...ComponentType) *bitset.Bitset {
	b := bitset.New(len(r.entries))
	r.FillBitset(b, types...)
	return b
}

// FillBitset sets the bits of the given types in dst.
func (r *Registry) FillBitset(dst *bitset.Bitset, types ...ComponentType) {
	for _, ct := range types {
		dst.Set(int(r.entry(ct).id), true)
	}
}

// BitsetFromInstances returns a fresh signature for the instances' types.
func (r *Registry) BitsetFromInstances(insts ...Instance) *bitset.Bitset {
	b := bitset.New(len(r.entries))
	r.fillInstances(b, insts)
	return b
}

func (r *Registry) fillInstances(dst *bitset.Bitset, insts []Instance) {
	for _, inst := range insts {
		dst.Set(int(r.entry(inst.Type()).id), true)
	}
}

// write stores inst for e and returns the type's id.
func (r *Registry) write(e Entity, inst Instance) TypeID {
	te := r.entry(inst.Type())
	inst.write(te.store, e)
	return te.id
}

// Has reports whether e has a ct component.
func (r *Registry) Has(e Entity, ct ComponentType) bool {
	te, ok := r.lookup(ct)
	return ok && te.store.Has(int(e))
}

// Remove deletes e's ct component and reports whether there was one.
func (r *Registry) Remove(e Entity, ct ComponentType) bool {
	te, ok := r.lookup(ct)
	return ok && te.store.Delete(int(e))
}

// RemoveAll deletes e from every registered store and reports whether
// anything was removed. It visits every registered type.
func (r *Registry) RemoveAll(e Entity) bool {
	removed := false
	for _, te := range r.entries {
		if te.store.Delete(int(e)) {
			removed = true
		}
	}
	return removed
}

// Fetch collects component rows for a batch of entities. The result is
// row-major: out[i*len(types)+j] holds type j of entities[i]. Each type's
// column is filled in one pass over its store. out's capacity is reused.
//
// Every entity must have every type. Mutable value types yield *T pointing
// into storage; readonly value types yield pooled *T copies that must be
// handed back with Release; bool types yield bool and tags yield struct{}.
func (r *Registry) Fetch(entities []Entity, types []ComponentType, out []any) []any {
	n := len(entities) * len(types)
	if cap(out) < n {
		out = make([]any, n)
	}
	out = out[:n]
	stride := len(types)
	for j, ct := range types {
		r.entry(ct).store.fetch(entities, out, j, stride)
	}
	return out
}

// Release returns any pooled wrappers placed in rows by Fetch and clears the
// rows.
func (r *Registry) Release(rows []any, types []ComponentType) {
	stride := len(types)
	if stride == 0 {
		return
	}
	for j, ct := range types {
		if te, ok := r.lookup(ct); ok {
			te.store.release(rows, j, stride)
		}
	}
	clear(rows)
}

// RentWrapper returns a reusable wrapper (*T for value types) for ct.
func (r *Registry) RentWrapper(ct ComponentType) any {
	return r.entry(ct).store.rentWrapper()
}

// ReturnWrapper hands a wrapper obtained from RentWrapper back to ct's pool.
func (r *Registry) ReturnWrapper(ct ComponentType, w any) {
	if te, ok := r.lookup(ct); ok {
		te.store.returnWrapper(w)
	}
}

// DisposeAll clears every store and forgets every type. It is meant for test
// teardown; worlds using the registry are left inconsistent.
func (r *Registry) DisposeAll() {
	for _, te := range r.entries {
		te.store.Clear()
	}
	r.entries = r.entries[:0]
	r.bySerial.Clear()
	r.log.Debug("disposed all component types")
}

func typedStoreOf[T any](r *Registry, c *Component[T]) typedStore[T] {
	return r.entry(c).store.(typedStore[T])
}

// Lookup returns e's c value, or false if e has none.
func Lookup[T any](r *Registry, e Entity, c *Component[T]) (T, bool) {
	return typedStoreOf(r, c).set().Get(int(e))
}

// LookupUnchecked returns e's c value without checking presence. e must have
// a c component; see sparse.Set.GetUnchecked.
func LookupUnchecked[T any](r *Registry, e Entity, c *Component[T]) T {
	return typedStoreOf(r, c).set().GetUnchecked(int(e))
}

// Put stores v as e's c value and reports whether it was newly added. It only
// touches storage; use World.AddComponent to keep signatures in sync.
func Put[T any](r *Registry, e Entity, c *Component[T], v T) bool {
	return typedStoreOf(r, c).upsert(e, v)
}

// Take removes and returns e's c value. Like Put it bypasses the World.
func Take[T any](r *Registry, e Entity, c *Component[T]) (T, bool) {
	return typedStoreOf(r, c).set().Remove(int(e))
}
