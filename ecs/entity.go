package ecs

import "weak"

// Entity is an index into a World. Ids of removed entities are reused, so an
// Entity held across frames may later name a different entity; hold an
// EntityRef when that matters.
type Entity uint32

// EntityRef is a stable reference to an entity. It is invalidated when the
// entity is removed, even if its id is later recycled.
type EntityRef struct {
	entity Entity
	valid  bool
}

// Entity returns the referenced entity, or false once it has been removed.
func (r *EntityRef) Entity() (Entity, bool) {
	if r == nil || !r.valid {
		return 0, false
	}
	return r.entity, true
}

// Valid reports whether the referenced entity is still alive.
func (r *EntityRef) Valid() bool {
	return r != nil && r.valid
}

// Ref returns the EntityRef for e, or nil if e is not alive. Repeated calls
// return the same ref while any holder keeps it reachable.
func (w *World) Ref(e Entity) *EntityRef {
	if !w.Alive(e) {
		return nil
	}

	if weakPtr, ok := w.refs.Get(e); ok {
		if ref := weakPtr.Value(); ref != nil {
			return ref
		}
		// Weak pointer is dead, remove it
		w.refs.Del(e)
	}

	ref := &EntityRef{entity: e, valid: true}
	w.refs.Put(e, weak.Make(ref))
	return ref
}

// invalidateRef marks any outstanding ref to e as stale.
func (w *World) invalidateRef(e Entity) {
	weakPtr, ok := w.refs.Get(e)
	if !ok {
		return
	}
	if ref := weakPtr.Value(); ref != nil {
		ref.valid = false
	}
	w.refs.Del(e)
}
