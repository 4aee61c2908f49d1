package ecs

import "reflect"

// Singleton provides access to a single world-global value that is not
// associated with any entity. Use this for global simulation state,
// configuration, or other singleton data. Values are keyed by Go type.
type Singleton[T any] struct {
	world *World
	ptr   *T
}

func singletonKey[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// NewSingleton creates a new Singleton accessor for the given world.
// If initializer is provided and the singleton doesn't exist yet,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the singleton exists in the world after the call.
func NewSingleton[T any](w *World, initializer ...T) *Singleton[T] {
	key := singletonKey[T]()
	ptr, ok := w.singletons[key].(*T)
	if !ok {
		ptr = new(T)
		if len(initializer) > 0 {
			*ptr = initializer[0]
		}
		w.singletons[key] = ptr
	}
	return &Singleton[T]{world: w, ptr: ptr}
}

// Init binds the Singleton to a world without creating the value.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(w *World) {
	s.world = w
	s.ptr = nil
	s.updateCache()
}

// Get returns a pointer to the singleton value.
// Returns nil if the singleton has not been created.
func (s *Singleton[T]) Get() *T {
	if s.ptr == nil {
		s.updateCache()
	}
	return s.ptr
}

// updateCache refreshes the cached pointer from the world
func (s *Singleton[T]) updateCache() {
	if s.world == nil {
		return
	}
	s.ptr, _ = s.world.singletons[singletonKey[T]()].(*T)
}

// Exists returns true if the singleton value has been created
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

// RemoveSingleton deletes the T singleton from w and reports whether it
// existed. Accessors created earlier keep their last value.
func RemoveSingleton[T any](w *World) bool {
	key := singletonKey[T]()
	_, ok := w.singletons[key]
	delete(w.singletons, key)
	return ok
}
