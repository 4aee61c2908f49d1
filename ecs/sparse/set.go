package sparse

import "github.com/plus3/sparsecs/ecs/bitset"

// Store is the shape-independent view of a container, used where the value
// type is not known statically.
type Store interface {
	Has(i int) bool
	// Delete removes i and reports whether it was present.
	Delete(i int) bool
	Len() int
	// Indices returns the present indices in dense order. The slice is owned
	// by the container and is only valid until the next mutation.
	Indices() []int
	Clear()
}

// Set is the typed contract shared by Dense, Bools and Tags.
type Set[T any] interface {
	Store
	// Add stores v at i. It is a no-op returning false if i is present.
	Add(i int, v T) bool
	// Upsert stores v at i, overwriting any existing value. It reports whether
	// i was newly added.
	Upsert(i int, v T) bool
	// Remove deletes i and returns its value, or false if i was absent.
	Remove(i int) (T, bool)
	// Get returns the value at i, or false if i is absent.
	Get(i int) (T, bool)
	// GetUnchecked returns the value at i without checking presence.
	//
	// The caller MUST already know that i is present, normally because the
	// owning entity's signature says so. Calling it for an absent index is a
	// programming error: it panics, or for a recycled slot may return another
	// entry's data. Use Get when presence is not guaranteed.
	GetUnchecked(i int) T
}

var (
	_ Set[int]      = (*Dense[int])(nil)
	_ Set[bool]     = (*Bools)(nil)
	_ Set[struct{}] = (*Tags)(nil)
)

// Dense is the general container: values are stored in a packed slice
// parallel to the dense index array.
type Dense[T any] struct {
	index
	values []T
}

// NewDense returns an empty container with room for capacity entries.
func NewDense[T any](capacity int) *Dense[T] {
	return &Dense[T]{
		index:  index{dense: make([]int, 0, capacity)},
		values: make([]T, 0, capacity),
	}
}

func (d *Dense[T]) Add(i int, v T) bool {
	if _, added := d.insert(i); !added {
		return false
	}
	d.values = append(d.values, v)
	return true
}

func (d *Dense[T]) Upsert(i int, v T) bool {
	s, added := d.insert(i)
	if added {
		d.values = append(d.values, v)
	} else {
		d.values[s] = v
	}
	return added
}

func (d *Dense[T]) Remove(i int) (T, bool) {
	var zero T
	slot, last, ok := d.remove(i)
	if !ok {
		return zero, false
	}
	v := d.values[slot]
	d.values[slot] = d.values[last]
	d.values[last] = zero
	d.values = d.values[:last]
	return v, true
}

func (d *Dense[T]) Delete(i int) bool {
	_, ok := d.Remove(i)
	return ok
}

func (d *Dense[T]) Get(i int) (T, bool) {
	s, ok := d.slot(i)
	if !ok {
		var zero T
		return zero, false
	}
	return d.values[s], true
}

func (d *Dense[T]) GetUnchecked(i int) T {
	return d.values[d.sparse[i]]
}

// Ptr returns a pointer to the stored value at i, or nil if absent. The
// pointer is invalidated by any later Add, Upsert or Remove.
func (d *Dense[T]) Ptr(i int) *T {
	s, ok := d.slot(i)
	if !ok {
		return nil
	}
	return &d.values[s]
}

// PtrUnchecked is Ptr without the presence check; see GetUnchecked.
func (d *Dense[T]) PtrUnchecked(i int) *T {
	return &d.values[d.sparse[i]]
}

func (d *Dense[T]) Has(i int) bool { return d.has(i) }
func (d *Dense[T]) Len() int       { return len(d.dense) }
func (d *Dense[T]) Indices() []int { return d.dense }

// Values returns the packed values in the same order as Indices.
func (d *Dense[T]) Values() []T { return d.values }

func (d *Dense[T]) Clear() {
	d.clear()
	clear(d.values)
	d.values = d.values[:0]
}

// Bools stores booleans in a bitset keyed by index instead of a value slice.
type Bools struct {
	index
	values *bitset.Bitset
}

func NewBools(capacity int) *Bools {
	return &Bools{
		index:  index{dense: make([]int, 0, capacity)},
		values: bitset.New(capacity),
	}
}

func (b *Bools) Add(i int, v bool) bool {
	if _, added := b.insert(i); !added {
		return false
	}
	b.values.Set(i, v)
	return true
}

func (b *Bools) Upsert(i int, v bool) bool {
	_, added := b.insert(i)
	b.values.Set(i, v)
	return added
}

func (b *Bools) Remove(i int) (bool, bool) {
	if _, _, ok := b.remove(i); !ok {
		return false, false
	}
	v := b.values.Get(i)
	b.values.Set(i, false)
	return v, true
}

func (b *Bools) Delete(i int) bool {
	_, ok := b.Remove(i)
	return ok
}

func (b *Bools) Get(i int) (bool, bool) {
	if !b.has(i) {
		return false, false
	}
	return b.values.Get(i), true
}

// GetUnchecked returns the stored boolean. For an absent index it returns
// false rather than panicking, which is still a caller bug.
func (b *Bools) GetUnchecked(i int) bool { return b.values.Get(i) }

// TrueCount returns how many present entries hold true.
func (b *Bools) TrueCount() int { return b.values.Count() }

func (b *Bools) Has(i int) bool { return b.has(i) }
func (b *Bools) Len() int       { return len(b.dense) }
func (b *Bools) Indices() []int { return b.dense }

func (b *Bools) Clear() {
	b.clear()
	b.values.Reset()
}

// Tags is a presence-only container; every present entry has the unit value.
type Tags struct {
	index
}

func NewTags(capacity int) *Tags {
	return &Tags{index: index{dense: make([]int, 0, capacity)}}
}

func (t *Tags) Add(i int, _ struct{}) bool {
	_, added := t.insert(i)
	return added
}

func (t *Tags) Upsert(i int, _ struct{}) bool {
	_, added := t.insert(i)
	return added
}

func (t *Tags) Remove(i int) (struct{}, bool) {
	_, _, ok := t.remove(i)
	return struct{}{}, ok
}

func (t *Tags) Delete(i int) bool {
	_, _, ok := t.remove(i)
	return ok
}

func (t *Tags) Get(i int) (struct{}, bool) {
	return struct{}{}, t.has(i)
}

func (t *Tags) GetUnchecked(int) struct{} { return struct{}{} }

func (t *Tags) Has(i int) bool { return t.has(i) }
func (t *Tags) Len() int       { return len(t.dense) }
func (t *Tags) Indices() []int { return t.dense }
func (t *Tags) Clear()         { t.clear() }
