// Package sparse implements the packed dense/sparse containers that hold
// component data keyed by entity index.
//
// Every container keeps two arrays: sparse maps an entity index to its slot
// in the dense array, and dense holds the present entries back to back with
// no holes. Removal moves the last dense entry into the freed slot, so
// iteration over Indices (and Values for Dense) only ever touches live data.
package sparse

const tombstone = -1

// index is the presence bookkeeping shared by all container shapes.
type index struct {
	sparse []int32
	dense  []int
}

func (x *index) slot(i int) (int, bool) {
	if i < 0 || i >= len(x.sparse) {
		return 0, false
	}
	s := x.sparse[i]
	if s == tombstone {
		return 0, false
	}
	return int(s), true
}

func (x *index) has(i int) bool {
	_, ok := x.slot(i)
	return ok
}

// insert appends i to the dense array and returns its slot. It reports false
// if i was already present.
func (x *index) insert(i int) (int, bool) {
	if i < 0 {
		panic("sparse: negative index")
	}
	if s, ok := x.slot(i); ok {
		return s, false
	}
	if i >= len(x.sparse) {
		oldLen := len(x.sparse)
		newLen := max(oldLen*2, i+1, 64)
		grown := make([]int32, newLen)
		copy(grown, x.sparse)
		for j := oldLen; j < newLen; j++ {
			grown[j] = tombstone
		}
		x.sparse = grown
	}
	s := len(x.dense)
	x.dense = append(x.dense, i)
	x.sparse[i] = int32(s)
	return s, true
}

// remove swap-pops i out of the dense array. It returns the freed slot and the
// slot whose entry was moved into it; the caller must move its own payload
// from last to slot the same way. When slot == last nothing moved.
func (x *index) remove(i int) (slot, last int, ok bool) {
	slot, ok = x.slot(i)
	if !ok {
		return 0, 0, false
	}
	last = len(x.dense) - 1
	moved := x.dense[last]
	x.dense[slot] = moved
	x.sparse[moved] = int32(slot)
	x.dense = x.dense[:last]
	x.sparse[i] = tombstone

	if debug {
		x.check(i, moved)
	}
	return slot, last, true
}

func (x *index) clear() {
	for _, i := range x.dense {
		x.sparse[i] = tombstone
	}
	x.dense = x.dense[:0]
}

// check verifies the dense/sparse correspondence after removing removed.
func (x *index) check(removed, moved int) {
	assert(!x.has(removed), "removed index still present")
	if moved != removed {
		s, ok := x.slot(moved)
		assert(ok && x.dense[s] == moved, "moved entry has a stale sparse pointer")
	}
	for s, i := range x.dense {
		assert(int(x.sparse[i]) == s, "dense and sparse disagree")
	}
}
