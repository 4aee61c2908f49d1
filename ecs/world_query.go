package ecs

import (
	"iter"

	"github.com/plus3/sparsecs/ecs/bitset"
	"go.uber.org/zap"
)

// queryCache holds the matching entities of one query. When dirty is false,
// entities equals the set of live entities satisfying the query.
type queryCache struct {
	query     *Query
	entities  []Entity
	dirty     bool
	iterating int
}

// markDirty flags every cached query that sig satisfies. Mutations call it
// with the signature before and after the change.
// It scans every cache.
func (w *World) markDirty(sig *bitset.Bitset) {
	for _, c := range w.caches {
		if !c.dirty && c.query.SatisfiedBy(sig) {
			c.dirty = true
		}
	}
}

// cacheFor returns the cache for q, creating a dirty one on first use.
func (w *World) cacheFor(q *Query) *queryCache {
	if q.registry != w.registry {
		panic(ErrForeignQuery)
	}
	if c, ok := w.cacheIndex.Get(q.id); ok {
		return c
	}
	c := &queryCache{query: q, dirty: true}
	w.caches = append(w.caches, c)
	w.cacheIndex.Put(q.id, c)
	return c
}

// fresh returns q's cache, rebuilding it first if dirty.
func (w *World) fresh(q *Query) *queryCache {
	c := w.cacheFor(q)
	if c.dirty {
		w.rebuild(c)
	}
	return c
}

// rebuild rescans every live entity's signature.
func (w *World) rebuild(c *queryCache) {
	entities := c.entities[:0]
	if c.iterating > 0 {
		// An iteration still reads the old slice.
		entities = make([]Entity, 0, len(c.entities))
	}
	for i := range w.alive.Ones() {
		if c.query.SatisfiedBy(w.signatures[i]) {
			entities = append(entities, Entity(i))
		}
	}
	c.entities = entities
	c.dirty = false

	if ce := w.log.Check(zap.DebugLevel, "rebuilt query cache"); ce != nil {
		ce.Write(zap.Stringer("query", c.query), zap.Int("matches", len(entities)))
	}
}

// Refresh rebuilds every dirty query cache.
func (w *World) Refresh() {
	for _, c := range w.caches {
		if c.dirty {
			w.rebuild(c)
		}
	}
}

// ForgetQuery drops q's cache. It reports whether there was one.
func (w *World) ForgetQuery(q *Query) bool {
	c, ok := w.cacheIndex.Get(q.id)
	if !ok {
		return false
	}
	w.cacheIndex.Del(q.id)
	for i, other := range w.caches {
		if other == c {
			w.caches = append(w.caches[:i], w.caches[i+1:]...)
			break
		}
	}
	return true
}

// Entities returns the entities matching q. The slice is owned by the world
// and is only valid until the next mutation.
func (w *World) Entities(q *Query) []Entity {
	return w.fresh(q).entities
}

// Count returns the number of entities matching q.
func (w *World) Count(q *Query) int {
	return len(w.fresh(q).entities)
}

// Query calls fn with the parameter components of every entity matching q.
// See EntityQuery.
func (w *World) Query(q *Query, fn func(row []any)) {
	w.EntityQuery(q, func(_ Entity, row []any) { fn(row) })
}

// EntityQuery calls fn for every entity matching q with its parameter
// components laid out in q.Params order. Values follow the same rules as
// Get. row is reused between calls and must not be retained.
//
// Structural changes to the world during iteration are not visible to the
// running iteration and may invalidate pointers in row; queue them with
// Commands instead.
func (w *World) EntityQuery(q *Query, fn func(e Entity, row []any)) {
	for e, row := range w.Rows(q) {
		fn(e, row)
	}
}

// Rows iterates the entities matching q together with their parameter
// components. The same rules as EntityQuery apply.
func (w *World) Rows(q *Query) iter.Seq2[Entity, []any] {
	return func(yield func(Entity, []any) bool) {
		c := w.fresh(q)
		entities := c.entities
		params := q.params
		stride := len(params)

		c.iterating++
		defer func() { c.iterating-- }()

		if stride == 0 {
			for _, e := range entities {
				if !yield(e, nil) {
					return
				}
			}
			return
		}

		rows := w.registry.Fetch(entities, params, w.rentRows())
		defer func() {
			w.registry.Release(rows, params)
			w.returnRows(rows)
		}()

		for i, e := range entities {
			row := rows[i*stride : (i+1)*stride : (i+1)*stride]
			if !yield(e, row) {
				return
			}
		}
	}
}

func (w *World) rentRows() []any {
	if n := len(w.rowBufs); n > 0 {
		buf := w.rowBufs[n-1]
		w.rowBufs[n-1] = nil
		w.rowBufs = w.rowBufs[:n-1]
		return buf
	}
	return nil
}

func (w *World) returnRows(buf []any) {
	w.rowBufs = append(w.rowBufs, buf[:0])
}
