package ecs

import (
	"slices"

	"github.com/plus3/sparsecs/ecs/bitset"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Snapshot is a serializable copy of a world's entities and component
// values. Component types are recorded by name, so a snapshot can only be
// restored into a world whose registry knows each name exactly once.
type Snapshot struct {
	// Next is one past the highest entity id ever allocated.
	Next Entity `yaml:"next"`
	// Cemetery lists recycled ids; the last one is reused first.
	Cemetery   []Entity          `yaml:"cemetery,flow"`
	Entities   []EntityRecord    `yaml:"entities"`
	Components []ComponentRecord `yaml:"components"`
}

// EntityRecord is one live entity and the names of its component types.
type EntityRecord struct {
	ID    Entity   `yaml:"id"`
	Types []string `yaml:"types,flow"`
}

// ComponentRecord holds every value of one component type. Values is
// parallel to Entities and empty for tags.
type ComponentRecord struct {
	Name     string      `yaml:"name"`
	Shape    string      `yaml:"shape"`
	Readonly bool        `yaml:"readonly,omitempty"`
	Entities []Entity    `yaml:"entities,flow"`
	Values   []yaml.Node `yaml:"values,omitempty"`
}

// Snapshot captures the world. It fails with ErrAmbiguousType when two
// populated component types share a name.
func (w *World) Snapshot() (*Snapshot, error) {
	s := &Snapshot{
		Next:     Entity(len(w.signatures)),
		Cemetery: slices.Clone(w.cemetery),
	}

	seen := make(map[string]bool, len(w.registry.entries))
	for _, te := range w.registry.entries {
		if te.store.Len() == 0 {
			continue
		}
		name := te.ct.Name()
		if seen[name] {
			return nil, eris.Wrapf(ErrAmbiguousType, "snapshot of %q", name)
		}
		seen[name] = true

		rec := ComponentRecord{
			Name:     name,
			Shape:    te.ct.Shape().String(),
			Readonly: te.ct.Readonly(),
			Entities: make([]Entity, 0, te.store.Len()),
		}
		for _, i := range te.store.Indices() {
			rec.Entities = append(rec.Entities, Entity(i))
		}
		slices.Sort(rec.Entities)

		if te.ct.Shape() != ShapeTag {
			rec.Values = make([]yaml.Node, len(rec.Entities))
			for k, e := range rec.Entities {
				n, err := te.store.encode(e)
				if err != nil {
					return nil, eris.Wrapf(err, "snapshot of %q", name)
				}
				rec.Values[k] = n
			}
		}
		s.Components = append(s.Components, rec)
	}

	for i := range w.alive.Ones() {
		rec := EntityRecord{ID: Entity(i)}
		for id := range w.signatures[i].Ones() {
			rec.Types = append(rec.Types, w.registry.entries[id].ct.Name())
		}
		s.Entities = append(s.Entities, rec)
	}

	return s, nil
}

// Restore replaces the world's contents with s. Entity ids, signatures and
// the recycling order are preserved. Component types are resolved by name in
// the world's registry; unknown or ambiguous names fail with ErrUnknownType
// or ErrAmbiguousType, and inconsistent snapshots with ErrCorruptSnapshot.
// The world is left untouched when Restore fails.
//
// Every query cache is invalidated, every EntityRef is invalidated and
// stores previously returned by Registry.Store are detached.
func (w *World) Restore(s *Snapshot) error {
	next := int(s.Next)
	if len(s.Entities)+len(s.Cemetery) != next {
		return eris.Wrapf(ErrCorruptSnapshot, "%d entities and %d recycled ids, next id %d",
			len(s.Entities), len(s.Cemetery), next)
	}

	alive := bitset.New(next)
	for _, rec := range s.Entities {
		if int(rec.ID) >= next || alive.Get(int(rec.ID)) {
			return eris.Wrapf(ErrCorruptSnapshot, "entity %d", rec.ID)
		}
		alive.Set(int(rec.ID), true)
	}
	recycled := bitset.New(next)
	for _, e := range s.Cemetery {
		if int(e) >= next || alive.Get(int(e)) || recycled.Get(int(e)) {
			return eris.Wrapf(ErrCorruptSnapshot, "recycled id %d", e)
		}
		recycled.Set(int(e), true)
	}

	// Decode into fresh stores so a failure leaves the world as it was.
	stores := make([]componentStore, len(w.registry.entries))
	for i, te := range w.registry.entries {
		stores[i] = te.ct.newStore(w.registry.capacity)
	}
	signatures := make([]*bitset.Bitset, next)
	for i := range signatures {
		signatures[i] = bitset.New(max(w.registry.Len(), 1))
	}

	for _, rec := range s.Components {
		ct, err := w.registry.TypeByName(rec.Name)
		if err != nil {
			return eris.Wrap(err, "restore")
		}
		if ct.Shape().String() != rec.Shape {
			return eris.Wrapf(ErrCorruptSnapshot, "%q has shape %s, snapshot says %s", rec.Name, ct.Shape(), rec.Shape)
		}
		if ct.Shape() != ShapeTag && len(rec.Values) != len(rec.Entities) {
			return eris.Wrapf(ErrCorruptSnapshot, "%q has %d entities and %d values", rec.Name, len(rec.Entities), len(rec.Values))
		}

		te, _ := w.registry.lookup(ct)
		store := stores[te.id]
		for k, e := range rec.Entities {
			if !alive.Get(int(e)) {
				return eris.Wrapf(ErrCorruptSnapshot, "%q on dead entity %d", rec.Name, e)
			}
			var n *yaml.Node
			if ct.Shape() != ShapeTag {
				n = &rec.Values[k]
			}
			if err := store.decode(e, n); err != nil {
				return eris.Wrapf(err, "restore %q", rec.Name)
			}
			signatures[e].Set(int(te.id), true)
		}
	}

	want := bitset.New(w.registry.Len())
	for _, rec := range s.Entities {
		want.Reset()
		for _, name := range rec.Types {
			ct, err := w.registry.TypeByName(name)
			if err != nil {
				return eris.Wrapf(err, "restore entity %d", rec.ID)
			}
			want.Set(int(w.registry.Register(ct)), true)
		}
		if !want.Equals(signatures[rec.ID]) {
			return eris.Wrapf(ErrCorruptSnapshot, "entity %d lists %v but holds %s", rec.ID, rec.Types, w.describe(signatures[rec.ID]))
		}
	}

	for e := range w.signatures {
		w.invalidateRef(Entity(e))
	}
	for i, te := range w.registry.entries {
		te.store = stores[i]
	}
	w.signatures = signatures
	w.alive = alive
	w.cemetery = slices.Clone(s.Cemetery)
	for _, c := range w.caches {
		c.dirty = true
	}

	w.log.Debug("restored snapshot",
		zap.Int("entities", len(s.Entities)),
		zap.Int("components", len(s.Components)),
		zap.Int("recycled", len(s.Cemetery)),
	)
	return nil
}
