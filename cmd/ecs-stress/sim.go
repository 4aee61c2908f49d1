package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/plus3/sparsecs/ecs"
)

type payload struct {
	X, Y float64
	N    int
}

// catalog holds the randomly generated component types of one run.
type catalog struct {
	values []*ecs.Component[payload]
	bools  []*ecs.Component[bool]
	tags   []*ecs.Component[struct{}]
	all    []ecs.ComponentType
}

// newCatalog creates n component types: mostly payload values, some of them
// readonly, plus bools and tags.
func newCatalog(rng *rand.Rand, n int) *catalog {
	c := &catalog{}
	for i := range n {
		var ct ecs.ComponentType
		switch r := rng.IntN(10); {
		case r < 6:
			var opts []ecs.ComponentOption
			if rng.IntN(4) == 0 {
				opts = append(opts, ecs.Readonly())
			}
			v := ecs.NewComponent[payload](fmt.Sprintf("value%03d", i), opts...)
			c.values = append(c.values, v)
			ct = v
		case r < 8:
			b := ecs.NewBoolComponent(fmt.Sprintf("flag%03d", i))
			c.bools = append(c.bools, b)
			ct = b
		default:
			t := ecs.NewTag(fmt.Sprintf("tag%03d", i))
			c.tags = append(c.tags, t)
			ct = t
		}
		c.all = append(c.all, ct)
	}
	return c
}

func (c *catalog) pick(rng *rand.Rand) ecs.ComponentType {
	return c.all[rng.IntN(len(c.all))]
}

// instance returns a random value for ct.
func (c *catalog) instance(rng *rand.Rand, ct ecs.ComponentType) ecs.Instance {
	switch h := ct.(type) {
	case *ecs.Component[payload]:
		return h.With(payload{X: rng.Float64(), Y: rng.Float64()})
	case *ecs.Component[bool]:
		return h.With(rng.IntN(2) == 0)
	case *ecs.Component[struct{}]:
		return h.With(struct{}{})
	}
	panic("unknown component type " + ct.Name())
}

// spawn creates an entity with 1 to maxComponents distinct random components.
func (c *catalog) spawn(rng *rand.Rand, w *ecs.World, maxComponents int) ecs.Entity {
	return w.Create(c.randomInstances(rng, maxComponents)...)
}

func (c *catalog) randomInstances(rng *rand.Rand, maxComponents int) []ecs.Instance {
	n := rng.IntN(maxComponents) + 1
	insts := make([]ecs.Instance, 0, n)
	seen := make(map[ecs.ComponentType]bool, n)
	for range n {
		ct := c.pick(rng)
		if seen[ct] {
			continue
		}
		seen[ct] = true
		insts = append(insts, c.instance(rng, ct))
	}
	return insts
}

// randomQuery builds a query requiring one or two types, sometimes excluding
// another.
func (c *catalog) randomQuery(rng *rand.Rand, w *ecs.World) (*ecs.Query, error) {
	opts := []ecs.QueryOption{ecs.All(c.pick(rng))}
	if rng.IntN(2) == 0 {
		opts = append(opts, ecs.All(c.pick(rng)))
	}
	switch rng.IntN(4) {
	case 0:
		opts = append(opts, ecs.None(c.pick(rng)))
	case 1:
		opts = append(opts, ecs.Some(c.pick(rng), c.pick(rng)))
	}
	return w.NewQuery(opts...)
}

// churnSystem touches every entity matching its query and queues random
// structural changes for a fraction of them.
type churnSystem struct {
	name    string
	query   *ecs.Query
	catalog *catalog
	rng     *rand.Rand
	churn   float64

	maxComponents int

	Stats ecs.Singleton[simStats]
}

type simStats struct {
	Touched  int64
	Churned  int64
	Spawned  int64
	Removals int64
}

func (s *churnSystem) Name() string { return s.name }

func (s *churnSystem) Execute(frame *ecs.UpdateFrame) {
	stats := s.Stats.Get()
	dt := frame.Time.Seconds()

	for e, row := range frame.World.Rows(s.query) {
		for _, v := range row {
			if p, ok := v.(*payload); ok {
				p.X += p.Y * dt
				p.N++
			}
		}
		if stats != nil {
			stats.Touched++
		}

		if s.rng.Float64() >= s.churn {
			continue
		}
		if stats != nil {
			stats.Churned++
		}
		switch s.rng.IntN(3) {
		case 0:
			ct := s.catalog.pick(s.rng)
			frame.Commands.AddComponent(e, s.catalog.instance(s.rng, ct))
		case 1:
			frame.Commands.RemoveComponent(e, s.catalog.pick(s.rng))
		default:
			frame.Commands.Remove(e)
			frame.Commands.Create(s.catalog.randomInstances(s.rng, s.maxComponents)...)
			if stats != nil {
				stats.Removals++
				stats.Spawned++
			}
		}
	}
}
