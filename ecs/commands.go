package ecs

import (
	"github.com/plus3/sparsecs/ecs/bitset"
	"go.uber.org/zap"
)

// Commands provides a buffer for deferred world operations that are executed at the end of a frame.
// Systems iterating a query must not change entity structure directly; they
// queue the change here instead.
type Commands struct {
	creates []createCommand
	deletes []Entity
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []deferCommand

	deleted *bitset.Bitset
}

func newCommands() *Commands {
	return &Commands{deleted: bitset.New(64)}
}

// NewCommands returns an empty buffer for use outside a scheduler.
func NewCommands() *Commands {
	return newCommands()
}

type deferCommand struct {
	fn func()
}

type createCommand struct {
	components []Instance
	then       func(Entity)
}

type addComponentCommand struct {
	entity    Entity
	component Instance
}

type removeComponentCommand struct {
	entity   Entity
	compType ComponentType
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Create queues an entity creation with the given components.
func (c *Commands) Create(components ...Instance) {
	c.creates = append(c.creates, createCommand{components: components})
}

// CreateThen queues an entity creation and calls then with the new entity
// once it exists.
func (c *Commands) CreateThen(then func(Entity), components ...Instance) {
	c.creates = append(c.creates, createCommand{components: components, then: then})
}

// Remove queues an entity removal.
func (c *Commands) Remove(entity Entity) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity Entity, component Instance) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity Entity, compType ComponentType) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.creates) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies all queued operations to w and resets the buffer. Removals
// run first, then component removals and additions for surviving entities,
// then creations and finally deferred functions.
func (c *Commands) Flush(w *World) {
	for _, cmd := range c.deletes {
		w.Remove(cmd)
		c.deleted.Set(int(cmd), true)
	}

	for _, cmd := range c.removes {
		if !c.deleted.Get(int(cmd.entity)) {
			w.RemoveComponent(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.adds {
		if c.deleted.Get(int(cmd.entity)) {
			continue
		}
		if err := w.AddComponent(cmd.entity, cmd.component); err != nil {
			w.log.Debug("dropped queued component", zap.Error(err))
		}
	}

	for _, cmd := range c.creates {
		e := w.Create(cmd.components...)
		if cmd.then != nil {
			cmd.then(e)
		}
	}

	for _, df := range c.defers {
		df.fn()
	}

	clear(c.creates)
	clear(c.adds)
	clear(c.removes)
	clear(c.defers)
	c.creates = c.creates[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
	c.deleted.Reset()
}
