package ecs

import (
	"fmt"
	"sync/atomic"
)

// Shape selects the storage layout used for a component type.
type Shape uint8

const (
	// ShapeValue stores arbitrary values packed in a slice.
	ShapeValue Shape = iota
	// ShapeBool stores booleans in a bitset.
	ShapeBool
	// ShapeTag stores presence only; the value is always struct{}{}.
	ShapeTag
)

func (s Shape) String() string {
	switch s {
	case ShapeValue:
		return "value"
	case ShapeBool:
		return "bool"
	case ShapeTag:
		return "tag"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// ParseShape is the inverse of Shape.String.
func ParseShape(s string) (Shape, bool) {
	switch s {
	case "value":
		return ShapeValue, true
	case "bool":
		return ShapeBool, true
	case "tag":
		return ShapeTag, true
	}
	return 0, false
}

// ComponentType is the type-erased view of a *Component[T]. Registries
// identify component types by handle identity, so two handles created by
// separate NewComponent calls are distinct types even if they share a name
// and a Go type.
type ComponentType interface {
	Name() string
	Shape() Shape
	Readonly() bool
	// Serial is unique per handle for the lifetime of the process.
	Serial() uint64

	newStore(capacity int) componentStore
}

var lastSerial atomic.Uint64

// Component is a handle describing one kind of component data. Create one per
// component kind, usually as a package-level variable, and reuse it.
type Component[T any] struct {
	name     string
	shape    Shape
	readonly bool
	serial   uint64
}

// ComponentOption configures a component handle.
type ComponentOption func(*componentOptions)

type componentOptions struct {
	readonly bool
}

// Readonly marks a component type whose stored values must not be mutated in
// place once attached. Queries hand out copies of readonly values instead of
// pointers into storage, and Mut panics for them. Replacing the value with
// AddComponent is still allowed.
func Readonly() ComponentOption {
	return func(o *componentOptions) { o.readonly = true }
}

func newComponent[T any](name string, shape Shape, opts []ComponentOption) *Component[T] {
	var o componentOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Component[T]{
		name:     name,
		shape:    shape,
		readonly: o.readonly,
		serial:   lastSerial.Add(1),
	}
}

// NewComponent creates a value-shaped component type holding T.
func NewComponent[T any](name string, opts ...ComponentOption) *Component[T] {
	return newComponent[T](name, ShapeValue, opts)
}

// NewBoolComponent creates a bool component stored in a bitset.
func NewBoolComponent(name string, opts ...ComponentOption) *Component[bool] {
	return newComponent[bool](name, ShapeBool, opts)
}

// NewTag creates a marker component with no payload.
func NewTag(name string) *Component[struct{}] {
	return newComponent[struct{}](name, ShapeTag, nil)
}

func (c *Component[T]) Name() string   { return c.name }
func (c *Component[T]) Shape() Shape   { return c.shape }
func (c *Component[T]) Readonly() bool { return c.readonly }
func (c *Component[T]) Serial() uint64 { return c.serial }

func (c *Component[T]) String() string {
	return fmt.Sprintf("%s#%d", c.name, c.serial)
}

func (c *Component[T]) newStore(capacity int) componentStore {
	switch c.shape {
	case ShapeBool:
		return newBoolStore(capacity)
	case ShapeTag:
		return newTagStore(capacity)
	default:
		return newValueStore[T](capacity, c.readonly)
	}
}

// With pairs a value with this component type for World.Create and
// World.AddComponent.
func (c *Component[T]) With(v T) Instance {
	return instance[T]{c: c, v: v}
}

// Instance is a component value bound to its type.
type Instance interface {
	Type() ComponentType
	write(s componentStore, e Entity) bool
}

type instance[T any] struct {
	c *Component[T]
	v T
}

func (i instance[T]) Type() ComponentType { return i.c }

func (i instance[T]) write(s componentStore, e Entity) bool {
	return s.(typedStore[T]).upsert(e, i.v)
}
