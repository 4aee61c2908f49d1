package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems implement this interface and usually hold the queries
// they run, built once at construction, plus any state that persists between
// frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) { f(frame) }

// NamedSystem is implemented by systems that want a specific name in
// scheduler statistics. Other systems are named after their Go type.
type NamedSystem interface {
	System
	Name() string
}

type namedFunc struct {
	name string
	fn   func(frame *UpdateFrame)
}

func (n namedFunc) Execute(frame *UpdateFrame) { n.fn(frame) }
func (n namedFunc) Name() string               { return n.name }

// Named wraps fn as a System reported under name.
func Named(name string, fn func(frame *UpdateFrame)) NamedSystem {
	return namedFunc{name: name, fn: fn}
}
