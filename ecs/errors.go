package ecs

import "github.com/rotisserie/eris"

var (
	// ErrConflictingFilter is returned when Only is combined with All, None,
	// One or Some in a single query.
	ErrConflictingFilter = eris.New("ecs: only cannot be combined with other query filters")
	// ErrMissingComponent is returned when an entity lacks a requested
	// component.
	ErrMissingComponent = eris.New("ecs: entity is missing a requested component")
	// ErrDeadEntity is returned when mutating an entity that is not alive.
	ErrDeadEntity = eris.New("ecs: entity is not alive")
	// ErrForeignQuery is the panic value when a query is run against a world
	// whose registry did not compile it.
	ErrForeignQuery = eris.New("ecs: query was compiled against a different registry")
	// ErrSharedRegistry is the panic value when a Registry already backing
	// a World is passed to NewWorld again.
	ErrSharedRegistry = eris.New("ecs: registry already backs a world")
	// ErrReadonly is the panic value when asking for a mutable pointer to a
	// readonly component.
	ErrReadonly = eris.New("ecs: component type is readonly")
	// ErrUnknownType is returned when a component type name cannot be
	// resolved in a registry.
	ErrUnknownType = eris.New("ecs: unknown component type")
	// ErrAmbiguousType is returned when several registered component types
	// share the name being resolved.
	ErrAmbiguousType = eris.New("ecs: ambiguous component type name")
	// ErrCorruptSnapshot is returned by Restore for inconsistent snapshots.
	ErrCorruptSnapshot = eris.New("ecs: corrupt snapshot")
)
