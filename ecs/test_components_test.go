package ecs_test

import (
	"testing"

	"github.com/plus3/sparsecs/ecs"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int
	Max     int
}

type Name struct {
	Value string
}

// testTypes is one set of component handles. Handles are identities, so
// every test builds its own.
type testTypes struct {
	Position *ecs.Component[Position]
	Velocity *ecs.Component[Velocity]
	Health   *ecs.Component[Health]
	Name     *ecs.Component[Name] // readonly
	Frozen   *ecs.Component[bool]
	Player   *ecs.Component[struct{}]
}

func newTestTypes() testTypes {
	return testTypes{
		Position: ecs.NewComponent[Position]("position"),
		Velocity: ecs.NewComponent[Velocity]("velocity"),
		Health:   ecs.NewComponent[Health]("health"),
		Name:     ecs.NewComponent[Name]("name", ecs.Readonly()),
		Frozen:   ecs.NewBoolComponent("frozen"),
		Player:   ecs.NewTag("player"),
	}
}

func (tt testTypes) all() []ecs.ComponentType {
	return []ecs.ComponentType{tt.Position, tt.Velocity, tt.Health, tt.Name, tt.Frozen, tt.Player}
}

func newTestWorld(opts ...ecs.Option) (*ecs.World, testTypes) {
	tt := newTestTypes()
	w := ecs.NewWorld(nil, opts...)
	for _, ct := range tt.all() {
		w.Registry().Register(ct)
	}
	return w, tt
}

func mustQuery(t testing.TB, w *ecs.World, opts ...ecs.QueryOption) *ecs.Query {
	t.Helper()
	q, err := w.NewQuery(opts...)
	require.NoError(t, err)
	return q
}

// recovered runs fn and returns the error it panicked with.
func recovered(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
			if err == nil {
				err = eris.Errorf("panic: %v", r)
			}
		}
	}()
	fn()
	return nil
}
