package ecs_test

import (
	"fmt"

	"github.com/plus3/sparsecs/ecs"
)

// ExampleWorld shows the basic create, query and mutate cycle. Component
// handles are created once and identify their type; queries are built once
// and their results are cached by the world until a matching entity changes.
func ExampleWorld() {
	position := ecs.NewComponent[Position]("position")
	velocity := ecs.NewComponent[Velocity]("velocity")
	sleeping := ecs.NewTag("sleeping")

	world := ecs.NewWorld(nil)
	world.Create(position.With(Position{X: 0, Y: 0}), velocity.With(Velocity{DX: 1, DY: 2}))
	world.Create(position.With(Position{X: 5, Y: 5}), velocity.With(Velocity{DX: -1, DY: 0}))
	world.Create(position.With(Position{X: 9, Y: 9}), velocity.With(Velocity{DX: 3, DY: 3}), sleeping.With(struct{}{}))

	moving := ecs.MustQuery(world.Registry(), ecs.All(position, velocity), ecs.None(sleeping))

	world.Query(moving, func(row []any) {
		pos, vel := row[0].(*Position), row[1].(*Velocity)
		pos.X += vel.DX
		pos.Y += vel.DY
	})

	for e, row := range world.Rows(moving) {
		pos := row[0].(*Position)
		fmt.Printf("entity %d at (%.0f, %.0f)\n", e, pos.X, pos.Y)
	}
	fmt.Println("moving:", world.Count(moving))

	// Output:
	// entity 0 at (1, 2)
	// entity 1 at (4, 5)
	// moving: 2
}

// ExampleWorld_Get shows how each storage shape is returned by Get.
func ExampleWorld_Get() {
	health := ecs.NewComponent[Health]("health")
	name := ecs.NewComponent[Name]("name", ecs.Readonly())
	alive := ecs.NewBoolComponent("alive")

	world := ecs.NewWorld(nil)
	e := world.Create(health.With(Health{Current: 3, Max: 5}), name.With(Name{Value: "orc"}), alive.With(true))

	vals, err := world.Get(e, health, name, alive)
	if err != nil {
		panic(err)
	}
	vals[0].(*Health).Current = 5   // points into storage
	vals[1].(*Name).Value = "troll" // a copy; readonly types cannot be changed in place

	h, _ := ecs.Get(world, e, health)
	n, _ := ecs.Get(world, e, name)
	fmt.Println(h.Current, n.Value, vals[2])

	_, err = world.Get(e, ecs.NewTag("boss"))
	fmt.Println(err != nil)

	// Output:
	// 5 orc true
	// true
}

// ExampleOnly shows the exact-match filter.
func ExampleOnly() {
	a := ecs.NewTag("a")
	b := ecs.NewTag("b")

	world := ecs.NewWorld(nil)
	world.Create(a.With(struct{}{}))
	world.Create(a.With(struct{}{}), b.With(struct{}{}))

	exact := ecs.MustQuery(world.Registry(), ecs.Only(a))
	fmt.Println(world.Entities(exact))

	_, err := world.NewQuery(ecs.Only(a), ecs.None(b))
	fmt.Println(err != nil)

	// Output:
	// [0]
	// true
}
