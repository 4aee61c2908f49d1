package ecs_test

import (
	"fmt"

	"github.com/plus3/sparsecs/ecs"
)

// ExampleWorld_Ref shows that refs notice removal even when the id is reused.
func ExampleWorld_Ref() {
	world := ecs.NewWorld(nil)
	target := world.Create()
	ref := world.Ref(target)

	world.Remove(target)
	reused := world.Create()

	_, ok := ref.Entity()
	fmt.Println(reused == target, ok)

	// Output:
	// true false
}
