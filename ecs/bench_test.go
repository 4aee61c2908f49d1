package ecs_test

import (
	"testing"

	"github.com/plus3/sparsecs/ecs"
)

func BenchmarkCreate(b *testing.B) {
	w, tt := newTestWorld()

	for b.Loop() {
		w.Create(tt.Position.With(Position{X: 1, Y: 2}), tt.Velocity.With(Velocity{DX: 0.5, DY: 0.5}))
	}
}

func BenchmarkCreateRemove(b *testing.B) {
	w, tt := newTestWorld()
	mustQuery(b, w, ecs.All(tt.Position), ecs.None(tt.Player))

	for b.Loop() {
		e := w.Create(tt.Position.With(Position{}), tt.Health.With(Health{Current: 1}))
		w.Remove(e)
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	w, tt := newTestWorld()
	for range 16 {
		mustQuery(b, w, ecs.All(tt.Position, tt.Velocity))
	}
	e := w.Create(tt.Position.With(Position{}))

	for b.Loop() {
		_ = w.AddComponent(e, tt.Velocity.With(Velocity{}))
		w.RemoveComponent(e, tt.Velocity)
	}
}

func benchWorld(b *testing.B, n int) (*ecs.World, testTypes, *ecs.Query) {
	w, tt := newTestWorld()
	for i := range n {
		insts := []ecs.Instance{tt.Position.With(Position{}), tt.Velocity.With(Velocity{DX: 1, DY: 1})}
		if i%4 == 0 {
			insts = append(insts, tt.Frozen.With(true))
		}
		w.Create(insts...)
	}
	q := mustQuery(b, w, ecs.All(tt.Position, tt.Velocity), ecs.None(tt.Frozen))
	w.Count(q)
	return w, tt, q
}

func BenchmarkQueryRows(b *testing.B) {
	w, _, q := benchWorld(b, 10000)
	b.ReportAllocs()

	for b.Loop() {
		for _, row := range w.Rows(q) {
			pos, vel := row[0].(*Position), row[1].(*Velocity)
			pos.X += vel.DX
			pos.Y += vel.DY
		}
	}
}

func BenchmarkEach2(b *testing.B) {
	w, tt, q := benchWorld(b, 10000)
	b.ReportAllocs()

	for b.Loop() {
		ecs.Each2(w, q, tt.Position, tt.Velocity, func(_ ecs.Entity, pos *Position, vel *Velocity) {
			pos.X += vel.DX
			pos.Y += vel.DY
		})
	}
}

func BenchmarkCacheRebuild(b *testing.B) {
	w, tt, q := benchWorld(b, 10000)
	e := w.Entities(q)[0]

	for b.Loop() {
		w.RemoveComponent(e, tt.Velocity)
		_ = w.AddComponent(e, tt.Velocity.With(Velocity{}))
		w.Count(q)
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	w, tt, q := benchWorld(b, 10000)
	w.RegisterSystem(&MovementSystem{Entities: q, Position: tt.Position, Velocity: tt.Velocity}, 0)

	for b.Loop() {
		w.Scheduler().Once(0)
	}
}
