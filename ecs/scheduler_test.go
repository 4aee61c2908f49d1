package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities     *ecs.Query
	Position     *ecs.Component[Position]
	Velocity     *ecs.Component[Velocity]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	dt := float32(frame.Time.Seconds())
	ecs.Each2(frame.World, s.Entities, s.Position, s.Velocity, func(_ ecs.Entity, p *Position, v *Velocity) {
		p.X += v.DX * dt
		p.Y += v.DY * dt
	})
}

type recordingSystem struct {
	label string
	log   *[]string
}

func (s *recordingSystem) Execute(*ecs.UpdateFrame) {
	*s.log = append(*s.log, s.label)
}

type frameCounter struct {
	Frames int
}

type countingSystem struct {
	Counter ecs.Singleton[frameCounter]
}

func (s *countingSystem) Execute(*ecs.UpdateFrame) {
	if c := s.Counter.Get(); c != nil {
		c.Frames++
	}
}

func TestScheduler(t *testing.T) {
	t.Run("systems run by priority", func(t *testing.T) {
		w, _ := newTestWorld()
		var log []string
		w.RegisterSystem(&recordingSystem{label: "late", log: &log}, 5)
		w.RegisterSystem(&recordingSystem{label: "mid-a", log: &log}, 1)
		w.RegisterSystem(&recordingSystem{label: "mid-b", log: &log}, 1)
		w.RegisterSystem(&recordingSystem{label: "early", log: &log}, 0)

		w.Scheduler().Once(time.Millisecond)
		assert.Equal(t, []string{"early", "mid-a", "mid-b", "late"}, log)
	})

	t.Run("movement", func(t *testing.T) {
		w, tt := newTestWorld()
		movement := &MovementSystem{
			Entities: mustQuery(t, w, ecs.All(tt.Position, tt.Velocity)),
			Position: tt.Position,
			Velocity: tt.Velocity,
		}
		w.RegisterSystem(movement, 0)

		e := w.Create(tt.Position.With(Position{}), tt.Velocity.With(Velocity{DX: 1, DY: 2}))
		w.Create(tt.Position.With(Position{X: 50}))

		w.Scheduler().Once(time.Second)
		w.Scheduler().Once(time.Second)

		assert.Equal(t, 2, movement.ExecuteCount)
		p, _ := ecs.Get(w, e, tt.Position)
		assert.Equal(t, Position{X: 2, Y: 4}, p)
	})

	t.Run("commands flush after all systems", func(t *testing.T) {
		w, tt := newTestWorld()
		q := mustQuery(t, w, ecs.All(tt.Player))
		var seen []int
		w.RegisterSystem(ecs.Named("spawner", func(frame *ecs.UpdateFrame) {
			frame.Commands.Create(tt.Player.With(struct{}{}))
		}), 0)
		w.RegisterSystem(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
			seen = append(seen, frame.World.Count(q))
		}), 1)

		w.Scheduler().Once(time.Millisecond)
		w.Scheduler().Once(time.Millisecond)
		assert.Equal(t, []int{0, 1}, seen)
		assert.Equal(t, 2, w.Count(q))
	})

	t.Run("time", func(t *testing.T) {
		w, _ := newTestWorld()
		var times []ecs.Time
		w.RegisterSystem(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
			times = append(times, frame.Time)
		}), 0)

		w.Scheduler().Once(10 * time.Millisecond)
		w.Update(ecs.Time{Delta: time.Second, Elapsed: 5 * time.Second})
		w.Scheduler().Once(time.Second)

		require.Len(t, times, 3)
		assert.Equal(t, ecs.Time{Delta: 10 * time.Millisecond, Elapsed: 10 * time.Millisecond}, times[0])
		assert.Equal(t, 6*time.Second, times[2].Elapsed)
		assert.Equal(t, 1.0, times[2].Seconds())
	})

	t.Run("singleton fields are initialized", func(t *testing.T) {
		w, _ := newTestWorld()
		ecs.NewSingleton[frameCounter](w)
		sys := &countingSystem{}
		w.RegisterSystem(sys, 0)

		w.Scheduler().Once(time.Millisecond)
		w.Scheduler().Once(time.Millisecond)
		assert.Equal(t, 2, sys.Counter.Get().Frames)
	})

	t.Run("stats", func(t *testing.T) {
		w, _ := newTestWorld()
		var log []string
		w.RegisterSystem(&recordingSystem{label: "a", log: &log}, 2)
		w.RegisterSystem(ecs.Named("named", func(*ecs.UpdateFrame) {}), 1)

		empty := w.Scheduler().GetStats()
		assert.Equal(t, 2, empty.SystemCount)
		assert.Equal(t, time.Duration(0), empty.Systems[0].MinDuration)

		for range 3 {
			w.Scheduler().Once(time.Millisecond)
		}

		stats := w.Scheduler().GetStats()
		assert.Equal(t, int64(6), stats.TotalExecutions)
		assert.Equal(t, int64(3), stats.Frames)
		require.Len(t, stats.Systems, 2)
		assert.Equal(t, "named", stats.Systems[0].Name)
		assert.Equal(t, 1, stats.Systems[0].Priority)
		assert.Equal(t, "recordingSystem", stats.Systems[1].Name)
		for _, s := range stats.Systems {
			assert.Equal(t, int64(3), s.ExecutionCount)
			assert.LessOrEqual(t, s.MinDuration, s.AvgDuration)
			assert.LessOrEqual(t, s.AvgDuration, s.MaxDuration)
		}
	})

	t.Run("run until cancelled", func(t *testing.T) {
		w, _ := newTestWorld()
		frames := 0
		w.RegisterSystem(ecs.SystemFunc(func(*ecs.UpdateFrame) { frames++ }), 0)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		w.Scheduler().Run(ctx, 5*time.Millisecond)

		assert.Positive(t, frames)
		assert.Equal(t, int64(frames), w.Scheduler().GetStats().Frames)
	})
}
