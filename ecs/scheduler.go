package ecs

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Priority       int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type scheduledSystem struct {
	system   System
	priority int
	stats    systemStatsInternal
}

// Scheduler runs a world's systems in ascending priority order. Systems with
// equal priority run in registration order.
type Scheduler struct {
	world    *World
	systems  []*scheduledSystem
	commands *Commands
	elapsed  time.Duration
	frames   int64
	log      *zap.Logger
}

func newScheduler(w *World, log *zap.Logger) *Scheduler {
	return &Scheduler{
		world:    w,
		systems:  make([]*scheduledSystem, 0),
		commands: newCommands(),
		log:      log,
	}
}

// Register adds a system and initializes its Singleton fields.
func (s *Scheduler) Register(system System, priority int) {
	s.initializeSingletons(system)

	entry := &scheduledSystem{
		system:   system,
		priority: priority,
		stats: systemStatsInternal{
			name:        systemName(system),
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	s.systems = append(s.systems, entry)
	slices.SortStableFunc(s.systems, func(a, b *scheduledSystem) int {
		return a.priority - b.priority
	})

	s.log.Debug("registered system",
		zap.String("name", entry.stats.name),
		zap.Int("priority", priority),
		zap.Int("systems", len(s.systems)),
	)
}

func systemName(system System) string {
	if named, ok := system.(NamedSystem); ok {
		return named.Name()
	}
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

// initializeSingletons binds zero-valued Singleton fields of struct systems
// to the scheduler's world.
func (s *Scheduler) initializeSingletons(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		if strings.HasPrefix(field.Type().Name(), "Singleton[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on Singleton field: " + fieldType.Name)
			}

			initMethod.Call([]reflect.Value{
				reflect.ValueOf(s.world),
			})
		}
	}
}

// Update refreshes dirty query caches, runs every system once with t and then
// flushes the commands they queued.
func (s *Scheduler) Update(t Time) {
	s.elapsed = t.Elapsed
	s.frames++
	s.world.Refresh()

	frame := &UpdateFrame{
		Time:     t,
		Commands: s.commands,
		World:    s.world,
	}

	for _, entry := range s.systems {
		start := time.Now()
		entry.system.Execute(frame)
		duration := time.Since(start)

		stats := &entry.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	s.commands.Flush(s.world)
}

// Once executes all registered systems once, advancing the clock by dt.
func (s *Scheduler) Once(dt time.Duration) {
	s.Update(Time{Delta: dt, Elapsed: s.elapsed + dt})
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime)
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution, in execution order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frames,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, entry := range s.systems {
		internal := &entry.stats
		avgDuration := time.Duration(0)
		minDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			minDuration = internal.minDuration
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			Priority:       entry.priority,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}

// RegisterSystem adds s to the world's scheduler. Lower priorities run first.
func (w *World) RegisterSystem(s System, priority int) {
	w.scheduler.Register(s, priority)
}

// Update runs one frame of the world's systems. See Scheduler.Update.
func (w *World) Update(t Time) {
	w.scheduler.Update(t)
}
