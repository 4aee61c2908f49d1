package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/sparsecs/ecs"
	"github.com/plus3/sparsecs/ecs/snapshot"
	"github.com/plus3/sparsecs/internal/config"
	"github.com/plus3/sparsecs/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	duration := flag.Duration("duration", cfg.Stress.Duration, "The total duration the test should run for.")
	entityCount := flag.Int("entities", cfg.Stress.Entities, "The initial number of entities to create.")
	componentCount := flag.Int("components", cfg.Stress.ComponentTypes, "The number of component types to generate.")
	systemCount := flag.Int("systems", cfg.Stress.Systems, "The number of query systems to generate.")
	seed := flag.Uint64("seed", cfg.Stress.Seed, "Random seed; 0 picks one.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", cfg.Stress.GCPauseMetrics, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", cfg.Profile.Mode, "Write a profile: cpu, mem, alloc, block, mutex or trace.")
	saveSnapshot := flag.Bool("snapshot", cfg.Snapshot.Save, "Save the final world to the snapshot database.")
	flag.Parse()

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	if *componentCount < 1 || *systemCount < 0 || cfg.Stress.MaxComponents < 1 {
		log.Fatal("invalid stress configuration",
			zap.Int("components", *componentCount),
			zap.Int("systems", *systemCount),
			zap.Int("max_components", cfg.Stress.MaxComponents),
		)
	}

	if p := startProfile(*profileMode, cfg.Profile.Dir); p != nil {
		defer p.Stop()
	}

	log.Info("starting ECS stress test", zap.Uint64("seed", *seed))
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	// 1. Setup registry, world and systems
	world := ecs.NewWorld(nil, ecs.WithLogger(log.Named("ecs")), ecs.WithCapacity(cfg.World.Capacity))
	cat := newCatalog(rng, *componentCount)
	stats := ecs.NewSingleton[simStats](world)

	for i := range *systemCount {
		q, err := cat.randomQuery(rng, world)
		if err != nil {
			log.Fatal("build query", zap.Error(err))
		}
		world.RegisterSystem(&churnSystem{
			name:          fmt.Sprintf("system%03d", i),
			query:         q,
			catalog:       cat,
			rng:           rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())),
			churn:         cfg.Stress.ChurnRate,
			maxComponents: cfg.Stress.MaxComponents,
		}, rng.IntN(8))
	}

	// 2. Populate the world with initial entities
	log.Info("populating world", zap.Int("entities", *entityCount))
	for range *entityCount {
		cat.spawn(rng, world, cfg.Stress.MaxComponents)
	}
	log.Info("population complete")

	// 3. Run the simulation loop
	report := &Report{
		Seed:           *seed,
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     *componentCount,
		Systems:        *systemCount,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", *duration))
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()
	var tick <-chan time.Time
	if cfg.Stress.Tick > 0 {
		ticker := time.NewTicker(cfg.Stress.Tick)
		defer ticker.Stop()
		tick = ticker.C
	}

Loop:
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				break Loop
			case <-tick:
			}
		} else if ctx.Err() != nil {
			break Loop
		}

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		world.Scheduler().Once(deltaTime)
		updateDuration := time.Since(updateStart)

		report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
		totalUpdates++
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.LiveEntities = world.Len()
	report.Sim = *stats.Get()
	report.SlowestSystems = slowest(world.Scheduler().GetStats(), 5)
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished", zap.Int64("updates", totalUpdates))

	if *saveSnapshot {
		if err := save(log, cfg.Snapshot, world); err != nil {
			log.Error("save snapshot", zap.Error(err))
		} else {
			report.Snapshot = cfg.Snapshot.Name
		}
	}

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal("generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")

	log.Info("stress test complete")
}

func startProfile(mode, dir string) interface{ Stop() } {
	var m func(*profile.Profile)
	switch mode {
	case "":
		return nil
	case "cpu":
		m = profile.CPUProfile
	case "mem":
		m = profile.MemProfile
	case "alloc":
		m = profile.MemProfileAllocs
	case "block":
		m = profile.BlockProfile
	case "mutex":
		m = profile.MutexProfile
	case "trace":
		m = profile.TraceProfile
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", mode)
		os.Exit(2)
	}
	return profile.Start(m, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
}

func save(log *zap.Logger, cfg config.SnapshotConfig, world *ecs.World) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := snapshot.Open(ctx, cfg.Path, log.Named("snapshot"))
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveWorld(ctx, cfg.Name, world)
}
