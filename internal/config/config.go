// Package config loads the stress tool configuration from TOML, with
// environment overrides from .env files.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "SPARSECS_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/stress.toml"

type Config struct {
	World    WorldConfig    `toml:"world"`
	Stress   StressConfig   `toml:"stress"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Profile  ProfileConfig  `toml:"profile"`
	Logging  LoggingConfig  `toml:"logging"`
}

type WorldConfig struct {
	Capacity int `toml:"capacity"` // initial entity and per-type store capacity
}

type StressConfig struct {
	Duration       time.Duration `toml:"duration"`
	Entities       int           `toml:"entities"`
	ComponentTypes int           `toml:"component_types"`
	Systems        int           `toml:"systems"`
	MaxComponents  int           `toml:"max_components"` // per spawned entity
	ChurnRate      float64       `toml:"churn_rate"`     // fraction of matches each system touches per frame
	Tick           time.Duration `toml:"tick"`           // 0 runs frames back to back
	Seed           uint64        `toml:"seed"`           // 0 picks a random seed
	GCPauseMetrics bool          `toml:"gc_pause_metrics"`
}

type SnapshotConfig struct {
	Save bool   `toml:"save"`
	Path string `toml:"path"` // sqlite database
	Name string `toml:"name"`
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu", "mem", "alloc", "block", "mutex", "trace"
	Dir  string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the config at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// LoadEnv loads .env when present, then reads the file named by EnvPath, or
// DefaultPath. A missing default file yields the defaults.
func LoadEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "load .env")
	}

	path, explicit := os.LookupEnv(EnvPath)
	if !explicit {
		path = DefaultPath
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
	}
	return Load(path)
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			Capacity: 1024,
		},
		Stress: StressConfig{
			Duration:       10 * time.Second,
			Entities:       10000,
			ComponentTypes: 64,
			Systems:        16,
			MaxComponents:  5,
			ChurnRate:      0.01,
		},
		Snapshot: SnapshotConfig{
			Path: "snapshots.db",
			Name: "ecs-stress",
		},
		Profile: ProfileConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
