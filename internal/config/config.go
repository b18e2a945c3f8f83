package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/lookout/internal/world"
)

// Config holds all tool configuration
type Config struct {
	Map        MapConfig        `yaml:"map"`
	Generation GenerationConfig `yaml:"generation"`
	Storage    StorageConfig    `yaml:"storage"`
	Engine     EngineConfig     `yaml:"engine"`
	API        APIConfig        `yaml:"api"`
	Log        LogConfig        `yaml:"log"`
}

// MapConfig holds map dimensions and the surface seed
type MapConfig struct {
	Width  int   `yaml:"width"`  // Multiple of 5
	Height int   `yaml:"height"` // Multiple of 5
	Seed   int64 `yaml:"seed"`   // 0 picks a random seed
}

// GenerationConfig holds terrain generator settings
type GenerationConfig struct {
	MaxElevation  int     `yaml:"max_elevation"`
	SeaLevel      float64 `yaml:"sea_level"`
	MountainLevel float64 `yaml:"mountain_level"`
	Rivers        int     `yaml:"rivers"`
	Cities        int     `yaml:"cities"`
}

// StorageConfig holds the map database location
type StorageConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig holds tick loop settings
type EngineConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	AutosaveEvery int           `yaml:"autosave_every"` // Ticks between saves, 0 disables
	MaxTicks      int           `yaml:"max_ticks"`      // 0 runs until stopped
	Workers       int           `yaml:"workers"`        // Triangulation goroutines, 0 = GOMAXPROCS
}

// APIConfig holds the HTTP server settings used by the run command
type APIConfig struct {
	Addr     string `yaml:"addr"`      // Empty disables the server
	AdminKey string `yaml:"admin_key"` // Bearer token for edits, empty disables them
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	if cfg.Map.Width%5 != 0 || cfg.Map.Height%5 != 0 || cfg.Map.Width < 0 || cfg.Map.Height < 0 {
		return nil, fmt.Errorf("map %dx%d: %w", cfg.Map.Width, cfg.Map.Height, world.ErrInvalidSize)
	}
	if cfg.Generation.Cities < 0 {
		return nil, fmt.Errorf("generation.cities must not be negative, got %d", cfg.Generation.Cities)
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	gen := world.DefaultGenConfig()
	if cfg.Map.Width == 0 {
		cfg.Map.Width = gen.Width
	}
	if cfg.Map.Height == 0 {
		cfg.Map.Height = gen.Height
	}
	if cfg.Generation.MaxElevation == 0 {
		cfg.Generation.MaxElevation = gen.MaxElevation
	}
	if cfg.Generation.SeaLevel == 0 {
		cfg.Generation.SeaLevel = gen.SeaLevel
	}
	if cfg.Generation.MountainLevel == 0 {
		cfg.Generation.MountainLevel = gen.MountainLvl
	}
	if cfg.Generation.Rivers == 0 {
		cfg.Generation.Rivers = gen.Rivers
	}
	if cfg.Generation.Cities == 0 {
		cfg.Generation.Cities = gen.Cities
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "lookout.db"
	}
	if cfg.Engine.TickInterval == 0 {
		cfg.Engine.TickInterval = 100 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// GenConfig converts the map and generation sections for world.Generate.
func (cfg *Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Width:        cfg.Map.Width,
		Height:       cfg.Map.Height,
		Seed:         cfg.Map.Seed,
		MaxElevation: cfg.Generation.MaxElevation,
		SeaLevel:     cfg.Generation.SeaLevel,
		MountainLvl:  cfg.Generation.MountainLevel,
		Rivers:       cfg.Generation.Rivers,
		Cities:       cfg.Generation.Cities,
	}
}

// SlogLevel maps the configured level name onto a slog level. Unknown
// names fall back to info.
func (cfg *Config) SlogLevel() slog.Level {
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
