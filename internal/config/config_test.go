package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/lookout/internal/world"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookout.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
map:
  width: 30
  seed: 99
engine:
  tick_interval: 250ms
  autosave_every: 10
api:
  addr: ":8080"
  admin_key: secret
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Map.Width != 30 || cfg.Map.Height != 15 {
		t.Fatalf("expected 30x15, got %dx%d", cfg.Map.Width, cfg.Map.Height)
	}
	if cfg.Engine.TickInterval != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.Engine.TickInterval)
	}
	if cfg.Engine.AutosaveEvery != 10 {
		t.Fatalf("expected autosave every 10, got %d", cfg.Engine.AutosaveEvery)
	}
	if cfg.API.Addr != ":8080" || cfg.API.AdminKey != "secret" {
		t.Fatalf("unexpected api config %+v", cfg.API)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}

	gen := cfg.GenConfig()
	def := world.DefaultGenConfig()
	if gen.Seed != 99 || gen.Rivers != def.Rivers || gen.SeaLevel != def.SeaLevel {
		t.Fatalf("unexpected generator config %+v", gen)
	}
}

func TestLoadRejectsBadSize(t *testing.T) {
	path := writeConfig(t, "map:\n  width: 12\n")
	if _, err := Load(path); !errors.Is(err, world.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestLoadRejectsNegativeCities(t *testing.T) {
	path := writeConfig(t, "generation:\n  cities: -3\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for a negative city count")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Path == "" || cfg.Engine.TickInterval <= 0 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.SlogLevel())
	}
}
