package world

import (
	"math/rand"
	"slices"
	"testing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(a.Snapshot(), b.Snapshot()) {
		t.Fatalf("same seed should generate the same map")
	}
	if a.Surface().Seed() != cfg.Seed {
		t.Fatalf("expected surface seed %d, got %d", cfg.Seed, a.Surface().Seed())
	}
	checkInvariants(t, a)

	total := 0
	for _, n := range TerrainCounts(a) {
		total += n
	}
	if total != cfg.Width*cfg.Height {
		t.Fatalf("expected %d cells, got %d", cfg.Width*cfg.Height, total)
	}
}

func TestGenerateRejectsInvalidSize(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Width = 12
	if _, err := Generate(cfg); err == nil {
		t.Fatalf("expected an error for width 12")
	}
}

func TestPlaceStartPositions(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	g, err := Generate(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sp := PlaceStartPositions(g, cfg.Cities, cfg.Seed)
	checkInvariants(t, g)

	if len(sp.Cities) > cfg.Cities {
		t.Fatalf("expected at most %d cities, got %d", cfg.Cities, len(sp.Cities))
	}
	for _, city := range sp.Cities {
		c := g.Cell(city.Cell)
		if !c.HasCity() || !c.Walled() || c.IsUnderwater() {
			t.Fatalf("city cell %d should be a dry walled city", city.Cell)
		}
		if city.Name == "" {
			t.Fatalf("city %d has no name", city.Cell)
		}
	}
	for f, id := range sp.Bases {
		if g.Cell(id).Base() != f {
			t.Fatalf("expected %s base on %d", f, id)
		}
		x, _ := g.Cell(id).Coord().Offset()
		if (x < g.Width()/2) != (f == FactionConfederate) {
			t.Fatalf("%s base on the wrong half at x=%d", f, x)
		}
	}
	for f, ids := range sp.Armies {
		if !slices.Equal(ids, g.ArmyCells(f)) {
			t.Fatalf("%s armies: expected %v, got %v", f, ids, g.ArmyCells(f))
		}
	}
}

func TestGenerateNamesPastEveryPairing(t *testing.T) {
	names := generateNames(rand.New(rand.NewSource(1)), 2000)
	if len(names) != 2000 {
		t.Fatalf("expected 2000 names, got %d", len(names))
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate name %q", n)
		}
		seen[n] = true
	}
	if names[812] != names[0]+" 2" {
		t.Fatalf("expected %q, got %q", names[0]+" 2", names[812])
	}
}
