// Map generation using layered simplex noise.
// Generates elevation, rainfall and temperature fields, then derives terrain,
// water, feature levels and rivers through the regular cell mutators.
package world

import (
	"log/slog"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Width        int     // Cells per row, a multiple of the chunk width
	Height       int     // Rows, a multiple of the chunk height
	Seed         int64   // Random seed (0 = random)
	MaxElevation int     // Elevation of the highest peaks
	SeaLevel     float64 // Fraction of the elevation range below water (0.0–1.0)
	MountainLvl  float64 // Fraction of the elevation range that is mountain (0.0–1.0)
	Rivers       int     // Upper bound on traced rivers
	Cities       int     // Walled cities to place
}

// DefaultGenConfig returns a reasonable starting configuration matching
// the legacy map size.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:        20,
		Height:       15,
		Seed:         0,
		MaxElevation: 6,
		SeaLevel:     0.25,
		MountainLvl:  0.72,
		Rivers:       6,
		Cities:       4,
	}
}

// SmallTestConfig returns a tiny map for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:        10,
		Height:       10,
		Seed:         42,
		MaxElevation: 5,
		SeaLevel:     0.30,
		MountainLvl:  0.75,
		Rivers:       3,
		Cities:       2,
	}
}

// Generate creates a complete map. The returned grid carries the surface
// built from the effective seed.
func Generate(cfg GenConfig) (*Grid, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	g, err := NewGrid(cfg.Width, cfg.Height, metrics.NewSurface(seed))
	if err != nil {
		return nil, err
	}

	// Three noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	seaLevel := int(math.Round(cfg.SeaLevel * float64(cfg.MaxElevation)))
	mountainLevel := int(math.Round(cfg.MountainLvl * float64(cfg.MaxElevation)))
	halfW := float64(cfg.Width) / 2
	halfH := float64(cfg.Height) / 2

	for i := range g.cells {
		c := &g.cells[i]
		ox, oz := c.coord.Offset()

		// Offset rows are staggered by half a cell.
		x := float64(ox) + float64(oz&1)*0.5
		y := float64(oz) * math.Sqrt(3.0) / 2.0

		// Multi-octave noise for natural-looking terrain.
		elev := octaveNoise(elevNoise, x, y, 4, 0.12, 0.5)
		rain := octaveNoise(rainNoise, x, y, 3, 0.09, 0.5)
		temp := octaveNoise(tempNoise, x, y, 3, 0.07, 0.5)

		// Continental shaping: lower the land near the map border.
		dx := (x - halfW) / halfW
		dz := (float64(oz) - halfH) / halfH
		edgeFalloff := 1.0 - math.Pow(math.Sqrt(dx*dx+dz*dz)/math.Sqrt2, 3.5)
		if edgeFalloff < 0 {
			edgeFalloff = 0
		}
		elev *= edgeFalloff

		// Temperature decreases with elevation.
		temp = temp*0.7 + (1.0-elev)*0.3

		height := int(elev * float64(cfg.MaxElevation+1))
		if height > cfg.MaxElevation {
			height = cfg.MaxElevation
		}

		g.SetElevation(i, height)
		g.SetWaterLevel(i, seaLevel)
		terrain := deriveTerrain(height, seaLevel, mountainLevel, rain, temp)
		g.SetTerrain(i, terrain)
		setFeatureLevels(g, i, terrain, rain)
	}

	// Post-pass: turn low shoreline into mud flats.
	markShoreCells(g)

	// Post-pass: trace rivers from the highlands down to the sea.
	rivers := placeRivers(g, cfg.Rivers, seed)

	slog.Info("map generated",
		"width", cfg.Width,
		"height", cfg.Height,
		"seed", seed,
		"rivers", rivers,
		"underwater", countUnderwater(g),
	)
	return g, nil
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(height, seaLevel, mountainLevel int, rain, temp float64) Terrain {
	if height < seaLevel {
		return TerrainMud
	}
	if height >= mountainLevel {
		return TerrainMountain
	}
	if height == mountainLevel-1 {
		return TerrainHills
	}
	if rain < 0.3 && temp > 0.55 {
		return TerrainDesert
	}
	if rain > 0.55 {
		return TerrainForest
	}
	return TerrainGrass
}

// setFeatureLevels populates initial vegetation and farmland based on terrain.
func setFeatureLevels(g *Grid, id int, terrain Terrain, rain float64) {
	switch terrain {
	case TerrainForest:
		g.SetPlantLevel(id, 2+int(rain*2))
	case TerrainGrass:
		g.SetFarmLevel(id, 1+int(rain*2)) // Rainfall boosts yield
		g.SetPlantLevel(id, int(rain*2))
	case TerrainHills:
		g.SetPlantLevel(id, 1)
	}
}

// markShoreCells converts low land cells next to open water into mud.
func markShoreCells(g *Grid) {
	var toMark []int

	for i := range g.cells {
		c := &g.cells[i]
		if c.IsUnderwater() {
			continue
		}
		for _, d := range hex.Directions {
			n := g.Neighbor(c, d)
			if n != nil && n.IsUnderwater() {
				toMark = append(toMark, i)
				break
			}
		}
	}

	for _, id := range toMark {
		c := &g.cells[id]
		// Only grass and forest at the water line become mud.
		if (c.terrain == TerrainGrass || c.terrain == TerrainForest) && c.elevation <= c.water {
			g.SetTerrain(id, TerrainMud)
			g.SetPlantLevel(id, 0)
		}
	}
}

// placeRivers traces rivers from high cells towards the sea and returns how
// many were created.
func placeRivers(g *Grid, maxRivers int, seed int64) int {
	rng := rand.New(rand.NewSource(seed + 100))

	// Find highland cells as river sources.
	var sources []int
	for i := range g.cells {
		c := &g.cells[i]
		if c.IsUnderwater() || c.terrain == TerrainMountain {
			continue
		}
		if c.elevation > c.water+1 {
			sources = append(sources, i)
		}
	}

	// Only create a handful of rivers; not every hill needs one.
	numRivers := len(sources) / 8
	if numRivers < 2 {
		numRivers = 2
	}
	if numRivers > maxRivers {
		numRivers = maxRivers
	}

	// Shuffle and pick.
	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})

	placed := 0
	for _, start := range sources {
		if placed >= numRivers {
			break
		}
		if traceRiver(g, start) {
			placed++
		}
	}
	return placed
}

// traceRiver follows the steepest descent from a source cell until reaching
// water or running out of downhill path. Rivers never merge, since a cell
// takes one incoming river only.
func traceRiver(g *Grid, start int) bool {
	if g.cells[start].HasRiver() {
		return false
	}
	current := start
	visited := make(map[int]bool)
	maxSteps := 50
	length := 0

	for step := 0; step < maxSteps; step++ {
		visited[current] = true
		c := &g.cells[current]
		if c.IsUnderwater() {
			break
		}

		// Find lowest neighbor.
		bestDir := hex.Direction(0)
		bestElev := math.MaxInt
		found := false
		for _, d := range hex.Directions {
			n := g.Neighbor(c, d)
			if n == nil || visited[n.id] || !validRiver(c, n) {
				continue
			}
			if n.HasRiver() {
				continue
			}
			if n.elevation < bestElev {
				bestElev = n.elevation
				bestDir = d
				found = true
			}
		}

		if !found {
			break // No downhill path; the river ends in place.
		}
		if !g.SetOutgoingRiver(current, bestDir) {
			break
		}
		length++
		current, _ = c.NeighborID(bestDir)
	}

	if length < 2 {
		// A one-cell trickle is not worth keeping.
		if length == 1 {
			g.RemoveOutgoingRiver(start)
		}
		return false
	}
	return true
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func countUnderwater(g *Grid) int {
	n := 0
	for i := range g.cells {
		if g.cells[i].IsUnderwater() {
			n++
		}
	}
	return n
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(g *Grid) map[Terrain]int {
	counts := make(map[Terrain]int)
	for i := range g.cells {
		counts[g.cells[i].terrain]++
	}
	return counts
}
