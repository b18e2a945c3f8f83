// Start position placement: finds suitable locations for walled cities,
// faction bases and army starts, and links the cities with roads.
package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/talgya/lookout/internal/hex"
)

// City is a placed walled city.
type City struct {
	Cell  int
	Name  string
	Score float64 // Desirability score
}

// StartPositions summarises what PlaceStartPositions put on the map.
type StartPositions struct {
	Cities []City
	Bases  map[Faction]int
	Armies map[Faction][]int
	Roads  int // Road edges built between cities
}

// Minimum cube distances between placements.
const (
	minCityDist = 4
	maxArmyDist = 3
)

// PlaceStartPositions scores every dry cell and places walled cities at the
// best spots, one base per faction on opposite halves of the map, and up to
// MaxArmyStarts army starts around each base.
func PlaceStartPositions(g *Grid, numCities int, seed int64) StartPositions {
	rng := rand.New(rand.NewSource(seed + 200))

	// Score every dry cell for desirability.
	type scored struct {
		id    int
		score float64
	}
	var candidates []scored

	for i := range g.cells {
		c := &g.cells[i]
		if c.IsUnderwater() {
			continue
		}
		s := placementScore(g, c)
		if s > 0 {
			candidates = append(candidates, scored{i, s})
		}
	}

	// Sort by score descending, ties by id so placement is reproducible.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	sp := StartPositions{
		Bases:  make(map[Faction]int),
		Armies: make(map[Faction][]int),
	}

	// Cities: best locations, enforcing minimum distance.
	for _, c := range candidates {
		if len(sp.Cities) >= numCities {
			break
		}
		if tooClose(g, c.id, sp.Cities, minCityDist) {
			continue
		}
		sp.Cities = append(sp.Cities, City{Cell: c.id, Score: c.score})
		g.SetCity(c.id, true)
		g.SetWalled(c.id, true)
		g.SetUrbanLevel(c.id, 1+rng.Intn(3))
		g.SetFarmLevel(c.id, 0)
		g.SetPlantLevel(c.id, 0)
	}

	// Roads: link each city to the nearest one placed before it.
	for i := 1; i < len(sp.Cities); i++ {
		nearest := 0
		for j := 1; j < i; j++ {
			if cellDistance(g, sp.Cities[i].Cell, sp.Cities[j].Cell) <
				cellDistance(g, sp.Cities[i].Cell, sp.Cities[nearest].Cell) {
				nearest = j
			}
		}
		sp.Roads += buildRoad(g, sp.Cities[i].Cell, sp.Cities[nearest].Cell)
	}

	// Bases: Confederates take the west half, the Union the east half.
	half := g.width / 2
	for _, f := range Factions {
		for _, c := range candidates {
			cell := &g.cells[c.id]
			x, _ := cell.coord.Offset()
			west := x < half
			if west != (f == FactionConfederate) || cell.HasRiver() || cell.city {
				continue
			}
			g.SetBase(c.id, f)
			sp.Bases[f] = c.id
			break
		}
	}

	// Armies: the best cells around each base.
	for _, f := range Factions {
		base, ok := sp.Bases[f]
		if !ok {
			continue
		}
		for _, c := range candidates {
			if len(sp.Armies[f]) >= MaxArmyStarts {
				break
			}
			cell := &g.cells[c.id]
			if c.id == base || cell.army != FactionNone || cell.base != FactionNone {
				continue
			}
			if cellDistance(g, c.id, base) > maxArmyDist {
				continue
			}
			g.SetArmy(c.id, f)
			sp.Armies[f] = append(sp.Armies[f], c.id)
		}
	}

	// Assign procedural names.
	names := generateNames(rng, len(sp.Cities))
	for i := range sp.Cities {
		sp.Cities[i].Name = names[i]
	}

	return sp
}

// placementScore evaluates how desirable a cell is for a city or a base.
// Prefers open flat ground, rivers close by and a varied neighborhood.
func placementScore(g *Grid, c *Cell) float64 {
	score := 0.0

	switch c.terrain {
	case TerrainGrass:
		score += 3.0
	case TerrainHills:
		score += 2.5 // Defensible high ground
	case TerrainForest:
		score += 1.5
	case TerrainDesert, TerrainMud:
		score += 0.5
	case TerrainMountain:
		score += 0.3
	default:
		return 0
	}

	// Bonus for nearby terrain diversity.
	terrainTypes := make(map[Terrain]bool)
	for _, d := range hex.Directions {
		n := g.Neighbor(c, d)
		if n != nil && !n.IsUnderwater() {
			terrainTypes[n.terrain] = true
		}
	}
	score += float64(len(terrainTypes)) * 0.3

	// Bonus for nearby river or shore (water access).
	for _, d := range hex.Directions {
		n := g.Neighbor(c, d)
		if n == nil {
			continue
		}
		if n.HasRiver() || n.IsUnderwater() {
			score += 0.5
			break
		}
	}

	// Bonus for surrounding farmland and woods.
	score += math.Log1p(float64(c.farm+c.plant)) * 0.2

	return score
}

func cellDistance(g *Grid, a, b int) int {
	return hex.Distance(g.cells[a].coord, g.cells[b].coord)
}

func tooClose(g *Grid, id int, existing []City, minDist int) bool {
	for _, c := range existing {
		if cellDistance(g, id, c.Cell) < minDist {
			return true
		}
	}
	return false
}

// buildRoad walks greedily from one cell towards another, laying road on
// every step, and returns the number of road edges added. The walk stops
// where no neighbor brings it closer or the road is refused.
func buildRoad(g *Grid, from, to int) int {
	built := 0
	current := from
	for current != to {
		c := &g.cells[current]
		best := -1
		bestDir := hex.Direction(0)
		bestDist := cellDistance(g, current, to)
		for _, d := range hex.Directions {
			n := g.Neighbor(c, d)
			if n == nil || n.IsUnderwater() || c.HasRiverThroughEdge(d) || g.ElevationDifference(c, d) > 1 {
				continue
			}
			if dist := cellDistance(g, n.id, to); dist < bestDist {
				best, bestDir, bestDist = n.id, d, dist
			}
		}
		if best < 0 {
			break
		}
		if !c.roads[bestDir] {
			if !g.AddRoad(current, bestDir) {
				break
			}
			built++
		}
		current = best
	}
	return built
}

// generateNames produces procedural city names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "crest", "vale", "port",
		"town", "bury", "marsh", "well", "brook", "cliff", "moor",
		"ridge", "watch", "fall", "rest", "point", "reach", "helm",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	// Past every pairing, names repeat with a number: "Ironford 2".
	combos := len(prefixes) * len(suffixes)
	for len(names) < min(count, combos) {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}
	for i := combos; i < count; i++ {
		names = append(names, fmt.Sprintf("%s %d", names[i%combos], i/combos+1))
	}

	return names
}
