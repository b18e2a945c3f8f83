package metrics

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/lookout/internal/geom"
)

// HashGridSize is the side length of the square hash table.
const (
	HashGridSize  = 256
	HashGridScale = 0.25
)

// Hash holds five independent pseudo-random channels in [0, 0.999).
// A, B and C gate the urban, farm and plant tiers, D picks the prefab
// within a tier and E drives rotation and tower placement.
type Hash struct {
	A, B, C, D, E float64
}

// NoiseSample is a four-channel noise value; every channel is in [0, 1].
type NoiseSample struct {
	X, Y, Z, W float64
}

// Surface bundles the seeded noise and hash tables. It is built once per
// grid and never mutated, so identical cell state always produces identical
// geometry.
type Surface struct {
	seed  int64
	noise [4]opensimplex.Noise
	hash  []Hash
}

// NewSurface builds the noise channels and hash table for a seed.
func NewSurface(seed int64) *Surface {
	s := &Surface{seed: seed}
	for i := range s.noise {
		s.noise[i] = opensimplex.NewNormalized(seed + int64(i))
	}

	rng := rand.New(rand.NewSource(seed))
	s.hash = make([]Hash, HashGridSize*HashGridSize)
	for i := range s.hash {
		s.hash[i] = Hash{
			A: rng.Float64() * 0.999,
			B: rng.Float64() * 0.999,
			C: rng.Float64() * 0.999,
			D: rng.Float64() * 0.999,
			E: rng.Float64() * 0.999,
		}
	}
	return s
}

// Seed returns the seed the surface was built from.
func (s *Surface) Seed() int64 {
	return s.seed
}

// SampleNoise samples all four noise channels at a world position.
func (s *Surface) SampleNoise(p geom.Vec3) NoiseSample {
	x := p.X * NoiseScale
	z := p.Z * NoiseScale
	return NoiseSample{
		X: s.noise[0].Eval2(x, z),
		Y: s.noise[1].Eval2(x, z),
		Z: s.noise[2].Eval2(x, z),
		W: s.noise[3].Eval2(x, z),
	}
}

// Perturb displaces a position horizontally by the noise field. The
// vertical component is left alone so cell tops stay flat.
func (s *Surface) Perturb(p geom.Vec3) geom.Vec3 {
	n := s.SampleNoise(p)
	p.X += (n.X*2 - 1) * CellPerturbStrength
	p.Z += (n.Z*2 - 1) * CellPerturbStrength
	return p
}

// ElevationJitter is the vertical offset applied to a cell center.
func (s *Surface) ElevationJitter(p geom.Vec3) float64 {
	return (s.SampleNoise(p).Y*2 - 1) * ElevationPerturbStrength
}

// SampleHash returns the hash entry covering a world position. The table
// tiles every HashGridSize/HashGridScale world units.
func (s *Surface) SampleHash(p geom.Vec3) Hash {
	x := int(p.X*HashGridScale) % HashGridSize
	if x < 0 {
		x += HashGridSize
	}
	z := int(p.Z*HashGridScale) % HashGridSize
	if z < 0 {
		z += HashGridSize
	}
	return s.hash[x+z*HashGridSize]
}
