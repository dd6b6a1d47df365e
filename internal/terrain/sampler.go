package terrain

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// HeightInfo is the result of a single column query.
type HeightInfo struct {
	Height int
	Biome  BiomeID
}

// BiomeFrequency scales world coordinates for the biome-selection noise.
const BiomeFrequency = 1.0 / 512

// Salts XORed into the seed so every generator gets an independent stream.
const biomeSalt int64 = 0x5DEECE66D

var octaveSalts = [OctaveCount]int64{
	0x1B873593,
	0x68E31DA4,
	0x3C6EF372A54FF53A,
}

// Sampler maps world columns to terrain height and biome for one (seed, LOD)
// pair. A Sampler holds only read-only state after construction and may be
// shared between goroutines.
type Sampler struct {
	seed      int64
	active    int
	selection opensimplex.Noise
	octaves   [OctaveCount]opensimplex.Noise
}

func NewSampler(seed int64, lod int) *Sampler {
	s := &Sampler{
		seed:      seed,
		active:    ActiveOctaves(lod),
		selection: opensimplex.New(seed ^ biomeSalt),
	}
	for i := range s.octaves {
		s.octaves[i] = opensimplex.New(seed ^ octaveSalts[i])
	}
	return s
}

// ActiveOctaves returns how many of the lowest-frequency octaves are summed at
// the given LOD.
func ActiveOctaves(lod int) int {
	switch {
	case lod <= 0:
		return 3
	case lod == 1:
		return 2
	default:
		return 1
	}
}

// Sample returns the terrain height and primary biome at a world column.
func (s *Sampler) Sample(wx, wz int) HeightInfo {
	return s.sampleAt(s.Selection(wx, wz), wx, wz)
}

// Selection evaluates the low-frequency biome-selection noise.
func (s *Sampler) Selection(wx, wz int) float64 {
	return s.selection.Eval2(float64(wx)*BiomeFrequency, float64(wz)*BiomeFrequency)
}

func (s *Sampler) sampleAt(selection float64, wx, wz int) HeightInfo {
	biome, params := Classify(selection)
	return HeightInfo{
		Height: s.height(params, wx, wz),
		Biome:  biome,
	}
}

func (s *Sampler) height(params TerrainParams, wx, wz int) int {
	value := s.composite(params, wx, wz)
	scaled := (value + 1) * 0.5 * params.MountainHeight
	h := int(math.Floor(params.SeaLevel + params.BaseHeight + scaled))
	if h < 1 {
		return 1
	}
	return h
}

// composite sums the active octaves and normalizes by the amplitude of exactly
// those octaves.
func (s *Sampler) composite(params TerrainParams, wx, wz int) float64 {
	x := float64(wx)
	z := float64(wz)
	sum := 0.0
	amplitude := 0.0
	for i := 0; i < s.active; i++ {
		oct := params.Octaves[i]
		sum += s.octaves[i].Eval2(x*oct.Frequency, z*oct.Frequency) * oct.Amplitude
		amplitude += oct.Amplitude
	}
	if amplitude == 0 {
		return 0
	}
	return sum / amplitude
}
