package terrain

import "voxelworld/internal/world"

// BiomeID enumerates the fixed biome set.
type BiomeID uint8

const (
	BiomeUnknown BiomeID = iota
	BiomeDesert
	BiomePlains
	BiomeMountains
)

// DefaultBiome is returned for ids outside the known set.
const DefaultBiome = BiomePlains

func (id BiomeID) String() string {
	switch id {
	case BiomeDesert:
		return "desert"
	case BiomePlains:
		return "plains"
	case BiomeMountains:
		return "mountains"
	default:
		return "unknown"
	}
}

// Octave is one (frequency, amplitude) pair of the height noise.
type Octave struct {
	Frequency float64
	Amplitude float64
}

// OctaveCount is the number of height octaves every biome defines, ordered
// from lowest to highest frequency.
const OctaveCount = 3

// TerrainParams are the numeric inputs of the height function. They are the
// part of a biome that gets blended across transition bands.
type TerrainParams struct {
	BaseHeight     float64
	SeaLevel       float64
	MountainHeight float64
	Octaves        [OctaveCount]Octave
}

// BiomeDefinition couples terrain parameters with the blocks used to dress a
// column.
type BiomeDefinition struct {
	ID       BiomeID
	Terrain  TerrainParams
	Surface  world.BlockID
	Filler   world.BlockID
	SnowLine int // 0 disables snow caps
}

var biomeDefinitions = [...]BiomeDefinition{
	BiomeDesert: {
		ID: BiomeDesert,
		Terrain: TerrainParams{
			BaseHeight:     2,
			SeaLevel:       24,
			MountainHeight: 14,
			Octaves: [OctaveCount]Octave{
				{Frequency: 1.0 / 256, Amplitude: 1.0},
				{Frequency: 1.0 / 64, Amplitude: 0.3},
				{Frequency: 1.0 / 16, Amplitude: 0.08},
			},
		},
		Surface: world.BlockSand,
		Filler:  world.BlockSandstone,
	},
	BiomePlains: {
		ID: BiomePlains,
		Terrain: TerrainParams{
			BaseHeight:     4,
			SeaLevel:       24,
			MountainHeight: 22,
			Octaves: [OctaveCount]Octave{
				{Frequency: 1.0 / 192, Amplitude: 1.0},
				{Frequency: 1.0 / 48, Amplitude: 0.4},
				{Frequency: 1.0 / 12, Amplitude: 0.1},
			},
		},
		Surface: world.BlockGrass,
		Filler:  world.BlockDirt,
	},
	BiomeMountains: {
		ID: BiomeMountains,
		Terrain: TerrainParams{
			BaseHeight:     10,
			SeaLevel:       24,
			MountainHeight: 88,
			Octaves: [OctaveCount]Octave{
				{Frequency: 1.0 / 160, Amplitude: 1.0},
				{Frequency: 1.0 / 40, Amplitude: 0.5},
				{Frequency: 1.0 / 10, Amplitude: 0.15},
			},
		},
		Surface:  world.BlockStone,
		Filler:   world.BlockGravel,
		SnowLine: 100,
	},
}

// BiomeByID always returns a definition; unknown ids fall back to
// DefaultBiome.
func BiomeByID(id BiomeID) BiomeDefinition {
	if id == BiomeUnknown || int(id) >= len(biomeDefinitions) {
		return biomeDefinitions[DefaultBiome]
	}
	return biomeDefinitions[id]
}

// Biome selection boundaries. Each boundary has a symmetric transition band
// of half-width TransitionBand.
const (
	DesertPlainsBoundary    = -0.25
	PlainsMountainsBoundary = 0.3
	TransitionBand          = 0.1
)

// Classify maps a biome-selection value to its primary biome and the terrain
// parameters to use there. Inside a transition band the parameters are blended
// between the two adjacent biomes; alpha is 0 at the band edge nearest the
// lower biome and 1 at the opposite edge.
func Classify(selection float64) (BiomeID, TerrainParams) {
	desert := biomeDefinitions[BiomeDesert].Terrain
	plains := biomeDefinitions[BiomePlains].Terrain
	mountains := biomeDefinitions[BiomeMountains].Terrain

	switch {
	case selection < DesertPlainsBoundary-TransitionBand:
		return BiomeDesert, desert
	case selection <= DesertPlainsBoundary+TransitionBand:
		primary := BiomeDesert
		if selection >= DesertPlainsBoundary {
			primary = BiomePlains
		}
		return primary, BlendParams(desert, plains, bandAlpha(selection, DesertPlainsBoundary))
	case selection < PlainsMountainsBoundary-TransitionBand:
		return BiomePlains, plains
	case selection <= PlainsMountainsBoundary+TransitionBand:
		primary := BiomePlains
		if selection >= PlainsMountainsBoundary {
			primary = BiomeMountains
		}
		return primary, BlendParams(plains, mountains, bandAlpha(selection, PlainsMountainsBoundary))
	default:
		return BiomeMountains, mountains
	}
}

// bandAlpha ramps across the whole band, so it is 0.5 at the boundary itself
// and reaches 1 only at the far edge. Both band edges then match the
// unblended parameters of the neighbouring biome and heights stay continuous.
func bandAlpha(selection, boundary float64) float64 {
	alpha := (selection - (boundary - TransitionBand)) / (2 * TransitionBand)
	if alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}

// BlendParams linearly interpolates every terrain parameter.
func BlendParams(a, b TerrainParams, alpha float64) TerrainParams {
	out := TerrainParams{
		BaseHeight:     lerp(a.BaseHeight, b.BaseHeight, alpha),
		SeaLevel:       lerp(a.SeaLevel, b.SeaLevel, alpha),
		MountainHeight: lerp(a.MountainHeight, b.MountainHeight, alpha),
	}
	for i := range out.Octaves {
		out.Octaves[i] = Octave{
			Frequency: lerp(a.Octaves[i].Frequency, b.Octaves[i].Frequency, alpha),
			Amplitude: lerp(a.Octaves[i].Amplitude, b.Octaves[i].Amplitude, alpha),
		}
	}
	return out
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
