package world

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	previewTileSize     = 8
	previewAmbientLight = 0.35
)

// blockColors is the preview palette, keyed by block id.
var blockColors = map[BlockID]string{
	BlockStone:     "#7F7F7F",
	BlockDirt:      "#8B5A2B",
	BlockGrass:     "#4F9A3A",
	BlockSand:      "#C2B280",
	BlockSandstone: "#D2B48C",
	BlockSnow:      "#F2F5F8",
	BlockGravel:    "#8A8A8A",
}

// SaveHeightmapPreview renders a top-down PNG of the chunk surface, shaded by
// column height, into outputDir.
func SaveHeightmapPreview(chunk *Chunk, outputDir string) (string, error) {
	if chunk == nil {
		return "", fmt.Errorf("chunk is nil")
	}
	if err := ensurePreviewDir(outputDir); err != nil {
		return "", err
	}

	img := image.NewNRGBA(image.Rect(0, 0, SizeX*previewTileSize, SizeZ*previewTileSize))
	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	for z := 0; z < SizeZ; z++ {
		for x := 0; x < SizeX; x++ {
			height := chunk.Height(x, z)
			if height <= 0 {
				continue
			}
			surface := chunk.Block(x, height-1, z)
			base := resolveBlockColor(surface)
			shade := previewAmbientLight + (1-previewAmbientLight)*float64(height)/float64(SizeY)
			tile := image.Rect(x*previewTileSize, z*previewTileSize, (x+1)*previewTileSize, (z+1)*previewTileSize)
			draw.Draw(img, tile, &image.Uniform{applyLighting(base, shade)}, image.Point{}, draw.Src)
		}
	}

	name := fmt.Sprintf("chunk_%d_%d_L%d.png", chunk.Key.X, chunk.Key.Z, chunk.Key.LOD)
	path := filepath.Join(outputDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

func resolveBlockColor(block BlockID) color.NRGBA {
	if hex, ok := blockColors[block]; ok {
		if col, ok := parseHexColor(hex); ok {
			return col
		}
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = clamp(factor, 0, 1)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func ensurePreviewDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory is empty")
	}
	return os.MkdirAll(dir, 0o755)
}
