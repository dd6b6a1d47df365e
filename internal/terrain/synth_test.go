package terrain

import (
	"context"
	"strings"
	"testing"
	"time"

	"voxelworld/internal/world"
)

func TestSynthesizeFillsColumnsFromSampler(t *testing.T) {
	synth := NewSynthesizer(4)
	synth.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	res, err := synth.Synthesize(context.Background(), 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(res.Voxels) != world.Volume {
		t.Fatalf("expected %d voxels, got %d", world.Volume, len(res.Voxels))
	}
	if len(res.Heightmap) != world.Area {
		t.Fatalf("expected %d heightmap entries, got %d", world.Area, len(res.Heightmap))
	}
	if res.LastModified != 1_700_000_000_000 {
		t.Fatalf("expected injected timestamp, got %d", res.LastModified)
	}

	sampler := NewSampler(0, 0)
	for z := 0; z < world.SizeZ; z++ {
		for x := 0; x < world.SizeX; x++ {
			info := sampler.Sample(x, z)
			height := res.Heightmap[world.ColumnIndex(x, z)]
			if height != info.Height {
				t.Fatalf("column (%d,%d): expected height %d, got %d", x, z, info.Height, height)
			}
			for y := 0; y < world.SizeY; y++ {
				block := res.Voxels[world.VoxelIndex(x, y, z)]
				if y < height && !block.Solid() {
					t.Fatalf("column (%d,%d): expected solid block at y=%d", x, z, y)
				}
				if y >= height && block.Solid() {
					t.Fatalf("column (%d,%d): expected air at y=%d, got %d", x, z, y, block)
				}
			}
			surface := res.Voxels[world.VoxelIndex(x, height-1, z)]
			def := BiomeByID(info.Biome)
			if surface != def.Surface && surface != world.BlockSnow {
				t.Fatalf("column (%d,%d): expected %v surface block, got %d", x, z, info.Biome, surface)
			}
		}
	}
}

func TestSynthesizeUsesChunkOrigin(t *testing.T) {
	synth := NewSynthesizer(2)
	res, err := synth.Synthesize(context.Background(), 77, -2, 3, 1)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	sampler := NewSampler(77, 1)
	ox, oz := world.ChunkKey{X: -2, Z: 3}.Origin()
	for _, col := range [][2]int{{0, 0}, {15, 15}, {7, 3}} {
		want := sampler.Sample(ox+col[0], oz+col[1]).Height
		if got := res.Heightmap[world.ColumnIndex(col[0], col[1])]; got != want {
			t.Fatalf("column %v: expected height %d, got %d", col, want, got)
		}
	}
}

func TestSynthesizeRejectsInvalidInput(t *testing.T) {
	synth := NewSynthesizer(1)
	if _, err := synth.Synthesize(context.Background(), 0, 0, 0, -1); err == nil {
		t.Fatalf("expected error for negative lod")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := synth.Synthesize(ctx, 0, 0, 0, 0); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestBlockAtDepthRule(t *testing.T) {
	def := BiomeByID(BiomeDesert)
	height := 10
	if got := blockAt(def, 9, height); got != world.BlockSand {
		t.Fatalf("expected sand surface, got %d", got)
	}
	for y := 6; y <= 8; y++ {
		if got := blockAt(def, y, height); got != world.BlockSandstone {
			t.Fatalf("y=%d: expected sandstone filler, got %d", y, got)
		}
	}
	if got := blockAt(def, 5, height); got != world.BlockStone {
		t.Fatalf("expected stone below filler, got %d", got)
	}

	mountains := BiomeByID(BiomeMountains)
	if got := blockAt(mountains, 110, 111); got != world.BlockSnow {
		t.Fatalf("expected snow cap above snow line, got %d", got)
	}
}

func TestSynthesizeRecoversWorkerPanic(t *testing.T) {
	synth := NewSynthesizer(4)
	synth.sample = func(s *Sampler, wx, wz int) HeightInfo {
		if wx == 5 && wz == 9 {
			panic("corrupt noise table")
		}
		return s.Sample(wx, wz)
	}

	res, err := synth.Synthesize(context.Background(), 0, 0, 0, 0)
	if err == nil {
		t.Fatalf("expected an error from the panicking column")
	}
	if !strings.Contains(err.Error(), "panic: corrupt noise table") {
		t.Fatalf("expected panic value in error, got %v", err)
	}
	if res.Voxels != nil || res.Heightmap != nil {
		t.Fatalf("expected empty result on failure")
	}
}
