package imgio

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.Gray{Y: 40})
		}
	}
	// Bright patch in the corner.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.Gray{Y: 220})
		}
	}
	return img
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testImage()))
	require.NoError(t, f.Close())

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.png"))
	assert.Error(t, err)
}

func TestGray(t *testing.T) {
	g := Gray(testImage())
	assert.Equal(t, uint8(220), g.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(40), g.GrayAt(6, 6).Y)
}

func TestGrayNormalizesOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(10, 20, 14, 24))
	src.SetGray(10, 20, color.Gray{Y: 99})

	g := Gray(src)
	assert.Equal(t, image.Rect(0, 0, 4, 4), g.Bounds())
	assert.Equal(t, uint8(99), g.GrayAt(0, 0).Y)
}

func TestThresholdWhite(t *testing.T) {
	out := ThresholdWhite(testImage(), 128)
	g := Gray(out)

	// Bright patch is clipped to white, dark background untouched.
	assert.Equal(t, uint8(255), g.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(40), g.GrayAt(6, 6).Y)
}

func TestGrayHistogram(t *testing.T) {
	dividers, counts := GrayHistogram(testImage(), 4)
	require.Len(t, dividers, 5)
	require.Len(t, counts, 4)

	// 16 bright pixels land in the last bin, 48 dark in the first.
	assert.InDelta(t, 48, counts[0], 1e-9)
	assert.InDelta(t, 16, counts[3], 1e-9)

	total := 0.0
	for _, c := range counts {
		total += c
	}
	assert.InDelta(t, 64, total, 1e-9)
}
