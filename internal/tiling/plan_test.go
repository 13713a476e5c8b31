package tiling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-segmenter/internal/raster"
)

func TestPlanCoversImage(t *testing.T) {
	tests := []struct {
		name           string
		imageH, imageW int
		tileH, tileW   int
		overlap        float64
	}{
		{"exact multiple", 200, 200, 100, 100, 0},
		{"with overlap", 500, 700, 128, 128, 0.2},
		{"uneven remainder", 115, 64, 64, 64, 0.2},
		{"wide image", 64, 1000, 64, 64, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes, err := Plan(tt.imageH, tt.imageW, tt.tileH, tt.tileW, tt.overlap, tt.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, boxes)

			covered := make([]bool, tt.imageH*tt.imageW)
			for _, b := range boxes {
				assert.Equal(t, tt.tileW, b.Width(), "tile %v must keep requested width", b)
				assert.Equal(t, tt.tileH, b.Height(), "tile %v must keep requested height", b)
				assert.GreaterOrEqual(t, b.X0, 0)
				assert.GreaterOrEqual(t, b.Y0, 0)
				assert.LessOrEqual(t, b.X1, tt.imageW)
				assert.LessOrEqual(t, b.Y1, tt.imageH)
				for y := b.Y0; y < b.Y1; y++ {
					for x := b.X0; x < b.X1; x++ {
						covered[y*tt.imageW+x] = true
					}
				}
			}
			for i, c := range covered {
				require.True(t, c, "pixel (%d,%d) not covered", i%tt.imageW, i/tt.imageW)
			}
		})
	}
}

func TestPlanRowMajorOrder(t *testing.T) {
	boxes, err := Plan(300, 300, 128, 128, 0.2, 0.2)
	require.NoError(t, err)

	for i := 1; i < len(boxes); i++ {
		prev, cur := boxes[i-1], boxes[i]
		if cur.Y0 == prev.Y0 {
			assert.Greater(t, cur.X0, prev.X0, "tiles within a row step right")
		} else {
			assert.Greater(t, cur.Y0, prev.Y0, "rows step down")
		}
	}
}

func TestPlanSingleTile(t *testing.T) {
	boxes, err := Plan(50, 80, 100, 100, 0.2, 0.2)
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, Box{X0: 0, Y0: 0, X1: 80, Y1: 50}, boxes[0])
}

func TestPlanSeamScenario(t *testing.T) {
	// Two 64x64 tiles over a 115-row image: the second tile is pulled back
	// to row 51, giving a 13px overlap band at the far edge.
	boxes, err := Plan(115, 64, 64, 64, 0.2, 0.2)
	require.NoError(t, err)
	require.Len(t, boxes, 2)
	assert.Equal(t, Box{X0: 0, Y0: 0, X1: 64, Y1: 64}, boxes[0])
	assert.Equal(t, Box{X0: 0, Y0: 51, X1: 64, Y1: 115}, boxes[1])
}

func TestPlanInvalidConfig(t *testing.T) {
	tests := []struct {
		name         string
		tileH, tileW int
		ratio        float64
	}{
		{"zero tile height", 0, 64, 0.2},
		{"negative tile width", 64, -1, 0.2},
		{"overlap ratio one", 64, 64, 1.0},
		{"negative overlap", 64, 64, -0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(100, 100, tt.tileH, tt.tileW, tt.ratio, tt.ratio)
			require.Error(t, err)
			assert.True(t, errors.Is(err, raster.ErrInvalidConfig))
		})
	}
}

func TestOverlaps(t *testing.T) {
	h, w := Overlaps(64, 64, 0.2, 0.2)
	assert.Equal(t, 12, h)
	assert.Equal(t, 12, w)

	h, w = Overlaps(100, 250, 0.2, 0.1)
	assert.Equal(t, 20, h)
	assert.Equal(t, 25, w)
}
