package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-segmenter/internal/raster"
	"tile-segmenter/pkg/geometry"
)

func fillRect(r *raster.LabelRaster, x0, y0, x1, y1 int, v int32) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.Set(x, y, v)
		}
	}
}

// twoSquares builds the 100x100 scene with two disjoint 5x5 squares at
// (10,10) and (80,80), area 25 each.
func twoSquares() *raster.LabelRaster {
	r := raster.New(100, 100)
	fillRect(r, 10, 10, 15, 15, 1)
	fillRect(r, 80, 80, 85, 85, 2)
	return r
}

func TestByAreaKeepsWithinBounds(t *testing.T) {
	out, err := Chain(twoSquares(), ByArea(10, 30))
	require.NoError(t, err)
	assert.Equal(t, 2, out.LabelCount())

	out, err = Chain(twoSquares(), ByArea(10, 20))
	require.NoError(t, err)
	assert.Equal(t, 0, out.LabelCount(), "shrinking area_max below 25 discards both")
}

func TestByAreaBoundsInclusive(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		kept     int
	}{
		{"area equals min", 25, 100, 2},
		{"area equals max", 1, 25, 2},
		{"min just above", 26, 100, 0},
		{"max just below", 1, 24, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Chain(twoSquares(), ByArea(tt.min, tt.max))
			require.NoError(t, err)
			assert.Equal(t, tt.kept, out.LabelCount())
		})
	}
}

func TestByAreaInvertedBounds(t *testing.T) {
	_, err := Chain(twoSquares(), ByArea(30, 10))
	assert.ErrorIs(t, err, raster.ErrInvalidConfig)
}

func TestByEccentricity(t *testing.T) {
	r := raster.New(60, 60)
	fillRect(r, 5, 5, 10, 10, 1)   // square, eccentricity 0
	fillRect(r, 20, 30, 50, 32, 2) // 30x2 bar, strongly elongated

	out, err := Chain(r, ByEccentricity(0.5))
	require.NoError(t, err)
	assert.Equal(t, 1, out.LabelCount(), "near-circular blob is discarded")
	assert.Equal(t, int32(2), out.At(21, 30))
	assert.Equal(t, int32(0), out.At(6, 6))
}

func TestClearBorder(t *testing.T) {
	r := raster.New(50, 50)
	fillRect(r, 0, 10, 5, 15, 1)   // touches left edge
	fillRect(r, 20, 20, 25, 25, 2) // interior
	fillRect(r, 45, 45, 50, 50, 3) // touches bottom-right corner

	out, err := Chain(r, ClearBorder())
	require.NoError(t, err)
	assert.Equal(t, 1, out.LabelCount())
	assert.Equal(t, int32(2), out.At(22, 22))
}

func TestByPolygon(t *testing.T) {
	r := twoSquares()
	tray := geometry.RectPolygon(geometry.RectInt{X: 0, Y: 0, Width: 50, Height: 50})

	out, err := Chain(r, ByPolygon(tray, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, out.LabelCount(), "square at (80,80) is outside the tray")
	assert.Equal(t, int32(1), out.At(12, 12))

	_, err = Chain(r, ByPolygon(tray[:2], 0))
	assert.ErrorIs(t, err, raster.ErrInvalidConfig)
}

func TestByPolygonMargin(t *testing.T) {
	r := raster.New(100, 100)
	fillRect(r, 52, 20, 57, 25, 1) // just outside a 50-wide tray

	tray := geometry.RectPolygon(geometry.RectInt{X: 0, Y: 0, Width: 50, Height: 50})

	out, err := Chain(r, ByPolygon(tray, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, out.LabelCount())

	// A generous margin brings the region back inside.
	out, err = Chain(r, ByPolygon(tray, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, out.LabelCount())
}

func TestCompact(t *testing.T) {
	r := raster.New(30, 30)
	fillRect(r, 1, 1, 4, 4, 7)
	fillRect(r, 10, 10, 13, 13, 42)

	out, err := Chain(r, Compact(raster.Conn4))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, out.Labels())

	_, err = Chain(r, Compact(raster.Connectivity(5)))
	assert.ErrorIs(t, err, raster.ErrInvalidConfig)
}

func TestChainIdempotent(t *testing.T) {
	r := raster.New(100, 100)
	fillRect(r, 10, 10, 15, 15, 1)  // 5x5, area 25
	fillRect(r, 30, 40, 60, 43, 2)  // 30x3 bar, area 90
	fillRect(r, 0, 90, 8, 100, 3)   // touches border
	fillRect(r, 70, 70, 71, 71, 4)  // single pixel, below area_min

	passes := []Pass{
		ByArea(10, 200),
		ByEccentricity(0.5),
		ClearBorder(),
		Compact(raster.Conn4),
	}

	once, err := Chain(r, passes...)
	require.NoError(t, err)
	assert.Equal(t, 1, once.LabelCount(), "only the elongated interior bar survives")

	twice, err := Chain(once, passes...)
	require.NoError(t, err)
	assert.Equal(t, once.Pix, twice.Pix, "re-running the chain changes nothing")
}

func TestChainOrderMatters(t *testing.T) {
	// A border-touching region below the area floor: border-first and
	// area-first agree here, but a chain that compacts in between renumbers
	// differently, so passes must run in the caller's order.
	r := raster.New(50, 50)
	fillRect(r, 0, 0, 3, 3, 1)
	fillRect(r, 10, 10, 20, 12, 2)

	out, err := Chain(r, ClearBorder(), ByArea(5, 100), Compact(raster.Conn4))
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, out.Labels())
}
