package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillRect paints a rectangle of the given label, half-open bounds.
func fillRect(r *LabelRaster, x0, y0, x1, y1 int, v int32) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.Set(x, y, v)
		}
	}
}

func TestConnectivityValidate(t *testing.T) {
	assert.NoError(t, Conn4.Validate())
	assert.NoError(t, Conn8.Validate())
	assert.ErrorIs(t, Connectivity(6).Validate(), ErrInvalidConfig)
}

func TestLabelRasterBasics(t *testing.T) {
	r := New(10, 5)
	assert.Equal(t, 0, r.NonzeroCount())
	assert.Equal(t, int32(0), r.At(-1, 0), "out-of-bounds reads return background")
	assert.Equal(t, int32(0), r.At(10, 0))

	r.Set(3, 2, 7)
	r.Set(4, 2, 7)
	r.Set(9, 4, 2)
	assert.Equal(t, int32(7), r.At(3, 2))
	assert.Equal(t, 3, r.NonzeroCount())
	assert.Equal(t, 2, r.LabelCount())
	assert.Equal(t, []int32{2, 7}, r.Labels())

	clone := r.Clone()
	clone.Set(0, 0, 9)
	assert.Equal(t, int32(0), r.At(0, 0), "clone must not alias the original")

	r.Replace(7, 1)
	assert.Equal(t, int32(1), r.At(3, 2))
	assert.Equal(t, []int32{1, 2}, r.Labels())
}

func TestComponentsConnectivity(t *testing.T) {
	// Two same-valued pixels touching only diagonally.
	r := New(5, 5)
	r.Set(1, 1, 3)
	r.Set(2, 2, 3)

	four := Components(r, Conn4)
	assert.Equal(t, 2, four.LabelCount(), "diagonal touch is not 4-connected")

	eight := Components(r, Conn8)
	assert.Equal(t, 1, eight.LabelCount(), "diagonal touch is 8-connected")
}

func TestComponentsSeparatesEqualValues(t *testing.T) {
	// Two disjoint blocks sharing a value must get distinct compact ids.
	r := New(20, 20)
	fillRect(r, 1, 1, 4, 4, 5)
	fillRect(r, 10, 10, 13, 13, 5)

	out := Components(r, Conn4)
	assert.Equal(t, 2, out.LabelCount())
	assert.Equal(t, []int32{1, 2}, out.Labels(), "ids are compact 1..k")
	assert.Equal(t, r.NonzeroCount(), out.NonzeroCount())
}

func TestComponentsKeepsTouchingLabelsDistinct(t *testing.T) {
	// Adjacent blocks with different values never fuse during recompute.
	r := New(10, 10)
	fillRect(r, 1, 1, 4, 4, 1)
	fillRect(r, 4, 1, 7, 4, 2)

	out := Components(r, Conn8)
	assert.Equal(t, 2, out.LabelCount())
}

func TestEraseBoundaries(t *testing.T) {
	r := New(10, 10)
	fillRect(r, 2, 2, 5, 5, 7) // 3x3 block

	out := EraseBoundaries(r, Conn4)
	assert.Equal(t, 9, r.NonzeroCount(), "input is not modified")
	assert.Equal(t, 1, out.NonzeroCount(), "only the block center survives")
	assert.Equal(t, int32(7), out.At(3, 3))
}

func TestEraseBoundariesKeepsRasterEdge(t *testing.T) {
	// A block flush against the raster edge is not eroded along that edge.
	r := New(6, 6)
	fillRect(r, 0, 0, 3, 3, 1)

	out := EraseBoundaries(r, Conn4)
	assert.Equal(t, int32(1), out.At(0, 0))
	assert.Equal(t, int32(1), out.At(1, 1))
	assert.Equal(t, int32(0), out.At(2, 0), "interior-facing ring is erased")
	assert.Equal(t, int32(0), out.At(2, 2))
}

func TestEraseBoundariesSeparatesNeighbors(t *testing.T) {
	// Two touching regions with different labels end up with a background
	// gap wide enough that they are not even 8-connected.
	r := New(12, 12)
	fillRect(r, 1, 1, 5, 5, 1)
	fillRect(r, 5, 1, 9, 5, 2)

	out := EraseBoundaries(r, Conn4)
	comps := Components(out, Conn8)
	assert.Equal(t, 2, comps.LabelCount())
}

func TestRegionsDescriptors(t *testing.T) {
	r := New(100, 100)
	fillRect(r, 10, 10, 15, 15, 1) // 5x5 square
	fillRect(r, 40, 50, 50, 51, 2) // 10x1 line

	regions := Regions(r)
	require.Len(t, regions, 2)

	square := regions[0]
	assert.Equal(t, int32(1), square.Label)
	assert.Equal(t, 25, square.Area)
	assert.Equal(t, 10, square.Bounds.X)
	assert.Equal(t, 10, square.Bounds.Y)
	assert.Equal(t, 5, square.Bounds.Width)
	assert.Equal(t, 5, square.Bounds.Height)
	assert.InDelta(t, 12.0, square.Centroid.X, 1e-9)
	assert.InDelta(t, 12.0, square.Centroid.Y, 1e-9)
	assert.InDelta(t, 0.0, square.Eccentricity, 1e-9, "a square is not elongated")
	assert.False(t, square.TouchesEdge)

	line := regions[1]
	assert.Equal(t, 10, line.Area)
	assert.InDelta(t, 1.0, line.Eccentricity, 1e-9, "a 1px line is maximally elongated")
}

func TestRegionsTouchesEdge(t *testing.T) {
	r := New(20, 20)
	fillRect(r, 0, 5, 3, 8, 1)     // flush left
	fillRect(r, 10, 10, 13, 13, 2) // interior

	regions := Regions(r)
	require.Len(t, regions, 2)
	assert.True(t, regions[0].TouchesEdge)
	assert.False(t, regions[1].TouchesEdge)
}

func TestRegionByLabel(t *testing.T) {
	r := New(10, 10)
	fillRect(r, 1, 1, 3, 3, 4)
	regions := Regions(r)

	reg, ok := RegionByLabel(regions, 4)
	require.True(t, ok)
	assert.Equal(t, 4, reg.Area)

	_, ok = RegionByLabel(regions, 9)
	assert.False(t, ok)
}
