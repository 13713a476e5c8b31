// Package raster provides the dense integer label raster shared by the
// tiling, stitching, and filtering stages, together with connected-component
// labeling and per-region geometric descriptors.
package raster

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for the pipeline error taxonomy. Callers classify with
// errors.Is; wrapped messages carry the specifics.
var (
	// ErrInvalidConfig indicates a bad configuration value (tile size,
	// overlap ratio, inverted area bounds). Fatal, no retry.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyInput indicates an empty mask set or tile sequence. Non-fatal:
	// callers treat it as an all-background raster.
	ErrEmptyInput = errors.New("empty input")

	// ErrDetector indicates the external detector failed on a tile. Fatal to
	// the whole pipeline.
	ErrDetector = errors.New("detector failure")
)

// Connectivity selects the pixel neighborhood rule: 4-connected (edges only)
// or 8-connected (edges and diagonals).
type Connectivity int

const (
	Conn4 Connectivity = 4
	Conn8 Connectivity = 8
)

// Validate returns an error unless the connectivity is 4 or 8.
func (c Connectivity) Validate() error {
	if c != Conn4 && c != Conn8 {
		return fmt.Errorf("%w: connectivity must be 4 or 8, got %d", ErrInvalidConfig, int(c))
	}
	return nil
}

// Offsets returns the neighbor offsets for the connectivity.
func (c Connectivity) Offsets() [][2]int {
	if c == Conn8 {
		return [][2]int{
			{-1, -1}, {0, -1}, {1, -1},
			{-1, 0}, {1, 0},
			{-1, 1}, {0, 1}, {1, 1},
		}
	}
	return [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
}

// LabelRaster is a dense 2D integer grid. Zero is background; each positive
// value marks one labeled region. Pixels are stored row-major.
type LabelRaster struct {
	W, H int
	Pix  []int32
}

// New creates an all-background raster of the given size.
func New(w, h int) *LabelRaster {
	return &LabelRaster{W: w, H: h, Pix: make([]int32, w*h)}
}

// At returns the label at pixel (x, y). Out-of-bounds reads return 0.
func (r *LabelRaster) At(x, y int) int32 {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return 0
	}
	return r.Pix[y*r.W+x]
}

// Set writes the label at pixel (x, y). Out-of-bounds writes are ignored.
func (r *LabelRaster) Set(x, y int, v int32) {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return
	}
	r.Pix[y*r.W+x] = v
}

// Clone returns a deep copy of the raster.
func (r *LabelRaster) Clone() *LabelRaster {
	out := &LabelRaster{W: r.W, H: r.H, Pix: make([]int32, len(r.Pix))}
	copy(out.Pix, r.Pix)
	return out
}

// LabelCount returns the number of distinct nonzero labels present.
func (r *LabelRaster) LabelCount() int {
	seen := make(map[int32]struct{})
	for _, v := range r.Pix {
		if v != 0 {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// Labels returns the distinct nonzero labels present, in ascending order.
func (r *LabelRaster) Labels() []int32 {
	seen := make(map[int32]struct{})
	for _, v := range r.Pix {
		if v != 0 {
			seen[v] = struct{}{}
		}
	}
	out := make([]int32, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NonzeroCount returns the number of labeled (foreground) pixels.
func (r *LabelRaster) NonzeroCount() int {
	n := 0
	for _, v := range r.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Replace overwrites every pixel carrying label old with label new.
func (r *LabelRaster) Replace(old, new int32) {
	if old == new {
		return
	}
	for i, v := range r.Pix {
		if v == old {
			r.Pix[i] = new
		}
	}
}
