// Package labeling converts a detector's raw mask set for one tile into a
// dense per-tile label raster.
package labeling

import (
	"fmt"
	"sort"

	"tile-segmenter/internal/raster"
)

// Mask is one detected object within a tile's coordinate frame: a boolean
// pixel membership grid plus its pixel count. Masks come from the external
// detector and may overlap each other.
type Mask struct {
	W, H int
	Pix  []bool
	Area int
}

// NewMask creates an empty mask of the given size.
func NewMask(w, h int) Mask {
	return Mask{W: w, H: h, Pix: make([]bool, w*h)}
}

// At reports membership of pixel (x, y). Out-of-bounds reads return false.
func (m Mask) At(x, y int) bool {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return false
	}
	return m.Pix[y*m.W+x]
}

// SetRect marks a rectangular block of pixels as members and updates Area.
// Intended for tests and synthetic scenes.
func (m *Mask) SetRect(x0, y0, x1, y1 int) {
	for y := max(0, y0); y < min(m.H, y1); y++ {
		for x := max(0, x0); x < min(m.W, x1); x++ {
			idx := y*m.W + x
			if !m.Pix[idx] {
				m.Pix[idx] = true
				m.Area++
			}
		}
	}
}

// Rasterize paints the masks into a w x h label raster. Masks are sorted by
// area descending and painted in that order with label 1+index, so smaller
// masks land last and win overlapping pixels: when masks overlap, the more
// specific object takes priority. Pixels covered by no mask stay 0.
//
// An empty mask list returns the all-zero raster together with an error
// wrapping raster.ErrEmptyInput. Callers classify with errors.Is and may use
// the raster regardless.
func Rasterize(w, h int, masks []Mask) (*raster.LabelRaster, error) {
	out := raster.New(w, h)
	if len(masks) == 0 {
		return out, fmt.Errorf("%w: no masks for %dx%d tile", raster.ErrEmptyInput, w, h)
	}

	sorted := make([]Mask, len(masks))
	copy(sorted, masks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area > sorted[j].Area
	})

	for idx, m := range sorted {
		label := int32(idx + 1)
		for y := 0; y < min(h, m.H); y++ {
			for x := 0; x < min(w, m.W); x++ {
				if m.Pix[y*m.W+x] {
					out.Pix[y*w+x] = label
				}
			}
		}
	}
	return out, nil
}
