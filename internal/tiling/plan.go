// Package tiling computes overlapping tile plans covering a source image so
// that a per-tile detector sees crops at its preferred working size.
package tiling

import (
	"fmt"
	"math"

	"tile-segmenter/internal/raster"
)

// Box is a tile bounding box in image pixel coordinates, half-open on the
// max side: pixels (x, y) with X0 <= x < X1 and Y0 <= y < Y1 belong to it.
type Box struct {
	X0, Y0, X1, Y1 int
}

// Width returns the box width in pixels.
func (b Box) Width() int { return b.X1 - b.X0 }

// Height returns the box height in pixels.
func (b Box) Height() int { return b.Y1 - b.Y0 }

func (b Box) String() string {
	return fmt.Sprintf("[%d,%d)x[%d,%d)", b.X0, b.X1, b.Y0, b.Y1)
}

// Plan computes the row-major sequence of overlapping tile boxes covering an
// imageW x imageH image. Overlap per axis is floor(ratio * tile size). A tile
// that would run past an image bound is pulled back to the edge so every tile
// keeps the requested size (at the cost of extra overlap on the far edge)
// whenever the image is at least tile-sized; smaller images yield a single
// image-sized tile.
func Plan(imageH, imageW, tileH, tileW int, overlapHRatio, overlapWRatio float64) ([]Box, error) {
	if tileH <= 0 || tileW <= 0 {
		return nil, fmt.Errorf("%w: tile size must be positive, got %dx%d",
			raster.ErrInvalidConfig, tileW, tileH)
	}
	if overlapHRatio < 0 || overlapHRatio >= 1 || overlapWRatio < 0 || overlapWRatio >= 1 {
		return nil, fmt.Errorf("%w: overlap ratios must be in [0,1), got %.3f/%.3f",
			raster.ErrInvalidConfig, overlapHRatio, overlapWRatio)
	}
	if imageH <= 0 || imageW <= 0 {
		return nil, fmt.Errorf("%w: image size must be positive, got %dx%d",
			raster.ErrInvalidConfig, imageW, imageH)
	}

	overlapH := int(math.Floor(overlapHRatio * float64(tileH)))
	overlapW := int(math.Floor(overlapWRatio * float64(tileW)))

	var boxes []Box
	yMin, yMax := 0, 0
	for yMax < imageH {
		yMax = yMin + tileH
		xMin, xMax := 0, 0
		for xMax < imageW {
			xMax = xMin + tileW
			if yMax > imageH || xMax > imageW {
				// Clamp to the image edge, then pull back to keep
				// full tile size.
				x1 := min(imageW, xMax)
				y1 := min(imageH, yMax)
				boxes = append(boxes, Box{
					X0: max(0, x1-tileW),
					Y0: max(0, y1-tileH),
					X1: x1,
					Y1: y1,
				})
			} else {
				boxes = append(boxes, Box{X0: xMin, Y0: yMin, X1: xMax, Y1: yMax})
			}
			xMin = xMax - overlapW
		}
		yMin = yMax - overlapH
	}

	return boxes, nil
}

// Overlaps returns the overlap in pixels per axis for a tile size and ratio
// pair, matching the values used by Plan.
func Overlaps(tileH, tileW int, overlapHRatio, overlapWRatio float64) (overlapH, overlapW int) {
	return int(math.Floor(overlapHRatio * float64(tileH))),
		int(math.Floor(overlapWRatio * float64(tileW)))
}
