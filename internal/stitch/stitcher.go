// Package stitch composites per-tile label rasters into one global raster
// and reunites objects that were split across tile boundaries.
package stitch

import (
	"fmt"

	"tile-segmenter/internal/raster"
	"tile-segmenter/internal/tiling"
)

// Tile pairs a planned box with the (boundary-eroded) label raster the
// detector produced for it.
type Tile struct {
	Box    tiling.Box
	Labels *raster.LabelRaster
}

// Stitcher owns the single mutable accumulator raster. Tiles must be added
// in the exact row-major order produced by the planner: the overlap-skip
// policy keeps the first writer's labels in shared bands, so integrating out
// of order changes the result.
type Stitcher struct {
	acc                *raster.LabelRaster
	overlapH, overlapW int
	conn               raster.Connectivity
	added              int
}

// New creates a stitcher for an imageW x imageH output raster. overlapH and
// overlapW are the planner's per-axis overlaps in pixels (see
// tiling.Overlaps).
func New(imageH, imageW, overlapH, overlapW int, conn raster.Connectivity) (*Stitcher, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	if imageH <= 0 || imageW <= 0 {
		return nil, fmt.Errorf("%w: image size must be positive, got %dx%d",
			raster.ErrInvalidConfig, imageW, imageH)
	}
	if overlapH < 0 || overlapW < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d/%d",
			raster.ErrInvalidConfig, overlapH, overlapW)
	}
	return &Stitcher{
		acc:      raster.New(imageW, imageH),
		overlapH: overlapH,
		overlapW: overlapW,
		conn:     conn,
	}, nil
}

// Add integrates one tile into the accumulator: composite with overlap-skip,
// recompute global components, merge equivalent labels touching across the
// seam, recompute once more for canonical compact ids.
func (s *Stitcher) Add(box tiling.Box, tile *raster.LabelRaster) error {
	if tile.W != box.Width() || tile.H != box.Height() {
		return fmt.Errorf("%w: tile raster %dx%d does not match box %v",
			raster.ErrInvalidConfig, tile.W, tile.H, box)
	}
	if box.X0 < 0 || box.Y0 < 0 || box.X1 > s.acc.W || box.Y1 > s.acc.H {
		return fmt.Errorf("%w: box %v outside %dx%d image",
			raster.ErrInvalidConfig, box, s.acc.W, s.acc.H)
	}

	s.composite(box, tile)
	s.acc = raster.Components(s.acc, s.conn)
	s.mergeTouching()
	s.acc = raster.Components(s.acc, s.conn)

	s.added++
	return nil
}

// composite copies tile labels into the accumulator at the box coordinates.
// For every tile except the first in its row/column, the leading overlap
// band along the shared axis is skipped so the neighbor tile's labels in
// that strip stay untouched.
func (s *Stitcher) composite(box tiling.Box, tile *raster.LabelRaster) {
	skipX, skipY := 0, 0
	if box.X0 > 0 {
		skipX = s.overlapW
	}
	if box.Y0 > 0 {
		skipY = s.overlapH
	}

	for ty := skipY; ty < tile.H; ty++ {
		gy := box.Y0 + ty
		for tx := skipX; tx < tile.W; tx++ {
			s.acc.Pix[gy*s.acc.W+box.X0+tx] = tile.Pix[ty*tile.W+tx]
		}
	}
}

// mergeTouching scans every interior nonzero pixel and, for each of its 8
// neighbors carrying a different nonzero label, immediately rewrites every
// pixel of the neighbor's label to the current pixel's label. The full
// 8-neighborhood is inspected regardless of the component connectivity so
// diagonal touches introduced by the boundary-erosion halo are caught. The
// find-and-replace is applied eagerly: each merge is visible to the
// comparisons that follow within the same scan.
func (s *Stitcher) mergeTouching() {
	w, h := s.acc.W, s.acc.H
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := s.acc.Pix[y*w+x]
			if v == 0 {
				continue
			}
			for ny := y - 1; ny <= y+1; ny++ {
				for nx := x - 1; nx <= x+1; nx++ {
					n := s.acc.Pix[ny*w+nx]
					if n != 0 && n != v {
						s.acc.Replace(n, v)
					}
				}
			}
		}
	}
}

// Result returns the accumulator. After the last tile has been added this is
// the final global label raster; before any tile it is all background.
func (s *Stitcher) Result() *raster.LabelRaster {
	return s.acc
}

// TileCount returns how many tiles have been integrated.
func (s *Stitcher) TileCount() int {
	return s.added
}

// Stitch integrates a complete tile sequence in order and returns the global
// raster. An empty sequence yields an all-background raster and no error.
func Stitch(imageH, imageW, overlapH, overlapW int, conn raster.Connectivity, tiles []Tile) (*raster.LabelRaster, error) {
	s, err := New(imageH, imageW, overlapH, overlapW, conn)
	if err != nil {
		return nil, err
	}
	for _, t := range tiles {
		if err := s.Add(t.Box, t.Labels); err != nil {
			return nil, err
		}
	}
	return s.Result(), nil
}
