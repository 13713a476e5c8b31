package raster

// EraseBoundaries zeroes every pixel on the inner boundary of its region: a
// nonzero pixel with at least one in-bounds neighbor (under conn) carrying a
// different value, background included. The input is not modified.
//
// Eroding this one-pixel halo before compositing guarantees that two
// distinct regions from different tiles never present as connected after
// stitching; true fragments of one object split by the tile cut are reunited
// later by the stitcher's equivalence merge.
func EraseBoundaries(r *LabelRaster, conn Connectivity) *LabelRaster {
	out := r.Clone()
	offsets := conn.Offsets()

	for idx, v := range r.Pix {
		if v == 0 {
			continue
		}
		x, y := idx%r.W, idx/r.W
		for _, off := range offsets {
			nx, ny := x+off[0], y+off[1]
			if nx < 0 || nx >= r.W || ny < 0 || ny >= r.H {
				// Raster edge is not a region boundary; only a
				// differently-valued neighbor erodes the pixel.
				continue
			}
			if r.Pix[ny*r.W+nx] != v {
				out.Pix[idx] = 0
				break
			}
		}
	}
	return out
}
