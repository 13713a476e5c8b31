package raster

// Components performs connected-component labeling over the raster's nonzero
// pixels under the given connectivity. Two nonzero pixels belong to the same
// component only if they are neighbors and carry the same value; distinct
// labels never fuse here, even when touching. The result is a fresh raster
// with compact component ids 1..k assigned in scan order; the input is not
// modified.
func Components(r *LabelRaster, conn Connectivity) *LabelRaster {
	out := New(r.W, r.H)
	offsets := conn.Offsets()

	var next int32
	queue := make([]int, 0, 256)

	for start, v := range r.Pix {
		if v == 0 || out.Pix[start] != 0 {
			continue
		}
		next++
		out.Pix[start] = next
		queue = append(queue[:0], start)

		// BFS flood fill over same-valued neighbors
		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			cx, cy := idx%r.W, idx/r.W

			for _, off := range offsets {
				nx, ny := cx+off[0], cy+off[1]
				if nx < 0 || nx >= r.W || ny < 0 || ny >= r.H {
					continue
				}
				nIdx := ny*r.W + nx
				if r.Pix[nIdx] == v && out.Pix[nIdx] == 0 {
					out.Pix[nIdx] = next
					queue = append(queue, nIdx)
				}
			}
		}
	}

	return out
}
