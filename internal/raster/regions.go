package raster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"tile-segmenter/pkg/geometry"
)

// Region describes one labeled region of a raster: a connected component of
// equal nonzero value. Regions are ephemeral views derived from a raster and
// have no existence outside it.
type Region struct {
	Label        int32             `json:"label"`
	Area         int               `json:"area"`
	Bounds       geometry.RectInt  `json:"bounds"`
	Centroid     geometry.Point2D  `json:"centroid"`
	Eccentricity float64           `json:"eccentricity"`
	TouchesEdge  bool              `json:"touches_edge,omitempty"`
}

// regionAccum gathers raw pixel statistics for one label during the scan.
type regionAccum struct {
	area                   int
	minX, minY, maxX, maxY int
	sumX, sumY             float64
	sumXX, sumYY, sumXY    float64
	touchesEdge            bool
}

// Regions computes descriptors for every labeled region in a single scan.
// It relies on the post-stitch invariant that each nonzero value forms
// exactly one connected component; run Components first if the raster may
// hold disjoint fragments sharing a value. Results are ordered by label.
func Regions(r *LabelRaster) []Region {
	accum := make(map[int32]*regionAccum)

	for idx, v := range r.Pix {
		if v == 0 {
			continue
		}
		x, y := idx%r.W, idx/r.W

		a, ok := accum[v]
		if !ok {
			a = &regionAccum{minX: x, minY: y, maxX: x, maxY: y}
			accum[v] = a
		}
		a.area++
		if x < a.minX {
			a.minX = x
		}
		if x > a.maxX {
			a.maxX = x
		}
		if y < a.minY {
			a.minY = y
		}
		if y > a.maxY {
			a.maxY = y
		}
		fx, fy := float64(x), float64(y)
		a.sumX += fx
		a.sumY += fy
		a.sumXX += fx * fx
		a.sumYY += fy * fy
		a.sumXY += fx * fy
		if x == 0 || y == 0 || x == r.W-1 || y == r.H-1 {
			a.touchesEdge = true
		}
	}

	labels := make([]int32, 0, len(accum))
	for v := range accum {
		labels = append(labels, v)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	regions := make([]Region, 0, len(labels))
	for _, v := range labels {
		a := accum[v]
		n := float64(a.area)
		cx := a.sumX / n
		cy := a.sumY / n

		regions = append(regions, Region{
			Label: v,
			Area:  a.area,
			Bounds: geometry.RectInt{
				X:      a.minX,
				Y:      a.minY,
				Width:  a.maxX - a.minX + 1,
				Height: a.maxY - a.minY + 1,
			},
			Centroid:     geometry.Point2D{X: cx, Y: cy},
			Eccentricity: eccentricity(a, cx, cy),
			TouchesEdge:  a.touchesEdge,
		})
	}
	return regions
}

// eccentricity derives the elongation of a region from the eigenvalues of
// its second central moment (inertia) matrix: 0 for a circle, approaching 1
// for a line. Computed as sqrt(1 - λ2/λ1) with λ1 the major eigenvalue.
func eccentricity(a *regionAccum, cx, cy float64) float64 {
	n := float64(a.area)
	mu20 := a.sumXX/n - cx*cx
	mu02 := a.sumYY/n - cy*cy
	mu11 := a.sumXY/n - cx*cy

	cov := mat.NewSymDense(2, []float64{mu20, mu11, mu11, mu02})
	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return 0
	}
	vals := eig.Values(nil) // ascending order
	l2, l1 := vals[0], vals[1]
	if l1 <= 0 {
		return 0
	}
	if l2 < 0 {
		l2 = 0
	}
	return math.Sqrt(1 - l2/l1)
}

// RegionByLabel returns the descriptor for one label, or false if absent.
func RegionByLabel(regions []Region, label int32) (Region, bool) {
	for _, reg := range regions {
		if reg.Label == label {
			return reg, true
		}
	}
	return Region{}, false
}
