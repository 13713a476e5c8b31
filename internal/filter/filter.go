// Package filter provides composable geometric post-filtering passes over a
// global label raster. Each pass returns a new raster with failing labels
// zeroed, never renumbered; Compact renumbers once at the end of a chain.
// Passes recompute descriptors from the raster they receive, so a chain's
// order matters: composition is not commutative in general.
package filter

import (
	"fmt"

	"tile-segmenter/internal/raster"
	"tile-segmenter/pkg/geometry"
)

// Pass is one filtering step. Passes are pure: the input raster is never
// modified.
type Pass func(*raster.LabelRaster) (*raster.LabelRaster, error)

// ByArea keeps a region only if areaMin <= area <= areaMax, both inclusive.
func ByArea(areaMin, areaMax int) Pass {
	return func(r *raster.LabelRaster) (*raster.LabelRaster, error) {
		if areaMin > areaMax {
			return nil, fmt.Errorf("%w: area bounds inverted (%d > %d)",
				raster.ErrInvalidConfig, areaMin, areaMax)
		}
		out := r.Clone()
		for _, reg := range raster.Regions(r) {
			if reg.Area < areaMin || reg.Area > areaMax {
				out.Replace(reg.Label, 0)
			}
		}
		return out, nil
	}
}

// ByEccentricity discards regions with eccentricity strictly below the
// threshold: near-circular blobs are treated as noise when the detector is
// expected to find elongated objects.
func ByEccentricity(threshold float64) Pass {
	return func(r *raster.LabelRaster) (*raster.LabelRaster, error) {
		out := r.Clone()
		for _, reg := range raster.Regions(r) {
			if reg.Eccentricity < threshold {
				out.Replace(reg.Label, 0)
			}
		}
		return out, nil
	}
}

// ClearBorder discards any region touching the raster's outer edge; partial
// objects clipped by the image frame are not valid detections.
func ClearBorder() Pass {
	return func(r *raster.LabelRaster) (*raster.LabelRaster, error) {
		out := r.Clone()
		for _, reg := range raster.Regions(r) {
			if reg.TouchesEdge {
				out.Replace(reg.Label, 0)
			}
		}
		return out, nil
	}
}

// ByPolygon discards any region whose pixels fall entirely outside the
// polygon, optionally inflated by a safety margin in pixels. Used to drop
// detections outside a known containment boundary such as a sample tray
// wall.
func ByPolygon(polygon []geometry.Point2D, marginPx float64) Pass {
	return func(r *raster.LabelRaster) (*raster.LabelRaster, error) {
		if len(polygon) < 3 {
			return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d",
				raster.ErrInvalidConfig, len(polygon))
		}
		inflated := geometry.InflatePolygon(polygon, marginPx)

		inside := make(map[int32]bool)
		for idx, v := range r.Pix {
			if v == 0 || inside[v] {
				continue
			}
			x, y := idx%r.W, idx/r.W
			if geometry.PointInPolygon(geometry.Point2D{X: float64(x), Y: float64(y)}, inflated) {
				inside[v] = true
			}
		}

		out := r.Clone()
		for _, label := range r.Labels() {
			if !inside[label] {
				out.Replace(label, 0)
			}
		}
		return out, nil
	}
}

// Compact renumbers surviving regions to contiguous ids 1..k. Run once at
// the end of a filter chain.
func Compact(conn raster.Connectivity) Pass {
	return func(r *raster.LabelRaster) (*raster.LabelRaster, error) {
		if err := conn.Validate(); err != nil {
			return nil, err
		}
		return raster.Components(r, conn), nil
	}
}

// Chain applies passes in order, threading each pass's output into the next.
func Chain(r *raster.LabelRaster, passes ...Pass) (*raster.LabelRaster, error) {
	cur := r
	for i, pass := range passes {
		next, err := pass(cur)
		if err != nil {
			return nil, fmt.Errorf("filter pass %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}
