// Package pipeline orchestrates the full segmentation run: tile planning,
// parallel per-tile detection and labeling, ordered stitching, and the
// geometric filter chain.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"runtime"
	"sync"

	"tile-segmenter/internal/filter"
	"tile-segmenter/internal/labeling"
	"tile-segmenter/internal/raster"
	"tile-segmenter/internal/stitch"
	"tile-segmenter/internal/tiling"
	"tile-segmenter/pkg/geometry"
)

// Detector is the external segmentation engine: given an image crop it
// returns the object masks it found there. Implementations must be safe for
// concurrent use; the pipeline calls Detect from multiple workers.
type Detector interface {
	Detect(crop image.Image) ([]labeling.Mask, error)
}

// Config is the full configuration surface of a segmentation run. All
// fields are plain values; there is no hidden global state.
type Config struct {
	TileHeight int
	TileWidth  int

	// Fractional overlap between neighboring tiles per axis, in [0, 1).
	OverlapHeightRatio float64
	OverlapWidthRatio  float64

	// Neighborhood rule for component labeling and boundary erosion. The
	// stitcher's seam merge always scans the full 8-neighborhood on top of
	// this.
	Connectivity raster.Connectivity

	// Region filters. AreaMax <= 0 disables the area filter;
	// EccentricityMin <= 0 disables the shape filter; a nil
	// ExclusionPolygon disables the polygon filter.
	AreaMin           int
	AreaMax           int
	EccentricityMin   float64
	FilterBorder      bool
	ExclusionPolygon  []geometry.Point2D
	ExclusionMarginPx float64

	// Workers bounds the per-tile detection pool. Zero means NumCPU.
	Workers int

	// Verbose logs per-tile progress.
	Verbose bool
}

// DefaultConfig returns configuration tuned for objects with a
// characteristic dimension around 25 px: tiles ten times that size with 20%
// overlap, matching the detector's preferred object-to-crop ratio.
func DefaultConfig() Config {
	return Config{
		TileHeight:         250,
		TileWidth:          250,
		OverlapHeightRatio: 0.2,
		OverlapWidthRatio:  0.2,
		Connectivity:       raster.Conn4,
		AreaMin:            500,
		AreaMax:            5000,
		EccentricityMin:    0.7,
		FilterBorder:       true,
		ExclusionMarginPx:  5,
	}
}

// Validate checks the configuration. Tile geometry errors surface through
// the planner; this catches the rest up front.
func (c Config) Validate() error {
	if c.TileHeight <= 0 || c.TileWidth <= 0 {
		return fmt.Errorf("%w: tile size must be positive, got %dx%d",
			raster.ErrInvalidConfig, c.TileWidth, c.TileHeight)
	}
	if c.OverlapHeightRatio < 0 || c.OverlapHeightRatio >= 1 ||
		c.OverlapWidthRatio < 0 || c.OverlapWidthRatio >= 1 {
		return fmt.Errorf("%w: overlap ratios must be in [0,1), got %.3f/%.3f",
			raster.ErrInvalidConfig, c.OverlapHeightRatio, c.OverlapWidthRatio)
	}
	if err := c.Connectivity.Validate(); err != nil {
		return err
	}
	if c.AreaMax > 0 && c.AreaMin > c.AreaMax {
		return fmt.Errorf("%w: area bounds inverted (%d > %d)",
			raster.ErrInvalidConfig, c.AreaMin, c.AreaMax)
	}
	if c.ExclusionPolygon != nil && len(c.ExclusionPolygon) < 3 {
		return fmt.Errorf("%w: exclusion polygon needs at least 3 vertices, got %d",
			raster.ErrInvalidConfig, len(c.ExclusionPolygon))
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d",
			raster.ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Result holds the output of a segmentation run: the compacted global label
// raster plus the derived region table.
type Result struct {
	Labels  *raster.LabelRaster
	Regions []raster.Region
	Tiles   int
}

// Run segments the image. Tiles are detected and labeled in parallel; the
// stitcher then integrates their rasters strictly in plan order, and the
// filter chain produces the final compacted result. If any tile's detection
// fails, the run aborts before stitching; a missing tile would leave a hole
// in the composite.
func Run(img image.Image, det Detector, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	imageW, imageH := bounds.Dx(), bounds.Dy()

	boxes, err := tiling.Plan(imageH, imageW, cfg.TileHeight, cfg.TileWidth,
		cfg.OverlapHeightRatio, cfg.OverlapWidthRatio)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Printf("planned %d tiles of %dx%d over %dx%d image",
			len(boxes), cfg.TileWidth, cfg.TileHeight, imageW, imageH)
	}

	tiles, err := detectTiles(img, det, boxes, cfg)
	if err != nil {
		return nil, err
	}

	overlapH, overlapW := tiling.Overlaps(cfg.TileHeight, cfg.TileWidth,
		cfg.OverlapHeightRatio, cfg.OverlapWidthRatio)

	stitcher, err := stitch.New(imageH, imageW, overlapH, overlapW, cfg.Connectivity)
	if err != nil {
		return nil, err
	}
	for i, t := range tiles {
		if err := stitcher.Add(t.Box, t.Labels); err != nil {
			return nil, err
		}
		if cfg.Verbose {
			log.Printf("stitched tile %d/%d %v", i+1, len(tiles), t.Box)
		}
	}

	filtered, err := filter.Chain(stitcher.Result(), cfg.passes()...)
	if err != nil {
		return nil, err
	}

	return &Result{
		Labels:  filtered,
		Regions: raster.Regions(filtered),
		Tiles:   len(tiles),
	}, nil
}

// passes builds the filter chain in the documented default order: area,
// shape, border, exclusion polygon, then a single compaction.
func (c Config) passes() []filter.Pass {
	var passes []filter.Pass
	if c.AreaMax > 0 {
		passes = append(passes, filter.ByArea(c.AreaMin, c.AreaMax))
	}
	if c.EccentricityMin > 0 {
		passes = append(passes, filter.ByEccentricity(c.EccentricityMin))
	}
	if c.FilterBorder {
		passes = append(passes, filter.ClearBorder())
	}
	if c.ExclusionPolygon != nil {
		passes = append(passes, filter.ByPolygon(c.ExclusionPolygon, c.ExclusionMarginPx))
	}
	passes = append(passes, filter.Compact(c.Connectivity))
	return passes
}

// detectTiles runs detection, labeling, and boundary erosion for every tile
// on a bounded worker pool. Results are keyed by plan index so the stitcher
// can consume them in order. The first detector error aborts the whole run.
func detectTiles(img image.Image, det Detector, boxes []tiling.Box, cfg Config) ([]stitch.Tile, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(boxes) {
		workers = len(boxes)
	}

	tiles := make([]stitch.Tile, len(boxes))
	work := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				box := boxes[i]
				masks, err := det.Detect(cropImage(img, box))
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("%w: tile %v: %v", raster.ErrDetector, box, err)
					}
					mu.Unlock()
					continue
				}
				if cfg.Verbose {
					log.Printf("tile %d/%d %v: %d masks", i+1, len(boxes), box, len(masks))
				}
				labeled, err := labeling.Rasterize(box.Width(), box.Height(), masks)
				if err != nil && !errors.Is(err, raster.ErrEmptyInput) {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				tiles[i] = stitch.Tile{
					Box:    box,
					Labels: raster.EraseBoundaries(labeled, cfg.Connectivity),
				}
			}
		}()
	}

	for i := range boxes {
		work <- i
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return tiles, nil
}

// cropImage extracts the tile crop as a standalone image so workers never
// share mutable pixel state.
func cropImage(img image.Image, box tiling.Box) image.Image {
	b := img.Bounds()
	rect := image.Rect(b.Min.X+box.X0, b.Min.Y+box.Y0, b.Min.X+box.X1, b.Min.Y+box.Y1)
	out := image.NewRGBA(image.Rect(0, 0, box.Width(), box.Height()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}
