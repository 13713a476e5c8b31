// Command tile-segmenter segments a large raster image by tiling it for a
// per-tile detector and stitching the tile label maps back into one globally
// consistent segmentation.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"tile-segmenter/internal/detect"
	"tile-segmenter/internal/imgio"
	"tile-segmenter/internal/overlay"
	"tile-segmenter/internal/pipeline"
	"tile-segmenter/internal/project"
	"tile-segmenter/internal/raster"
	"tile-segmenter/internal/stats"
	"tile-segmenter/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to source image (TIFF, PNG, or JPEG)")
	outPath := flag.String("out", "", "Output base path (writes <out>.json and <out>.labels)")
	overlayPath := flag.String("overlay", "", "Write a PNG of the regions blended over the source image")
	tileSize := flag.Int("tile", 250, "Tile size in pixels (square tiles)")
	overlap := flag.Float64("overlap", 0.2, "Fractional tile overlap per axis, in [0,1)")
	conn := flag.Int("conn", 4, "Pixel connectivity: 4 or 8")
	areaMin := flag.Int("area-min", 500, "Minimum region area in pixels")
	areaMax := flag.Int("area-max", 5000, "Maximum region area in pixels (0 disables the area filter)")
	eccMin := flag.Float64("ecc", 0.7, "Discard regions with eccentricity below this (0 disables)")
	border := flag.Bool("border", true, "Discard regions touching the image border")
	tray := flag.Bool("tray", false, "Detect the tray wall polygon and discard regions outside it")
	trayMargin := flag.Int("tray-margin", 5, "Safety margin in pixels for the tray polygon")
	threshold := flag.Int("threshold", 0, "Detector grayscale threshold (0 = Otsu)")
	invert := flag.Bool("invert", false, "Detect dark objects on a bright background")
	whiten := flag.Int("whiten", 0, "Force pixels brighter than this to white before detection (0 disables)")
	workers := flag.Int("workers", 0, "Detection worker count (0 = NumCPU)")
	verbose := flag.Bool("v", false, "Log per-tile progress")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tile-segmenter %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if *imagePath == "" || *outPath == "" {
		fmt.Println("Usage: tile-segmenter -image <path> -out <base> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	img, err := imgio.Load(*imagePath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	bounds := img.Bounds()
	log.Printf("tile-segmenter v%s: %s (%dx%d)", version.Version, *imagePath, bounds.Dx(), bounds.Dy())

	if *whiten > 0 {
		img = imgio.ThresholdWhite(img, uint8(*whiten))
	}

	cfg := pipeline.DefaultConfig()
	cfg.TileHeight = *tileSize
	cfg.TileWidth = *tileSize
	cfg.OverlapHeightRatio = *overlap
	cfg.OverlapWidthRatio = *overlap
	cfg.Connectivity = raster.Connectivity(*conn)
	cfg.AreaMin = *areaMin
	cfg.AreaMax = *areaMax
	cfg.EccentricityMin = *eccMin
	cfg.FilterBorder = *border
	cfg.Workers = *workers
	cfg.Verbose = *verbose

	if *tray {
		polygon, err := detect.TrayPolygon(img, *trayMargin)
		if err != nil {
			log.Fatalf("Failed to detect tray polygon: %v", err)
		}
		cfg.ExclusionPolygon = polygon
		cfg.ExclusionMarginPx = float64(*trayMargin)
		log.Printf("tray polygon: %v", polygon)
	}

	detOpts := detect.DefaultThresholdOptions()
	detOpts.Threshold = uint8(*threshold)
	detOpts.Invert = *invert
	detector := detect.NewThresholdDetector(detOpts)

	result, err := pipeline.Run(img, detector, cfg)
	if err != nil {
		log.Fatalf("Segmentation failed: %v", err)
	}
	log.Printf("segmented %d tiles into %d regions", result.Tiles, len(result.Regions))

	printSummary(result)

	f := project.New(result.Labels, result.Regions)
	f.ImagePath = *imagePath
	f.TileWidth = cfg.TileWidth
	f.TileHeight = cfg.TileHeight
	if err := project.Save(*outPath, f, result.Labels); err != nil {
		log.Fatalf("Failed to save result: %v", err)
	}
	log.Printf("wrote %s.json and %s.labels", *outPath, *outPath)

	if *overlayPath != "" {
		if err := overlay.Save(*overlayPath, img, result.Labels, result.Regions, overlay.DefaultOptions()); err != nil {
			log.Fatalf("Failed to write overlay: %v", err)
		}
		log.Printf("wrote %s", *overlayPath)
	}
}

func printSummary(result *pipeline.Result) {
	summary := stats.Summarize(result.Regions)
	fmt.Printf("\nRegions: %d\n", summary.Count)
	if summary.Count > 0 {
		fmt.Printf("Area:         mean %.1f px, stddev %.1f px\n", summary.AreaMean, summary.AreaStdDev)
		fmt.Printf("Eccentricity: mean %.3f, stddev %.3f\n", summary.EccMean, summary.EccStdDev)
	}

	fmt.Printf("\n%-8s %8s %24s %12s\n", "Label", "Area", "Bounds", "Ecc")
	for _, reg := range result.Regions {
		fmt.Printf("%-8d %8d %24s %12.3f\n",
			reg.Label, reg.Area,
			fmt.Sprintf("(%d,%d) %dx%d", reg.Bounds.X, reg.Bounds.Y, reg.Bounds.Width, reg.Bounds.Height),
			reg.Eccentricity)
	}
}
