// Package detect provides a reference per-tile object detector built on
// OpenCV. The pipeline treats detectors as black boxes; this one segments
// bright objects on a dark background by thresholding and contour
// extraction, which is enough for calibration runs and synthetic scenes.
package detect

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"tile-segmenter/internal/labeling"
)

// ThresholdOptions configures the threshold detector.
type ThresholdOptions struct {
	Threshold         uint8 // 0 selects Otsu's automatic threshold
	BlurKernel        int   // Gaussian blur kernel size; 0 disables
	CleanupIterations int   // Morphological open/close strength
	MinArea           float64
	Invert            bool // Detect dark objects on bright background
}

// DefaultThresholdOptions returns options suited for bright specimens on a
// dark tray.
func DefaultThresholdOptions() ThresholdOptions {
	return ThresholdOptions{
		Threshold:         0,
		BlurKernel:        5,
		CleanupIterations: 2,
		MinArea:           50,
	}
}

// ThresholdDetector segments objects by grayscale thresholding. Safe for
// concurrent use: each Detect call owns its own Mats.
type ThresholdDetector struct {
	opts ThresholdOptions
}

// NewThresholdDetector creates a detector with the given options.
func NewThresholdDetector(opts ThresholdOptions) *ThresholdDetector {
	return &ThresholdDetector{opts: opts}
}

// Detect returns one mask per detected object in the crop.
func (d *ThresholdDetector) Detect(crop image.Image) ([]labeling.Mask, error) {
	mat, err := imageToMat(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to convert crop: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	if d.opts.BlurKernel > 1 {
		k := d.opts.BlurKernel
		if k%2 == 0 {
			k++
		}
		gocv.GaussianBlur(gray, &gray, image.Point{k, k}, 0, 0, gocv.BorderDefault)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	threshType := gocv.ThresholdBinary
	if d.opts.Invert {
		threshType = gocv.ThresholdBinaryInv
	}
	if d.opts.Threshold == 0 {
		gocv.Threshold(gray, &binary, 0, 255, threshType|gocv.ThresholdOtsu)
	} else {
		gocv.Threshold(gray, &binary, float32(d.opts.Threshold), 255, threshType)
	}

	cleaned := cleanupMask(binary, d.opts.CleanupIterations)
	defer cleaned.Close()

	return masksFromContours(cleaned, d.opts.MinArea)
}

// cleanupMask applies morphological close then open to fill small gaps and
// drop speckle noise.
func cleanupMask(mask gocv.Mat, iterations int) gocv.Mat {
	cleaned := mask.Clone()
	if iterations <= 0 {
		return cleaned
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()

	for i := 0; i < iterations; i++ {
		gocv.MorphologyEx(cleaned, &cleaned, gocv.MorphClose, kernel)
	}
	for i := 0; i < iterations; i++ {
		gocv.MorphologyEx(cleaned, &cleaned, gocv.MorphOpen, kernel)
	}
	return cleaned
}

// masksFromContours fills each external contour into its own mask.
func masksFromContours(mask gocv.Mat, minArea float64) ([]labeling.Mask, error) {
	rows, cols := mask.Rows(), mask.Cols()
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var masks []labeling.Mask
	for i := 0; i < contours.Size(); i++ {
		if gocv.ContourArea(contours.At(i)) < minArea {
			continue
		}

		filled := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
		gocv.DrawContours(&filled, contours, i, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

		m := labeling.NewMask(cols, rows)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if filled.GetUCharAt(y, x) != 0 {
					m.Pix[y*cols+x] = true
					m.Area++
				}
			}
		}
		filled.Close()

		if m.Area > 0 {
			masks = append(masks, m)
		}
	}
	return masks, nil
}

// imageToMat converts a Go image.Image to an OpenCV Mat in BGR order.
func imageToMat(src image.Image) (gocv.Mat, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}
