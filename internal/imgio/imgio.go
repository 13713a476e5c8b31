// Package imgio provides image loading and the grayscale preprocessing
// helpers the segmentation pipeline needs.
package imgio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	_ "golang.org/x/image/tiff"
)

// Load decodes an image from disk. PNG, JPEG, and TIFF are supported.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Gray converts an image to 8-bit grayscale using the standard luminance
// weights.
func Gray(src image.Image) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return out
}

// ThresholdWhite returns a copy of the image with every pixel whose
// grayscale value exceeds the threshold forced to pure white. Used to knock
// out glare and bright tray reflections before detection.
func ThresholdWhite(src image.Image, threshold uint8) image.Image {
	bounds := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := src.At(x, y)
			g := color.GrayModel.Convert(c).(color.Gray)
			if g.Y > threshold {
				out.Set(x-bounds.Min.X, y-bounds.Min.Y, color.White)
			} else {
				out.Set(x-bounds.Min.X, y-bounds.Min.Y, c)
			}
		}
	}
	return out
}

// GrayHistogram computes a histogram of grayscale pixel intensities over
// [0, 255] with the given number of bins. Returns bin dividers (len bins+1)
// and counts (len bins).
func GrayHistogram(src image.Image, bins int) (dividers, counts []float64) {
	gray := Gray(src)
	b := gray.Bounds()

	values := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			values = append(values, float64(gray.GrayAt(x, y).Y))
		}
	}
	sort.Float64s(values)

	dividers = make([]float64, bins+1)
	floats.Span(dividers, 0, 256)
	counts = stat.Histogram(nil, dividers, values, nil)
	return dividers, counts
}
