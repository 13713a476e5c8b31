// Package overlay renders a segmented label raster as a colored layer
// blended over the source image, for visual inspection of a run.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"tile-segmenter/internal/raster"
)

// Options controls overlay rendering.
type Options struct {
	// Opacity of the region colors over the source, in [0,1].
	Opacity float64

	// DrawBounds draws a one pixel rectangle around each region.
	DrawBounds bool

	// BoundsColor is the rectangle color when DrawBounds is set.
	BoundsColor color.RGBA
}

// DefaultOptions returns the rendering defaults.
func DefaultOptions() Options {
	return Options{
		Opacity:     0.5,
		DrawBounds:  true,
		BoundsColor: color.RGBA{255, 255, 255, 255},
	}
}

// palette is cycled per label so adjacent region ids get distinct hues.
var palette = []color.RGBA{
	{230, 60, 60, 255},
	{60, 180, 75, 255},
	{60, 110, 230, 255},
	{240, 180, 40, 255},
	{170, 70, 200, 255},
	{70, 200, 200, 255},
	{240, 120, 50, 255},
	{150, 200, 60, 255},
}

// LabelColor returns the overlay color for a label. The zero label maps to
// transparent black.
func LabelColor(label int32) color.RGBA {
	if label == 0 {
		return color.RGBA{}
	}
	return palette[int(label-1)%len(palette)]
}

// Render blends the label raster over the source image. The source is drawn
// first, then every nonzero pixel is tinted with its label color at the
// configured opacity.
func Render(src image.Image, labels *raster.LabelRaster, regions []raster.Region, opts Options) (*image.RGBA, error) {
	bounds := src.Bounds()
	if bounds.Dx() != labels.W || bounds.Dy() != labels.H {
		return nil, fmt.Errorf("image is %dx%d but labels are %dx%d",
			bounds.Dx(), bounds.Dy(), labels.W, labels.H)
	}

	out := image.NewRGBA(image.Rect(0, 0, labels.W, labels.H))
	draw.Draw(out, out.Bounds(), src, bounds.Min, draw.Src)

	a := clamp(opts.Opacity, 0, 1)
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			label := labels.At(x, y)
			if label == 0 {
				continue
			}
			out.SetRGBA(x, y, blend(out.RGBAAt(x, y), LabelColor(label), a))
		}
	}

	if opts.DrawBounds {
		for _, reg := range regions {
			drawRect(out, reg.Bounds.X, reg.Bounds.Y, reg.Bounds.Width, reg.Bounds.Height, opts.BoundsColor)
		}
	}
	return out, nil
}

// Save renders the overlay and writes it as a PNG.
func Save(path string, src image.Image, labels *raster.LabelRaster, regions []raster.Region, opts Options) error {
	img, err := Render(src, labels, regions, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

// blend mixes the tint into the base color at the given opacity.
func blend(base color.RGBA, tint color.RGBA, opacity float64) color.RGBA {
	mix := func(b, t uint8) uint8 {
		v := float64(t)*opacity + float64(b)*(1-opacity)
		return uint8(clamp(v, 0, 255))
	}
	return color.RGBA{
		R: mix(base.R, tint.R),
		G: mix(base.G, tint.G),
		B: mix(base.B, tint.B),
		A: 255,
	}
}

// drawRect outlines a rectangle, clipped to the image.
func drawRect(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	b := img.Bounds()
	x1, y1 := x+w-1, y+h-1
	for px := x; px <= x1; px++ {
		setClipped(img, b, px, y, c)
		setClipped(img, b, px, y1, c)
	}
	for py := y; py <= y1; py++ {
		setClipped(img, b, x, py, c)
		setClipped(img, b, x1, py, c)
	}
}

func setClipped(img *image.RGBA, b image.Rectangle, x, y int, c color.RGBA) {
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		img.SetRGBA(x, y, c)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
