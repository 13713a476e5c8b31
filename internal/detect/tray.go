package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"tile-segmenter/pkg/geometry"
)

// TrayPolygon approximates the sample tray's interior wall as a rectangle:
// the bounding box of the image's strong edges, expanded by a safety margin
// in pixels. Detections outside this polygon sit on or beyond the tray wall
// and should be excluded by the polygon filter.
func TrayPolygon(img image.Image, marginPx int) ([]geometry.Point2D, error) {
	mat, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	rows, cols := edges.Rows(), edges.Cols()
	minX, minY := cols, rows
	maxX, maxY := -1, -1
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if edges.GetUCharAt(y, x) == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return nil, fmt.Errorf("no edges found in image")
	}

	return geometry.RectPolygon(geometry.RectInt{
		X:      minX - marginPx,
		Y:      minY - marginPx,
		Width:  maxX - minX + 1 + 2*marginPx,
		Height: maxY - minY + 1 + 2*marginPx,
	}), nil
}
