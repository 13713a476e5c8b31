// Package stats summarizes region geometry for reporting: area and
// eccentricity distributions over a segmented raster.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tile-segmenter/internal/raster"
)

// Summary holds the geometric distribution of a region table.
type Summary struct {
	Count int

	Areas      []float64
	AreaMean   float64
	AreaStdDev float64

	Eccentricities []float64
	EccMean        float64
	EccStdDev      float64
}

// Summarize computes distribution statistics over a region table.
func Summarize(regions []raster.Region) Summary {
	s := Summary{
		Count:          len(regions),
		Areas:          make([]float64, len(regions)),
		Eccentricities: make([]float64, len(regions)),
	}
	for i, reg := range regions {
		s.Areas[i] = float64(reg.Area)
		s.Eccentricities[i] = reg.Eccentricity
	}
	if len(regions) == 0 {
		return s
	}

	s.AreaMean = stat.Mean(s.Areas, nil)
	s.EccMean = stat.Mean(s.Eccentricities, nil)
	if len(regions) > 1 {
		s.AreaStdDev = stat.StdDev(s.Areas, nil)
		s.EccStdDev = stat.StdDev(s.Eccentricities, nil)
	}
	return s
}

// Histogram bins the values into n equal-width bins over their range.
// Returns bin dividers (len n+1) and counts (len n). Values are not
// modified.
func Histogram(values []float64, n int) (dividers, counts []float64) {
	if len(values) == 0 || n <= 0 {
		return nil, nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		hi = lo + 1 // all values equal; one degenerate bin span
	}

	dividers = make([]float64, n+1)
	floats.Span(dividers, lo, hi)
	// Span's last divider must cover the max value exactly
	dividers[n] = hi

	counts = stat.Histogram(nil, dividers, sorted, nil)
	return dividers, counts
}
