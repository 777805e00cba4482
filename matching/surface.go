package matching

import (
	"image"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Normalize stretches the surface linearly so its values span [lo, hi]. The
// order of scores is preserved. A flat surface becomes lo everywhere.
func Normalize(surface *mat.Dense, lo, hi float64) {
	data := surface.RawMatrix().Data
	if len(data) == 0 {
		return
	}

	minVal := floats.Min(data)
	maxVal := floats.Max(data)
	span := maxVal - minVal

	surface.Apply(func(_, _ int, v float64) float64 {
		if span == 0 {
			return lo
		}
		return lo + (v-minVal)*(hi-lo)/span
	}, surface)
}

// BestLocation scans the whole surface for its minimum or maximum. Ties go to
// the first cell in row-major order. The returned point is (column, row).
func BestLocation(surface *mat.Dense, preferMin bool) (image.Point, float64) {
	rows, cols := surface.Dims()

	var best image.Point
	bestScore := surface.At(0, 0)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := surface.At(y, x)
			if (preferMin && v < bestScore) || (!preferMin && v > bestScore) {
				bestScore = v
				best = image.Pt(x, y)
			}
		}
	}

	return best, bestScore
}
