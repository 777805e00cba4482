package matching

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// Scorer computes the similarity surface of patch slid over img. Both are
// grayscale. The surface has (H-h+1) rows and (W-w+1) columns and cell
// (y, x) scores the window with top left corner (x, y).
type Scorer interface {
	Score(img, patch gocv.Mat, metric Metric) (*mat.Dense, error)
}

// OpenCVScorer scores with OpenCV's matchTemplate
type OpenCVScorer struct{}

// Score implements Scorer
func (OpenCVScorer) Score(img, patch gocv.Mat, metric Metric) (*mat.Dense, error) {
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(img, patch, &result, metric.mode(), mask)
	if result.Empty() {
		return nil, errors.Errorf("matchTemplate produced no result for %dx%d patch on %dx%d image",
			patch.Cols(), patch.Rows(), img.Cols(), img.Rows())
	}

	rows, cols := result.Rows(), result.Cols()
	surface := mat.NewDense(rows, cols, nil)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			surface.Set(y, x, float64(result.GetFloatAt(y, x)))
		}
	}
	return surface, nil
}

// NativeScorer scores in pure Go. It visits every window and every patch
// pixel, so it is meant for small frames and as a reference.
type NativeScorer struct{}

// Score implements Scorer
func (NativeScorer) Score(img, patch gocv.Mat, metric Metric) (*mat.Dense, error) {
	grayImg, err := matToGray(img)
	if err != nil {
		return nil, errors.Wrap(err, "converting frame")
	}
	grayPatch, err := matToGray(patch)
	if err != nil {
		return nil, errors.Wrap(err, "converting patch")
	}
	return ScoreGray(grayImg, grayPatch, metric)
}

// ScoreGray computes the similarity surface of patch over img with the
// formulas of OpenCV's matchTemplate
func ScoreGray(img, patch *image.Gray, metric Metric) (*mat.Dense, error) {
	ib := img.Bounds()
	pb := patch.Bounds()
	pw, ph := pb.Dx(), pb.Dy()
	if pw == 0 || ph == 0 {
		return nil, errors.New("empty patch")
	}
	if pw > ib.Dx() || ph > ib.Dy() {
		return nil, errors.Errorf("patch %dx%d larger than image %dx%d", pw, ph, ib.Dx(), ib.Dy())
	}
	if !metric.Valid() {
		return nil, errors.Errorf("invalid metric %d", int(metric))
	}

	n := float64(pw * ph)
	tmpl := make([]float64, 0, pw*ph)
	var tSum, tSq float64
	for y := pb.Min.Y; y < pb.Max.Y; y++ {
		for x := pb.Min.X; x < pb.Max.X; x++ {
			v := float64(patch.GrayAt(x, y).Y)
			tmpl = append(tmpl, v)
			tSum += v
			tSq += v * v
		}
	}
	tMean := tSum / n
	// sum of squared deviations of the template from its mean
	tVar := tSq - tSum*tMean

	rows, cols := ib.Dy()-ph+1, ib.Dx()-pw+1
	surface := mat.NewDense(rows, cols, nil)

	for oy := 0; oy < rows; oy++ {
		for ox := 0; ox < cols; ox++ {
			var cross, iSum, iSq, centred float64
			k := 0
			for y := 0; y < ph; y++ {
				for x := 0; x < pw; x++ {
					v := float64(img.GrayAt(ib.Min.X+ox+x, ib.Min.Y+oy+y).Y)
					t := tmpl[k]
					cross += t * v
					iSum += v
					iSq += v * v
					centred += (t - tMean) * v
					k++
				}
			}

			var score float64
			switch metric {
			case SqDiff:
				score = tSq - 2*cross + iSq
			case SqDiffNormed:
				score = ratio(tSq-2*cross+iSq, math.Sqrt(tSq*iSq), 1)
			case CCorr:
				score = cross
			case CCorrNormed:
				score = ratio(cross, math.Sqrt(tSq*iSq), 0)
			case CCoeff:
				score = centred
			case CCoeffNormed:
				iVar := iSq - iSum*iSum/n
				score = ratio(centred, math.Sqrt(math.Max(tVar, 0)*math.Max(iVar, 0)), 0)
			}
			surface.Set(oy, ox, score)
		}
	}

	return surface, nil
}

// ratio divides num by den. When den is zero the result is 0 for a zero
// numerator and degenerate otherwise.
func ratio(num, den, degenerate float64) float64 {
	if den == 0 {
		if num == 0 {
			return 0
		}
		return degenerate
	}
	return num / den
}

// matToGray converts a Mat to an *image.Gray
func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, err
	}
	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}

	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	return gray, nil
}
