package tracking

import (
	"gocv.io/x/gocv"
)

// Correspondence is the answer of an Oracle. All three slices are index
// aligned with the query points.
type Correspondence struct {
	Points []gocv.Point2f
	Status []bool
	Errors []float32
}

// Oracle finds where points of prev moved to in next. Implementations must
// return a freshly allocated Points slice; the manager takes ownership of it.
type Oracle interface {
	Correspond(prev, next gocv.Mat, points []gocv.Point2f) Correspondence
}

// Detector finds salient points in a grayscale image, best first
type Detector interface {
	Detect(img gocv.Mat, maxCount int, qualityLevel, minDistance float64) []gocv.Point2f
}

// LucasKanade is an Oracle backed by OpenCV's pyramidal Lucas-Kanade
// optical flow
type LucasKanade struct{}

// Correspond tracks points from prev into next
func (LucasKanade) Correspond(prev, next gocv.Mat, points []gocv.Point2f) Correspondence {
	if len(points) == 0 {
		return Correspondence{}
	}

	prevPts := pointsToMat(points)
	defer prevPts.Close()
	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	errMat := gocv.NewMat()
	defer errMat.Close()

	gocv.CalcOpticalFlowPyrLK(prev, next, prevPts, nextPts, &status, &errMat)

	result := Correspondence{
		Points: make([]gocv.Point2f, len(points)),
		Status: make([]bool, len(points)),
		Errors: make([]float32, len(points)),
	}

	// nextPts has the layout of prevPts: N rows of (x, y)
	n := min(len(points), nextPts.Rows(), status.Rows())
	for i := 0; i < n; i++ {
		result.Points[i] = gocv.Point2f{X: nextPts.GetFloatAt(i, 0), Y: nextPts.GetFloatAt(i, 1)}
		result.Status[i] = status.GetUCharAt(i, 0) == 1
		if i < errMat.Rows() {
			result.Errors[i] = errMat.GetFloatAt(i, 0)
		}
	}

	return result
}

// ShiTomasi is a Detector backed by OpenCV's goodFeaturesToTrack
type ShiTomasi struct{}

// Detect returns up to maxCount corners of img
func (ShiTomasi) Detect(img gocv.Mat, maxCount int, qualityLevel, minDistance float64) []gocv.Point2f {
	if img.Empty() {
		return nil
	}

	corners := gocv.NewMat()
	defer corners.Close()

	gocv.GoodFeaturesToTrack(img, &corners, maxCount, qualityLevel, minDistance)

	// corners is a N x 1 matrix of CV_32FC2
	points := make([]gocv.Point2f, 0, corners.Rows())
	for i := 0; i < corners.Rows(); i++ {
		vec := corners.GetVecfAt(i, 0)
		points = append(points, gocv.Point2f{X: vec[0], Y: vec[1]})
	}
	return points
}

// pointsToMat packs points into a N x 2 CV_32F matrix, the layout
// CalcOpticalFlowPyrLK accepts
func pointsToMat(points []gocv.Point2f) gocv.Mat {
	mat := gocv.NewMatWithSize(len(points), 2, gocv.MatTypeCV32F)
	for i, p := range points {
		mat.SetFloatAt(i, 0, p.X)
		mat.SetFloatAt(i, 1, p.Y)
	}
	return mat
}
