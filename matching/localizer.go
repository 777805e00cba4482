// Package matching locates a fixed reference patch in video frames by
// exhaustive template matching. Nothing is carried from one frame to the
// next: every call searches the whole frame again.
package matching

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"objtracker/types"
	"objtracker/utils"
)

// Patch is the grayscale reference region searched for in every frame. It
// is never modified after NewPatch.
type Patch struct {
	mat gocv.Mat
}

// NewPatch copies region of frame, clamped to the frame, as the reference
// patch
func NewPatch(frame gocv.Mat, region image.Rectangle) (*Patch, error) {
	if frame.Empty() {
		return nil, errors.New("cannot capture a patch from an empty frame")
	}

	region = utils.ClampRect(region, frame.Cols(), frame.Rows())
	if region.Empty() {
		return nil, errors.Errorf("patch region %v is empty", region)
	}

	roi := frame.Region(region)
	defer roi.Close()

	gray := gocv.NewMat()
	utils.ToGray(roi, &gray)
	return &Patch{mat: gray}, nil
}

// Size returns the width and height of the patch
func (p *Patch) Size() image.Point {
	return image.Pt(p.mat.Cols(), p.mat.Rows())
}

// Close releases the patch
func (p *Patch) Close() error {
	return p.mat.Close()
}

// Match is the best window found by Locate
type Match struct {
	// Box is the window, top left corner plus the patch size
	Box image.Rectangle
	// Score is the normalized score of the window. No threshold is applied,
	// a poor match is still reported.
	Score float64
}

// Localizer finds a Patch in frames
type Localizer struct {
	scorer Scorer
	metric Metric
	lo, hi float64
}

// NewLocalizer resolves the configured metric once and returns a localizer
// scoring with scorer
func NewLocalizer(scorer Scorer, config types.TemplateConfig) (*Localizer, error) {
	metric, err := ParseMetric(config.Metric)
	if err != nil {
		return nil, err
	}
	if config.NormalizeHigh <= config.NormalizeLow {
		return nil, errors.Errorf("normalize range is empty: [%g, %g]", config.NormalizeLow, config.NormalizeHigh)
	}

	return &Localizer{
		scorer: scorer,
		metric: metric,
		lo:     config.NormalizeLow,
		hi:     config.NormalizeHigh,
	}, nil
}

// Metric returns the metric the localizer scores with
func (l *Localizer) Metric() Metric {
	return l.metric
}

// Locate returns the window of frame most similar to patch
func (l *Localizer) Locate(frame gocv.Mat, patch *Patch) (Match, error) {
	if patch == nil || patch.mat.Empty() {
		return Match{}, errors.New("empty reference patch")
	}
	size := patch.Size()
	if size.X > frame.Cols() || size.Y > frame.Rows() {
		return Match{}, errors.Errorf("patch %dx%d larger than frame %dx%d",
			size.X, size.Y, frame.Cols(), frame.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	utils.ToGray(frame, &gray)

	surface, err := l.scorer.Score(gray, patch.mat, l.metric)
	if err != nil {
		return Match{}, errors.Wrapf(err, "scoring %s", l.metric)
	}

	Normalize(surface, l.lo, l.hi)
	corner, score := BestLocation(surface, l.metric.PreferMin())

	return Match{
		Box:   image.Rectangle{Min: corner, Max: corner.Add(size)},
		Score: score,
	}, nil
}
