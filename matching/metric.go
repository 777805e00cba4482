package matching

import (
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Metric is a template similarity measure
type Metric int

const (
	SqDiff Metric = iota
	SqDiffNormed
	CCorr
	CCorrNormed
	CCoeff
	CCoeffNormed
)

var metricNames = map[Metric]string{
	SqDiff:       "sqdiff",
	SqDiffNormed: "sqdiff_normed",
	CCorr:        "ccorr",
	CCorrNormed:  "ccorr_normed",
	CCoeff:       "ccoeff",
	CCoeffNormed: "ccoeff_normed",
}

// ParseMetric resolves a metric by name, case insensitive
func ParseMetric(name string) (Metric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, n := range metricNames {
		if n == name {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown template metric %q", name)
}

func (m Metric) String() string {
	if n, ok := metricNames[m]; ok {
		return n
	}
	return "unknown"
}

// PreferMin reports whether the best match is the lowest score. Only the
// squared difference metrics work that way; for correlation the best match
// is the highest score.
func (m Metric) PreferMin() bool {
	return m == SqDiff || m == SqDiffNormed
}

// Valid reports whether m is one of the defined metrics
func (m Metric) Valid() bool {
	_, ok := metricNames[m]
	return ok
}

// mode maps the metric to the OpenCV template match method
func (m Metric) mode() gocv.TemplateMatchMode {
	switch m {
	case SqDiff:
		return gocv.TmSqdiff
	case SqDiffNormed:
		return gocv.TmSqdiffNormed
	case CCorr:
		return gocv.TmCcorr
	case CCorrNormed:
		return gocv.TmCcorrNormed
	case CCoeff:
		return gocv.TmCcoeff
	default:
		return gocv.TmCcoeffNormed
	}
}
