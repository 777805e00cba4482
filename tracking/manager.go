package tracking

import (
	"log"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"objtracker/types"
	"objtracker/ui"
	"objtracker/utils"
)

// StepResult summarises what one call to Manager.Step did
type StepResult struct {
	// Bootstrap is set on the first step, when the previous frame was seeded
	// from the current one
	Bootstrap bool
	// Replenished is set when the detector was run this step
	Replenished bool
	// Candidates is the number of points the detector added
	Candidates int
	// Tracked is the number of tracks that survived the step
	Tracked int
	// Rejected is the number of tracks dropped by the acceptance predicate
	Rejected int
	// MeanFlow is the mean displacement of the surviving tracks from where
	// they were first detected
	MeanFlow gocv.Point2f
}

// Manager owns a set of feature tracks and carries it from frame to frame.
// It is not safe for concurrent use.
type Manager struct {
	config   types.FeatureConfig
	oracle   Oracle
	detector Detector
	style    ui.TrailStyle

	tracks   TrackSet
	gray     gocv.Mat
	prevGray gocv.Mat
}

// NewManager creates a manager with an empty track set
func NewManager(config types.FeatureConfig, oracle Oracle, detector Detector, style ui.TrailStyle) *Manager {
	return &Manager{
		config:   config,
		oracle:   oracle,
		detector: detector,
		style:    style,
		gray:     gocv.NewMat(),
		prevGray: gocv.NewMat(),
	}
}

// Len returns the number of live tracks
func (m *Manager) Len() int {
	return m.tracks.Len()
}

// Tracks returns a copy of the live tracks
func (m *Manager) Tracks() []types.Track {
	return m.tracks.snapshot()
}

// NeedsReplenishment reports whether the track count is at or below the low
// water mark
func (m *Manager) NeedsReplenishment() bool {
	return m.tracks.Len() <= m.config.LowWaterMark
}

// Replenish detects features in img and adds all of them as new tracks.
// Points close to existing tracks are not filtered out; stale duplicates are
// pruned by the next compaction. It returns the number of tracks added.
func (m *Manager) Replenish(img gocv.Mat) int {
	candidates := m.detector.Detect(img, m.config.MaxCorners, m.config.QualityLevel, m.config.MinDistance)
	if len(candidates) > m.config.MaxCorners {
		candidates = candidates[:m.config.MaxCorners]
	}

	m.tracks.add(candidates)
	log.Printf("Detected %d features, tracking %d\n", len(candidates), m.tracks.Len())
	return len(candidates)
}

// Step tracks the feature set into frame and draws the surviving tracks on
// it. frame is expected to be a BGR colour image, grayscale is accepted too.
func (m *Manager) Step(frame *gocv.Mat) StepResult {
	var result StepResult

	utils.ToGray(*frame, &m.gray)

	// first frame of the sequence: correspond the frame with itself
	if m.prevGray.Empty() {
		m.gray.CopyTo(&m.prevGray)
		result.Bootstrap = true
	}

	if m.NeedsReplenishment() {
		result.Replenished = true
		result.Candidates = m.Replenish(m.prevGray)
	}

	queried := m.tracks.Len()
	match := m.oracle.Correspond(m.prevGray, m.gray, m.tracks.previous)
	m.tracks.current = alignPoints(match.Points, queried)

	threshold := float32(m.config.MinDisplacement)
	result.Tracked = m.tracks.compact(func(i int) bool {
		if i >= len(match.Status) || !match.Status[i] {
			return false
		}
		if result.Bootstrap {
			return true
		}
		return manhattan(m.tracks.previous[i], m.tracks.current[i]) > threshold
	})
	result.Rejected = queried - result.Tracked
	result.MeanFlow = meanFlow(m.tracks.origins, m.tracks.current)

	ui.DrawTrails(frame, m.tracks.origins, m.tracks.current, m.style)

	m.tracks.advance()
	m.prevGray, m.gray = m.gray, m.prevGray

	return result
}

// Reset drops all tracks and the previous frame, the next Step bootstraps
// again
func (m *Manager) Reset() {
	m.tracks.reset()
	m.prevGray.Close()
	m.prevGray = gocv.NewMat()
}

// Close releases the frame buffers
func (m *Manager) Close() error {
	if err := m.gray.Close(); err != nil {
		return err
	}
	return m.prevGray.Close()
}

// alignPoints makes the oracle output exactly n long. Missing entries are
// zero valued and fail the acceptance check through their status.
func alignPoints(points []gocv.Point2f, n int) []gocv.Point2f {
	if len(points) == n {
		return points
	}
	if len(points) > n {
		return points[:n]
	}
	return append(points, make([]gocv.Point2f, n-len(points))...)
}

// manhattan returns |dx| + |dy| between a and b
func manhattan(a, b gocv.Point2f) float32 {
	return float32(math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y)))
}

// meanFlow is the mean displacement from origins to positions
func meanFlow(origins, positions []gocv.Point2f) gocv.Point2f {
	if len(positions) == 0 {
		return gocv.Point2f{}
	}

	dx := make([]float64, len(positions))
	dy := make([]float64, len(positions))
	for i := range positions {
		dx[i] = float64(positions[i].X - origins[i].X)
		dy[i] = float64(positions[i].Y - origins[i].Y)
	}

	return gocv.Point2f{X: float32(stat.Mean(dx, nil)), Y: float32(stat.Mean(dy, nil))}
}
