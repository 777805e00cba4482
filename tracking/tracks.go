package tracking

import (
	"gocv.io/x/gocv"

	"objtracker/types"
)

// TrackSet holds the tracked points of two consecutive generations plus the
// position each point was first detected at. The three sequences are index
// aligned: element i of each describes the same physical feature.
//
// Between steps the latest positions live in previous. During a step the
// oracle fills current, compact drops rejected points from current and
// origins, and advance hands current over to previous.
type TrackSet struct {
	previous []gocv.Point2f
	current  []gocv.Point2f
	origins  []gocv.Point2f
}

// Len returns the number of live tracks
func (s *TrackSet) Len() int {
	return len(s.previous)
}

// add appends freshly detected points as new tracks that originate where
// they were detected
func (s *TrackSet) add(points []gocv.Point2f) {
	s.previous = append(s.previous, points...)
	s.origins = append(s.origins, points...)
}

// compact keeps the indices accept reports true for, preserving their order,
// and truncates current and origins to the survivors. It returns the number
// kept.
func (s *TrackSet) compact(accept func(i int) bool) int {
	kept := 0
	for i := range s.current {
		if !accept(i) {
			continue
		}
		s.current[kept] = s.current[i]
		s.origins[kept] = s.origins[i]
		kept++
	}

	s.current = s.current[:kept]
	s.origins = s.origins[:kept]
	return kept
}

// advance makes the current generation the previous one. The slice changes
// role, nothing is copied.
func (s *TrackSet) advance() {
	s.previous, s.current = s.current, nil
}

// reset drops every track
func (s *TrackSet) reset() {
	s.previous = nil
	s.current = nil
	s.origins = nil
}

// snapshot copies the live tracks
func (s *TrackSet) snapshot() []types.Track {
	tracks := make([]types.Track, len(s.previous))
	for i := range s.previous {
		tracks[i] = types.Track{Origin: s.origins[i], Position: s.previous[i]}
	}
	return tracks
}
