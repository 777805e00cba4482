package main

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"objtracker/input"
	"objtracker/matching"
	"objtracker/tracking"
	"objtracker/types"
	"objtracker/ui"
)

// tracker is one tracking mode as seen by the main loop
type tracker interface {
	// Process tracks into frame, annotates it and returns a status line
	Process(frame *gocv.Mat) (string, error)
	// Reset restarts tracking, using frame where the mode needs one
	Reset(frame gocv.Mat) error
	Close() error
}

func newTracker(opts options, cfg types.Config, window *gocv.Window, first gocv.Mat) (tracker, error) {
	switch opts.mode {
	case types.ModeTemplate:
		var scorer matching.Scorer = matching.OpenCVScorer{}
		if opts.scorer == "native" {
			scorer = matching.NativeScorer{}
		}
		localizer, err := matching.NewLocalizer(scorer, cfg.Template)
		if err != nil {
			return nil, err
		}

		t := &templateTracker{
			localizer: localizer,
			session:   input.NewSession(window, cfg.UI),
		}
		if err := t.Reset(first); err != nil {
			return nil, err
		}
		return t, nil

	case types.ModeFeatures:
		manager := tracking.NewManager(cfg.Features, tracking.LucasKanade{}, tracking.ShiTomasi{}, ui.DefaultTrailStyle(cfg.UI))
		return &featureTracker{manager: manager}, nil
	}
	return nil, errors.Errorf("unknown mode %q", opts.mode)
}

type featureTracker struct {
	manager *tracking.Manager
}

func (t *featureTracker) Process(frame *gocv.Mat) (string, error) {
	result := t.manager.Step(frame)
	return ui.FeatureStatus(result.Tracked, result.Rejected, result.MeanFlow), nil
}

func (t *featureTracker) Reset(gocv.Mat) error {
	t.manager.Reset()
	return nil
}

func (t *featureTracker) Close() error {
	return t.manager.Close()
}

type templateTracker struct {
	localizer *matching.Localizer
	session   *input.Session
	patch     *matching.Patch
}

func (t *templateTracker) Process(frame *gocv.Mat) (string, error) {
	match, err := t.localizer.Locate(*frame, t.patch)
	if err != nil {
		return "", err
	}
	ui.DrawMatch(frame, match.Box)
	return ui.TemplateStatus(match.Box, match.Score), nil
}

// Reset asks the user for a new reference patch on frame. The old patch is
// kept when the selection is cancelled.
func (t *templateTracker) Reset(frame gocv.Mat) error {
	region, err := t.session.CaptureRegion(frame)
	if err != nil {
		return err
	}
	patch, err := matching.NewPatch(frame, region)
	if err != nil {
		return err
	}

	if t.patch != nil {
		t.patch.Close()
	}
	t.patch = patch
	return nil
}

func (t *templateTracker) Close() error {
	if t.patch == nil {
		return nil
	}
	return t.patch.Close()
}
