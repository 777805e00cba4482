package recording

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"objtracker/types"
)

// Filename returns the recording file name for a run started at t. The run
// id keeps concurrent runs from overwriting each other.
func Filename(state *types.AppState, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.mp4", state.Mode, t.Format("20060102_150405"), state.RunID.String()[:8])
}

// StartRecording opens a video writer sized to frame and marks the state as
// recording
func StartRecording(state *types.AppState, frame gocv.Mat, config types.VideoConfig) error {
	if state.IsRecording {
		return errors.New("recording already active")
	}
	if frame.Empty() {
		return errors.New("cannot start recording without a frame")
	}
	if len(config.Codecs) == 0 {
		return errors.New("no codecs configured")
	}

	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", config.OutputDir)
	}

	start := time.Now()
	filename := filepath.Join(config.OutputDir, Filename(state, start))

	// first codec the backend accepts wins
	var vw *gocv.VideoWriter
	var err error
	var usedCodec string
	for _, fourcc := range config.Codecs {
		vw, err = gocv.VideoWriterFile(filename, fourcc, config.FPS, frame.Cols(), frame.Rows(), true)
		if err == nil {
			usedCodec = fourcc
			break
		}
	}
	if err != nil {
		return errors.Wrap(err, "could not create video writer with any codec")
	}

	state.VideoWriter = vw
	state.IsRecording = true
	state.RecordingFile = filename
	state.RecordingStartTime = start
	log.Printf("Recording started: %s (codec: %s)\n", filename, usedCodec)

	return nil
}

// StopRecording closes the video writer
func StopRecording(state *types.AppState) error {
	if !state.IsRecording {
		return errors.New("no active recording")
	}

	state.IsRecording = false
	if state.VideoWriter != nil {
		err := state.VideoWriter.Close()
		state.VideoWriter = nil
		if err != nil {
			return errors.Wrapf(err, "closing video writer for %s", state.RecordingFile)
		}
	}

	log.Printf("Recording stopped: %s (%s)\n", state.RecordingFile,
		time.Since(state.RecordingStartTime).Truncate(time.Second))
	return nil
}

// ToggleRecording starts or stops recording
func ToggleRecording(state *types.AppState, frame gocv.Mat, config types.VideoConfig) error {
	if state.IsRecording {
		return StopRecording(state)
	}
	return StartRecording(state, frame, config)
}

// WriteFrame appends frame to the recording, if one is active
func WriteFrame(state *types.AppState, frame gocv.Mat) error {
	if !state.IsRecording || state.VideoWriter == nil {
		return nil
	}
	return errors.Wrap(state.VideoWriter.Write(frame), "writing frame")
}

// GetRecordingDuration returns how long the current recording has been running
func GetRecordingDuration(state *types.AppState) time.Duration {
	if !state.IsRecording {
		return 0
	}
	return time.Since(state.RecordingStartTime)
}

// CleanupRecording stops an active recording, logging any error
func CleanupRecording(state *types.AppState) {
	if !state.IsRecording {
		return
	}
	if err := StopRecording(state); err != nil {
		log.Printf("Recording cleanup: %v\n", err)
	}
}
