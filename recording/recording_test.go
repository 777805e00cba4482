package recording

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"objtracker/types"
)

func TestFilename(t *testing.T) {
	state := types.NewAppState(types.ModeTemplate)
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	name := Filename(state, at)
	assert.True(t, strings.HasPrefix(name, "template_20240309_140507_"), name)
	assert.True(t, strings.HasSuffix(name, ".mp4"), name)
	assert.Contains(t, name, state.RunID.String()[:8])
}

func TestNotRecording(t *testing.T) {
	state := types.NewAppState(types.ModeFeatures)
	frame := gocv.NewMat()
	defer frame.Close()

	assert.ErrorContains(t, StopRecording(state), "no active recording")
	assert.Zero(t, GetRecordingDuration(state))
	assert.NoError(t, WriteFrame(state, frame))

	// no-op without a recording
	CleanupRecording(state)
	assert.False(t, state.IsRecording)
}

func TestStartRecordingRejectsBadInput(t *testing.T) {
	state := types.NewAppState(types.ModeFeatures)
	config := types.DefaultVideoConfig()
	config.OutputDir = t.TempDir()

	empty := gocv.NewMat()
	defer empty.Close()
	assert.ErrorContains(t, StartRecording(state, empty, config), "without a frame")

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	config.Codecs = nil
	assert.ErrorContains(t, StartRecording(state, frame, config), "no codecs")

	state.IsRecording = true
	assert.ErrorContains(t, StartRecording(state, frame, types.DefaultVideoConfig()), "already active")
}
