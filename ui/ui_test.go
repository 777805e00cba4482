package ui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"objtracker/types"
)

func TestDrawTrails(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 40, 40, gocv.MatTypeCV8UC3)
	defer frame.Close()

	origins := []gocv.Point2f{{X: 5, Y: 5}}
	positions := []gocv.Point2f{{X: 30, Y: 20}}
	DrawTrails(&frame, origins, positions, DefaultTrailStyle(types.DefaultUIConfig()))

	// marker is red, stored as BGR
	marker := frame.GetVecbAt(20, 30)
	assert.Equal(t, []uint8{0, 0, 255}, []uint8{marker[0], marker[1], marker[2]})

	// the line starts at the origin and is magenta
	start := frame.GetVecbAt(5, 5)
	assert.Equal(t, []uint8{255, 0, 255}, []uint8{start[0], start[1], start[2]})

	// far corner is untouched
	corner := frame.GetVecbAt(39, 0)
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{corner[0], corner[1], corner[2]})
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Features: 12 tracked, 3 dropped, flow (1.5, -2.0)",
		FeatureStatus(12, 3, gocv.Point2f{X: 1.5, Y: -2}))
	assert.Equal(t, "Template at (30,40) score 0.000",
		TemplateStatus(image.Rect(30, 40, 46, 52), 0))
}

func TestDebugLines(t *testing.T) {
	logs := []string{"short", "0123456789abcdef", "ééééééééé"}
	lines := DebugLines(logs, 8)

	assert.Equal(t, []string{"short", "01234...", "ééééé..."}, lines)
	assert.Equal(t, "0123456789abcdef", logs[1], "input is not modified")
}

func TestOverlaysStayInFrame(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 480, gocv.MatTypeCV8UC3)
	defer frame.Close()

	state := types.NewAppState(types.ModeFeatures)
	state.DebugMode = true
	state.DebugLogs = []string{"Detected 12 features, tracking 12"}

	// drawing clips to the frame, nothing here may panic
	RenderFrame(&frame, state, FeatureStatus(12, 0, gocv.Point2f{}), types.DefaultUIConfig())
	state.Paused = true
	RenderFrame(&frame, state, "", types.DefaultUIConfig())
	assert.Equal(t, 240, frame.Rows())
}
