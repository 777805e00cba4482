package input

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"objtracker/types"
)

func newTestSession() *Session {
	s := NewSession(nil, types.DefaultUIConfig())
	s.centerX = 320
	s.centerY = 240
	return s
}

func TestHandleKeyMovesAndResizes(t *testing.T) {
	s := newTestSession()

	s.HandleKey(KeyRight, 640, 480)
	s.HandleKey('s', 640, 480)
	assert.Equal(t, image.Rect(280, 200, 380, 300), s.Selection(640, 480))

	s.HandleKey('+', 640, 480)
	assert.Equal(t, image.Rect(270, 190, 390, 310), s.Selection(640, 480))

	for i := 0; i < 10; i++ {
		s.HandleKey('-', 640, 480)
	}
	assert.Equal(t, image.Pt(minROISize, minROISize), s.Selection(640, 480).Size())
}

func TestHandleKeyKeepsSelectionInFrame(t *testing.T) {
	s := newTestSession()

	for i := 0; i < 100; i++ {
		s.HandleKey(KeyLeft, 640, 480)
		s.HandleKey('w', 640, 480)
	}
	assert.Equal(t, image.Rect(0, 0, 100, 100), s.Selection(640, 480))

	for i := 0; i < 100; i++ {
		s.HandleKey('d', 640, 480)
		s.HandleKey(KeyDown, 640, 480)
	}
	assert.Equal(t, image.Rect(540, 380, 640, 480), s.Selection(640, 480))

	for i := 0; i < 50; i++ {
		s.HandleKey('=', 640, 480)
	}
	assert.Equal(t, image.Rect(0, 0, 640, 480), s.Selection(640, 480), "grows up to the frame size")
}

func TestHandleKeyConfirmAndCancel(t *testing.T) {
	s := newTestSession()

	done, cancelled := s.HandleKey(KeyEnter, 640, 480)
	assert.True(t, done)
	assert.False(t, cancelled)

	done, cancelled = s.HandleKey(KeyEscape, 640, 480)
	assert.False(t, done)
	assert.True(t, cancelled)

	done, cancelled = s.HandleKey('x', 640, 480)
	assert.False(t, done)
	assert.False(t, cancelled)
}

func TestCaptureRegionRejectsEmptyFrame(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	_, err := newTestSession().CaptureRegion(frame)
	assert.Error(t, err)
}

func TestProcessInput(t *testing.T) {
	state := types.NewAppState(types.ModeFeatures)
	frame := gocv.NewMat()
	defer frame.Close()
	video := types.DefaultVideoConfig()

	assert.Equal(t, ActionNone, ProcessInput('p', state, frame, video))
	assert.True(t, state.Paused)
	assert.Equal(t, ActionNone, ProcessInput('p', state, frame, video))
	assert.False(t, state.Paused)

	assert.Equal(t, ActionNone, ProcessInput('d', state, frame, video))
	assert.True(t, state.DebugMode)

	assert.Equal(t, ActionReset, ProcessInput('r', state, frame, video))
	assert.Equal(t, ActionNone, ProcessInput('z', state, frame, video))
	assert.Equal(t, ActionQuit, ProcessInput('q', state, frame, video))
	assert.Equal(t, ActionQuit, ProcessInput(KeyEscape, state, frame, video))
}
