package input

import (
	"image"
	"log"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"objtracker/recording"
	"objtracker/types"
	"objtracker/ui"
	"objtracker/utils"
)

// Key codes as returned by gocv.Window.WaitKey
const (
	KeyEscape = 27
	KeyEnter  = 13
	KeyUp     = 0
	KeyDown   = 1
	KeyLeft   = 2
	KeyRight  = 3
)

const (
	moveStep    = 10
	resizeStep  = 20
	minROISize  = 40
	defaultSize = 100
)

// ErrCancelled is returned by CaptureRegion when the user pressed ESC
var ErrCancelled = errors.New("region selection cancelled")

// Action is what the main loop should do after a key press
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionReset
)

// Session is an interactive region-of-interest selection. It owns the
// selection state for as long as the user is choosing a region.
type Session struct {
	window  *gocv.Window
	config  types.UIConfig
	centerX int
	centerY int
	width   int
	height  int
}

// NewSession creates a selection session shown in window
func NewSession(window *gocv.Window, config types.UIConfig) *Session {
	return &Session{
		window: window,
		config: config,
		width:  defaultSize,
		height: defaultSize,
	}
}

// CaptureRegion lets the user move and resize a rectangle over frame until
// ENTER confirms it. It blocks until a choice is made and returns
// ErrCancelled on ESC.
func (s *Session) CaptureRegion(frame gocv.Mat) (image.Rectangle, error) {
	if frame.Empty() {
		return image.Rectangle{}, errors.New("cannot select a region on an empty frame")
	}

	// start at the centre of the frame
	s.centerX = frame.Cols() / 2
	s.centerY = frame.Rows() / 2
	s.width = min(defaultSize, frame.Cols())
	s.height = min(defaultSize, frame.Rows())
	log.Println("ROI selection mode. Use arrow keys or WASD to move, +/- to resize, ENTER to confirm.")

	display := gocv.NewMat()
	defer display.Close()

	for {
		frame.CopyTo(&display)
		ui.DrawROISelection(&display, s.Selection(frame.Cols(), frame.Rows()))
		ui.DrawHelpText(&display, true, s.config)
		s.window.IMShow(display)

		key := s.window.WaitKey(30)
		if key < 0 {
			continue
		}

		done, cancelled := s.HandleKey(key, frame.Cols(), frame.Rows())
		if cancelled {
			log.Println("ROI selection cancelled")
			return image.Rectangle{}, ErrCancelled
		}
		if done {
			roi := s.Selection(frame.Cols(), frame.Rows())
			log.Printf("ROI selected: %dx%d at (%d,%d)\n", roi.Dx(), roi.Dy(), roi.Min.X, roi.Min.Y)
			return roi, nil
		}
	}
}

// Selection returns the current selection clamped to the frame
func (s *Session) Selection(frameWidth, frameHeight int) image.Rectangle {
	return utils.ClampRect(utils.CenteredRect(s.centerX, s.centerY, s.width, s.height), frameWidth, frameHeight)
}

// HandleKey applies one key press to the selection. done is set when the
// selection was confirmed, cancelled when it was abandoned.
func (s *Session) HandleKey(key, frameWidth, frameHeight int) (done, cancelled bool) {
	switch key {
	case KeyUp, 'w':
		s.centerY -= moveStep
	case KeyDown, 's':
		s.centerY += moveStep
	case KeyLeft, 'a':
		s.centerX -= moveStep
	case KeyRight, 'd':
		s.centerX += moveStep
	case '+', '=':
		s.width = min(s.width+resizeStep, frameWidth)
		s.height = min(s.height+resizeStep, frameHeight)
	case '-', '_':
		s.width = max(s.width-resizeStep, minROISize)
		s.height = max(s.height-resizeStep, minROISize)
	case KeyEnter, '\n':
		return true, false
	case KeyEscape:
		return false, true
	}

	// keep the selection inside the frame
	s.centerX = min(max(s.centerX, s.width/2), frameWidth-s.width/2)
	s.centerY = min(max(s.centerY, s.height/2), frameHeight-s.height/2)
	return false, false
}

// ProcessInput handles a key press in the main loop
func ProcessInput(key int, state *types.AppState, frame gocv.Mat, videoConfig types.VideoConfig) Action {
	switch key {
	case 'q', KeyEscape:
		recording.CleanupRecording(state)
		return ActionQuit

	case 'r':
		log.Println("Tracking reset")
		return ActionReset

	case 'p':
		state.Paused = !state.Paused
		if state.Paused {
			log.Println("Paused")
		} else {
			log.Println("Resumed")
		}

	case 'v':
		if err := recording.ToggleRecording(state, frame, videoConfig); err != nil {
			log.Printf("Recording error: %v\n", err)
		}

	case 'd':
		state.DebugMode = !state.DebugMode
		if state.DebugMode {
			log.Println("Debug mode enabled - logs will appear on screen")
		} else {
			log.Println("Debug mode disabled")
		}
	}

	return ActionNone
}
