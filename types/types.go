package types

import (
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// Mode selects the tracking strategy for a run
type Mode string

const (
	// ModeFeatures follows a cloud of sparse feature points frame to frame
	ModeFeatures Mode = "features"
	// ModeTemplate re-localizes a fixed reference patch on every frame
	ModeTemplate Mode = "template"
)

// Track is a snapshot of one tracked feature: where it was first detected
// and where it is in the latest frame
type Track struct {
	Origin   gocv.Point2f
	Position gocv.Point2f
}

// AppState holds the complete application state
type AppState struct {
	// RunID tags log lines and recordings of this run
	RunID uuid.UUID
	Mode  Mode

	// Frame processing
	FrameCount int
	Paused     bool

	// Video recording
	IsRecording        bool
	VideoWriter        *gocv.VideoWriter
	RecordingFile      string
	RecordingStartTime time.Time

	// Debug logging
	DebugMode     bool
	DebugLogs     []string
	DebugLogMutex sync.Mutex
}

// NewAppState creates the state for a new run in the given mode
func NewAppState(mode Mode) *AppState {
	return &AppState{
		RunID: uuid.New(),
		Mode:  mode,
	}
}

// DebugLogger tees the standard logger into AppState.DebugLogs while debug
// mode is on. Only the last maxLogs lines are kept.
type DebugLogger struct {
	state   *AppState
	maxLogs int
	out     io.Writer
}

// NewDebugLogger creates a logger feeding state. Output keeps going to the
// current destination of the standard logger.
func NewDebugLogger(state *AppState, maxLogs int) *DebugLogger {
	return &DebugLogger{
		state:   state,
		maxLogs: max(maxLogs, 1),
		out:     log.Writer(),
	}
}

// Log buffers message when debug mode is on
func (d *DebugLogger) Log(message string) {
	if !d.state.DebugMode {
		return
	}

	d.state.DebugLogMutex.Lock()
	defer d.state.DebugLogMutex.Unlock()

	logs := append(d.state.DebugLogs, message)
	if over := len(logs) - d.maxLogs; over > 0 {
		logs = append(logs[:0:0], logs[over:]...)
	}
	d.state.DebugLogs = logs
}

// GetLogs returns a copy of the buffered lines, oldest first
func (d *DebugLogger) GetLogs() []string {
	d.state.DebugLogMutex.Lock()
	defer d.state.DebugLogMutex.Unlock()
	return append([]string(nil), d.state.DebugLogs...)
}

// Write implements io.Writer. Every non-empty line of p is buffered without
// the date and time the log package prepends.
func (d *DebugLogger) Write(p []byte) (int, error) {
	if d.out != nil {
		_, _ = d.out.Write(p)
	}

	for _, line := range strings.Split(string(p), "\n") {
		if line = stripLogPrefix(strings.TrimSpace(line)); line != "" {
			d.Log(line)
		}
	}
	return len(p), nil
}

// SetAsLogOutput routes the standard logger through d
func (d *DebugLogger) SetAsLogOutput() {
	log.SetOutput(d)
}

// RestoreOriginalLogOutput points the standard logger back to where it wrote
// before SetAsLogOutput
func (d *DebugLogger) RestoreOriginalLogOutput() {
	if d.out != nil {
		log.SetOutput(d.out)
	}
}

// stripLogPrefix removes the "2006/01/02 15:04:05 " prefix of log.LstdFlags
func stripLogPrefix(message string) string {
	if len(message) > 19 && message[4] == '/' && message[7] == '/' && message[10] == ' ' && message[13] == ':' {
		return strings.TrimSpace(message[19:])
	}
	return message
}
