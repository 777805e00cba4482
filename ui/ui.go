package ui

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"gocv.io/x/gocv"

	"objtracker/recording"
	"objtracker/types"
	"objtracker/utils"
)

var (
	Blue    = color.RGBA{B: 255}
	Red     = color.RGBA{R: 255}
	Green   = color.RGBA{G: 255}
	Yellow  = color.RGBA{R: 255, G: 255}
	Magenta = color.RGBA{R: 255, B: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255}
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 120}
)

// TrailStyle defines how feature tracks are drawn
type TrailStyle struct {
	LineColor     color.RGBA
	LineThickness int
	MarkerColor   color.RGBA
	MarkerRadius  int
}

// DefaultTrailStyle returns the trail style for the given UI configuration
func DefaultTrailStyle(config types.UIConfig) TrailStyle {
	return TrailStyle{
		LineColor:     Magenta,
		LineThickness: 1,
		MarkerColor:   Red,
		MarkerRadius:  config.MarkerRadius,
	}
}

// DrawTrails draws, for every track, a line from where it was first detected
// to its current position and a filled marker at the current position.
// origins and positions must be index aligned.
func DrawTrails(frame *gocv.Mat, origins, positions []gocv.Point2f, style TrailStyle) {
	for i := range positions {
		pos := utils.Pt(positions[i])
		_ = gocv.Line(frame, utils.Pt(origins[i]), pos, style.LineColor, style.LineThickness)
		gocv.Circle(frame, pos, style.MarkerRadius, style.MarkerColor, -1)
	}
}

// DrawMatch draws the bounding box of the template match
func DrawMatch(frame *gocv.Mat, rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	_ = gocv.Rectangle(frame, rect, Blue, 3)
}

// DrawROISelection draws the ROI selection rectangle and crosshair
func DrawROISelection(frame *gocv.Mat, selection image.Rectangle) {
	_ = gocv.Rectangle(frame, selection, Yellow, 2)

	// Draw center cross
	cx := selection.Min.X + selection.Dx()/2
	cy := selection.Min.Y + selection.Dy()/2
	_ = gocv.Line(frame, image.Pt(cx-10, cy), image.Pt(cx+10, cy), Yellow, 1)
	_ = gocv.Line(frame, image.Pt(cx, cy-10), image.Pt(cx, cy+10), Yellow, 1)
}

// DrawStatusMessage draws the main status message
func DrawStatusMessage(frame *gocv.Mat, state *types.AppState, status string, config types.UIConfig) {
	textColor := Green
	if state.Paused {
		status = "Paused - press 'p' to resume"
		textColor = Yellow
	}

	if err := gocv.PutText(frame, status, image.Pt(10, 30), gocv.FontHersheyPlain, config.StatusFontSize, textColor, 2); err != nil {
		log.Printf("Error adding status text: %v", err)
	}
}

// DrawRecordingStatus shows REC and the elapsed time below the status line
func DrawRecordingStatus(frame *gocv.Mat, state *types.AppState, config types.UIConfig) {
	if !state.IsRecording {
		return
	}

	elapsed := recording.GetRecordingDuration(state)
	text := fmt.Sprintf("REC %02d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60)
	if err := gocv.PutText(frame, text, image.Pt(10, 60), gocv.FontHersheyPlain, config.StatusFontSize, Red, 2); err != nil {
		log.Printf("Error adding recording text: %v", err)
	}
}

// DrawHelpText draws the key bindings of the current screen near the bottom
// left corner
func DrawHelpText(frame *gocv.Mat, selecting bool, config types.UIConfig) {
	text := "Controls: r=reset  p=pause  v=record  d=debug  q=quit"
	if selecting {
		text = "ROI: Arrows/WASD=move  +/-=resize  Enter=confirm  Esc=cancel"
	}
	drawPanel(frame, image.Pt(10, frame.Rows()-config.HelpOffsetY), []string{text}, White, config.HelpFontSize)
}

// DrawDebugLogs draws the buffered log lines in a panel on the right
func DrawDebugLogs(frame *gocv.Mat, state *types.AppState, config types.UIConfig) {
	if !state.DebugMode {
		return
	}

	state.DebugLogMutex.Lock()
	lines := DebugLines(state.DebugLogs, debugLineWidth)
	state.DebugLogMutex.Unlock()
	if len(lines) == 0 {
		return
	}

	lines = append([]string{fmt.Sprintf("Debug (%d):", len(lines))}, lines...)
	drawPanel(frame, image.Pt(frame.Cols()-debugPanelWidth, 100), lines, White, config.DebugFontSize)
}

const (
	debugLineWidth  = 50
	debugPanelWidth = 410
	panelPadding    = 5
	panelLineGap    = 8
)

// DebugLines copies logs, cutting lines longer than width runes
func DebugLines(logs []string, width int) []string {
	lines := make([]string, len(logs))
	for i, line := range logs {
		if r := []rune(line); len(r) > width {
			line = string(r[:width-3]) + "..."
		}
		lines[i] = line
	}
	return lines
}

// drawPanel draws lines of text over a translucent box whose first baseline
// is at origin
func drawPanel(frame *gocv.Mat, origin image.Point, lines []string, textColor color.RGBA, scale float64) {
	var width, height int
	for _, line := range lines {
		size := gocv.GetTextSize(line, gocv.FontHersheyPlain, scale, 1)
		width = max(width, size.X)
		height = max(height, size.Y)
	}
	step := height + panelLineGap

	box := image.Rect(origin.X-panelPadding, origin.Y-height-panelPadding,
		origin.X+width+panelPadding, origin.Y+(len(lines)-1)*step+panelPadding)
	if err := gocv.Rectangle(frame, box, Black, -1); err != nil {
		log.Printf("Error drawing panel background: %v", err)
	}

	for i, line := range lines {
		at := image.Pt(origin.X, origin.Y+i*step)
		if err := gocv.PutText(frame, line, at, gocv.FontHersheyPlain, scale, textColor, 1); err != nil {
			log.Printf("Error adding panel text: %v", err)
		}
	}
}

// RenderFrame renders the status overlays on the frame. The tracking
// annotations themselves are drawn by the tracker of the active mode.
func RenderFrame(frame *gocv.Mat, state *types.AppState, status string, config types.UIConfig) {
	DrawStatusMessage(frame, state, status, config)
	DrawRecordingStatus(frame, state, config)
	DrawHelpText(frame, false, config)
	DrawDebugLogs(frame, state, config)
}

// FeatureStatus formats the status line of feature mode
func FeatureStatus(tracked, rejected int, flow gocv.Point2f) string {
	return fmt.Sprintf("Features: %d tracked, %d dropped, flow (%.1f, %.1f)", tracked, rejected, flow.X, flow.Y)
}

// TemplateStatus formats the status line of template mode
func TemplateStatus(box image.Rectangle, score float64) string {
	return fmt.Sprintf("Template at (%d,%d) score %.3f", box.Min.X, box.Min.Y, score)
}

// PrintStartupInstructions prints the initial control instructions
func PrintStartupInstructions(mode types.Mode) {
	fmt.Println("Controls:")
	if mode == types.ModeTemplate {
		fmt.Println("- Select the reference patch first:")
		fmt.Println("  Arrow keys or WASD move, +/- resize, ENTER confirm, ESC cancel")
		fmt.Println("- Press 'r' to select a new reference patch")
	} else {
		fmt.Println("- Feature tracking starts automatically")
		fmt.Println("- Press 'r' to drop all tracks and detect new features")
	}
	fmt.Println("- Press 'p' to pause/resume")
	fmt.Println("- Press 'v' to start/stop video recording")
	fmt.Println("- Press 'd' to toggle debug mode (shows last N logs on screen)")
	fmt.Println("- Press 'q' or ESC to quit")
}
