package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"objtracker/input"
	"objtracker/matching"
	"objtracker/recording"
	"objtracker/types"
	"objtracker/ui"
)

const windowName = "Object Tracker"

type options struct {
	source     string
	mode       types.Mode
	metric     string
	scorer     string
	configPath string
	maxFrames  int
	record     bool
	debug      bool
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var opts options
	var mode string

	fs := flag.NewFlagSet("objtracker", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&mode, "mode", string(types.ModeFeatures), "tracking mode: features or template")
	fs.StringVar(&opts.metric, "metric", "", "template metric, overrides the config file")
	fs.StringVar(&opts.scorer, "scorer", "opencv", "template scorer: opencv or native")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.IntVar(&opts.maxFrames, "max-frames", 650, "stop after this many frames, 0 for no limit")
	fs.BoolVar(&opts.record, "record", false, "record the annotated stream from the first frame")
	fs.BoolVar(&opts.debug, "debug", false, "show log output on screen")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: objtracker [flags] <camera ID or video file>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errors.New("expected exactly one video source")
	}
	opts.source = fs.Arg(0)

	opts.mode = types.Mode(mode)
	if opts.mode != types.ModeFeatures && opts.mode != types.ModeTemplate {
		return options{}, errors.Errorf("unknown mode %q", mode)
	}
	if opts.scorer != "opencv" && opts.scorer != "native" {
		return options{}, errors.Errorf("unknown scorer %q", opts.scorer)
	}
	if opts.maxFrames < 0 {
		return options{}, errors.Errorf("max-frames must be >= 0, got %d", opts.maxFrames)
	}
	return opts, nil
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(opts options) (types.Config, error) {
	cfg := types.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = types.LoadConfig(opts.configPath); err != nil {
			return types.Config{}, err
		}
	}

	if opts.metric != "" {
		cfg.Template.Metric = opts.metric
	}
	if _, err := matching.ParseMetric(cfg.Template.Metric); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// openCapture opens source as a file when it exists, as a camera otherwise
func openCapture(source string) (*gocv.VideoCapture, error) {
	if _, err := os.Stat(source); err == nil {
		capture, err := gocv.VideoCaptureFile(source)
		return capture, errors.Wrapf(err, "opening video file %s", source)
	}

	id, err := parseCameraID(source)
	if err != nil {
		return nil, err
	}
	capture, err := gocv.VideoCaptureDevice(id)
	return capture, errors.Wrapf(err, "opening camera %d", id)
}

func parseCameraID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, errors.Errorf("%q is neither a video file nor a camera ID", arg)
	}
	return id, nil
}

// frameDelay returns the WaitKey delay in milliseconds for the given frame
// rate. Cameras often report 0, fallback is used then.
func frameDelay(fps, fallback float64) int {
	if fps <= 0 {
		fps = fallback
	}
	if fps <= 0 {
		return 1
	}
	return max(1, int(1000/fps))
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	state := types.NewAppState(opts.mode)
	state.DebugMode = opts.debug
	debugLogger := types.NewDebugLogger(state, cfg.UI.MaxDebugLogs)
	debugLogger.SetAsLogOutput()
	defer debugLogger.RestoreOriginalLogOutput()

	capture, err := openCapture(opts.source)
	if err != nil {
		return err
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)
	log.Printf("Run %s: %s mode on %s\n", state.RunID, opts.mode, opts.source)
	log.Printf("FPS: %.2f, frames: %.0f, size: %.0fx%.0f\n", fps,
		capture.Get(gocv.VideoCaptureFrameCount),
		capture.Get(gocv.VideoCaptureFrameWidth),
		capture.Get(gocv.VideoCaptureFrameHeight))
	delay := frameDelay(fps, cfg.Video.FPS)

	window := gocv.NewWindow(windowName)
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	annotated := gocv.NewMat()
	defer annotated.Close()
	shown := gocv.NewMat()
	defer shown.Close()

	if ok := capture.Read(&frame); !ok || frame.Empty() {
		return errors.Errorf("no frames from %s", opts.source)
	}

	ui.PrintStartupInstructions(opts.mode)

	tracker, err := newTracker(opts, cfg, window, frame)
	if err != nil {
		if errors.Is(err, input.ErrCancelled) {
			return nil
		}
		return err
	}
	defer tracker.Close()

	defer recording.CleanupRecording(state)
	if opts.record {
		if err := recording.StartRecording(state, frame, cfg.Video); err != nil {
			log.Printf("Recording error: %v\n", err)
		}
	}

	status := ""
	haveFrame := true
	for {
		if !state.Paused {
			if !haveFrame {
				if ok := capture.Read(&frame); !ok || frame.Empty() {
					log.Println("End of stream")
					break
				}
			}
			haveFrame = false
			state.FrameCount++
			if state.DebugMode {
				log.Printf("Frame %d\n", state.FrameCount)
			}

			frame.CopyTo(&annotated)
			if status, err = tracker.Process(&annotated); err != nil {
				log.Printf("Tracking error: %v\n", err)
			}
		}

		annotated.CopyTo(&shown)
		ui.RenderFrame(&shown, state, status, cfg.UI)
		if !state.Paused {
			if err := recording.WriteFrame(state, shown); err != nil {
				log.Printf("Recording error: %v\n", err)
			}
		}
		window.IMShow(shown)

		key := window.WaitKey(delay)
		switch input.ProcessInput(key, state, shown, cfg.Video) {
		case input.ActionQuit:
			return nil
		case input.ActionReset:
			if err := tracker.Reset(frame); err != nil && !errors.Is(err, input.ErrCancelled) {
				log.Printf("Reset error: %v\n", err)
			}
		}

		if opts.maxFrames > 0 && state.FrameCount >= opts.maxFrames {
			log.Printf("Reached %d frames\n", opts.maxFrames)
			break
		}
	}

	return nil
}
