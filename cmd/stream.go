package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/andresmejia3/posecoach/internal/pose"
	"github.com/andresmejia3/posecoach/internal/session"
	"github.com/andresmejia3/posecoach/internal/source"
	"github.com/andresmejia3/posecoach/internal/utils"
	"github.com/andresmejia3/posecoach/internal/worker"
)

// frameStream is an opened frame source plus whatever must be torn down after it.
type frameStream struct {
	session.Source
	Name string
	// Cmd is the detector process when frames come from the worker.
	Cmd   *utils.SafeCommand
	close func() error
	once  sync.Once
	err   error
}

// Close releases the source once; later calls return the first result.
func (s *frameStream) Close() error {
	s.once.Do(func() {
		if s.close != nil {
			s.err = s.close()
		}
	})
	return s.err
}

// validateStreamFlags checks the flags shared by track and live and fills in defaults.
func validateStreamFlags(opts *Options) error {
	if opts.UseWorker == (opts.InputPath != "") {
		err := fmt.Errorf("exactly one of --input or --worker is required")
		utils.ShowError("Configuration Error", err, nil)
		return err
	}

	if opts.InputPath != "" && opts.InputPath != "-" {
		info, err := os.Stat(opts.InputPath)
		if err != nil {
			if os.IsNotExist(err) {
				utils.ShowError("Input file does not exist", err, nil)
				return err
			}
			utils.ShowError("Unable to access input file", err, nil)
			return err
		}
		if info.IsDir() {
			err := fmt.Errorf("is a directory")
			utils.ShowError("Input path is a directory, expected a frames file", err, nil)
			return err
		}
	}

	if opts.Window < 1 {
		err := fmt.Errorf("must be >= 1, got %d", opts.Window)
		utils.ShowError("Invalid smoothing window", err, nil)
		return err
	}
	if opts.DetectionConfidence < 0 || opts.DetectionConfidence > 1.0 {
		err := fmt.Errorf("must be between 0.0 and 1.0, got %f", opts.DetectionConfidence)
		utils.ShowError("Invalid detection confidence", err, nil)
		return err
	}
	if opts.TrackingConfidence < 0 || opts.TrackingConfidence > 1.0 {
		err := fmt.Errorf("must be between 0.0 and 1.0, got %f", opts.TrackingConfidence)
		utils.ShowError("Invalid tracking confidence", err, nil)
		return err
	}

	if opts.UseWorker {
		if _, err := os.Stat(opts.WorkerScript); err != nil {
			utils.ShowError("Pose detector script not found", err, nil)
			return err
		}
	}
	if opts.CameraSource == "" {
		opts.CameraSource = defaultCamera
	}
	if opts.CameraSource == "" {
		opts.CameraSource = "0"
	}

	// An unknown exercise is not fatal: every frame simply reports no reading.
	if !pose.Exercise(opts.Exercise).Known() {
		fmt.Fprintf(os.Stderr, "⚠️  Unknown exercise %q, no metrics will be produced. Known: %v\n", opts.Exercise, pose.Exercises())
	}
	return nil
}

// openStream opens the frame source selected by opts. Recoverable stream
// problems are passed to onWarning.
func openStream(ctx context.Context, opts Options, onWarning func(error)) (*frameStream, error) {
	if opts.UseWorker {
		python := pythonExec
		if python == "" {
			python = "python3"
		}
		fmt.Fprintf(os.Stderr, "🚀 Starting pose detector (camera %s)...\n", opts.CameraSource)
		w, err := worker.NewPoseWorker(ctx, 0, worker.Config{
			Python:                 python,
			Script:                 opts.WorkerScript,
			CameraSource:           opts.CameraSource,
			MinDetectionConfidence: opts.DetectionConfidence,
			MinTrackingConfidence:  opts.TrackingConfidence,
		})
		if err != nil {
			return nil, err
		}
		w.OnWarning = onWarning
		return &frameStream{Source: w, Name: "camera:" + opts.CameraSource, Cmd: w.Cmd, close: w.Close}, nil
	}

	var (
		r       io.Reader = os.Stdin
		name              = "stdin"
		closeFn func() error
	)
	if opts.InputPath != "-" {
		f, err := os.Open(opts.InputPath)
		if err != nil {
			return nil, err
		}
		r, name, closeFn = f, opts.InputPath, f.Close
	}
	src := source.NewJSONLines(r)
	src.OnWarning = onWarning
	return &frameStream{Source: src, Name: name, close: closeFn}, nil
}

// isDetectorError reports whether err came from the detector rather than the transport.
func isDetectorError(err error) bool {
	var detErr *source.DetectorError
	return errors.As(err, &detErr)
}
