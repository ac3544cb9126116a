package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Options holds shared configuration for the track and live commands
type Options struct {
	Exercise            string
	Window              int
	InputPath           string
	UseWorker           bool
	WorkerScript        string
	CameraSource        string
	DetectionConfidence float64
	TrackingConfidence  float64
	ProgressEvery       int
	OutputPath          string
	Quiet               bool
}

var (
	// pythonExec is the interpreter used to launch the pose detector
	pythonExec string
	// defaultCamera is the camera source used when --camera is not given
	defaultCamera string
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "posecoach",
	Short:   "Real-time exercise form analysis from pose landmarks",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// If no flag was provided, fall back to the environment and then to defaults
		if pythonExec == "" {
			pythonExec = os.Getenv("PYTHON_EXECUTABLE")
			if pythonExec == "" {
				pythonExec = "python3"
			}
		}
		defaultCamera = os.Getenv("CAMERA_SOURCE")
		if defaultCamera == "" {
			defaultCamera = "0"
		}
		return nil
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&pythonExec, "python", "", "Python interpreter for the pose detector (default: $PYTHON_EXECUTABLE or python3)")
}

// addStreamFlags binds the flags shared by commands that analyze a frame stream.
func addStreamFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Exercise, "exercise", "x", "shoulder_rotation", "Exercise to analyze (see 'posecoach exercises')")
	cmd.Flags().IntVarP(&opts.Window, "window", "w", 5, "Number of recent angles averaged for smoothing")
	cmd.Flags().StringVarP(&opts.InputPath, "input", "i", "", "JSON-lines frames file ('-' for stdin)")
	cmd.Flags().BoolVar(&opts.UseWorker, "worker", false, "Run the Python pose detector instead of reading frames")
	cmd.Flags().StringVar(&opts.WorkerScript, "worker-script", "python/pose_worker.py", "Path to the pose detector script")
	cmd.Flags().StringVarP(&opts.CameraSource, "camera", "c", "", "Camera index or video URL for the detector (default: $CAMERA_SOURCE or 0)")
	cmd.Flags().Float64Var(&opts.DetectionConfidence, "detection-confidence", 0.5, "Minimum pose detection confidence")
	cmd.Flags().Float64Var(&opts.TrackingConfidence, "tracking-confidence", 0.5, "Minimum pose tracking confidence")
}
