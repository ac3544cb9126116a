package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/andresmejia3/posecoach/internal/analyzer"
	"github.com/andresmejia3/posecoach/internal/emit"
	"github.com/andresmejia3/posecoach/internal/pose"
	"github.com/andresmejia3/posecoach/internal/session"
	"github.com/andresmejia3/posecoach/internal/types"
	"github.com/andresmejia3/posecoach/internal/utils"
)

var trackOpts Options

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Analyze a pose stream and emit per-frame form metrics as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runTrack(cmd.Context(), trackOpts)
	},
}

func init() {
	addStreamFlags(trackCmd, &trackOpts)
	trackCmd.Flags().IntVar(&trackOpts.ProgressEvery, "progress-every", session.DefaultProgressEvery, "Emit a progress status every N frames (0 disables)")
	trackCmd.Flags().StringVarP(&trackOpts.OutputPath, "output", "o", "", "Write JSON lines to this file instead of stdout")
	trackCmd.Flags().BoolVarP(&trackOpts.Quiet, "quiet", "q", false, "Hide the progress spinner and summary")
	rootCmd.AddCommand(trackCmd)
}

// runTrack wires a frame source to the analyzer session and writes one metrics line per frame.
func runTrack(ctx context.Context, opts Options) error {
	if err := validateTrackFlags(&opts); err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if opts.OutputPath != "" && opts.OutputPath != "-" {
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			utils.ShowError("Failed to create output file", err, nil)
			return err
		}
		defer f.Close()
		out = f
	}
	em := emit.New(out)

	onWarning := func(err error) {
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "\n⚠️  %v\n", err)
		}
		// Detector errors are part of the output stream, like the detector reported them.
		if isDetectorError(err) {
			em.Error(err.Error())
		}
	}

	stream, err := openStream(ctx, opts, onWarning)
	if err != nil {
		utils.ShowError("Failed to open frame source", err, nil)
		return err
	}
	defer stream.Close()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("🏋️  Tracking "+opts.Exercise),
		progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(!opts.Quiet),
	)

	sess := session.New(session.Options{
		Exercise:      pose.Exercise(opts.Exercise),
		Window:        opts.Window,
		ProgressEvery: opts.ProgressEvery,
		SourceName:    stream.Name,
		OnFrame: func(types.Frame, analyzer.Metrics) {
			bar.Add(1)
		},
	})

	sum, err := sess.Run(ctx, stream, em)
	bar.Finish()

	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		utils.ShowError("Tracking session failed", err, stream.Cmd)
		return err
	}

	// Closing the worker waits for the detector; a failure there still matters if we were not interrupted.
	if err := stream.Close(); err != nil && !interrupted && ctx.Err() == nil {
		utils.ShowError("Pose detector exited with an error", err, stream.Cmd)
		return err
	}

	if !opts.Quiet {
		printSummary(sum, interrupted)
	}
	return nil
}

func validateTrackFlags(opts *Options) error {
	if err := validateStreamFlags(opts); err != nil {
		return err
	}
	if opts.ProgressEvery < 0 {
		err := fmt.Errorf("must be >= 0, got %d", opts.ProgressEvery)
		utils.ShowError("Invalid progress interval", err, nil)
		return err
	}
	return nil
}

func printSummary(sum session.Summary, interrupted bool) {
	if interrupted {
		fmt.Fprintf(os.Stderr, "\n🛑 Session %s interrupted.\n", sum.SessionID[:8])
	} else {
		fmt.Fprintf(os.Stderr, "\n🏁 Session %s complete.\n", sum.SessionID[:8])
	}
	fmt.Fprintf(os.Stderr, "   Frames:   %s (%s with a pose) in %s\n",
		humanize.Comma(int64(sum.Frames)), humanize.Comma(int64(sum.Detected)), utils.FmtDuration(sum.Elapsed))
	fmt.Fprintf(os.Stderr, "   Reps:     %d\n", sum.Reps)
	if sum.Calibrated {
		fmt.Fprintf(os.Stderr, "   Baseline: %.1f°\n", sum.Baseline)
	} else {
		fmt.Fprintln(os.Stderr, "   Baseline: never calibrated (no pose detected)")
	}
}
