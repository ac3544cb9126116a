package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/andresmejia3/posecoach/internal/analyzer"
	"github.com/andresmejia3/posecoach/internal/emit"
	"github.com/andresmejia3/posecoach/internal/pose"
	"github.com/andresmejia3/posecoach/internal/session"
	"github.com/andresmejia3/posecoach/internal/tui"
	"github.com/andresmejia3/posecoach/internal/types"
	"github.com/andresmejia3/posecoach/internal/utils"
)

// stopGrace bounds how long we wait for the source to notice cancellation after the UI exits.
const stopGrace = 2 * time.Second

var liveOpts Options

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Analyze a pose stream with a live terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runLive(cmd.Context(), liveOpts)
	},
}

func init() {
	addStreamFlags(liveCmd, &liveOpts)
	liveCmd.Flags().StringVarP(&liveOpts.OutputPath, "output", "o", "", "Also write JSON lines to this file")
	rootCmd.AddCommand(liveCmd)
}

type sessionResult struct {
	summary session.Summary
	err     error
}

func runLive(ctx context.Context, opts Options) error {
	if err := validateStreamFlags(&opts); err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if opts.OutputPath != "" {
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			utils.ShowError("Failed to create output file", err, nil)
			return err
		}
		defer f.Close()
		out = f
	}
	em := emit.New(out)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// p is assigned before the session goroutine starts, and only that goroutine raises warnings.
	var p *tea.Program
	onWarning := func(err error) {
		if isDetectorError(err) {
			em.Error(err.Error())
		}
		p.Send(tui.WarningMsg{Err: err})
	}

	stream, err := openStream(ctx, opts, onWarning)
	if err != nil {
		utils.ShowError("Failed to open frame source", err, nil)
		return err
	}
	defer stream.Close()

	p = tea.NewProgram(tui.New(opts.Exercise, stream.Name), tea.WithContext(ctx), tea.WithAltScreen())

	var sess *session.Session
	sess = session.New(session.Options{
		Exercise:   pose.Exercise(opts.Exercise),
		Window:     opts.Window,
		SourceName: stream.Name,
		OnFrame: func(f types.Frame, m analyzer.Metrics) {
			// Runs on the session goroutine, the analyzer's only owner.
			baseline, ok := sess.Analyzer().Baseline()
			p.Send(tui.MetricsMsg{Frame: f.Index, Metrics: m, Baseline: baseline, Calibrated: ok})
		},
	})

	done := make(chan sessionResult, 1)
	go func() {
		sum, err := sess.Run(ctx, stream, em)
		p.Send(tui.DoneMsg{Summary: sum, Err: err})
		done <- sessionResult{summary: sum, err: err}
	}()

	_, uiErr := p.Run()
	cancel()

	var res sessionResult
	select {
	case res = <-done:
	case <-time.After(stopGrace):
		// A reader blocked on stdin cannot be interrupted; leave it behind.
		fmt.Fprintln(os.Stderr, "⚠️  Frame source did not stop in time")
		return nil
	}

	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		utils.ShowError("Dashboard failed", uiErr, nil)
		return uiErr
	}
	if res.err != nil && !errors.Is(res.err, context.Canceled) {
		utils.ShowError("Tracking session failed", res.err, stream.Cmd)
		return res.err
	}

	printSummary(res.summary, res.err != nil)
	return nil
}
