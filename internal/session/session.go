// Package session drives one analyzer over one ordered frame stream.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/andresmejia3/posecoach/internal/analyzer"
	"github.com/andresmejia3/posecoach/internal/pose"
	"github.com/andresmejia3/posecoach/internal/types"
)

// DefaultProgressEvery matches the detector loop's progress cadence.
const DefaultProgressEvery = 100

// Source yields frames in arrival order and io.EOF at the end of the stream.
type Source interface {
	Next(ctx context.Context) (types.Frame, error)
}

// Sink receives the session output.
type Sink interface {
	Metrics(frame int, m analyzer.Metrics) error
	Status(status string, fields map[string]any) error
}

// Options configures a session.
type Options struct {
	Exercise pose.Exercise
	Window   int
	// ProgressEvery emits a progress status every N frames; zero disables it.
	ProgressEvery int
	// SourceName is reported in the starting status.
	SourceName string
	// OnFrame is called after each frame is analyzed and emitted.
	OnFrame func(frame types.Frame, m analyzer.Metrics)
}

// Summary describes a finished (or interrupted) session.
type Summary struct {
	SessionID  string
	Exercise   pose.Exercise
	Frames     int
	Detected   int
	Reps       int
	Baseline   float64
	Calibrated bool
	Elapsed    time.Duration
}

// Session owns the analyzer for a single frame stream.
type Session struct {
	ID       string
	opts     Options
	analyzer *analyzer.Analyzer
}

// New creates a session with a fresh analyzer.
func New(opts Options) *Session {
	return &Session{
		ID:       uuid.NewString(),
		opts:     opts,
		analyzer: analyzer.New(opts.Exercise, opts.Window),
	}
}

// Analyzer exposes the session's analyzer for read-only inspection.
func (s *Session) Analyzer() *analyzer.Analyzer { return s.analyzer }

// Run reads frames from src until EOF or cancellation, writing one metrics
// record per frame to sink. The finished status is written in both cases;
// on cancellation the context error is returned alongside the summary.
func (s *Session) Run(ctx context.Context, src Source, sink Sink) (Summary, error) {
	start := time.Now()
	sum := Summary{SessionID: s.ID, Exercise: s.opts.Exercise}

	if err := sink.Status("starting", map[string]any{
		"session_id": s.ID,
		"exercise":   string(s.opts.Exercise),
		"window":     s.analyzer.Window(),
		"source":     s.opts.SourceName,
	}); err != nil {
		return sum, fmt.Errorf("writing status: %w", err)
	}

	var runErr error
	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			return s.finish(sum, start), fmt.Errorf("reading frame %d: %w", sum.Frames, err)
		}

		m := s.analyzer.Analyze(frame.Landmarks)
		if err := sink.Metrics(frame.Index, m); err != nil {
			return s.finish(sum, start), fmt.Errorf("writing metrics for frame %d: %w", frame.Index, err)
		}

		sum.Frames++
		if m.Detected() {
			sum.Detected++
		}
		if s.opts.OnFrame != nil {
			s.opts.OnFrame(frame, m)
		}

		if s.opts.ProgressEvery > 0 && sum.Frames%s.opts.ProgressEvery == 0 {
			if err := sink.Status("progress", map[string]any{"frames_processed": sum.Frames}); err != nil {
				return s.finish(sum, start), fmt.Errorf("writing status: %w", err)
			}
		}
	}

	sum = s.finish(sum, start)
	if err := sink.Status("finished", map[string]any{
		"frames_processed": sum.Frames,
		"reps":             sum.Reps,
	}); err != nil && runErr == nil {
		runErr = fmt.Errorf("writing status: %w", err)
	}
	return sum, runErr
}

func (s *Session) finish(sum Summary, start time.Time) Summary {
	sum.Reps = s.analyzer.Reps()
	sum.Baseline, sum.Calibrated = s.analyzer.Baseline()
	sum.Elapsed = time.Since(start)
	return sum
}
