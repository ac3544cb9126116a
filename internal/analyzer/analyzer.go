// Package analyzer turns a stream of joint angles into per-frame exercise metrics.
//
// An Analyzer owns all state for one session: the recent-angle window, the
// baseline calibrated from the first measured frame, the movement direction and
// the repetition count. It is not safe for concurrent use; give every frame
// stream its own Analyzer.
package analyzer

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/andresmejia3/posecoach/internal/pose"
	"github.com/andresmejia3/posecoach/internal/types"
)

// DefaultWindow is the smoothing window used when none is configured.
const DefaultWindow = 5

// Metrics is the per-frame output of the analyzer.
type Metrics struct {
	PostureScore  float64 `json:"posture_score"`
	Alignment     string  `json:"alignment"`
	RangeOfMotion int     `json:"range_of_motion"`
	FormQuality   string  `json:"form_quality"`
	Reps          int     `json:"reps"`
}

// Detected reports whether the frame produced a measurement.
func (m Metrics) Detected() bool {
	return m.Alignment != NoReading
}

// Direction is the phase of the repetition state machine.
type Direction int

const (
	DirectionUnset Direction = iota
	DirectionDown
	DirectionUp
)

func (d Direction) String() string {
	switch d {
	case DirectionDown:
		return "down"
	case DirectionUp:
		return "up"
	default:
		return "unset"
	}
}

// Analyzer holds the state of one exercise session.
type Analyzer struct {
	exercise pose.Exercise
	win      *window
	scratch  []float64

	baseline   float64
	calibrated bool
	direction  Direction
	reps       int
}

// New creates an Analyzer for the exercise. A non-positive size selects DefaultWindow.
func New(exercise pose.Exercise, size int) *Analyzer {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Analyzer{
		exercise: exercise,
		win:      newWindow(size),
		scratch:  make([]float64, 0, size),
	}
}

// Analyze measures the tracked joint in lm and folds it into the session.
// Frames without a measurable angle return empty metrics and leave the state untouched.
func (a *Analyzer) Analyze(lm types.LandmarkSet) Metrics {
	angle, ok := pose.ExtractAngle(a.exercise, lm)
	if !ok {
		return a.empty()
	}
	return a.Update(angle)
}

// Update folds an already measured raw angle (degrees) into the session.
func (a *Analyzer) Update(angle float64) Metrics {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return a.empty()
	}

	// The first measured frame defines the rest position for the whole session.
	if !a.calibrated {
		a.baseline = angle
		a.calibrated = true
	}

	a.win.push(angle)
	a.scratch = a.win.values(a.scratch)
	smoothed, stability := stat.PopMeanStdDev(a.scratch, nil)

	a.step(smoothed)

	score, deviation := postureScore(smoothed, a.baseline)

	return Metrics{
		PostureScore:  math.Round(score*10) / 10,
		Alignment:     alignment(deviation),
		RangeOfMotion: int(smoothed),
		FormQuality:   formQuality(stability, score),
		Reps:          a.reps,
	}
}

// step advances the repetition state machine. Only strict crossings of the
// baseline change direction; a smoothed angle equal to it keeps the current phase.
func (a *Analyzer) step(smoothed float64) {
	switch a.direction {
	case DirectionUnset:
		if smoothed < a.baseline {
			a.direction = DirectionDown
		} else {
			a.direction = DirectionUp
		}
	case DirectionDown:
		if smoothed > a.baseline {
			a.reps++
			a.direction = DirectionUp
		}
	case DirectionUp:
		if smoothed < a.baseline {
			a.direction = DirectionDown
		}
	}
}

func (a *Analyzer) empty() Metrics {
	return Metrics{
		PostureScore:  0,
		Alignment:     NoReading,
		RangeOfMotion: 0,
		FormQuality:   NoReading,
		Reps:          a.reps,
	}
}

// Exercise returns the exercise the analyzer tracks.
func (a *Analyzer) Exercise() pose.Exercise { return a.exercise }

// Baseline returns the calibrated resting angle, if one has been captured.
func (a *Analyzer) Baseline() (float64, bool) { return a.baseline, a.calibrated }

// Direction returns the current phase of the repetition state machine.
func (a *Analyzer) Direction() Direction { return a.direction }

// Reps returns the number of completed repetitions.
func (a *Analyzer) Reps() int { return a.reps }

// Window returns the configured smoothing window size.
func (a *Analyzer) Window() int { return a.win.capacity() }
