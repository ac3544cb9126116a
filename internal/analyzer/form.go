package analyzer

import "math"

const (
	// targetOffset is how far below the resting angle a good repetition reaches.
	targetOffset = 45.0
	// scorePenalty is the posture score lost per degree of deviation.
	scorePenalty = 2.0
	// alignmentTolerance is the deviation (degrees) still considered aligned.
	alignmentTolerance = 10.0
	// shakyStdDev is the window standard deviation above which form is unstable.
	shakyStdDev = 5.0

	excellentScore = 85.0
	goodScore      = 70.0
)

// Labels emitted in Metrics.
const (
	NoReading = "-"

	AlignmentCorrect = "Correct"
	AlignmentOff     = "Off"

	FormShaky     = "Shaky"
	FormExcellent = "Excellent"
	FormGood      = "Good"
	FormNeedsWork = "Needs Work"
)

// postureScore scores the smoothed angle against the target derived from the baseline.
// The score is in [0, 100].
func postureScore(smoothed, baseline float64) (score, deviation float64) {
	ideal := baseline - targetOffset
	deviation = math.Abs(smoothed - ideal)
	score = math.Max(0, 100-deviation*scorePenalty)
	return score, deviation
}

func alignment(deviation float64) string {
	if deviation < alignmentTolerance {
		return AlignmentCorrect
	}
	return AlignmentOff
}

// formQuality labels the frame. Instability wins over any score.
func formQuality(stability, score float64) string {
	switch {
	case stability > shakyStdDev:
		return FormShaky
	case score > excellentScore:
		return FormExcellent
	case score > goodScore:
		return FormGood
	default:
		return FormNeedsWork
	}
}
