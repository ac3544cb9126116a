package pose

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresmejia3/posecoach/internal/types"
)

// Exercise selects which joint is tracked during a session.
type Exercise string

const (
	ShoulderRotation Exercise = "shoulder_rotation"
	Squat            Exercise = "squat"
)

// Joint is the landmark triple whose included angle is measured at Vertex.
type Joint struct {
	Proximal Landmark
	Vertex   Landmark
	Distal   Landmark
}

func (j Joint) String() string {
	return fmt.Sprintf("%s > %s > %s", j.Proximal, j.Vertex, j.Distal)
}

var joints = map[Exercise]Joint{
	ShoulderRotation: {Proximal: LeftShoulder, Vertex: LeftElbow, Distal: LeftWrist},
	Squat:            {Proximal: LeftHip, Vertex: LeftKnee, Distal: LeftAnkle},
}

// Joint returns the tracked landmark triple for the exercise.
func (e Exercise) Joint() (Joint, bool) {
	j, ok := joints[e]
	return j, ok
}

// Known reports whether the exercise has a tracked joint.
func (e Exercise) Known() bool {
	_, ok := joints[e]
	return ok
}

// Exercises lists the recognized exercise tags in alphabetical order.
func Exercises() []Exercise {
	out := make([]Exercise, 0, len(joints))
	for e := range joints {
		out = append(out, e)
	}
	sort.Slice(out, func(i, k int) bool { return out[i] < out[k] })
	return out
}

// ExtractAngle returns the tracked joint angle in degrees for one frame.
// ok is false when nothing can be measured: no landmarks, an unknown exercise,
// missing landmark indices or degenerate geometry.
func ExtractAngle(e Exercise, lm types.LandmarkSet) (float64, bool) {
	if len(lm) == 0 {
		return 0, false
	}
	j, ok := joints[e]
	if !ok {
		return 0, false
	}
	for _, idx := range []Landmark{j.Proximal, j.Vertex, j.Distal} {
		if int(idx) >= len(lm) {
			return 0, false
		}
	}
	return CalculateAngle(lm[j.Proximal], lm[j.Vertex], lm[j.Distal])
}

// CalculateAngle returns the angle at b formed by the points a-b-c, in degrees.
// It reports false if b coincides with a or c, or if any coordinate is not finite.
func CalculateAngle(a, b, c types.Point) (float64, bool) {
	bax, bay := a.X-b.X, a.Y-b.Y
	bcx, bcy := c.X-b.X, c.Y-b.Y

	normA := math.Hypot(bax, bay)
	normC := math.Hypot(bcx, bcy)
	if normA == 0 || normC == 0 || !finite(normA) || !finite(normC) {
		return 0, false
	}

	cos := (bax*bcx + bay*bcy) / (normA * normC)
	if math.IsNaN(cos) {
		return 0, false
	}
	// Rounding can push the ratio just past ±1 for colinear points.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
