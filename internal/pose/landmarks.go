// Package pose selects the tracked joint for an exercise and measures its angle.
package pose

import "fmt"

// Landmark is a body keypoint index following the MediaPipe 33-point pose numbering.
type Landmark int

const (
	Nose Landmark = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	// NumLandmarks is the size of a full pose landmark set
	NumLandmarks = 33
)

var landmarkNames = [NumLandmarks]string{
	"NOSE", "LEFT_EYE_INNER", "LEFT_EYE", "LEFT_EYE_OUTER",
	"RIGHT_EYE_INNER", "RIGHT_EYE", "RIGHT_EYE_OUTER", "LEFT_EAR", "RIGHT_EAR",
	"MOUTH_LEFT", "MOUTH_RIGHT", "LEFT_SHOULDER", "RIGHT_SHOULDER",
	"LEFT_ELBOW", "RIGHT_ELBOW", "LEFT_WRIST", "RIGHT_WRIST",
	"LEFT_PINKY", "RIGHT_PINKY", "LEFT_INDEX", "RIGHT_INDEX",
	"LEFT_THUMB", "RIGHT_THUMB", "LEFT_HIP", "RIGHT_HIP",
	"LEFT_KNEE", "RIGHT_KNEE", "LEFT_ANKLE", "RIGHT_ANKLE",
	"LEFT_HEEL", "RIGHT_HEEL", "LEFT_FOOT_INDEX", "RIGHT_FOOT_INDEX",
}

func (l Landmark) String() string {
	if l < 0 || int(l) >= NumLandmarks {
		return fmt.Sprintf("LANDMARK_%d", int(l))
	}
	return landmarkNames[l]
}
