package types

// Point is a single detected landmark in normalized [0,1] image coordinates.
type Point struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// LandmarkSet holds one person's landmarks ordered by landmark index.
// A nil or empty set means no person was detected in the frame.
type LandmarkSet []Point

// Frame represents a single detector output handed to the analyzer
type Frame struct {
	Index     int         `json:"index"`
	Landmarks LandmarkSet `json:"landmarks"`
}

// ErrorResult captures the error object returned by Python on failure
type ErrorResult struct {
	Error  string `json:"error"`
	Source string `json:"source,omitempty"`
}

// WorkerConfig is the handshake sent to the pose detector on startup
type WorkerConfig struct {
	CameraSource           string  `json:"camera_source"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
}
