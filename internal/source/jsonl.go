// Package source reads ordered landmark frames produced by an external pose detector.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/andresmejia3/posecoach/internal/types"
)

const megabyte = 1024 * 1024

// ErrMalformedFrame is returned by Decode when a payload is not a frame.
var ErrMalformedFrame = errors.New("malformed frame")

// DetectorError is a logic error reported by the detector in place of a frame.
type DetectorError struct {
	Message string
	Source  string
}

func (e *DetectorError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("detector error (%s): %s", e.Source, e.Message)
	}
	return "detector error: " + e.Message
}

// wireFrame mirrors types.Frame but tolerates a missing index and error payloads.
type wireFrame struct {
	Index     *int              `json:"index"`
	Landmarks types.LandmarkSet `json:"landmarks"`
	types.ErrorResult
}

// Decode parses a single frame payload. Frames without an index get fallbackIndex.
//
// A detector error payload decodes to an empty frame together with a
// *DetectorError, so callers can keep the stream going and count it as a frame
// without detection.
func Decode(data []byte, fallbackIndex int) (types.Frame, error) {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return types.Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	frame := types.Frame{Index: fallbackIndex, Landmarks: w.Landmarks}
	if w.Index != nil {
		frame.Index = *w.Index
	}
	if w.Error != "" {
		frame.Landmarks = nil
		return frame, &DetectorError{Message: w.Error, Source: w.Source}
	}
	return frame, nil
}

// JSONLines reads one JSON frame per line from a reader.
type JSONLines struct {
	scanner *bufio.Scanner
	line    int
	next    int

	// OnWarning receives non-fatal problems: malformed lines (which are
	// skipped) and detector errors (which become frames without detection).
	OnWarning func(err error)
}

// NewJSONLines creates a frame source over r.
func NewJSONLines(r io.Reader) *JSONLines {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), megabyte)
	return &JSONLines{scanner: scanner}
}

// Next returns the next frame, or io.EOF when the input is exhausted.
func (s *JSONLines) Next(ctx context.Context) (types.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return types.Frame{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return types.Frame{}, fmt.Errorf("reading frames: %w", err)
			}
			return types.Frame{}, io.EOF
		}
		s.line++

		data := bytes.TrimSpace(s.scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		frame, err := Decode(data, s.next)
		var detErr *DetectorError
		switch {
		case err == nil:
		case errors.As(err, &detErr):
			s.warn(fmt.Errorf("line %d: %w", s.line, err))
		default:
			s.warn(fmt.Errorf("line %d: %w", s.line, err))
			continue
		}
		s.next = frame.Index + 1
		return frame, nil
	}
}

func (s *JSONLines) warn(err error) {
	if s.OnWarning != nil {
		s.OnWarning(err)
	}
}
