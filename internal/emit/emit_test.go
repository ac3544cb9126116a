package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresmejia3/posecoach/internal/analyzer"
)

func TestEmitterLines(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)

	require.NoError(t, e.Status("starting", map[string]any{"exercise": "squat"}))
	require.NoError(t, e.Metrics(3, analyzer.Metrics{
		PostureScore:  91.2,
		Alignment:     analyzer.AlignmentCorrect,
		RangeOfMotion: 44,
		FormQuality:   analyzer.FormExcellent,
		Reps:          2,
	}))
	require.NoError(t, e.Error("Unable to open camera"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.JSONEq(t, `{"status":"starting","exercise":"squat"}`, lines[0])
	assert.JSONEq(t, `{"type":"metrics","frame":3,"posture_score":91.2,"alignment":"Correct","range_of_motion":44,"form_quality":"Excellent","reps":2}`, lines[1])
	assert.JSONEq(t, `{"error":"Unable to open camera"}`, lines[2])
}

func TestStatusCannotOverrideStatusKey(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)
	require.NoError(t, e.Status("progress", map[string]any{"status": "bogus", "frames_processed": 100}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "progress", got["status"])
	assert.EqualValues(t, 100, got["frames_processed"])
}

func TestEmptyMetricsLine(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)
	require.NoError(t, e.Metrics(0, analyzer.Metrics{Alignment: analyzer.NoReading, FormQuality: analyzer.NoReading, Reps: 4}))
	assert.JSONEq(t, `{"type":"metrics","frame":0,"posture_score":0,"alignment":"-","range_of_motion":0,"form_quality":"-","reps":4}`, buf.String())
}
