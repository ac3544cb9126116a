package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresmejia3/posecoach/internal/pose"
	"github.com/andresmejia3/posecoach/internal/types"
)

func validOpts(t *testing.T) Options {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return Options{
		Exercise:            "squat",
		Window:              5,
		InputPath:           path,
		DetectionConfidence: 0.5,
		TrackingConfidence:  0.5,
		ProgressEvery:       100,
	}
}

func TestValidateTrackFlags(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{name: "Valid file input", mutate: func(o *Options) {}},
		{name: "Stdin input", mutate: func(o *Options) { o.InputPath = "-" }},
		{name: "Unknown exercise is only a warning", mutate: func(o *Options) { o.Exercise = "deadlift" }},
		{name: "Progress disabled", mutate: func(o *Options) { o.ProgressEvery = 0 }},
		{name: "No source", mutate: func(o *Options) { o.InputPath = "" }, wantErr: true},
		{name: "Both sources", mutate: func(o *Options) { o.UseWorker = true }, wantErr: true},
		{name: "Missing file", mutate: func(o *Options) { o.InputPath = filepath.Join(t.TempDir(), "nope.jsonl") }, wantErr: true},
		{name: "Directory input", mutate: func(o *Options) { o.InputPath = t.TempDir() }, wantErr: true},
		{name: "Zero window", mutate: func(o *Options) { o.Window = 0 }, wantErr: true},
		{name: "Detection confidence too high", mutate: func(o *Options) { o.DetectionConfidence = 1.5 }, wantErr: true},
		{name: "Negative tracking confidence", mutate: func(o *Options) { o.TrackingConfidence = -0.1 }, wantErr: true},
		{name: "Negative progress interval", mutate: func(o *Options) { o.ProgressEvery = -1 }, wantErr: true},
		{
			name: "Worker script missing",
			mutate: func(o *Options) {
				o.InputPath = ""
				o.UseWorker = true
				o.WorkerScript = filepath.Join(t.TempDir(), "pose_worker.py")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOpts(t)
			tt.mutate(&opts)
			err := validateTrackFlags(&opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateTrackFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.CameraSource == "" {
				t.Errorf("Expected a default camera source to be filled in")
			}
		})
	}
}

// kneeLine renders one JSON-lines frame whose left knee angle is deg degrees.
func kneeLine(t *testing.T, deg float64) string {
	t.Helper()
	lm := make(types.LandmarkSet, pose.NumLandmarks)
	rad := deg * math.Pi / 180
	lm[pose.LeftKnee] = types.Point{X: 0.5, Y: 0.5}
	lm[pose.LeftHip] = types.Point{X: 0.5, Y: 0.2}
	lm[pose.LeftAnkle] = types.Point{X: 0.5 + 0.3*math.Sin(rad), Y: 0.5 - 0.3*math.Cos(rad)}
	data, err := json.Marshal(map[string]any{"landmarks": lm})
	require.NoError(t, err)
	return string(data)
}

func TestRunTrack(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "frames.jsonl")
	output := filepath.Join(dir, "metrics.jsonl")

	var lines []string
	for _, deg := range []float64{170, 120, 100, 100, 175, 175} {
		lines = append(lines, kneeLine(t, deg))
	}
	lines = append(lines, `{"error": "camera lost"}`, `{not json`)
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	opts := validOpts(t)
	opts.InputPath = input
	opts.OutputPath = output
	opts.Window = 1
	opts.ProgressEvery = 2
	opts.Quiet = true

	require.NoError(t, runTrack(context.Background(), opts))

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), scanner.Text())
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	var statuses []string
	var metrics []map[string]any
	var errs []string
	for _, rec := range records {
		switch {
		case rec["status"] != nil:
			statuses = append(statuses, rec["status"].(string))
		case rec["type"] == "metrics":
			metrics = append(metrics, rec)
		case rec["error"] != nil:
			errs = append(errs, rec["error"].(string))
		}
	}

	assert.Equal(t, []string{"starting", "progress", "progress", "progress", "finished"}, statuses)
	require.Len(t, metrics, 7, "the detector error still counts as a frame")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "camera lost")

	first := metrics[0]
	assert.Equal(t, float64(0), first["frame"])
	assert.Equal(t, 10.0, first["posture_score"]) // 45° above the target
	assert.InDelta(t, 170, first["range_of_motion"], 1)

	last := metrics[6]
	assert.Equal(t, "-", last["alignment"])
	assert.Equal(t, float64(1), last["reps"])

	finished := records[len(records)-1]
	assert.Equal(t, float64(7), finished["frames_processed"])
	assert.Equal(t, float64(1), finished["reps"])
}

func TestRunAngle(t *testing.T) {
	got, err := runAngle([]string{"0.5,0.2", "0.5,0.5", "0.8,0.5"})
	require.NoError(t, err)
	assert.Equal(t, "90.00", got)

	_, err = runAngle([]string{"0.5,0.2", "0.5", "0.8,0.5"})
	assert.Error(t, err)

	_, err = runAngle([]string{"0.5,0.5", "0.5,0.5", "0.8,0.5"})
	assert.Error(t, err)
}

func TestRunExercises(t *testing.T) {
	var sb strings.Builder
	runExercises(&sb)
	out := sb.String()

	assert.Contains(t, out, "EXERCISE")
	assert.Contains(t, out, "shoulder_rotation")
	assert.Contains(t, out, pose.LeftKnee.String())
	// Sorted: shoulder_rotation comes before squat.
	assert.Less(t, strings.Index(out, "shoulder_rotation"), strings.Index(out, "squat"))
}
