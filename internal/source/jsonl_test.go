package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("explicit index", func(t *testing.T) {
		f, err := Decode([]byte(`{"index": 7, "landmarks": [{"x": 0.1, "y": 0.2}]}`), 0)
		require.NoError(t, err)
		assert.Equal(t, 7, f.Index)
		require.Len(t, f.Landmarks, 1)
		assert.Equal(t, 0.2, f.Landmarks[0].Y)
	})

	t.Run("fallback index", func(t *testing.T) {
		f, err := Decode([]byte(`{"landmarks": null}`), 3)
		require.NoError(t, err)
		assert.Equal(t, 3, f.Index)
		assert.Nil(t, f.Landmarks)
	})

	t.Run("detector error", func(t *testing.T) {
		f, err := Decode([]byte(`{"index": 4, "error": "Unable to open camera", "source": "0"}`), 0)
		var detErr *DetectorError
		require.ErrorAs(t, err, &detErr)
		assert.Equal(t, "Unable to open camera", detErr.Message)
		assert.Equal(t, "detector error (0): Unable to open camera", err.Error())
		assert.Equal(t, 4, f.Index)
		assert.Nil(t, f.Landmarks)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Decode([]byte(`not json`), 0)
		assert.ErrorIs(t, err, ErrMalformedFrame)
	})
}

func TestJSONLinesNext(t *testing.T) {
	input := strings.Join([]string{
		`{"landmarks": [{"x": 0.5, "y": 0.5}]}`,
		``,
		`{"landmarks": []}`,
		`{broken`,
		`{"index": 10, "landmarks": null}`,
		`{"error": "pose model crashed"}`,
		`{"landmarks": [{"x": 0.1, "y": 0.9, "visibility": 0.8}]}`,
	}, "\n")

	src := NewJSONLines(strings.NewReader(input))
	var warnings []error
	src.OnWarning = func(err error) { warnings = append(warnings, err) }

	ctx := context.Background()
	var indexes []int
	for {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		indexes = append(indexes, f.Index)
	}

	assert.Equal(t, []int{0, 1, 10, 11, 12}, indexes)
	require.Len(t, warnings, 2)
	assert.ErrorIs(t, warnings[0], ErrMalformedFrame)
	assert.Contains(t, warnings[0].Error(), "line 4")
	var detErr *DetectorError
	assert.ErrorAs(t, warnings[1], &detErr)
}

func TestJSONLinesCancelled(t *testing.T) {
	src := NewJSONLines(strings.NewReader(`{"landmarks": []}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
