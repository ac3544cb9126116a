// Package emit writes session output as line-delimited JSON.
package emit

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/andresmejia3/posecoach/internal/analyzer"
)

// Emitter serializes metrics and status events, one JSON object per line.
type Emitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// New creates an Emitter writing to w.
func New(w io.Writer) *Emitter {
	return &Emitter{enc: json.NewEncoder(w)}
}

type metricsLine struct {
	Type  string `json:"type"`
	Frame int    `json:"frame"`
	analyzer.Metrics
}

// Metrics writes a {"type":"metrics",...} line for one frame.
func (e *Emitter) Metrics(frame int, m analyzer.Metrics) error {
	return e.write(metricsLine{Type: "metrics", Frame: frame, Metrics: m})
}

// Status writes a {"status":...} line. fields are merged into the object.
func (e *Emitter) Status(status string, fields map[string]any) error {
	line := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		line[k] = v
	}
	line["status"] = status
	return e.write(line)
}

// Error writes an {"error":...} line.
func (e *Emitter) Error(msg string) error {
	return e.write(map[string]string{"error": msg})
}

func (e *Emitter) write(v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(v)
}
