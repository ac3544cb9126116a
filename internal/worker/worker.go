package worker

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andresmejia3/posecoach/internal/source"
	"github.com/andresmejia3/posecoach/internal/types"
	"github.com/andresmejia3/posecoach/internal/utils" // Using the SafeCommand wrapper
)

// maxPayload bounds a single detector message; a full 33-point frame is a few KB.
const maxPayload = 4 * 1024 * 1024

// Config controls how the external pose detector is launched.
type Config struct {
	Python                 string
	Script                 string
	CameraSource           string
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
}

// PoseWorker runs the external Python pose detector and streams its frames.
type PoseWorker struct {
	ID       int
	Cmd      *utils.SafeCommand
	Stdin    io.WriteCloser
	DataPipe io.ReadCloser

	// OnWarning receives detector errors reported in place of a frame.
	OnWarning func(err error)

	next int
}

// NewPoseWorker starts the detector process and sends it the session handshake.
// The process is killed when ctx is cancelled.
func NewPoseWorker(ctx context.Context, id int, cfg Config) (*PoseWorker, error) {
	// 1. Initialize the SafeCommand
	py := utils.NewSafeCommand(ctx, cfg.Python, "-u", cfg.Script)

	// Create a side-channel pipe (FD 3) so detector prints on stdout never corrupt frames
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	// Pass the write-end to the child process. It will appear as FD 3.
	py.Cmd.ExtraFiles = []*os.File{w}

	stdin, err := py.StdinPipe()
	if err != nil {
		w.Close() // Prevent FD leak
		r.Close()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := py.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("worker %d failed to start: %w", id, err)
	}

	// Close the write-end in the parent so only the child holds it
	w.Close()

	pw := &PoseWorker{
		ID:       id,
		Cmd:      py,
		Stdin:    stdin,
		DataPipe: r,
	}

	if err := pw.Handshake(types.WorkerConfig{
		CameraSource:           cfg.CameraSource,
		MinDetectionConfidence: cfg.MinDetectionConfidence,
		MinTrackingConfidence:  cfg.MinTrackingConfidence,
	}); err != nil {
		pw.Close()
		return nil, fmt.Errorf("worker %d handshake: %w", id, err)
	}

	return pw, nil
}

// Handshake sends the detector configuration as the first message on stdin.
func (w *PoseWorker) Handshake(cfg types.WorkerConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return writeMessage(w.Stdin, data)
}

// Next blocks until the detector emits a frame. It returns io.EOF when the
// detector closes its side of the data pipe.
func (w *PoseWorker) Next(ctx context.Context) (types.Frame, error) {
	if err := ctx.Err(); err != nil {
		return types.Frame{}, err
	}

	payload, err := readMessage(w.DataPipe)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return types.Frame{}, io.EOF
		}
		// A cancelled context kills the process, which surfaces here as a broken pipe.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Frame{}, ctxErr
		}
		return types.Frame{}, fmt.Errorf("worker %d: %w", w.ID, err)
	}

	frame, err := source.Decode(payload, w.next)
	var detErr *source.DetectorError
	switch {
	case err == nil:
	case errors.As(err, &detErr):
		if w.OnWarning != nil {
			w.OnWarning(fmt.Errorf("worker %d: %w", w.ID, err))
		}
	default:
		return types.Frame{}, fmt.Errorf("worker %d: %w", w.ID, err)
	}
	w.next = frame.Index + 1
	return frame, nil
}

// Close ends the session: closing stdin tells the detector to stop, then we wait for it to exit.
func (w *PoseWorker) Close() error {
	w.Stdin.Close()
	w.DataPipe.Close()
	if w.Cmd == nil {
		return nil
	}
	return w.Cmd.Wait()
}

// Protocol: [uint32 big-endian length][payload]
func writeMessage(wr io.Writer, data []byte) error {
	if err := binary.Write(wr, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := wr.Write(data)
	return err
}

func readMessage(r io.Reader) ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err // This is where we catch a detector that crashed on import
	}

	n := binary.BigEndian.Uint32(header)
	if n > maxPayload {
		return nil, fmt.Errorf("payload of %d bytes exceeds limit of %d", n, maxPayload)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}
