package tuner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/algo-tuner/dsp/frame"
)

// ErrInvalidFrameSize is returned when a source is asked to produce
// frames of non-positive length.
var ErrInvalidFrameSize = errors.New("tuner: frame size must be positive")

// Source yields successive capture frames.
type Source interface {
	// Next returns the next frame, or io.EOF when the source is
	// exhausted.
	Next(ctx context.Context) (frame.Frame, error)
}

// Run drains src through the tuner, invoking emit for every processed
// frame. emit may be nil. Run returns nil when the source is exhausted
// and the context error when canceled.
func (t *Tuner) Run(ctx context.Context, src Source, emit func(Update)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("tuner: read frame: %w", err)
		}

		upd := t.Process(f)
		if emit != nil {
			emit(upd)
		}
	}
}

// SliceSource feeds a prerecorded sample buffer as fixed-size frames.
// A trailing remainder shorter than one frame is discarded.
type SliceSource struct {
	samples    []float64
	sampleRate float64
	frameSize  int
	pos        int
}

// NewSliceSource creates a source over samples at the given rate.
func NewSliceSource(samples []float64, sampleRate float64, frameSize int) (*SliceSource, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameSize, frameSize)
	}

	// Reject a bad rate up front rather than on the first Next call.
	if _, err := frame.New(make([]float64, 1), sampleRate); err != nil {
		return nil, err
	}

	return &SliceSource{
		samples:    samples,
		sampleRate: sampleRate,
		frameSize:  frameSize,
	}, nil
}

// Next returns the next frame of the buffer. Frames alias the backing
// slice without copying.
func (s *SliceSource) Next(ctx context.Context) (frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return frame.Frame{}, err
	}

	if s.pos+s.frameSize > len(s.samples) {
		return frame.Frame{}, io.EOF
	}

	f, err := frame.New(s.samples[s.pos:s.pos+s.frameSize], s.sampleRate)
	if err != nil {
		return frame.Frame{}, err
	}

	s.pos += s.frameSize

	return f, nil
}
