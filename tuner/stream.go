package tuner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-tuner/dsp/buffer"
	"github.com/cwbudde/algo-tuner/dsp/frame"
)

// ErrSourceClosed is returned by Push after Close.
var ErrSourceClosed = errors.New("tuner: source closed")

const defaultQueueDepth = 8

// PushSource adapts callback-style capture to the pull-based Source
// interface. The capture side calls Push with chunks of any length; the
// analysis side reads assembled frames through Next.
//
// Push never blocks: when the queue is full the oldest queued frame is
// dropped, which keeps a stalled reader from backing up into an audio
// callback. Dropped reports how many frames were lost that way.
type PushSource struct {
	frameSize  int
	sampleRate float64

	mu     sync.Mutex
	acc    *buffer.Accumulator
	pool   *buffer.Pool
	queue  chan []float64
	closed bool

	dropped atomic.Uint64
}

// NewPushSource returns a PushSource emitting frames of frameSize
// samples at sampleRate. queueDepth bounds the number of frames held
// between Push and Next; zero selects a default.
func NewPushSource(sampleRate float64, frameSize, queueDepth int) (*PushSource, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameSize, frameSize)
	}

	// Reject a bad rate up front rather than on the first Next call.
	if _, err := frame.New(make([]float64, 1), sampleRate); err != nil {
		return nil, err
	}

	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}

	acc, err := buffer.NewAccumulator(frameSize)
	if err != nil {
		return nil, err
	}

	pool, err := buffer.NewPool(frameSize)
	if err != nil {
		return nil, err
	}

	return &PushSource{
		frameSize:  frameSize,
		sampleRate: sampleRate,
		acc:        acc,
		pool:       pool,
		queue:      make(chan []float64, queueDepth),
	}, nil
}

// Push feeds captured samples into the source. Completed frames are
// copied out, so the caller may reuse samples immediately.
func (s *PushSource) Push(samples []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSourceClosed
	}

	s.acc.Push(samples, func(block []float64) {
		buf := s.pool.Get()
		copy(buf, block)
		s.enqueue(buf)
	})

	return nil
}

// enqueue delivers one assembled frame, evicting the oldest queued
// frame if the reader has fallen behind. Runs with mu held, so no other
// sender competes for the freed slot.
func (s *PushSource) enqueue(buf []float64) {
	for {
		select {
		case s.queue <- buf:
			return
		default:
		}

		select {
		case old := <-s.queue:
			s.dropped.Add(1)
			s.pool.Put(old)
		default:
		}
	}
}

// Close stops the source. Frames already queued remain readable; after
// they drain, Next returns io.EOF. A partially assembled frame is
// discarded.
func (s *PushSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.acc.Reset()
	close(s.queue)

	return nil
}

// Dropped returns the number of frames evicted because the queue was
// full.
func (s *PushSource) Dropped() uint64 {
	return s.dropped.Load()
}

// Next implements [Source]. It blocks until a frame is available, the
// source is closed and drained, or ctx is done. The caller owns the
// returned frame.
func (s *PushSource) Next(ctx context.Context) (frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return frame.Frame{}, err
	}

	select {
	case <-ctx.Done():
		return frame.Frame{}, ctx.Err()
	case buf, ok := <-s.queue:
		if !ok {
			return frame.Frame{}, io.EOF
		}

		return frame.New(buf, s.sampleRate)
	}
}
