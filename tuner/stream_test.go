package tuner

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/cwbudde/algo-tuner/music/notes"
)

func constantChunk(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestPushSource_AssemblesAcrossChunks(t *testing.T) {
	src, err := NewPushSource(44100, 2048, 4)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	if err := src.Push(constantChunk(1, 1000)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := src.Push(constantChunk(1, 1000)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := src.Push(constantChunk(1, 48)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	if f.Len() != 2048 {
		t.Fatalf("frame length = %d, want 2048", f.Len())
	}
	for i, v := range f.Samples() {
		if v != 1 {
			t.Fatalf("sample %d = %v, want 1", i, v)
		}
	}

	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Next after drain err = %v, want io.EOF", err)
	}
}

func TestPushSource_FramesDoNotAliasPushedChunks(t *testing.T) {
	src, err := NewPushSource(44100, 4, 4)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	chunk := []float64{1, 2, 3, 4}
	if err := src.Push(chunk); err != nil {
		t.Fatalf("Push: %v", err)
	}

	// A capture callback reuses its buffer as soon as Push returns.
	chunk[0] = 99

	f, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if f.Samples()[0] != 1 {
		t.Fatalf("frame sample 0 = %v, want the value at Push time", f.Samples()[0])
	}
}

func TestPushSource_OverrunDropsOldest(t *testing.T) {
	src, err := NewPushSource(44100, 4, 1)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := src.Push(constantChunk(float64(i), 4)); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}

	if got := src.Dropped(); got != 2 {
		t.Fatalf("Dropped() = %d, want 2", got)
	}

	f, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if f.Samples()[0] != 3 {
		t.Fatalf("surviving frame value = %v, want the newest (3)", f.Samples()[0])
	}
}

func TestPushSource_CloseDiscardsPartialFrame(t *testing.T) {
	src, err := NewPushSource(44100, 2048, 4)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	if err := src.Push(constantChunk(1, 1000)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Next err = %v, want io.EOF", err)
	}
}

func TestPushSource_PushAfterClose(t *testing.T) {
	src, err := NewPushSource(44100, 64, 4)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := src.Push(constantChunk(0, 64)); !errors.Is(err, ErrSourceClosed) {
		t.Fatalf("Push after Close err = %v, want ErrSourceClosed", err)
	}
}

func TestPushSource_ContextCanceled(t *testing.T) {
	src, err := NewPushSource(44100, 64, 4)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Next err = %v, want context.Canceled", err)
	}
}

func TestPushSource_Invalid(t *testing.T) {
	if _, err := NewPushSource(44100, 0, 4); !errors.Is(err, ErrInvalidFrameSize) {
		t.Fatalf("frame size 0 err = %v, want ErrInvalidFrameSize", err)
	}
	if _, err := NewPushSource(0, 2048, 4); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestPushSource_DefaultQueueDepth(t *testing.T) {
	src, err := NewPushSource(44100, 32, 0)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	if err := src.Push(constantChunk(1, 32)); err != nil {
		t.Fatalf("Push: %v", err)
	}

	f, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if f.Len() != 32 {
		t.Fatalf("frame length = %d, want 32", f.Len())
	}
}

func TestRun_WithPushSource(t *testing.T) {
	src, err := NewPushSource(44100, 2048, 4)
	if err != nil {
		t.Fatalf("NewPushSource: %v", err)
	}

	// Two frames of A at the lag the detector will quantize to, pushed
	// in uneven chunks the way a driver would deliver them.
	tone := make([]float64, 4096)
	for i := range tone {
		tone[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}
	for start := 0; start < len(tone); start += 1500 {
		end := start + 1500
		if end > len(tone) {
			end = len(tone)
		}
		if err := src.Push(tone[start:end]); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tn := mustNew(t, Config{}, DefaultSettings())

	var updates []Update
	if err := tn.Run(context.Background(), src, func(u Update) {
		updates = append(updates, u)
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	for i, u := range updates {
		if !u.OK {
			t.Fatalf("update %d not OK: %+v", i, u)
		}
		if u.Reading.Note != notes.A || u.Reading.Octave != 4 {
			t.Fatalf("update %d note = %s%d, want A4", i, u.Reading.Note, u.Reading.Octave)
		}
	}

	if src.Dropped() != 0 {
		t.Fatalf("Dropped() = %d, want 0", src.Dropped())
	}
}
