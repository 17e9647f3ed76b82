package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/signal"
)

// loadSamples returns the audio to analyze and its sample rate, either
// decoded from a WAV file or synthesized.
func loadSamples(wavPath string, toneHz, durSec, rate float64, pluck bool, block int) ([]float64, float64, error) {
	if wavPath != "" {
		return readWAV(wavPath)
	}

	return synthesize(toneHz, durSec, rate, pluck, block)
}

func synthesize(freqHz, durSec, sampleRate float64, pluck bool, block int) ([]float64, float64, error) {
	g := signal.NewGenerator(core.WithSampleRate(sampleRate), core.WithBlockSize(block))

	n := int(durSec * sampleRate)

	var (
		samples []float64
		err     error
	)
	if pluck {
		samples, err = g.Pluck(freqHz, 0.5, n)
	} else {
		samples, err = g.Sine(freqHz, 0.5, n)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("synthesize: %w", err)
	}

	slog.Debug("tone synthesized", "freq_hz", freqHz, "dur_sec", durSec, "pluck", pluck)

	return samples, sampleRate, nil
}

// readWAV decodes a WAV file, averages its channels down to mono, and
// scales the integer samples to [-1, 1].
func readWAV(path string) ([]float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%q is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %q: %w", path, err)
	}

	// Some encoders leave the decoder bit depth unset until after a
	// read; fall back to 16 rather than dividing by zero.
	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}

	mono, err := monoFloat(buf, bitDepth)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %q: %w", path, err)
	}

	slog.Debug("wav decoded",
		"path", path,
		"rate", buf.Format.SampleRate,
		"channels", buf.Format.NumChannels,
		"bit_depth", bitDepth,
		"frames", len(mono),
	)

	return mono, float64(buf.Format.SampleRate), nil
}

// monoFloat averages the interleaved channels of an integer PCM buffer
// down to mono and scales the result to [-1, 1]. 8-bit WAV data is
// unsigned, so its 128 midpoint is removed before scaling.
func monoFloat(buf *audio.IntBuffer, bitDepth int) ([]float64, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}

	bias := 0
	if bitDepth == 8 {
		bias = 128
	}
	fullScale := float64(int(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	mono := core.EnsureLen(nil, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c] - bias
		}
		mono[i] = float64(sum) / float64(channels) / fullScale
	}

	return mono, nil
}
