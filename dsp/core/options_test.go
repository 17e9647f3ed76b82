package core

import "testing"

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithBlockSize(4096))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BlockSize != 4096 {
		t.Fatalf("block size = %d, want 4096", cfg.BlockSize)
	}
}

func TestDefaultProcessorConfig(t *testing.T) {
	def := DefaultProcessorConfig()
	if def.SampleRate != 44100 {
		t.Fatalf("default sample rate = %v, want 44100", def.SampleRate)
	}
	if def.BlockSize != 2048 {
		t.Fatalf("default block size = %d, want 2048", def.BlockSize)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1))
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}
