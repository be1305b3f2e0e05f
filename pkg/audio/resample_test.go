package audio_test

import (
	"errors"
	"math"
	"testing"

	"github.com/kazuhideoki/voice-input/pkg/audio"
)

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestResampleIdentityAtTargetRate(t *testing.T) {
	t.Parallel()

	in := tone(440, 8000, 16000, 16000)
	got, rate, err := audio.Resample(in, 16000, 16000, 1)
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}
	if rate != 16000 {
		t.Errorf("Resample() rate = %d, want 16000", rate)
	}
	if len(got) != len(in) {
		t.Fatalf("Resample() changed length: got %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("Resample() changed sample %d: got %d, want %d", i, got[i], in[i])
		}
	}
}

func TestResampleOutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		frames          int
		srcRate, dstRate int
		wantFrames      int
	}{
		{name: "48k to 16k", frames: 48000, srcRate: 48000, dstRate: 16000, wantFrames: 16000},
		{name: "48k to 16k odd", frames: 1000, srcRate: 48000, dstRate: 16000, wantFrames: 334},
		{name: "44.1k to 16k", frames: 44100, srcRate: 44100, dstRate: 16000, wantFrames: 16000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := tone(440, 8000, tt.srcRate, tt.frames)
			got, rate, err := audio.Resample(in, tt.srcRate, tt.dstRate, 1)
			if err != nil {
				t.Fatalf("Resample() error: %v", err)
			}
			if rate != tt.dstRate {
				t.Errorf("Resample() rate = %d, want %d", rate, tt.dstRate)
			}
			if len(got) != tt.wantFrames {
				t.Errorf("Resample() = %d frames, want %d", len(got), tt.wantFrames)
			}
		})
	}
}

func TestResampleShortInputPassthrough(t *testing.T) {
	t.Parallel()

	in := tone(440, 8000, 48000, 32)
	got, rate, err := audio.Resample(in, 48000, 16000, 1)
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}
	if rate != 48000 {
		t.Errorf("Resample() rate = %d, want source rate 48000", rate)
	}
	if len(got) != len(in) {
		t.Errorf("Resample() = %d samples, want %d unchanged", len(got), len(in))
	}
}

func TestResampleInvalidFormat(t *testing.T) {
	t.Parallel()

	_, _, err := audio.Resample(nil, 0, 16000, 1)
	if !errors.Is(err, audio.ErrResample) {
		t.Errorf("Resample() error = %v, want ErrResample", err)
	}
	_, _, err = audio.Resample(nil, 48000, 16000, 0)
	if !errors.Is(err, audio.ErrResample) {
		t.Errorf("Resample() error = %v, want ErrResample", err)
	}
}

func TestResamplePreservesToneEnergy(t *testing.T) {
	t.Parallel()

	in := tone(440, 8000, 48000, 4800)
	got, _, err := audio.Resample(in, 48000, 16000, 1)
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}

	inRMS, gotRMS := rms(in), rms(got)
	if ratio := gotRMS / inRMS; ratio < 0.85 || ratio > 1.15 {
		t.Errorf("Resample() RMS ratio = %.3f (in %.1f, out %.1f), want within 15%%", ratio, inRMS, gotRMS)
	}
}

func TestResamplePreservesDC(t *testing.T) {
	t.Parallel()

	in := make([]int16, 4800)
	for i := range in {
		in[i] = 1000
	}
	got, _, err := audio.Resample(in, 48000, 16000, 1)
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}
	for i, s := range got {
		if s < 998 || s > 1002 {
			t.Fatalf("sample %d = %d, want about 1000", i, s)
		}
	}
}
