package whisper

import (
	"math"
	"testing"

	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/audio/encode"
)

func TestDecodeWAVMono(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767, -32768}
	b := encode.EncodeWAV(audio.Clip{Samples: samples, SampleRate: 16000, Channels: 1})

	got, err := decodeWAV(b)
	if err != nil {
		t.Fatalf("decodeWAV() error: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("decodeWAV() = %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		want := float32(s) / 32768
		if math.Abs(float64(got[i]-want)) > 1e-4 {
			t.Errorf("sample %d = %f, want %f", i, got[i], want)
		}
	}
}

func TestDecodeWAVDownmixesStereo(t *testing.T) {
	t.Parallel()

	samples := []int16{1000, 3000, -2000, -4000}
	b := encode.EncodeWAV(audio.Clip{Samples: samples, SampleRate: 16000, Channels: 2})

	got, err := decodeWAV(b)
	if err != nil {
		t.Fatalf("decodeWAV() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decodeWAV() = %d frames, want 2", len(got))
	}
	wants := []float32{2000.0 / 32768, -3000.0 / 32768}
	for i, want := range wants {
		if math.Abs(float64(got[i]-want)) > 1e-4 {
			t.Errorf("frame %d = %f, want %f", i, got[i], want)
		}
	}
}

func TestDecodeFLACMono(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 8192, -8192, 16384}
	b, err := encode.EncodeFLAC(audio.Clip{Samples: samples, SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("EncodeFLAC() error: %v", err)
	}

	got, err := decodeFLAC(b)
	if err != nil {
		t.Fatalf("decodeFLAC() error: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("decodeFLAC() = %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		want := float32(s) / 32768
		if math.Abs(float64(got[i]-want)) > 1e-4 {
			t.Errorf("sample %d = %f, want %f", i, got[i], want)
		}
	}
}

func TestDecodeWAVGarbage(t *testing.T) {
	t.Parallel()

	if _, err := decodeWAV([]byte("not a wav file")); err == nil {
		t.Fatal("decodeWAV() on garbage succeeded, want error")
	}
}
