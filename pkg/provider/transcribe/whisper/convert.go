package whisper

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

// decodeWAV parses a WAV container into normalised float32 mono samples,
// the input format whisper.cpp expects. Multi-channel data is averaged
// down to one channel.
func decodeWAV(b []byte) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(b))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("whisper: decode wav: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels

	out := make([]float32, frames)
	for i := range frames {
		var sum int
		for ch := range channels {
			sum += buf.Data[i*channels+ch]
		}
		out[i] = float32(sum) / float32(channels) / 32768
	}
	return out, nil
}

// decodeFLAC parses a FLAC stream into normalised float32 mono samples.
// Multi-channel data is averaged down to one channel.
func decodeFLAC(b []byte) ([]float32, error) {
	stream, err := flac.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("whisper: parse flac: %w", err)
	}

	channels := int(stream.Info.NChannels)
	if channels < 1 {
		channels = 1
	}
	scale := float32(int32(1) << (stream.Info.BitsPerSample - 1))

	out := make([]float32, 0, stream.Info.NSamples)
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: decode flac frame: %w", err)
		}
		n := int(f.Header.BlockSize)
		for i := range n {
			var sum float32
			for ch := 0; ch < channels && ch < len(f.Subframes); ch++ {
				sum += float32(f.Subframes[ch].Samples[i])
			}
			out = append(out, sum/float32(channels)/scale)
		}
	}
	return out, nil
}
