package encode

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/kazuhideoki/voice-input/pkg/audio"
)

// flacBlockSize is the fixed number of frames per FLAC frame.
const flacBlockSize = 4096

// EncodeFLAC serialises the clip as a FLAC stream with verbatim
// subframes. Verbatim prediction trades compression for a simple,
// lossless encode; FLAC's framing still beats raw PCM on upload size
// for trimmed speech. Only mono and stereo clips are supported.
func EncodeFLAC(clip audio.Clip) ([]byte, error) {
	var channelLayout frame.Channels
	switch clip.Channels {
	case 1:
		channelLayout = frame.ChannelsMono
	case 2:
		channelLayout = frame.ChannelsLR
	default:
		return nil, fmt.Errorf("encode: flac: unsupported channel count %d", clip.Channels)
	}
	if clip.SampleRate <= 0 {
		return nil, fmt.Errorf("encode: flac: invalid sample rate %d", clip.SampleRate)
	}

	frames := clip.Frames()
	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(clip.SampleRate),
		NChannels:     uint8(clip.Channels),
		BitsPerSample: 16,
		NSamples:      uint64(frames),
	}

	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info)
	if err != nil {
		return nil, fmt.Errorf("encode: flac: new encoder: %w", err)
	}

	for off := 0; off < frames; off += flacBlockSize {
		n := flacBlockSize
		if frames-off < n {
			n = frames - off
		}

		subframes := make([]*frame.Subframe, clip.Channels)
		for ch := range clip.Channels {
			samples := make([]int32, n)
			for i := range n {
				samples[i] = int32(clip.Samples[(off+i)*clip.Channels+ch])
			}
			subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}

		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(clip.SampleRate),
				Channels:          channelLayout,
				BitsPerSample:     16,
				Num:               uint64(off / flacBlockSize),
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(f); err != nil {
			enc.Close()
			return nil, fmt.Errorf("encode: flac: write frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode: flac: close: %w", err)
	}
	return buf.Bytes(), nil
}
