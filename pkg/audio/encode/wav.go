package encode

import (
	"encoding/binary"

	"github.com/kazuhideoki/voice-input/pkg/audio"
)

const wavHeaderSize = 44

// WAVHeader builds a canonical 44-byte RIFF/WAVE header for PCM data of
// dataLen bytes. The header is valid for dataLen 0.
func WAVHeader(dataLen, sampleRate, channels, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	h := make([]byte, wavHeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // PCM format tag
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], uint16(bitsPerSample))
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen))
	return h
}

// EncodeWAV serialises the clip as a PCM WAV file. It cannot fail: every
// clip, including an empty one, has a valid WAV form.
func EncodeWAV(clip audio.Clip) []byte {
	data := make([]byte, len(clip.Samples)*2)
	for i, s := range clip.Samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return append(WAVHeader(len(data), clip.SampleRate, clip.Channels, 16), data...)
}
