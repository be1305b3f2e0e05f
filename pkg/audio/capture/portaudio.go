package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/kazuhideoki/voice-input/pkg/audio"
)

// framesPerBuffer is the PortAudio callback granularity.
const framesPerBuffer = 1024

// Compile-time assertion that PortAudioBackend satisfies Backend.
var _ Backend = (*PortAudioBackend)(nil)

// PortAudioBackend captures from a system input device via PortAudio.
// Samples arrive on the device callback as float32 and are converted to
// int16 into a pre-sized buffer.
type PortAudioBackend struct {
	cfg Config

	mu         sync.Mutex
	stream     *portaudio.Stream
	buf        []int16
	sampleRate int
	channels   int
	recording  bool
}

// NewPortAudio returns a backend using the given configuration.
func NewPortAudio(cfg Config) *PortAudioBackend {
	return &PortAudioBackend{cfg: cfg.withDefaults()}
}

// StartRecording implements [Backend].
func (b *PortAudioBackend) StartRecording() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.recording {
		return ErrAlreadyRecording
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("capture: initialize portaudio: %w", err)
	}

	dev, err := pickInputDevice(b.cfg.DevicePriority)
	if err != nil {
		portaudio.Terminate()
		return err
	}

	channels := dev.MaxInputChannels
	if channels > 2 {
		channels = 2
	}
	sampleRate := int(dev.DefaultSampleRate)

	params := portaudio.HighLatencyParameters(dev, nil)
	params.Input.Channels = channels
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = framesPerBuffer

	// Pre-size for the whole capture so the callback rarely reallocates.
	capFrames := sampleRate * int(b.cfg.MaxDuration/time.Second+1)
	b.buf = make([]int16, 0, capFrames*channels)

	stream, err := portaudio.OpenStream(params, b.onFrames)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("capture: open input stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("capture: start input stream on %q: %w", dev.Name, err)
	}

	b.stream = stream
	b.sampleRate = sampleRate
	b.channels = channels
	b.recording = true
	slog.Info("capture started",
		"device", dev.Name,
		"sample_rate", sampleRate,
		"channels", channels)
	return nil
}

// onFrames is the PortAudio input callback.
func (b *PortAudioBackend) onFrames(in []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.recording {
		return
	}
	for _, s := range in {
		b.buf = append(b.buf, floatToInt16(s))
	}
}

// StopRecording implements [Backend].
func (b *PortAudioBackend) StopRecording() (audio.EncodedAudio, error) {
	b.mu.Lock()
	if !b.recording {
		b.mu.Unlock()
		return audio.EncodedAudio{}, ErrNotRecording
	}
	stream := b.stream
	b.mu.Unlock()

	// Stop outside the lock: PortAudio waits for in-flight callbacks,
	// which need the lock to drain into the buffer.
	stopErr := stream.Stop()

	b.mu.Lock()
	b.recording = false
	b.stream = nil
	samples := b.buf
	b.buf = nil
	sampleRate := b.sampleRate
	channels := b.channels
	b.mu.Unlock()

	if err := stream.Close(); err != nil {
		slog.Warn("closing input stream", "error", err)
	}
	if err := portaudio.Terminate(); err != nil {
		slog.Warn("terminating portaudio", "error", err)
	}
	if stopErr != nil {
		return audio.EncodedAudio{}, fmt.Errorf("capture: stop input stream: %w", stopErr)
	}

	slog.Debug("capture stopped", "samples", len(samples), "sample_rate", sampleRate, "channels", channels)
	return Finalize(samples, sampleRate, channels, b.cfg.TargetSampleRate)
}

// IsRecording implements [Backend].
func (b *PortAudioBackend) IsRecording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// pickInputDevice returns the first priority device that exists and has
// input channels, falling back to the system default input device.
func pickInputDevice(priority []string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("capture: list devices: %w", err)
	}
	for _, want := range priority {
		for _, dev := range devices {
			if dev.Name == want && dev.MaxInputChannels > 0 {
				return dev, nil
			}
		}
		slog.Debug("priority input device not available", "device", want)
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil || dev.MaxInputChannels < 1 {
		return nil, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
	}
	return dev, nil
}

// ListInputDevices returns the names of all input-capable devices. It
// initialises and terminates PortAudio around the enumeration.
func ListInputDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("capture: initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("capture: list devices: %w", err)
	}
	var names []string
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			names = append(names, dev.Name)
		}
	}
	return names, nil
}

func floatToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
