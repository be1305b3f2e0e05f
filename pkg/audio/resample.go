package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrResample is wrapped by all Resample failures.
var ErrResample = errors.New("audio: resample")

const (
	// sincTaps is the half-width of the interpolation kernel in source
	// samples.
	sincTaps = 16
	// minResampleFrames is the shortest input worth resampling. Anything
	// shorter is passed through at its original rate.
	minResampleFrames = 64
)

// Resample converts interleaved PCM from srcRate to dstRate using a
// Hann-windowed sinc kernel. It returns the converted samples and the
// rate they are actually at: input already at dstRate, or too short to
// filter meaningfully, is returned unchanged at srcRate.
func Resample(samples []int16, srcRate, dstRate, channels int) ([]int16, int, error) {
	if srcRate <= 0 || dstRate <= 0 || channels <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid format %d Hz -> %d Hz, %d channels", ErrResample, srcRate, dstRate, channels)
	}
	if srcRate == dstRate {
		return samples, srcRate, nil
	}
	frames := len(samples) / channels
	if frames < minResampleFrames {
		return samples, srcRate, nil
	}

	outFrames := int((int64(frames)*int64(dstRate) + int64(srcRate) - 1) / int64(srcRate))
	out := make([]int16, outFrames*channels)

	step := float64(srcRate) / float64(dstRate)
	// When downsampling, lower the kernel cutoff to the destination
	// Nyquist so aliasing energy is filtered out.
	cutoff := 1.0
	if dstRate < srcRate {
		cutoff = float64(dstRate) / float64(srcRate)
	}

	for i := range outFrames {
		pos := float64(i) * step
		center := int(math.Floor(pos))
		lo := center - sincTaps + 1
		hi := center + sincTaps
		if lo < 0 {
			lo = 0
		}
		if hi >= frames {
			hi = frames - 1
		}

		for ch := range channels {
			var acc, norm float64
			for j := lo; j <= hi; j++ {
				w := sincHann(pos-float64(j), cutoff)
				acc += w * float64(samples[j*channels+ch])
				norm += w
			}
			if norm != 0 {
				acc /= norm
			}
			out[i*channels+ch] = clampInt16(int32(math.Round(acc)))
		}
	}
	return out, dstRate, nil
}

// sincHann is a sinc kernel at cutoff, shaped by a Hann window over
// [-sincTaps, sincTaps].
func sincHann(t, cutoff float64) float64 {
	u := t / sincTaps
	if u <= -1 || u >= 1 {
		return 0
	}
	window := 0.5 * (1 + math.Cos(math.Pi*u))

	x := math.Pi * t * cutoff
	if math.Abs(x) < 1e-9 {
		return cutoff * window
	}
	return cutoff * math.Sin(x) / x * window
}
