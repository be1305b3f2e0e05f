package audio

const (
	// noiseWindowMs is how much leading audio is sampled to estimate the
	// noise floor.
	noiseWindowMs = 200
	// thresholdMultiplier scales the noise floor into a silence threshold.
	thresholdMultiplier = 3.0
	// minSilenceThreshold and maxSilenceThreshold clamp the dynamic
	// threshold. The lower bound keeps dithered silence trimmable; the
	// upper bound keeps the zero crossings of loud speech from ever
	// counting as silence, which makes trimming idempotent.
	minSilenceThreshold = 120
	maxSilenceThreshold = 2000
	// minSilenceMs is the shortest run of quiet frames that is treated as
	// actual silence rather than a dip inside speech.
	minSilenceMs = 50
)

// TrimSilence strips silent padding from both ends of interleaved PCM.
// The threshold adapts to the recording's own noise floor, estimated
// from the first noiseWindowMs of audio. Only quiet runs of at least
// minSilenceMs are trimmed, and at least one frame is always retained so
// downstream stages never see a zero-length cut of a non-empty capture.
// The returned slice is a view into samples, not a copy.
func TrimSilence(samples []int16, sampleRate, channels int) []int16 {
	if sampleRate <= 0 || channels <= 0 {
		return samples
	}
	frames := len(samples) / channels
	if frames == 0 {
		return samples
	}

	threshold := silenceThreshold(samples, sampleRate, channels)
	minRun := sampleRate * minSilenceMs / 1000

	lead := 0
	for lead < frames && frameSilent(samples, lead, channels, threshold) {
		lead++
	}
	if lead < minRun {
		lead = 0
	}

	trail := 0
	for trail < frames-lead && frameSilent(samples, frames-1-trail, channels, threshold) {
		trail++
	}
	if trail < minRun {
		trail = 0
	}

	if lead+trail >= frames {
		// Everything is silence; keep a single frame.
		return samples[:channels]
	}
	return samples[lead*channels : (frames-trail)*channels]
}

// silenceThreshold estimates the noise floor as the mean absolute sample
// value over the leading noise window and scales it by
// thresholdMultiplier, clamped to [minSilenceThreshold, maxSilenceThreshold].
func silenceThreshold(samples []int16, sampleRate, channels int) int32 {
	window := sampleRate * noiseWindowMs / 1000 * channels
	if window > len(samples) {
		window = len(samples)
	}
	if window == 0 {
		return minSilenceThreshold
	}

	var sum int64
	for _, s := range samples[:window] {
		v := int64(s)
		if v < 0 {
			v = -v
		}
		sum += v
	}
	threshold := int32(float64(sum) / float64(window) * thresholdMultiplier)
	if threshold < minSilenceThreshold {
		return minSilenceThreshold
	}
	if threshold > maxSilenceThreshold {
		return maxSilenceThreshold
	}
	return threshold
}

// frameSilent reports whether every channel of frame i is below threshold.
func frameSilent(samples []int16, i, channels int, threshold int32) bool {
	for ch := range channels {
		v := int32(samples[i*channels+ch])
		if v < 0 {
			v = -v
		}
		if v >= threshold {
			return false
		}
	}
	return true
}
