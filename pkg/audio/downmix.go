package audio

// DownmixMono averages interleaved multi-channel PCM into a single
// channel. Mono input is returned unchanged. A trailing partial frame is
// averaged over the samples it actually contains rather than dropped.
func DownmixMono(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	rem := len(samples) % channels
	out := make([]int16, 0, frames+1)

	for i := range frames {
		var sum int32
		for ch := range channels {
			sum += int32(samples[i*channels+ch])
		}
		out = append(out, clampInt16(sum/int32(channels)))
	}
	if rem > 0 {
		var sum int32
		for _, s := range samples[frames*channels:] {
			sum += int32(s)
		}
		out = append(out, clampInt16(sum/int32(rem)))
	}
	return out
}
