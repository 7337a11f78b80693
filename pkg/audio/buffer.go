// Package audio provides the normalized PCM buffer used by the transcription
// engine, plus WAV decode/encode for moving audio across process and HTTP
// boundaries. All engine-facing audio is mono float32 at 16 kHz.
package audio

// TargetSampleRate is the fixed sample rate the engine operates on.
const TargetSampleRate = 16000

// Buffer holds mono PCM samples at a known sample rate.
// Buffers are never mutated in place; Slice returns sub-views over the
// same backing array and callers must treat samples as read-only.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Slice returns a read-only view of samples [start, end).
// Indexes are clamped to the buffer bounds.
func (b *Buffer) Slice(start, end int) *Buffer {
	if start < 0 {
		start = 0
	}
	if end > len(b.Samples) {
		end = len(b.Samples)
	}
	if start >= end {
		return &Buffer{Samples: nil, SampleRate: b.SampleRate}
	}
	return &Buffer{Samples: b.Samples[start:end:end], SampleRate: b.SampleRate}
}

// Normalize converts decoded multi-channel audio at an arbitrary sample rate
// into the mono/16kHz buffer the engine expects. Channels are averaged
// (downmix), then resampled when needed.
func Normalize(channels [][]float32, sampleRate int) *Buffer {
	mono := Downmix(channels)
	if sampleRate != TargetSampleRate {
		mono = Resample(mono, sampleRate, TargetSampleRate)
	}
	return &Buffer{Samples: mono, SampleRate: TargetSampleRate}
}

// Downmix averages all channels into one. A single-channel input is
// returned as-is (no copy).
func Downmix(channels [][]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}
	if len(channels) == 1 {
		return channels[0]
	}
	n := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	mono := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for _, ch := range channels {
			sum += ch[i]
		}
		mono[i] = sum / float32(len(channels))
	}
	return mono
}

// Resample converts samples from one sample rate to another using linear
// interpolation. Good enough for speech models that were themselves trained
// on band-limited 16kHz input.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || len(samples) == 0 {
		return samples
	}
	ratio := float64(from) / float64(to)
	outLen := int(float64(len(samples)) / ratio)
	if outLen == 0 {
		outLen = 1
	}
	out := make([]float32, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}
