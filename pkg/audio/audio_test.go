package audio

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferDuration(t *testing.T) {
	b := &Buffer{Samples: make([]float32, 32000), SampleRate: 16000}
	assert.Equal(t, 2.0, b.Duration())

	empty := &Buffer{SampleRate: 16000}
	assert.Equal(t, 0.0, empty.Duration())
}

func TestBufferSliceClamps(t *testing.T) {
	b := &Buffer{Samples: []float32{0, 1, 2, 3, 4}, SampleRate: 16000}

	s := b.Slice(1, 3)
	assert.Equal(t, []float32{1, 2}, s.Samples)
	assert.Equal(t, 16000, s.SampleRate)

	s = b.Slice(-5, 100)
	assert.Len(t, s.Samples, 5)

	s = b.Slice(4, 2)
	assert.Empty(t, s.Samples)
}

func TestDownmix(t *testing.T) {
	left := []float32{1, 0, -1}
	right := []float32{0, 0, 1}
	mono := Downmix([][]float32{left, right})
	assert.Equal(t, []float32{0.5, 0, 0}, mono)

	// 单声道直接返回
	same := Downmix([][]float32{left})
	assert.Equal(t, left, same)
}

func TestResampleHalvesLength(t *testing.T) {
	in := make([]float32, 32000)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) / 50))
	}
	out := Resample(in, 32000, 16000)
	assert.Equal(t, 16000, len(out))

	// identity when rates match
	assert.Equal(t, in, Resample(in, 16000, 16000))
}

func TestNormalizeStereo48k(t *testing.T) {
	left := make([]float32, 48000)
	right := make([]float32, 48000)
	b := Normalize([][]float32{left, right}, 48000)
	assert.Equal(t, TargetSampleRate, b.SampleRate)
	assert.Equal(t, 16000, len(b.Samples))
	assert.InDelta(t, 1.0, b.Duration(), 0.001)
}

func TestWAVRoundTrip(t *testing.T) {
	src := &Buffer{SampleRate: 16000, Samples: make([]float32, 1600)}
	for i := range src.Samples {
		src.Samples[i] = float32(math.Sin(float64(i) * 2 * math.Pi * 440 / 16000))
	}

	data, err := EncodeWAVBytes(src)
	require.NoError(t, err)

	channels, rate, err := DecodeWAV(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	require.Len(t, channels, 1)
	require.Len(t, channels[0], len(src.Samples))
	for i := range src.Samples {
		assert.InDelta(t, src.Samples[i], channels[0][i], 0.001)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, _, err := DecodeWAV(bytes.NewReader([]byte("definitely not audio")))
	assert.Error(t, err)

	_, _, err = DecodeWAV(bytes.NewReader(nil))
	assert.Error(t, err)
}
