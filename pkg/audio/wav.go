package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// DecodeWAV parses a RIFF/WAVE stream and returns per-channel float32
// samples plus the source sample rate. PCM 16-bit and IEEE float 32-bit
// formats are supported, which covers everything ffmpeg and common
// recorders emit.
func DecodeWAV(r io.Reader) ([][]float32, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		audioFormat   uint16
		numChannels   uint16
		sampleRate    uint32
		bitsPerSample uint16
		pcm           []byte
		haveFmt       bool
	)

	// 遍历 chunk, 跳过 fmt 和 data 以外的块
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("malformed fmt chunk (%d bytes)", size)
			}
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			numChannels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}
		// chunks are word-aligned
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt {
		return nil, 0, fmt.Errorf("missing fmt chunk")
	}
	if pcm == nil {
		return nil, 0, fmt.Errorf("missing data chunk")
	}
	if numChannels == 0 || sampleRate == 0 {
		return nil, 0, fmt.Errorf("invalid wav header: channels=%d rate=%d", numChannels, sampleRate)
	}

	ch := int(numChannels)
	var frames int
	channels := make([][]float32, ch)

	switch {
	case audioFormat == 1 && bitsPerSample == 16:
		frames = len(pcm) / (2 * ch)
		for c := 0; c < ch; c++ {
			channels[c] = make([]float32, frames)
		}
		for i := 0; i < frames; i++ {
			for c := 0; c < ch; c++ {
				v := int16(binary.LittleEndian.Uint16(pcm[(i*ch+c)*2:]))
				channels[c][i] = float32(v) / 32768.0
			}
		}
	case audioFormat == 3 && bitsPerSample == 32:
		frames = len(pcm) / (4 * ch)
		for c := 0; c < ch; c++ {
			channels[c] = make([]float32, frames)
		}
		for i := 0; i < frames; i++ {
			for c := 0; c < ch; c++ {
				bits := binary.LittleEndian.Uint32(pcm[(i*ch+c)*4:])
				channels[c][i] = math.Float32frombits(bits)
			}
		}
	default:
		return nil, 0, fmt.Errorf("unsupported wav encoding: format=%d bits=%d", audioFormat, bitsPerSample)
	}

	return channels, int(sampleRate), nil
}

// EncodeWAV writes the buffer as a mono 16-bit PCM WAV stream.
func EncodeWAV(w io.Writer, b *Buffer) error {
	dataSize := len(b.Samples) * 2
	if err := writeWavHeader(w, b.SampleRate, dataSize); err != nil {
		return err
	}
	pcm := make([]byte, dataSize)
	for i, s := range b.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(s*32767)))
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}

// EncodeWAVBytes is a convenience wrapper for callers that need the
// encoded stream in memory (multipart uploads).
func EncodeWAVBytes(b *Buffer) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(44 + len(b.Samples)*2)
	if err := EncodeWAV(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeWavHeader 写入标准 44 字节 WAV 头 (mono, 16-bit PCM)。
func writeWavHeader(w io.Writer, sampleRate, dataSize int) error {
	var h bytes.Buffer
	h.WriteString("RIFF")
	binary.Write(&h, binary.LittleEndian, uint32(36+dataSize))
	h.WriteString("WAVE")
	h.WriteString("fmt ")
	binary.Write(&h, binary.LittleEndian, uint32(16))
	binary.Write(&h, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(&h, binary.LittleEndian, uint16(1))  // mono
	binary.Write(&h, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&h, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&h, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&h, binary.LittleEndian, uint16(16))           // bits per sample
	h.WriteString("data")
	binary.Write(&h, binary.LittleEndian, uint32(dataSize))
	if _, err := w.Write(h.Bytes()); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}
