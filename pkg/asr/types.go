// Package asr implements the transcription pipeline: chunking, speaker
// diarization reconciliation, label normalization and segment merging.
// The engine is transport-agnostic; HTTP, CLI and MCP surfaces all drive
// the same Engine.
package asr

import (
	"context"
	"math"

	"github.com/speechkit/asr-service/pkg/audio"
)

// DefaultSpeaker is assigned when no diarization information covers a
// segment (fallback path with no turns, or zero overlap during alignment).
const DefaultSpeaker = "SPEAKER0"

// Segment is one attributed span of transcribed speech. Times are seconds
// from the start of the audio, rounded to two decimals.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
}

// SpeakerTurn is a raw diarization result: who spoke when, with the
// diarizer's opaque speaker id.
type SpeakerTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Transcriber converts a chunk of normalized audio into text.
// Implementations live in pkg/whisper.
type Transcriber interface {
	TranscribeChunk(ctx context.Context, buf *audio.Buffer, language string) (string, error)
}

// Diarizer segments an audio file by speaker. Implementations live in
// pkg/diarize. Returned turns may overlap and carry arbitrary speaker ids.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]SpeakerTurn, error)
}

// round2 统一时间戳精度, 避免浮点尾数泄漏到 API 响应里
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
