// Package whisper provides transcription backends speaking the go-whisper
// HTTP API. Implementations satisfy the engine's Transcriber interface and
// additionally expose health checking for the /status endpoint.
package whisper

import (
	"context"

	"github.com/speechkit/asr-service/pkg/audio"
)

// Transcriber converts a chunk of normalized audio into text.
//
// Implementation notes:
//   - Must respect context timeout and cancellation
//   - Should wrap external errors with context: fmt.Errorf("transcribe: %w", err)
//   - Silence should return "" with nil error, not an error
type Transcriber interface {
	// TranscribeChunk sends one mono/16kHz chunk to the backend and
	// returns the recognized text. language is an ISO 639-1 code; empty
	// means backend auto-detection.
	TranscribeChunk(ctx context.Context, buf *audio.Buffer, language string) (string, error)

	// HealthCheck verifies that the transcription service is operational.
	// Should be lightweight (< 10 seconds).
	HealthCheck(ctx context.Context) (bool, error)

	// Name returns the implementation identifier used in logs and the
	// /status response (e.g. "go-whisper", "mock-degraded").
	Name() string
}

// Options carries optional backend parameters. All fields have sensible
// defaults.
type Options struct {
	// Model is the whisper model name (default "ggml-base").
	Model string

	// Temperature for decoding; 0 reduces hallucinated repetitions.
	Temperature float64

	// Prompt provides domain context to improve accuracy.
	Prompt string
}
