package whisper

import (
	"context"
	"log/slog"

	"github.com/speechkit/asr-service/pkg/audio"
)

// MockTranscriber is the degraded-mode fallback used when no whisper
// backend is reachable. It returns empty text without blocking so request
// handling keeps working; HealthCheck always reports unhealthy so /status
// surfaces the degradation.
type MockTranscriber struct{}

// NewMockTranscriber creates a stateless mock instance.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// TranscribeChunk returns empty text and never errors.
func (m *MockTranscriber) TranscribeChunk(_ context.Context, buf *audio.Buffer, _ string) (string, error) {
	slog.Warn("mock transcriber invoked, whisper backend unavailable",
		"chunk_seconds", buf.Duration())
	return "", nil
}

// HealthCheck always returns false: the mock represents a degraded state.
func (m *MockTranscriber) HealthCheck(context.Context) (bool, error) {
	return false, nil
}

// Name returns the identifier of this transcriber implementation.
func (m *MockTranscriber) Name() string {
	return "mock-degraded"
}
