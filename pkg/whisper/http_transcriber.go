package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/speechkit/asr-service/pkg/audio"
)

const defaultModel = "ggml-base"

// HTTPTranscriber speaks the go-whisper REST API
// (ghcr.io/mutablelogic/go-whisper). Chunks are encoded to WAV in memory
// and sent as multipart/form-data; no temp files are written.
type HTTPTranscriber struct {
	apiURL     string
	opts       Options
	httpClient *http.Client
}

// NewHTTPTranscriber creates a transcriber against the given base URL,
// e.g. "http://whisper:80". The HTTP client timeout is sized for chunks of
// a few minutes: transcription time roughly tracks audio duration.
func NewHTTPTranscriber(apiURL string, opts Options) *HTTPTranscriber {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	return &HTTPTranscriber{
		apiURL: apiURL,
		opts:   opts,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// TranscribeChunk posts the chunk to /api/whisper/transcribe and returns
// the recognized text.
//
// API reference: https://github.com/mutablelogic/go-whisper/blob/main/doc/API.md#transcription
func (t *HTTPTranscriber) TranscribeChunk(ctx context.Context, buf *audio.Buffer, language string) (string, error) {
	wav, err := audio.EncodeWAVBytes(buf)
	if err != nil {
		return "", fmt.Errorf("encode chunk: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio", "chunk.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}

	if err := writer.WriteField("model", t.opts.Model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("write response_format field: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", fmt.Errorf("write language field: %w", err)
		}
	}
	if err := writer.WriteField("temperature", fmt.Sprintf("%.1f", t.opts.Temperature)); err != nil {
		return "", fmt.Errorf("write temperature field: %w", err)
	}
	if t.opts.Prompt != "" {
		if err := writer.WriteField("prompt", t.opts.Prompt); err != nil {
			return "", fmt.Errorf("write prompt field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/whisper/transcribe", t.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("whisper returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse whisper response: %w", err)
	}
	return result.Text, nil
}

// HealthCheck 通过 model 端点探活 (go-whisper 标准做法)
func (t *HTTPTranscriber) HealthCheck(ctx context.Context) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/whisper/model", t.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create health check request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return true, nil
	}
	return false, fmt.Errorf("health check failed: status %d", resp.StatusCode)
}

// Name returns the identifier of this transcriber implementation.
func (t *HTTPTranscriber) Name() string {
	return "go-whisper"
}
