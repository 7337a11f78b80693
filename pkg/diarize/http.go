package diarize

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/speechkit/asr-service/pkg/asr"
)

// HTTPDiarizer calls a remote diarization service that wraps the pyannote
// pipeline behind POST {baseURL}/diarize. The audio file is uploaded as
// multipart/form-data and the response is the standard payload.
type HTTPDiarizer struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDiarizer creates a diarizer against the given base URL. The
// timeout is generous: diarization of an hour of audio takes minutes on
// CPU.
func NewHTTPDiarizer(baseURL string) *HTTPDiarizer {
	return &HTTPDiarizer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Minute,
		},
	}
}

// Diarize uploads the file and parses the response payload.
func (d *HTTPDiarizer) Diarize(ctx context.Context, audioPath string) ([]asr.SpeakerTurn, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/diarize", d.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarization request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read diarization response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarization service returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return parsePayload(respBody)
}

// Name returns the backend identifier.
func (d *HTTPDiarizer) Name() string {
	return "pyannote-http"
}
