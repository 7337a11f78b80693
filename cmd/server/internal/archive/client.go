// Package archive ships completed transcripts to an external store over
// HTTP. Archiving is best-effort: failures are logged, never surfaced to
// the requester.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client posts transcript payloads to a configured endpoint.
type Client struct {
	url        string
	authToken  string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient returns nil when url is empty, which disables archiving.
func NewClient(url, authToken string, log *slog.Logger) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		url:        url,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Store uploads one transcript document. Safe to call on a nil client.
func (a *Client) Store(ctx context.Context, requestID string, document interface{}) {
	if a == nil {
		return
	}
	body, err := json.Marshal(document)
	if err != nil {
		a.log.Warn("archive marshal failed", "rid", requestID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		a.log.Warn("archive request build failed", "rid", requestID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if a.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.authToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.log.Warn("archive upload failed", "rid", requestID, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		a.log.Warn("archive upload rejected", "rid", requestID,
			"status", resp.StatusCode, "body", string(respBody))
		return
	}
	a.log.Info("transcript archived", "rid", requestID, "status", resp.StatusCode)
}

// Describe returns a short label for /status.
func (a *Client) Describe() string {
	if a == nil {
		return "disabled"
	}
	return fmt.Sprintf("http (%s)", a.url)
}
