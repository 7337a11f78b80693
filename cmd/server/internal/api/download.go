package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// allowedExtensions 可接受的音频文件后缀
var allowedExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
}

// downloadTimeout bounds remote audio fetches.
const downloadTimeout = 30 * time.Second

// 某些音频托管站点对非浏览器 UA 返回 403
const downloadUserAgent = "curl/7.88.1"

// fetchAudio downloads a remote audio file into a temp file and returns
// its path. The caller owns the file and must remove it. Only http/https
// URLs with whitelisted extensions are accepted and the body is capped at
// maxBytes.
func fetchAudio(ctx context.Context, rawURL string, maxBytes int64) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid audio_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported audio extension: %q (want .wav or .mp3)", ext)
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download audio: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "asr-download-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	written, err := io.Copy(tmp, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("save downloaded audio: %w", err)
	}
	if written > maxBytes {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("downloaded audio exceeds %d bytes", maxBytes)
	}
	return tmp.Name(), nil
}
