package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/language"

	"github.com/speechkit/asr-service/cmd/server/internal/archive"
	"github.com/speechkit/asr-service/cmd/server/internal/audit"
	"github.com/speechkit/asr-service/cmd/server/internal/config"
	"github.com/speechkit/asr-service/cmd/server/internal/metrics"
	"github.com/speechkit/asr-service/cmd/server/internal/middleware"
	"github.com/speechkit/asr-service/pkg/asr"
	"github.com/speechkit/asr-service/pkg/audio"
)

// TranscribeHandler wires the transcription engine to the HTTP surface.
type TranscribeHandler struct {
	engine   *asr.Engine
	cfg      *config.Config
	sem      *semaphore.Weighted
	auditLog audit.Logger
	archiver *archive.Client
}

// NewTranscribeHandler builds the handler. archiver may be nil.
func NewTranscribeHandler(engine *asr.Engine, cfg *config.Config, auditLog audit.Logger, archiver *archive.Client) *TranscribeHandler {
	return &TranscribeHandler{
		engine:   engine,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(cfg.ASR.MaxConcurrent),
		auditLog: auditLog,
		archiver: archiver,
	}
}

type transcribeResponse struct {
	Language string        `json:"language"`
	Segments []asr.Segment `json:"segments"`
}

// Handle 处理 POST /transcribe
// multipart form: file (上传音频) 或 audio_url (远程音频), 可选 language 与
// chunk_length。二者都给时以上传文件为准。
func (h *TranscribeHandler) Handle(c *gin.Context) {
	started := time.Now()

	// 并发上限: 满载直接拒绝而不是排队, 让客户端重试
	if !h.sem.TryAcquire(1) {
		metrics.RecordRequest("rejected", time.Since(started).Seconds())
		errorResponse(c, http.StatusTooManyRequests, "too many concurrent transcriptions")
		return
	}
	defer h.sem.Release(1)

	lang, chunkSeconds, err := h.parseParams(c)
	if err != nil {
		metrics.RecordRequest("rejected", time.Since(started).Seconds())
		badRequestResponse(c, err.Error())
		return
	}

	audioPath, cleanup, err := h.obtainAudio(c)
	if err != nil {
		metrics.RecordRequest("rejected", time.Since(started).Seconds())
		badRequestResponse(c, err.Error())
		return
	}
	defer cleanup()

	rid := middleware.RequestID(c)
	clientID := middleware.ClientID(c)
	h.auditLog.Log(audit.ActionASRRequest, clientID, c.ClientIP(), rid,
		map[string]interface{}{"language": lang, "chunk_seconds": chunkSeconds})

	buf, sizeMB, err := h.loadAudio(c, audioPath)
	if err != nil {
		metrics.RecordRequest("error", time.Since(started).Seconds())
		h.auditLog.Log(audit.ActionASRFailed, clientID, c.ClientIP(), rid,
			map[string]interface{}{"error": err.Error()})
		badRequestResponse(c, err.Error())
		return
	}

	segments, err := h.engine.Transcribe(c.Request.Context(), buf, audioPath, lang, chunkSeconds)
	if err != nil {
		metrics.RecordRequest("error", time.Since(started).Seconds())
		h.auditLog.Log(audit.ActionASRFailed, clientID, c.ClientIP(), rid,
			map[string]interface{}{"error": err.Error()})
		errorResponse(c, http.StatusInternalServerError, "transcription failed")
		return
	}

	elapsed := time.Since(started)
	metrics.RecordRequest("success", elapsed.Seconds())
	metrics.RecordAudio(sizeMB, len(segments))
	h.auditLog.Log(audit.ActionASRCompleted, clientID, c.ClientIP(), rid,
		map[string]interface{}{
			"segments":    len(segments),
			"duration_ms": elapsed.Milliseconds(),
			"audio_mb":    sizeMB,
		})

	resp := transcribeResponse{Language: lang, Segments: segments}
	h.archiver.Store(c.Request.Context(), rid, resp)
	successResponse(c, resp)
}

// parseParams validates language and chunk_length form values.
func (h *TranscribeHandler) parseParams(c *gin.Context) (string, float64, error) {
	lang := c.PostForm("language")
	if lang == "" {
		lang = h.cfg.ASR.DefaultLanguage
	}
	if _, err := language.Parse(lang); err != nil {
		return "", 0, fmt.Errorf("invalid language code %q", lang)
	}

	chunkSeconds := h.cfg.ASR.ChunkSeconds
	if v := c.PostForm("chunk_length"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", 0, fmt.Errorf("invalid chunk_length %q", v)
		}
		chunkSeconds = parsed
	}
	if chunkSeconds <= 0 || chunkSeconds > 300 {
		return "", 0, fmt.Errorf("chunk_length must be in (0, 300], got %v", chunkSeconds)
	}
	return lang, chunkSeconds, nil
}

// obtainAudio resolves the request's audio into a local file, either from
// the uploaded "file" part or by downloading "audio_url". The returned
// cleanup removes every temp file created along the way.
func (h *TranscribeHandler) obtainAudio(c *gin.Context) (string, func(), error) {
	maxBytes := int64(h.cfg.ASR.MaxAudioMB) << 20

	if fileHeader, err := c.FormFile("file"); err == nil {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedExtensions[ext] {
			return "", nil, fmt.Errorf("unsupported audio extension: %q (want .wav or .mp3)", ext)
		}
		if fileHeader.Size > maxBytes {
			return "", nil, fmt.Errorf("audio exceeds %d MB limit", h.cfg.ASR.MaxAudioMB)
		}

		src, err := fileHeader.Open()
		if err != nil {
			return "", nil, fmt.Errorf("open upload: %w", err)
		}
		defer src.Close()

		tmp, err := os.CreateTemp("", "asr-upload-*"+ext)
		if err != nil {
			return "", nil, fmt.Errorf("create temp file: %w", err)
		}
		if _, err := io.Copy(tmp, src); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", nil, fmt.Errorf("save upload: %w", err)
		}
		tmp.Close()
		name := tmp.Name()
		return name, func() { os.Remove(name) }, nil
	}

	if rawURL := c.PostForm("audio_url"); rawURL != "" {
		h.auditLog.Log(audit.ActionDownload, middleware.ClientID(c), c.ClientIP(),
			middleware.RequestID(c), map[string]interface{}{"url": rawURL})
		name, err := fetchAudio(c.Request.Context(), rawURL, maxBytes)
		if err != nil {
			return "", nil, err
		}
		return name, func() { os.Remove(name) }, nil
	}

	return "", nil, fmt.Errorf("either file upload or audio_url is required")
}

// loadAudio decodes the file into the normalized engine buffer, going
// through ffmpeg for non-WAV inputs. Returns the buffer and the source
// size in MB for metrics.
func (h *TranscribeHandler) loadAudio(c *gin.Context, audioPath string) (*audio.Buffer, float64, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, 0, fmt.Errorf("stat audio: %w", err)
	}
	sizeMB := float64(info.Size()) / (1 << 20)

	wavPath := audioPath
	if strings.ToLower(filepath.Ext(audioPath)) != ".wav" {
		converted, err := audio.ConvertToWAV(c.Request.Context(), audioPath)
		if err != nil {
			return nil, sizeMB, fmt.Errorf("convert audio: %w", err)
		}
		defer os.Remove(converted)
		wavPath = converted
	}

	f, err := os.Open(wavPath)
	if err != nil {
		return nil, sizeMB, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	channels, rate, err := audio.DecodeWAV(f)
	if err != nil {
		return nil, sizeMB, fmt.Errorf("decode audio: %w", err)
	}
	return audio.Normalize(channels, rate), sizeMB, nil
}
