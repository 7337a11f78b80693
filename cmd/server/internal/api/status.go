package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/speechkit/asr-service/cmd/server/internal/archive"
	"github.com/speechkit/asr-service/cmd/server/internal/config"
	"github.com/speechkit/asr-service/pkg/diarize"
	"github.com/speechkit/asr-service/pkg/whisper"
)

// HandleStatus 返回各后端可用性
// GET /status
func HandleStatus(cfg *config.Config, transcriber whisper.Transcriber, diarizer diarize.Diarizer, archiver *archive.Client, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		healthy, err := transcriber.HealthCheck(c.Request.Context())
		transcriberStatus := gin.H{
			"name":    transcriber.Name(),
			"healthy": healthy,
		}
		if err != nil {
			transcriberStatus["error"] = err.Error()
		}

		diarization := gin.H{"mode": cfg.Diarization.Mode}
		if diarizer != nil {
			diarization["backend"] = diarizer.Name()
		}

		successResponse(c, gin.H{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(startTime).Seconds()),
			"transcriber":    transcriberStatus,
			"diarization":    diarization,
			"archive":        archiver.Describe(),
			"defaults": gin.H{
				"language":      cfg.ASR.DefaultLanguage,
				"chunk_seconds": cfg.ASR.ChunkSeconds,
				"max_audio_mb":  cfg.ASR.MaxAudioMB,
			},
		})
	}
}
