package main

import (
	// Standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	// External dependencies
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/speechkit/asr-service/cmd/server/internal/api"
	"github.com/speechkit/asr-service/cmd/server/internal/archive"
	"github.com/speechkit/asr-service/cmd/server/internal/audit"
	"github.com/speechkit/asr-service/cmd/server/internal/config"
	"github.com/speechkit/asr-service/cmd/server/internal/middleware"
	"github.com/speechkit/asr-service/cmd/server/internal/tokens"
	"github.com/speechkit/asr-service/pkg/asr"
	"github.com/speechkit/asr-service/pkg/diarize"
	"github.com/speechkit/asr-service/pkg/logger"
	"github.com/speechkit/asr-service/pkg/whisper"
)

func main() {
	logInstance, err := logger.Init(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: os.Getenv("ENV"),
		WithSource:  !strings.EqualFold(os.Getenv("ENV"), "production"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "asr-server")

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port,
		"whisper_url", cfg.Whisper.URL, "diarization_mode", cfg.Diarization.Mode)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Token manager
	tokenManager, err := tokens.NewManager([]byte(cfg.Security.JWTSecret),
		time.Duration(cfg.Security.TokenTTLSeconds)*time.Second)
	if err != nil {
		appLogger.Error("token manager init failed", "error", err)
		os.Exit(1)
	}

	// Audit logger
	auditPath := filepath.Join(cfg.Audit.Dir, "asr_audit.jsonl")
	auditLogger := audit.NewFileLogger(auditPath)
	appLogger.Info("audit logger ready", "path", auditPath)

	// Whisper backend: fall back to degraded mode when unreachable so the
	// API surface stays up
	var transcriber whisper.Transcriber = whisper.NewHTTPTranscriber(cfg.Whisper.URL, whisper.Options{
		Model:       cfg.Whisper.Model,
		Temperature: cfg.Whisper.Temperature,
	})
	healthCtx, cancelHealth := context.WithTimeout(context.Background(), 10*time.Second)
	if healthy, herr := transcriber.HealthCheck(healthCtx); !healthy {
		appLogger.Warn("whisper backend not reachable, starting in degraded mode",
			"url", cfg.Whisper.URL, "error", herr)
		transcriber = whisper.NewMockTranscriber()
	}
	cancelHealth()

	// Diarization backend
	var diarizer diarize.Diarizer
	switch cfg.Diarization.Mode {
	case "script":
		diarizer, err = diarize.NewScriptDiarizer(diarize.ScriptConfig{
			ScriptPath: cfg.Diarization.ScriptPath,
			Device:     cfg.Diarization.Device,
			HFToken:    cfg.Diarization.HFToken,
			Offline:    cfg.Diarization.Offline,
		})
		if err != nil {
			appLogger.Error("script diarizer init failed", "error", err)
			os.Exit(1)
		}
	case "http":
		diarizer = diarize.NewHTTPDiarizer(cfg.Diarization.ServiceURL)
	}
	if diarizer != nil {
		appLogger.Info("diarization ready", "backend", diarizer.Name())
	} else {
		appLogger.Info("diarization disabled, using fixed-chunk attribution")
	}

	// Transcription engine
	engineOpts := []asr.EngineOption{
		asr.WithLogger(logInstance.With("component", "engine")),
	}
	if diarizer != nil {
		engineOpts = append(engineOpts, asr.WithDiarizer(diarizer))
	}
	if cfg.ASR.RepetitionFilter {
		engineOpts = append(engineOpts, asr.WithRepetitionFilter(asr.NewRepetitionFilter(0)))
	}
	engine := asr.NewEngine(transcriber, engineOpts...)

	// Optional transcript archiving
	archiver := archive.NewClient(cfg.Archive.URL, cfg.Archive.AuthToken,
		logInstance.With("component", "archive"))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	startTime := time.Now()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime_seconds": int64(time.Since(startTime).Seconds())})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/auth/token", api.HandleCreateToken(tokenManager, cfg.Security.ClientSecret, auditLogger))

	transcribeHandler := api.NewTranscribeHandler(engine, cfg, auditLogger, archiver)
	authed := r.Group("/", middleware.RequireToken(tokenManager, auditLogger))
	authed.POST("/transcribe", transcribeHandler.Handle)
	authed.GET("/status", api.HandleStatus(cfg, transcriber, diarizer, archiver, startTime))

	if cfg.Static.Dir != "" {
		r.Static("/static", cfg.Static.Dir)
		appLogger.Info("serving static files", "dir", cfg.Static.Dir)
	}

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	go func() {
		appLogger.Info("server starting", "addr", serverAddr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}
