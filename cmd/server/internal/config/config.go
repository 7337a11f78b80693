package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 统一配置结构
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	ASR         ASRConfig         `yaml:"asr"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Diarization DiarizationConfig `yaml:"diarization"`
	Security    SecurityConfig    `yaml:"security"`
	Log         LogConfig         `yaml:"log"`
	Audit       AuditConfig       `yaml:"audit"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Static      StaticConfig      `yaml:"static"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Env  string `yaml:"env"` // dev, staging, production
	Port string `yaml:"port"`
}

// ASRConfig 转写流水线配置
type ASRConfig struct {
	// DefaultLanguage is the ISO 639-1 code used when requests omit one.
	DefaultLanguage string `yaml:"default_language"`
	// ChunkSeconds bounds audio handed to the whisper backend per call.
	ChunkSeconds float64 `yaml:"chunk_seconds"`
	// MaxAudioMB caps uploaded/downloaded audio size.
	MaxAudioMB int `yaml:"max_audio_mb"`
	// MaxConcurrent bounds in-flight transcription requests.
	MaxConcurrent int64 `yaml:"max_concurrent"`
	// RepetitionFilter enables simhash hallucination suppression.
	RepetitionFilter bool `yaml:"repetition_filter"`
}

// WhisperConfig go-whisper 后端配置
type WhisperConfig struct {
	URL         string  `yaml:"url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// DiarizationConfig 说话人分离配置
type DiarizationConfig struct {
	// Mode selects the backend: script, http, or off.
	Mode       string `yaml:"mode"`
	ScriptPath string `yaml:"script_path"`
	ServiceURL string `yaml:"service_url"`
	Device     string `yaml:"device"`
	HFToken    string `yaml:"hf_token"`
	Offline    bool   `yaml:"offline"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLSeconds int    `yaml:"token_ttl_seconds"`
	ClientSecret    string `yaml:"client_secret"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AuditConfig 审计日志配置
type AuditConfig struct {
	Dir string `yaml:"dir"`
}

// ArchiveConfig 转写结果归档配置 (留空则关闭)
type ArchiveConfig struct {
	URL       string `yaml:"url"`
	AuthToken string `yaml:"auth_token"`
}

// StaticConfig 静态文件配置
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// GlobalConfig 全局配置实例
var GlobalConfig *Config

// LoadConfig 加载配置: 先读可选的 YAML 文件 (ASR_CONFIG_FILE), 再用环境变量覆盖
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Env: "dev", Port: "8000"},
		ASR: ASRConfig{
			DefaultLanguage: "fr",
			ChunkSeconds:    30,
			MaxAudioMB:      200,
			MaxConcurrent:   4,
		},
		Whisper:     WhisperConfig{URL: "http://localhost:8082", Model: "ggml-base"},
		Diarization: DiarizationConfig{Mode: "off", Device: "cpu"},
		Security:    SecurityConfig{TokenTTLSeconds: 3600},
		Log:         LogConfig{Level: "info"},
		Audit:       AuditConfig{Dir: "./audit_logs"},
		Static:      StaticConfig{Dir: ""},
	}

	if path := os.Getenv("ASR_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	GlobalConfig = cfg
	return cfg, nil
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(cfg *Config) {
	cfg.Server.Env = getEnv("ENV", cfg.Server.Env)
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)

	cfg.ASR.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", cfg.ASR.DefaultLanguage)
	cfg.ASR.ChunkSeconds = getEnvFloat("CHUNK_SECONDS", cfg.ASR.ChunkSeconds)
	cfg.ASR.MaxAudioMB = getEnvInt("MAX_AUDIO_MB", cfg.ASR.MaxAudioMB)
	cfg.ASR.MaxConcurrent = int64(getEnvInt("MAX_CONCURRENT", int(cfg.ASR.MaxConcurrent)))
	cfg.ASR.RepetitionFilter = getEnvBool("REPETITION_FILTER", cfg.ASR.RepetitionFilter)

	cfg.Whisper.URL = getEnv("WHISPER_URL", cfg.Whisper.URL)
	cfg.Whisper.Model = getEnv("WHISPER_MODEL", cfg.Whisper.Model)
	cfg.Whisper.Temperature = getEnvFloat("WHISPER_TEMPERATURE", cfg.Whisper.Temperature)

	cfg.Diarization.Mode = getEnv("DIARIZATION_MODE", cfg.Diarization.Mode)
	cfg.Diarization.ScriptPath = getEnv("DIARIZATION_SCRIPT", cfg.Diarization.ScriptPath)
	cfg.Diarization.ServiceURL = getEnv("DIARIZATION_URL", cfg.Diarization.ServiceURL)
	cfg.Diarization.Device = getEnv("DIARIZATION_DEVICE", cfg.Diarization.Device)
	cfg.Diarization.HFToken = getEnv("HUGGINGFACE_TOKEN", cfg.Diarization.HFToken)
	cfg.Diarization.Offline = getEnvBool("HF_OFFLINE", cfg.Diarization.Offline)

	cfg.Security.JWTSecret = getEnv("JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.TokenTTLSeconds = getEnvInt("TOKEN_TTL_SECONDS", cfg.Security.TokenTTLSeconds)
	cfg.Security.ClientSecret = getEnv("CLIENT_SECRET", cfg.Security.ClientSecret)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Audit.Dir = getEnv("AUDIT_LOGS_DIR", cfg.Audit.Dir)
	cfg.Archive.URL = getEnv("ARCHIVE_URL", cfg.Archive.URL)
	cfg.Archive.AuthToken = getEnv("ARCHIVE_TOKEN", cfg.Archive.AuthToken)
	cfg.Static.Dir = getEnv("STATIC_DIR", cfg.Static.Dir)
}

// ValidateConfig 验证配置的有效性
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.Security.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if len(cfg.Security.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters long")
	}

	if cfg.Server.Env == "production" && cfg.Security.ClientSecret == "" {
		errors = append(errors, "CLIENT_SECRET is required in production environment")
	}

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid PORT value: %s (must be 1-65535)", cfg.Server.Port))
	}

	if cfg.ASR.ChunkSeconds <= 0 || cfg.ASR.ChunkSeconds > 300 {
		errors = append(errors, fmt.Sprintf("invalid CHUNK_SECONDS: %v (must be in (0, 300])", cfg.ASR.ChunkSeconds))
	}
	if cfg.ASR.MaxAudioMB <= 0 {
		errors = append(errors, fmt.Sprintf("invalid MAX_AUDIO_MB: %d", cfg.ASR.MaxAudioMB))
	}
	if cfg.ASR.MaxConcurrent <= 0 {
		errors = append(errors, fmt.Sprintf("invalid MAX_CONCURRENT: %d", cfg.ASR.MaxConcurrent))
	}

	switch cfg.Diarization.Mode {
	case "off", "script", "http":
	default:
		errors = append(errors, fmt.Sprintf("invalid DIARIZATION_MODE: %s (must be: off, script, http)", cfg.Diarization.Mode))
	}
	if cfg.Diarization.Mode == "script" && cfg.Diarization.ScriptPath == "" {
		errors = append(errors, "DIARIZATION_SCRIPT is required when DIARIZATION_MODE=script")
	}
	if cfg.Diarization.Mode == "http" && cfg.Diarization.ServiceURL == "" {
		errors = append(errors, "DIARIZATION_URL is required when DIARIZATION_MODE=http")
	}

	if cfg.Security.TokenTTLSeconds <= 0 {
		errors = append(errors, fmt.Sprintf("invalid TOKEN_TTL_SECONDS: %d", cfg.Security.TokenTTLSeconds))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Log.Level] {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL: %s (must be: debug, info, warn, error)", cfg.Log.Level))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
