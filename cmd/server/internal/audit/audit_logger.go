// Package audit records security-relevant API events (token issuance,
// authentication failures, transcription requests) to a rotating JSONL
// file.
package audit

import (
	"encoding/json"
	"io"
	"log"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Action 审计日志操作类型
type Action string

const (
	ActionTokenCreated Action = "token_created"
	ActionAuthFailed   Action = "auth_failed"
	ActionASRRequest   Action = "asr_request"
	ActionASRCompleted Action = "asr_completed"
	ActionASRFailed    Action = "asr_failed"
	ActionDownload     Action = "audio_download"
)

// Entry 审计日志条目
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Action    Action                 `json:"action"`
	ClientID  string                 `json:"client_id,omitempty"`
	SourceIP  string                 `json:"source_ip,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Logger 审计日志记录器接口
type Logger interface {
	Log(action Action, clientID, sourceIP, requestID string, details map[string]interface{})
}

// FileLogger writes JSONL entries with automatic rotation.
type FileLogger struct {
	logger *log.Logger
}

// NewFileLogger creates a rotating audit logger at the given path.
func NewFileLogger(logPath string) *FileLogger {
	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}
	return &FileLogger{
		logger: log.New(writer, "", 0), // timestamps live inside the JSON
	}
}

// newWriterLogger 供测试注入自定义 writer
func newWriterLogger(w io.Writer) *FileLogger {
	return &FileLogger{logger: log.New(w, "", 0)}
}

// Log serializes and appends one entry. Marshal failures are swallowed:
// audit logging must never break request handling.
func (f *FileLogger) Log(action Action, clientID, sourceIP, requestID string, details map[string]interface{}) {
	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Action:    action,
		ClientID:  clientID,
		SourceIP:  sourceIP,
		RequestID: requestID,
		Details:   details,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	f.logger.Println(string(data))
}

// NopLogger discards all entries. Used when auditing is disabled.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(Action, string, string, string, map[string]interface{}) {}
