package tools

import (
	"fmt"
	"strconv"

	"github.com/speechkit/asr-service/cmd/mcp-server/shared"
)

// transcribeParams 从工具参数中提取 language / chunk_length 可选项
// chunk_length 在 JSON 里是数字，转成 form 字符串传给后端
func transcribeParams(args map[string]interface{}) map[string]string {
	fields := map[string]string{}
	if lang, err := shared.SafeGetString(args, "language"); err == nil {
		fields["language"] = lang
	}
	if chunk, err := shared.SafeGetFloat(args, "chunk_length"); err == nil {
		fields["chunk_length"] = strconv.FormatFloat(chunk, 'f', -1, 64)
	}
	return fields
}

// TranscribeURLTool 转写远程音频工具
// 对应后端 API: POST /transcribe (form 字段 audio_url)
type TranscribeURLTool struct{}

// Name 返回工具名称
func (t *TranscribeURLTool) Name() string {
	return "transcribe_audio_url"
}

// Description 返回工具描述
func (t *TranscribeURLTool) Description() string {
	return "下载远程音频 (.wav/.mp3 的 http(s) URL) 并转写为带说话人标签的分段文本"
}

// InputSchema 返回输入参数的JSON Schema
func (t *TranscribeURLTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"audio_url": map[string]interface{}{
				"type":        "string",
				"description": "音频文件 URL，仅支持 http/https，扩展名 .wav 或 .mp3",
			},
			"language": map[string]interface{}{
				"type":        "string",
				"description": "BCP-47 语言代码，如 fr、en (默认取服务端配置)",
			},
			"chunk_length": map[string]interface{}{
				"type":        "number",
				"description": "切片长度(秒)，(0, 300]，默认 30",
			},
		},
		"required": []string{"audio_url"},
	}
}

// Execute 执行工具，提交转写请求并返回分段 JSON
func (t *TranscribeURLTool) Execute(
	args map[string]interface{},
	clientToken string,
	apiClient *shared.APIClient,
) (string, error) {
	audioURL, err := shared.SafeGetString(args, "audio_url")
	if err != nil {
		return "", fmt.Errorf("transcribe_audio_url: %w", err)
	}

	fields := transcribeParams(args)
	fields["audio_url"] = audioURL

	resp, err := shared.CallFormAPI(apiClient, "POST", "/transcribe", fields, clientToken)
	if err != nil {
		return fmt.Sprintf("⚠️  转写服务不可用\n\n后端服务器 (%s) 请求失败。\n错误详情: %v\n\n请确认转写服务正在运行且 token 有效。",
			apiClient.BaseURL, err), nil
	}

	return resp, nil
}

// TranscribeFileTool 转写本地音频文件工具
// 对应后端 API: POST /transcribe (multipart 字段 file)
type TranscribeFileTool struct{}

// Name 返回工具名称
func (t *TranscribeFileTool) Name() string {
	return "transcribe_audio_file"
}

// Description 返回工具描述
func (t *TranscribeFileTool) Description() string {
	return "上传 MCP 服务器本地的音频文件 (.wav/.mp3) 并转写为带说话人标签的分段文本"
}

// InputSchema 返回输入参数的JSON Schema
func (t *TranscribeFileTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": map[string]interface{}{
				"type":        "string",
				"description": "MCP 服务器可访问的音频文件绝对路径",
			},
			"language": map[string]interface{}{
				"type":        "string",
				"description": "BCP-47 语言代码，如 fr、en (默认取服务端配置)",
			},
			"chunk_length": map[string]interface{}{
				"type":        "number",
				"description": "切片长度(秒)，(0, 300]，默认 30",
			},
		},
		"required": []string{"file_path"},
	}
}

// Execute 执行工具，上传文件并返回分段 JSON
func (t *TranscribeFileTool) Execute(
	args map[string]interface{},
	clientToken string,
	apiClient *shared.APIClient,
) (string, error) {
	filePath, err := shared.SafeGetString(args, "file_path")
	if err != nil {
		return "", fmt.Errorf("transcribe_audio_file: %w", err)
	}

	resp, err := shared.CallMultipartAPI(apiClient, "/transcribe", filePath, transcribeParams(args), clientToken)
	if err != nil {
		return fmt.Sprintf("⚠️  转写服务不可用\n\n后端服务器 (%s) 请求失败。\n错误详情: %v\n\n请确认转写服务正在运行且 token 有效。",
			apiClient.BaseURL, err), nil
	}

	return resp, nil
}
