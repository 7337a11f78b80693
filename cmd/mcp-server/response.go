package main

import (
	"encoding/json"
	"net/http"
)

// sendErrorResponse 发送 JSON-RPC 2.0 错误响应
// 参数:
//   - w: HTTP响应writer
//   - id: 请求ID
//   - code: 错误代码（JSON-RPC 2.0标准错误码）
//   - message: 错误消息
//   - data: 可选的额外错误数据
func (h *MCPHandler) sendErrorResponse(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
	if data != nil {
		response["error"].(map[string]interface{})["data"] = data
	}
	json.NewEncoder(w).Encode(response)
}

// sendToolResult 发送工具执行结果响应（MCP协议格式）
func (h *MCPHandler) sendToolResult(w http.ResponseWriter, id interface{}, text string, isError bool) {
	result := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
	}
	if isError {
		result["isError"] = true
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}
