package main

import (
	"github.com/speechkit/asr-service/cmd/mcp-server/shared"
)

// types.go - 类型定义

const (
	DEFAULT_SERVER_BASE_URL = shared.DEFAULT_SERVER_BASE_URL
)

// MCPHandler HTTP处理器结构
type MCPHandler struct {
	apiClient     *shared.APIClient
	registry      *ToolRegistry
	fallbackToken string // MCP_BEARER_TOKEN，客户端未带 token 时使用
}

// MCPRequest MCP请求结构
type MCPRequest struct {
	Jsonrpc string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}
