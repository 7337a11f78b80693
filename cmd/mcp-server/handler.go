package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/speechkit/asr-service/cmd/mcp-server/shared"
	"github.com/speechkit/asr-service/cmd/mcp-server/tools"
)

// NewMCPHandler 创建新的 MCP Handler 实例并注册所有工具
func NewMCPHandler(apiClient *shared.APIClient, fallbackToken string) *MCPHandler {
	registry := NewToolRegistry()

	// 转写工具 (2个)
	registry.Register(&tools.TranscribeURLTool{})
	registry.Register(&tools.TranscribeFileTool{})

	// 服务管理工具 (2个)
	registry.Register(&tools.ServiceStatusTool{})
	registry.Register(&tools.IssueTokenTool{})

	log.Printf("[REGISTRY] 已注册 %d 个工具", len(registry.List()))

	return &MCPHandler{
		apiClient:     apiClient,
		registry:      registry,
		fallbackToken: fallbackToken,
	}
}

// extractTokenFromRequest 从HTTP请求中提取token
// 未携带任何 token 头时回退到 MCP_BEARER_TOKEN
func (h *MCPHandler) extractTokenFromRequest(r *http.Request) string {
	// 1. Authorization: Bearer token
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
	}

	// 2. X-MCP-Token
	if mcpToken := r.Header.Get("X-MCP-Token"); mcpToken != "" {
		return mcpToken
	}

	// 3. X-Auth-Token
	if authToken := r.Header.Get("X-Auth-Token"); authToken != "" {
		return authToken
	}

	return h.fallbackToken
}

// ServeHTTP 实现 http.Handler 接口
func (h *MCPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Auth-Token, X-MCP-Token")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method == "GET" {
		h.serveSSE(w, r)
		return
	}

	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var mcpReq MCPRequest
	if err := json.Unmarshal(body, &mcpReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch mcpReq.Method {
	case "initialize":
		h.handleInitialize(w, mcpReq)

	case "tools/list":
		h.handleToolsList(w, mcpReq)

	case "tools/call":
		h.handleToolsCall(w, mcpReq, r)

	default:
		h.sendErrorResponse(w, mcpReq.ID, -32601, "Method not found", nil)
	}
}

// serveSSE 维持 GET 长连接 (Claude Desktop 的 SSE endpoint)
// 每 30 秒发一条心跳注释保持连接
func (h *MCPHandler) serveSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Println("[SSE] flusher not supported, closing")
		return
	}

	fmt.Fprintf(w, "data: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/message\",\"params\":{\"message\":\"SSE connection established\"}}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			log.Println("[SSE] client disconnected")
			return
		case t := <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive %s\n\n", t.Format(time.RFC3339)); err != nil {
				log.Printf("[SSE] write heartbeat failed: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}

// handleInitialize 处理 MCP 初始化请求
func (h *MCPHandler) handleInitialize(w http.ResponseWriter, req MCPRequest) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result": map[string]interface{}{
			"protocolVersion": "2025-06-18",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "ASR Transcription MCP Server",
				"version": "1.0.0",
			},
		},
	}
	json.NewEncoder(w).Encode(response)
}

// handleToolsList 处理工具列表请求
func (h *MCPHandler) handleToolsList(w http.ResponseWriter, req MCPRequest) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result": map[string]interface{}{
			"tools": h.registry.List(),
		},
	}
	json.NewEncoder(w).Encode(response)
}

// handleToolsCall 处理工具调用请求
func (h *MCPHandler) handleToolsCall(w http.ResponseWriter, req MCPRequest, r *http.Request) {
	// 工具实现 panic 不能拖垮整个 server
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[PANIC] 工具调用发生panic: %v", rec)
			h.sendErrorResponse(w, req.ID, -32603, "Internal server error", fmt.Sprintf("Panic occurred: %v", rec))
		}
	}()

	name, ok := req.Params["name"].(string)
	if !ok {
		h.sendErrorResponse(w, req.ID, -32602, "Invalid params", "Missing or invalid tool name")
		return
	}

	arguments, ok := req.Params["arguments"].(map[string]interface{})
	if !ok && req.Params["arguments"] != nil {
		h.sendErrorResponse(w, req.ID, -32602, "Invalid params", "Arguments must be an object")
		return
	}

	if arguments == nil {
		arguments = make(map[string]interface{})
	}

	clientToken := h.extractTokenFromRequest(r)

	log.Printf("[TOOL] 处理工具调用: %s (token=%s)", name, shared.MaskToken(clientToken))

	result, err := h.registry.Execute(name, arguments, clientToken, h.apiClient)
	if err != nil {
		log.Printf("[TOOL] 工具调用失败: %s, 错误: %v", name, err)
		h.sendErrorResponse(w, req.ID, -32603, "Tool execution error", err.Error())
		return
	}

	h.sendToolResult(w, req.ID, result, false)
}
