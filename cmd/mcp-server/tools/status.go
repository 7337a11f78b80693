package tools

import (
	"fmt"

	"github.com/speechkit/asr-service/cmd/mcp-server/shared"
)

// ServiceStatusTool 查询转写服务状态工具
// 对应后端 API: GET /status
type ServiceStatusTool struct{}

// Name 返回工具名称
func (t *ServiceStatusTool) Name() string {
	return "get_service_status"
}

// Description 返回工具描述
func (t *ServiceStatusTool) Description() string {
	return "查询转写服务状态：识别后端健康度、说话人分离模式、默认参数等"
}

// InputSchema 返回输入参数的JSON Schema
func (t *ServiceStatusTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// Execute 执行工具，获取服务状态
func (t *ServiceStatusTool) Execute(
	args map[string]interface{},
	clientToken string,
	apiClient *shared.APIClient,
) (string, error) {
	resp, err := shared.CallAPI(apiClient, "GET", "/status", nil, clientToken)
	if err != nil {
		return fmt.Sprintf("⚠️  转写服务不可用\n\n后端服务器 (%s) 请求失败。\n错误详情: %v\n\n请确认转写服务正在运行且 token 有效。",
			apiClient.BaseURL, err), nil
	}

	return resp, nil
}

// IssueTokenTool 获取访问令牌工具
// 对应后端 API: POST /auth/token (无需已有 token)
type IssueTokenTool struct{}

// Name 返回工具名称
func (t *IssueTokenTool) Name() string {
	return "issue_access_token"
}

// Description 返回工具描述
func (t *IssueTokenTool) Description() string {
	return "用 client_id + client_secret 换取转写服务的 Bearer token"
}

// InputSchema 返回输入参数的JSON Schema
func (t *IssueTokenTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"client_id": map[string]interface{}{
				"type":        "string",
				"description": "客户端标识",
			},
			"client_secret": map[string]interface{}{
				"type":        "string",
				"description": "客户端密钥 (开发模式下服务端可能不校验)",
			},
		},
		"required": []string{"client_id"},
	}
}

// Execute 执行工具，签发访问令牌
func (t *IssueTokenTool) Execute(
	args map[string]interface{},
	clientToken string,
	apiClient *shared.APIClient,
) (string, error) {
	clientID, err := shared.SafeGetString(args, "client_id")
	if err != nil {
		return "", fmt.Errorf("issue_access_token: %w", err)
	}

	body := map[string]string{"client_id": clientID}
	if secret, err := shared.SafeGetString(args, "client_secret"); err == nil {
		body["client_secret"] = secret
	}

	resp, err := shared.CallAPI(apiClient, "POST", "/auth/token", body, "")
	if err != nil {
		return fmt.Sprintf("⚠️  转写服务不可用\n\n后端服务器 (%s) 请求失败。\n错误详情: %v",
			apiClient.BaseURL, err), nil
	}

	return resp, nil
}
