package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/speechkit/asr-service/cmd/mcp-server/shared"
)

// NewAPIClient 创建后端 API 客户端实例
// 参数:
//   - baseURL: 转写服务基础URL，为空则使用默认值
//   - timeoutSeconds: 请求超时(秒)，长音频转写需要放宽
func NewAPIClient(baseURL string, timeoutSeconds int) *shared.APIClient {
	if baseURL == "" {
		baseURL = shared.DEFAULT_SERVER_BASE_URL
	}

	return &shared.APIClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}
