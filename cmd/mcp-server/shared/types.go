package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// APIClient API客户端结构
type APIClient struct {
	BaseURL string
	Client  *http.Client
}

// Tool 工具接口，所有工具必须实现此接口
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(args map[string]interface{}, clientToken string, apiClient *APIClient) (string, error)
}

const (
	DEFAULT_SERVER_BASE_URL = "http://localhost:8000"
)

// MaskToken 对 token 进行脱敏处理
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***" + token[len(token)-4:]
}

// MakeJSONBody 将 map 序列化为 JSON 并转换为 io.Reader
func MakeJSONBody(body interface{}) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}
	return strings.NewReader(string(data)), nil
}

// CallAPI 是工具调用 JSON API 的统一辅助函数
func CallAPI(apiClient *APIClient, method, path string, body interface{}, token string) (string, error) {
	reader, err := MakeJSONBody(body)
	if err != nil {
		return "", err
	}
	resp, err := apiClient.MakeRequestWithToken(method, path, reader, "application/json", token)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// CallFormAPI 以 application/x-www-form-urlencoded 方式调用后端
// 转写接口按 form 字段接收参数，空值字段会被跳过
func CallFormAPI(apiClient *APIClient, method, path string, fields map[string]string, token string) (string, error) {
	form := url.Values{}
	for k, v := range fields {
		if v != "" {
			form.Set(k, v)
		}
	}
	resp, err := apiClient.MakeRequestWithToken(method, path, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", token)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// CallMultipartAPI 以 multipart/form-data 方式上传本地音频文件并附带额外字段
func CallMultipartAPI(apiClient *APIClient, path, filePath string, fields map[string]string, token string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	for k, v := range fields {
		if v != "" {
			writer.WriteField(k, v)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	resp, err := apiClient.MakeRequestWithToken("POST", path, &buf, writer.FormDataContentType(), token)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// MakeRequestWithToken 使用指定token发起HTTP请求
func (c *APIClient) MakeRequestWithToken(method, path string, body io.Reader, contentType, token string) ([]byte, error) {
	url := c.BaseURL + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(data))
	}

	return data, nil
}

// SafeGetString 从参数 map 中安全获取字符串值
func SafeGetString(args map[string]interface{}, key string) (string, error) {
	val, exists := args[key]
	if !exists {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}

	if val == nil {
		return "", fmt.Errorf("parameter %s is nil", key)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string, got %T", key, val)
	}

	if str == "" {
		return "", fmt.Errorf("parameter %s cannot be empty", key)
	}

	return str, nil
}

// SafeGetFloat 从参数 map 中安全获取数值
func SafeGetFloat(args map[string]interface{}, key string) (float64, error) {
	val, exists := args[key]
	if !exists {
		return 0, fmt.Errorf("missing required parameter: %s", key)
	}

	if val == nil {
		return 0, fmt.Errorf("parameter %s is nil", key)
	}

	// JSON数字通常解析为float64
	switch v := val.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("parameter %s must be a number, got %T", key, val)
	}
}
