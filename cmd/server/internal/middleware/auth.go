package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/speechkit/asr-service/cmd/server/internal/audit"
	"github.com/speechkit/asr-service/cmd/server/internal/tokens"
)

const clientIDKey = "client_id"

// RequireToken 验证 Bearer token, 失败写入审计日志并返回 401
func RequireToken(manager *tokens.Manager, auditLog audit.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr := ""
		if strings.HasPrefix(header, "Bearer ") {
			tokenStr = strings.TrimPrefix(header, "Bearer ")
		}
		if tokenStr == "" {
			auditLog.Log(audit.ActionAuthFailed, "", c.ClientIP(), RequestID(c),
				map[string]interface{}{"reason": "missing token", "path": c.Request.URL.Path})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := manager.Parse(tokenStr)
		if err != nil {
			auditLog.Log(audit.ActionAuthFailed, "", c.ClientIP(), RequestID(c),
				map[string]interface{}{"reason": err.Error(), "path": c.Request.URL.Path})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(clientIDKey, claims.ClientID)
		c.Next()
	}
}

// ClientID 返回认证中间件注入的客户端标识
func ClientID(c *gin.Context) string {
	if v, ok := c.Get(clientIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
