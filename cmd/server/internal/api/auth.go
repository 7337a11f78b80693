package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/speechkit/asr-service/cmd/server/internal/audit"
	"github.com/speechkit/asr-service/cmd/server/internal/middleware"
	"github.com/speechkit/asr-service/cmd/server/internal/tokens"
)

type tokenRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// HandleCreateToken 签发 API token
// POST /auth/token {"client_id": "...", "client_secret": "..."}
// clientSecret 为空时 (dev 环境) 跳过密钥校验。
func HandleCreateToken(manager *tokens.Manager, clientSecret string, auditLog audit.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestResponse(c, "client_id is required")
			return
		}

		if clientSecret != "" {
			if subtle.ConstantTimeCompare([]byte(req.ClientSecret), []byte(clientSecret)) != 1 {
				auditLog.Log(audit.ActionAuthFailed, req.ClientID, c.ClientIP(), middleware.RequestID(c),
					map[string]interface{}{"reason": "bad client_secret"})
				unauthorizedResponse(c, "invalid client credentials")
				return
			}
		}

		token, expiresAt, err := manager.Issue(req.ClientID)
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, "failed to issue token")
			return
		}

		auditLog.Log(audit.ActionTokenCreated, req.ClientID, c.ClientIP(), middleware.RequestID(c), nil)
		successResponse(c, tokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int64(time.Until(expiresAt).Round(time.Second).Seconds()),
		})
	}
}
