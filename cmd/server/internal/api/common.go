package api

import (
	"github.com/gin-gonic/gin"
)

// errorResponse 返回错误响应
func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"error": message,
	})
}

// badRequestResponse 返回 400 响应
func badRequestResponse(c *gin.Context, message string) {
	errorResponse(c, 400, message)
}

// unauthorizedResponse 返回 401 响应
func unauthorizedResponse(c *gin.Context, message string) {
	errorResponse(c, 401, message)
}

// successResponse 返回成功响应
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}
