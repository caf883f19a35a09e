// internal/api/response_helpers.go
package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Corphon/ComicProxy/internal/errors"
)

// ErrorResponse 统一失败响应
type ErrorResponse struct {
	Success bool    `json:"success"`
	Error   string  `json:"error"`
	Code    string  `json:"code"`
	RawText *string `json:"rawText,omitempty"` // 脚本解析失败时总是返回，即使为空
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Fail 将任意错误转换为统一的 {success:false, error} 响应
func (rh *ResponseHelper) Fail(c *gin.Context, err error) {
	resp := ErrorResponse{
		Success: false,
		Error:   sanitizeErrorMessage(apperrors.PublicMessage(err)),
		Code:    apperrors.CodeOf(err),
	}
	if raw, ok := apperrors.RawTextOf(err); ok {
		resp.RawText = &raw
	}

	c.JSON(apperrors.HTTPStatus(err), resp)
}

// sensitivePatterns 命中任意一个时整条消息替换为通用提示
var sensitivePatterns = []string{"api_key", "apikey", "x-goog-api-key", "secret", "token="}

// sanitizeErrorMessage 防止上游错误信息泄露密钥
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lower, pattern) {
			return "An internal error occurred"
		}
	}
	return message
}

// requestID 获取请求ID
func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
