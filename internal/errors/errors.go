// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	ErrorTypeConfiguration         ErrorType = "configuration_error"
	ErrorTypeValidation            ErrorType = "validation_error"
	ErrorTypeUpstreamUnavailable   ErrorType = "upstream_unavailable"
	ErrorTypeUpstreamCall          ErrorType = "upstream_call_error"
	ErrorTypeMalformedScriptOutput ErrorType = "malformed_script_output"
	ErrorTypeNoImageProduced       ErrorType = "no_image_produced"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
	RawText string // 上游原始文本，仅脚本解析失败时填充
	// HasRawText 区分空原文和没有原文
	HasRawText bool
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewConfigurationError 创建配置错误（如缺少API密钥）
func NewConfigurationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, originalError)
}

// NewValidationError 创建验证错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewUpstreamUnavailableError 上游客户端未初始化
func NewUpstreamUnavailableError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeUpstreamUnavailable, message, originalError)
}

// NewUpstreamCallError 上游调用失败
func NewUpstreamCallError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeUpstreamCall, message, originalError)
}

// NewMalformedScriptOutputError 上游文本无法解析为脚本，保留原文
func NewMalformedScriptOutputError(message, rawText string, originalError error) *AppError {
	appErr := NewAppError(ErrorTypeMalformedScriptOutput, message, originalError)
	appErr.RawText = rawText
	appErr.HasRawText = true
	return appErr
}

// NewNoImageProducedError 上游没有返回图片
func NewNoImageProducedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNoImageProduced, message, originalError)
}

func isType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// IsConfigurationError 检查是否为配置错误
func IsConfigurationError(err error) bool { return isType(err, ErrorTypeConfiguration) }

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsUpstreamUnavailable 检查上游是否不可用
func IsUpstreamUnavailable(err error) bool { return isType(err, ErrorTypeUpstreamUnavailable) }

// IsUpstreamCallError 检查是否为上游调用错误
func IsUpstreamCallError(err error) bool { return isType(err, ErrorTypeUpstreamCall) }

// IsMalformedScriptOutput 检查是否为脚本格式错误
func IsMalformedScriptOutput(err error) bool { return isType(err, ErrorTypeMalformedScriptOutput) }

// IsNoImageProduced 检查是否为未生成图片
func IsNoImageProduced(err error) bool { return isType(err, ErrorTypeNoImageProduced) }

// RawTextOf 取出错误链中携带的上游原文
func RawTextOf(err error) (string, bool) {
	var appError *AppError
	if errors.As(err, &appError) && appError.HasRawText {
		return appError.RawText, true
	}
	return "", false
}

// PublicMessage 返回给调用方的错误信息
// 解析和无图错误只暴露消息本身，内部解码细节只进日志
func PublicMessage(err error) string {
	var appError *AppError
	if errors.As(err, &appError) {
		switch appError.Type {
		case ErrorTypeMalformedScriptOutput, ErrorTypeNoImageProduced:
			return appError.Message
		}
	}
	return err.Error()
}

// CodeOf 返回错误代码，非 AppError 统一为 INTERNAL_ERROR
func CodeOf(err error) string {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Code
	}
	return "INTERNAL_ERROR"
}

// HTTPStatus 将错误映射为HTTP状态码
func HTTPStatus(err error) int {
	if IsValidationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeUpstreamUnavailable:
		return "UPSTREAM_UNAVAILABLE"
	case ErrorTypeUpstreamCall:
		return "UPSTREAM_CALL_ERROR"
	case ErrorTypeMalformedScriptOutput:
		return "MALFORMED_SCRIPT_OUTPUT"
	case ErrorTypeNoImageProduced:
		return "NO_IMAGE_PRODUCED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，只更新消息
		return &AppError{
			Type:       appError.Type,
			Message:    fmt.Sprintf("%s: %s", message, appError.Message),
			Err:        appError,
			Code:       appError.Code,
			RawText:    appError.RawText,
			HasRawText: appError.HasRawText,
		}
	}

	return NewAppError(errType, message, err)
}
