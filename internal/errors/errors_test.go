package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidationError("请提供 AI 概念", nil)))

	for _, err := range []error{
		NewConfigurationError("missing key", nil),
		NewUpstreamUnavailableError("not initialized", nil),
		NewUpstreamCallError("call failed", errors.New("boom")),
		NewMalformedScriptOutputError("bad script", "raw", nil),
		NewNoImageProducedError("no image", nil),
		errors.New("plain"),
	} {
		assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err), err.Error())
	}
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "CONFIGURATION_ERROR", CodeOf(NewConfigurationError("x", nil)))
	assert.Equal(t, "VALIDATION_ERROR", CodeOf(NewValidationError("x", nil)))
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", CodeOf(NewUpstreamUnavailableError("x", nil)))
	assert.Equal(t, "UPSTREAM_CALL_ERROR", CodeOf(NewUpstreamCallError("x", nil)))
	assert.Equal(t, "MALFORMED_SCRIPT_OUTPUT", CodeOf(NewMalformedScriptOutputError("x", "", nil)))
	assert.Equal(t, "NO_IMAGE_PRODUCED", CodeOf(NewNoImageProducedError("x", nil)))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(errors.New("plain")))
}

func TestErrorChain(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := NewUpstreamCallError("调用 Gemini API 失败", cause)

	assert.Equal(t, "调用 Gemini API 失败: deadline exceeded", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsUpstreamCallError(wrapped))
	assert.False(t, IsValidationError(wrapped))
}

func TestRawTextOf(t *testing.T) {
	err := NewMalformedScriptOutputError("生成的脚本格式错误", "not json", nil)
	raw, ok := RawTextOf(err)
	assert.True(t, ok)
	assert.Equal(t, "not json", raw)

	_, ok = RawTextOf(NewNoImageProducedError("x", nil))
	assert.False(t, ok)

	raw, ok = RawTextOf(NewMalformedScriptOutputError("生成的脚本格式错误", "", nil))
	assert.True(t, ok)
	assert.Equal(t, "", raw)
}

func TestPublicMessage(t *testing.T) {
	decodeErr := errors.New("json: cannot unmarshal number into Go value")

	assert.Equal(t, "生成的脚本格式错误",
		PublicMessage(NewMalformedScriptOutputError("生成的脚本格式错误", "raw", decodeErr)))
	assert.Equal(t, "生成失败",
		PublicMessage(fmt.Errorf("image: %w", NewNoImageProducedError("生成失败", decodeErr))))
	assert.Equal(t, "调用 Gemini API 失败: quota exceeded",
		PublicMessage(NewUpstreamCallError("调用 Gemini API 失败", errors.New("quota exceeded"))))
	assert.Equal(t, "plain", PublicMessage(errors.New("plain")))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ctx", ErrorTypeUpstreamCall))

	inner := NewMalformedScriptOutputError("bad", "raw", nil)
	wrapped := WrapError(inner, "script", ErrorTypeUpstreamCall)
	assert.True(t, IsMalformedScriptOutput(wrapped))
	raw, ok := RawTextOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "raw", raw)
	assert.Contains(t, wrapped.Error(), "script: bad")

	plain := WrapError(errors.New("io"), "read", ErrorTypeConfiguration)
	assert.True(t, IsConfigurationError(plain))
}
