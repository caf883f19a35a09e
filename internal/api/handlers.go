// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Corphon/ComicProxy/internal/errors"
	"github.com/Corphon/ComicProxy/internal/models"
	"github.com/Corphon/ComicProxy/internal/services"
)

// StyleLister 列出可用风格
type StyleLister interface {
	List() ([]string, error)
}

// Handler 处理API请求
type Handler struct {
	Comic    *services.ComicService // 漫画生成服务
	Styles   StyleLister            // 可为空
	Response *ResponseHelper        // 响应助手
}

// NewHandler 创建处理器
func NewHandler(comic *services.ComicService, styles StyleLister) *Handler {
	return &Handler{
		Comic:    comic,
		Styles:   styles,
		Response: NewResponseHelper(),
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status            string `json:"status"`
	ClientInitialized bool   `json:"client_initialized"`
	HasAPIKey         bool   `json:"has_api_key"`
}

// ScriptResponse 脚本生成成功响应
type ScriptResponse struct {
	Success bool `json:"success"`
	*models.ScriptResult
}

// ImageResponse 图片生成成功响应
type ImageResponse struct {
	Success bool `json:"success"`
	*models.ImageResult
}

// Health 健康检查，缺少密钥时仍返回 200
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:            "ok",
		ClientInitialized: h.Comic.ClientInitialized(),
		HasAPIKey:         h.Comic.HasAPIKey(),
	})
}

// GenerateScript 生成漫画脚本
func (h *Handler) GenerateScript(c *gin.Context) {
	if err := h.Comic.CheckClient(); err != nil {
		h.fail(c, "script", err)
		return
	}

	var req models.ScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "script", apperrors.NewValidationError("请求体格式错误", err))
		return
	}

	result, err := h.Comic.GenerateScript(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "script", err)
		return
	}

	c.JSON(http.StatusOK, ScriptResponse{Success: true, ScriptResult: result})
}

// GenerateImage 生成单格图片；重新生成复用同一逻辑
func (h *Handler) GenerateImage(c *gin.Context) {
	if err := h.Comic.CheckClient(); err != nil {
		h.fail(c, "image", err)
		return
	}

	var req models.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "image", apperrors.NewValidationError("请求体格式错误", err))
		return
	}

	result, err := h.Comic.GenerateImage(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "image", err)
		return
	}

	c.JSON(http.StatusOK, ImageResponse{Success: true, ImageResult: result})
}

// ListStyles 列出本地可用的风格参考图
func (h *Handler) ListStyles(c *gin.Context) {
	styles := []string{}
	if h.Styles != nil {
		var err error
		if styles, err = h.Styles.List(); err != nil {
			h.fail(c, "styles", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"styles":  styles,
	})
}

// GetMetrics 返回指标快照
func (h *Handler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"metrics": h.Comic.Metrics().Collector().GetMetrics(),
	})
}

func (h *Handler) fail(c *gin.Context, component string, err error) {
	h.Comic.Metrics().RecordError(apperrors.CodeOf(err), component)
	h.Response.Fail(c, err)
}
