// internal/services/comic_service.go
package services

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	apperrors "github.com/Corphon/ComicProxy/internal/errors"
	"github.com/Corphon/ComicProxy/internal/llm"
	"github.com/Corphon/ComicProxy/internal/models"
	"github.com/Corphon/ComicProxy/internal/normalizer"
	"github.com/Corphon/ComicProxy/internal/storage"
	"github.com/Corphon/ComicProxy/internal/utils"
)

// DefaultStyle 请求未指定风格时使用
const DefaultStyle = "default"

// ReferenceLoader 风格参考图来源
type ReferenceLoader interface {
	Load(style string) (*storage.StyleReference, error)
}

// ComicServiceConfig ComicService 依赖
type ComicServiceConfig struct {
	Generator   llm.ContentGenerator // 为空表示上游未初始化
	References  ReferenceLoader
	ScriptModel string
	ImageModel  string
	HasAPIKey   bool
	Logger      *utils.Logger
	Metrics     *utils.APIMetrics
}

// ComicService 漫画脚本与图片生成服务，构造后只读
type ComicService struct {
	generator   llm.ContentGenerator
	references  ReferenceLoader
	scriptModel string
	imageModel  string
	hasAPIKey   bool
	logger      *utils.Logger
	metrics     *utils.APIMetrics
}

// NewComicService 创建服务
func NewComicService(cfg ComicServiceConfig) *ComicService {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.INFO)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = utils.NewAPIMetrics(utils.NewMetricsCollector(), logger)
	}
	return &ComicService{
		generator:   cfg.Generator,
		references:  cfg.References,
		scriptModel: cfg.ScriptModel,
		imageModel:  cfg.ImageModel,
		hasAPIKey:   cfg.HasAPIKey,
		logger:      logger,
		metrics:     metrics,
	}
}

// ClientInitialized 上游客户端是否可用
func (s *ComicService) ClientInitialized() bool {
	return s.generator != nil
}

// HasAPIKey 是否配置了密钥
func (s *ComicService) HasAPIKey() bool {
	return s.hasAPIKey
}

// Metrics 返回服务使用的指标记录器
func (s *ComicService) Metrics() *utils.APIMetrics {
	return s.metrics
}

// CheckClient 上游不可用时返回对应错误，处理器在解析请求体之前调用
func (s *ComicService) CheckClient() error {
	return s.ensureClient()
}

// ensureClient 未初始化时返回配置类错误
func (s *ComicService) ensureClient() error {
	if s.generator != nil {
		return nil
	}
	if !s.hasAPIKey {
		return apperrors.NewConfigurationError("Gemini Client 未初始化: 缺少 GEMINI_API_KEY", nil)
	}
	return apperrors.NewUpstreamUnavailableError("Gemini Client 未初始化", nil)
}

// GenerateScript 生成漫画脚本
func (s *ComicService) GenerateScript(ctx context.Context, req models.ScriptRequest) (*models.ScriptResult, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Concept) == "" {
		return nil, apperrors.NewValidationError("请提供 AI 概念", nil)
	}

	model := req.Model
	if model == "" {
		model = s.scriptModel
	}

	s.logger.Info("📝 开始生成脚本", map[string]interface{}{
		"concept": req.Concept,
		"model":   model,
	})

	resp, err := s.InvokeScriptGeneration(ctx, BuildScriptPrompt(req.Concept), model)
	if err != nil {
		return nil, err
	}

	parsed, err := normalizer.ParseScript(normalizer.DirectText(resp))
	if err != nil {
		raw, _ := apperrors.RawTextOf(err)
		s.logger.Error("❌ 脚本解析失败", map[string]interface{}{
			"error":    err.Error(),
			"raw_text": truncate(raw, 500),
		})
		return nil, err
	}

	s.logger.Info("✅ 脚本生成成功", map[string]interface{}{
		"panels":   parsed.Result.TotalPanels,
		"strategy": string(parsed.Strategy),
	})
	return parsed.Result, nil
}

// GenerateImage 生成单格漫画图片
func (s *ComicService) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	if req.Panel == nil {
		return nil, apperrors.NewValidationError("请提供 panel", nil)
	}

	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = DefaultStyle
	}
	model := req.Model
	if model == "" {
		model = s.imageModel
	}

	reference := s.loadReference(style)

	resp, err := s.InvokeImageGeneration(ctx, BuildImagePrompt(*req.Panel), reference, model)
	if err != nil {
		return nil, err
	}

	result, err := normalizer.NormalizeImage(resp)
	if err != nil {
		s.logger.Error("❌ 未收到图片数据", map[string]interface{}{
			"error": err.Error(),
			"style": style,
		})
		return nil, err
	}

	s.logger.Info("✅ 收到图片数据", map[string]interface{}{
		"mime_type": result.MIMEType,
		"style":     style,
	})
	return result, nil
}

// loadReference 参考图缺失或读取失败都不是致命错误
func (s *ComicService) loadReference(style string) *storage.StyleReference {
	if s.references == nil {
		return nil
	}
	if !storage.ValidStyleName(style) {
		s.logger.Warn("⚠️ 风格名无效，不使用参考图", map[string]interface{}{"style": style})
		return nil
	}

	ref, err := s.references.Load(style)
	if err != nil {
		s.logger.Warn("⚠️ 读取风格参考图失败，不使用参考图", map[string]interface{}{
			"style": style,
			"error": err.Error(),
		})
		return nil
	}
	if ref == nil {
		s.logger.Warn("⚠️ 未找到风格图，将不使用参考图生成", map[string]interface{}{"style": style})
		return nil
	}

	s.logger.Info("🎨 加载风格参考图", map[string]interface{}{"path": ref.Path})
	return ref
}

// InvokeScriptGeneration 以 JSON 模式调用上游
func (s *ComicService) InvokeScriptGeneration(ctx context.Context, prompt, model string) (*genai.GenerateContentResponse, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	return s.call(ctx, "script", model, genai.Text(prompt), scriptGenerationConfig())
}

// InvokeImageGeneration 文本 + 可选参考图的多模态调用
func (s *ComicService) InvokeImageGeneration(ctx context.Context, prompt string, reference *storage.StyleReference, model string) (*genai.GenerateContentResponse, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if reference != nil && len(reference.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(reference.Data, reference.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	return s.call(ctx, "image", model, contents, imageGenerationConfig())
}

func (s *ComicService) call(ctx context.Context, kind, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	start := time.Now()
	resp, err := s.generator.GenerateContent(ctx, model, contents, config)
	s.metrics.RecordUpstreamCall(kind, model, err, time.Since(start))
	if err != nil {
		s.logger.Error("❌ 上游调用失败", map[string]interface{}{
			"kind":  kind,
			"model": model,
			"error": err.Error(),
		})
		return nil, apperrors.NewUpstreamCallError("调用 Gemini API 失败", err)
	}
	return resp, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
