// internal/llm/providers/google/google.go
package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/Corphon/ComicProxy/internal/llm"
)

// Name 注册名
const Name = "google"

func init() {
	llm.Register(Name, func() llm.Provider {
		return &Provider{}
	})
}

// Provider 基于 google.golang.org/genai 的 Gemini 提供者
type Provider struct {
	client *genai.Client
}

// Initialize 支持的配置项: api_key（必填）, base_url, api_version
func (p *Provider) Initialize(ctx context.Context, config map[string]string) error {
	apiKey := config["api_key"]
	if apiKey == "" {
		return errors.New("google api密钥未提供")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := config["base_url"]; baseURL != "" {
		clientConfig.HTTPOptions.BaseURL = baseURL
	}
	if version := config["api_version"]; version != "" {
		clientConfig.HTTPOptions.APIVersion = version
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("初始化 Gemini 客户端失败: %w", err)
	}
	p.client = client
	return nil
}

func (p *Provider) GetName() string {
	return "google gemini"
}

// GenerateContent 直接转发到 Models.GenerateContent
func (p *Provider) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if p.client == nil {
		return nil, errors.New("google gemini 客户端未初始化")
	}
	return p.client.Models.GenerateContent(ctx, model, contents, config)
}
