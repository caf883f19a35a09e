// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
	"sort"

	"google.golang.org/genai"
)

// 错误定义
var ErrUnknownProvider = errors.New("未知的AI提供者")

// ContentGenerator 上游内容生成接口，ComicService 只依赖这一层
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider 定义所有上游提供者必须实现的接口
type Provider interface {
	ContentGenerator

	// 初始化提供者，传入配置
	Initialize(ctx context.Context, config map[string]string) error

	// 获取提供者名称
	GetName() string
}

// ProviderFactory 提供者工厂
type ProviderFactory func() Provider

var providers = make(map[string]ProviderFactory)

// Register 注册提供者工厂，在 init 中调用
func Register(name string, factory ProviderFactory) {
	providers[name] = factory
}

// GetProvider 创建并初始化指定名称的提供者实例
func GetProvider(ctx context.Context, name string, config map[string]string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	if err := provider.Initialize(ctx, config); err != nil {
		return nil, err
	}
	return provider, nil
}

// ListProviders 返回所有已注册的提供者名称
func ListProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
