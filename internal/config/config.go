// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/Corphon/ComicProxy/internal/errors"
)

// 默认值
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = "3001"
	DefaultScriptModel     = "gemini-3-pro-preview"
	DefaultImageModel      = "gemini-3-pro-image-preview"
	DefaultStyleDir        = "public/styles"
	DefaultStyleCacheTTL   = 5 * time.Minute
	DefaultLogDir          = "logs"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
)

// envFiles 按顺序加载，已存在的环境变量不会被覆盖
var envFiles = []string{".env.local", ".env"}

// Config 存储应用配置，启动后只读
type Config struct {
	Host string
	Port string

	// 上游 Gemini 配置
	GeminiAPIKey  string
	GeminiBaseURL string
	ScriptModel   string
	ImageModel    string

	StyleDir      string
	StyleCacheTTL time.Duration

	LogDir          string
	LogLevel        string
	DebugMode       bool
	ShutdownTimeout time.Duration
}

// Load 从 .env 文件和环境变量加载配置
func Load() (*Config, error) {
	// .env 文件是可选的，逐个尝试
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("加载环境变量文件 %s 失败: %w", f, err)
			}
		}
	}

	styleTTL, err := getEnvDuration("STYLE_CACHE_TTL", DefaultStyleCacheTTL)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Host:            getEnv("HOST", DefaultHost),
		Port:            getEnv("PORT", DefaultPort),
		GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", ""),
		ScriptModel:     getEnv("GEMINI_SCRIPT_MODEL", DefaultScriptModel),
		ImageModel:      getEnv("GEMINI_IMAGE_MODEL", DefaultImageModel),
		StyleDir:        getEnv("STYLE_DIR", DefaultStyleDir),
		StyleCacheTTL:   styleTTL,
		LogDir:          getEnv("LOG_DIR", DefaultLogDir),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		DebugMode:       getEnvBool("DEBUG_MODE", false),
		ShutdownTimeout: shutdownTimeout,
	}

	return config, nil
}

// HasAPIKey 是否配置了上游密钥
func (c *Config) HasAPIKey() bool {
	return c.GeminiAPIKey != ""
}

// Addr 返回监听地址
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Validate 检查配置问题；缺少密钥不阻止启动，由调用方决定是否降级运行
func (c *Config) Validate() error {
	if c.Port == "" {
		return apperrors.NewConfigurationError("端口未配置", nil)
	}
	if !c.HasAPIKey() {
		return apperrors.NewConfigurationError("GEMINI_API_KEY 未设置，脚本和图片接口不可用", nil)
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, apperrors.NewConfigurationError(fmt.Sprintf("%s 格式无效: %q", key, value), err)
	}
	return d, nil
}
