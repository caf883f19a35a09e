// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/ComicProxy/internal/api"
	"github.com/Corphon/ComicProxy/internal/config"
	"github.com/Corphon/ComicProxy/internal/llm"
	"github.com/Corphon/ComicProxy/internal/llm/providers/google"
	"github.com/Corphon/ComicProxy/internal/services"
	"github.com/Corphon/ComicProxy/internal/storage"
	"github.com/Corphon/ComicProxy/internal/utils"
)

func main() {
	log.Println("🚀 启动 Gemini 漫画代理服务器...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		// 缺少密钥只降级，不退出
		log.Printf("⚠️ 配置警告: %v", err)
	}

	// 2. 初始化日志和指标
	logger, err := utils.NewFileLogger(utils.ParseLogLevel(cfg.LogLevel), filepath.Join(cfg.LogDir, "server.log"))
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Close()
	metrics := utils.NewAPIMetrics(utils.NewMetricsCollector(), logger)

	// 3. 初始化上游客户端
	ctx := context.Background()
	var generator llm.ContentGenerator
	if cfg.HasAPIKey() {
		provider, err := llm.GetProvider(ctx, google.Name, map[string]string{
			"api_key":  cfg.GeminiAPIKey,
			"base_url": cfg.GeminiBaseURL,
		})
		if err != nil {
			log.Printf("❌ Gemini Client 初始化失败: %v", err)
		} else {
			generator = provider
			log.Printf("✅ Gemini Client 初始化成功 (%s)", provider.GetName())
		}
	} else {
		log.Println("❌ 无法初始化 Gemini Client：缺少 API Key")
	}

	// 4. 风格参考图目录
	if err := os.MkdirAll(cfg.StyleDir, 0755); err != nil {
		log.Printf("⚠️ 创建风格目录失败 %s: %v", cfg.StyleDir, err)
	}
	styles := storage.NewStyleStore(cfg.StyleDir, cfg.StyleCacheTTL)

	comic := services.NewComicService(services.ComicServiceConfig{
		Generator:   generator,
		References:  styles,
		ScriptModel: cfg.ScriptModel,
		ImageModel:  cfg.ImageModel,
		HasAPIKey:   cfg.HasAPIKey(),
		Logger:      logger,
		Metrics:     metrics,
	})

	// 5. 设置路由
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(api.NewHandler(comic, styles), logger)
	log.Println("✅ 路由设置完成")

	log.Printf("🌐 服务器地址: http://%s", cfg.Addr())
	log.Println("📡 可用端点:")
	log.Println("  GET  /health - 健康检查")
	log.Println("  POST /api/generate-script - 生成脚本")
	log.Println("  POST /api/generate-image - 生成图片")
	log.Println("  POST /api/regenerate-image - 重新生成图片")
	log.Println("  GET  /api/styles - 可用风格")
	log.Println("  GET  /api/metrics - 运行指标")

	setupGracefulShutdown(router, cfg.Addr(), cfg.ShutdownTimeout)
}

// 优雅关闭函数
func setupGracefulShutdown(router *gin.Engine, addr string, timeout time.Duration) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ 启动服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ 服务器强制关闭: %v", err)
		return
	}

	log.Println("✅ 服务器优雅关闭完成")
}
