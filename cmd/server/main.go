// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnpath-go/internal/config"
	"learnpath-go/internal/handler"
	"learnpath-go/internal/middleware"
	"learnpath-go/internal/repository"
	"learnpath-go/internal/service"
	"learnpath-go/pkg/database"
	"learnpath-go/pkg/llm"
	"learnpath-go/pkg/log"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 4. 初始化 Repository
	cacheTTL := time.Duration(cfg.Session.CacheTTLHours) * time.Hour
	if cacheTTL <= 0 {
		cacheTTL = 7 * 24 * time.Hour
	}
	sessionRepo := repository.NewSessionRepository(database.DB, database.RDB, cacheTTL)

	// 5. 初始化 Service (依赖注入)
	llmClient := llm.NewClient(cfg.LLM)
	curriculumService := service.NewCurriculumService(llmClient, sessionRepo)
	sessionService := service.NewSessionService(sessionRepo)
	chatService := service.NewChatService(llmClient, sessionRepo)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 7. 注册路由
	sessionHandler := handler.NewSessionHandler(curriculumService, sessionService)
	onboardingHandler := handler.NewOnboardingHandler(chatService)
	chatHandler := handler.NewChatHandler(chatService)

	apiV1 := r.Group("/api/v1")
	{
		sessions := apiV1.Group("/sessions")
		{
			sessions.POST("", sessionHandler.Generate)
			sessions.GET("", sessionHandler.List)
			sessions.GET("/:sessionId", sessionHandler.Get)
			sessions.DELETE("/:sessionId", sessionHandler.Delete)
			sessions.PUT("/:sessionId/nodes/:nodeId/status", sessionHandler.UpdateNodeStatus)
			sessions.GET("/:sessionId/progress", sessionHandler.GetProgress)
			sessions.GET("/:sessionId/nodes/:nodeId/history", sessionHandler.GetNodeHistory)
		}

		onboarding := apiV1.Group("/onboarding")
		{
			onboarding.GET("/last-input", sessionHandler.GetLastInput)
			onboarding.POST("/chat", onboardingHandler.Chat)
		}
	}

	// 辅导聊天 (WebSocket)
	r.GET("/chat", chatHandler.Handle)

	// 8. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
