package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tubecast/docs"
	"tubecast/internal/bootstrap"
	"tubecast/internal/config"
	"tubecast/internal/handler"
	pipelineHandler "tubecast/internal/handler/pipeline"
	"tubecast/internal/server/middleware"
)

// shutdownTimeout 优雅关闭时等待进行中请求的时长
const shutdownTimeout = 30 * time.Second

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	app    *bootstrap.App
}

// New 创建服务器实例
func New(cfg *config.Config, app *bootstrap.App) (*Server, error) {
	if app == nil || app.Pipeline == nil {
		return nil, errors.New("pipeline is not initialized")
	}

	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		app:    app,
	}
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger("/health", "/ready"))
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.app)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	docs.SwaggerInfo.BasePath = "/"
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	runs := pipelineHandler.NewHandler(s.app.Pipeline)

	createRun := []gin.HandlerFunc{runs.CreateRun}
	if s.cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(s.cfg.RateLimit.Requests, s.cfg.RateLimit.Window)
		createRun = append([]gin.HandlerFunc{limiter.Handler()}, createRun...)
		log.Info().
			Int("requests", s.cfg.RateLimit.Requests).
			Dur("window", s.cfg.RateLimit.Window).
			Msg("rate limit enabled for run creation")
	}

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/runs", createRun...)
		v1.GET("/runs", runs.ListRuns)
		v1.GET("/runs/:id", runs.GetRun)
	}

	s.engine.GET("/download/:filename", runs.Download)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr := srv.Shutdown(shutdownCtx)

		// 请求结束后再关闭外部连接
		if err := s.app.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close connections")
		}
		return shutdownErr
	case err := <-errCh:
		if cerr := s.app.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close connections")
		}
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
