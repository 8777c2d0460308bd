package http

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/listwise/backend/internal/infrastructure/config"
	"github.com/listwise/backend/internal/infrastructure/identity"
	"github.com/listwise/backend/internal/infrastructure/log"
	"github.com/listwise/backend/internal/interfaces/http/handler"
	"github.com/listwise/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/listwise/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	serverCfg *config.ServerConfig,
	verifier identity.Verifier,
	todoHandler *handler.TodoHandler,
	listHandler *handler.ListHandler,
	aiHandler *handler.AIHandler,
	userHandler *handler.UserHandler,
	imageHandler *handler.ImageHandler,
	wsHandler *handler.WSHandler,
) *HTTPServer {
	router := gin.Default()

	logger := log.NewModuleLogger("http", "server")

	// 所有 API 路由先解析身份；分享令牌路径允许匿名
	api := router.Group("/api/v1", middleware.Identity(verifier))
	{
		// 用户（要求认证）
		api.POST("/users/sync", middleware.RequireSubject(), userHandler.Sync)

		// 清单
		api.POST("/lists", middleware.RequireSubject(), listHandler.Create)
		api.GET("/lists", middleware.RequireSubject(), listHandler.Mine)
		api.GET("/share/:shareId", listHandler.GetByShare)

		// 清单内容（所有者或分享令牌）
		api.GET("/lists/:id/todos", todoHandler.List)
		api.POST("/lists/:id/todos", todoHandler.Add)
		api.POST("/lists/:id/todos/toggle-all", todoHandler.ToggleAll)
		api.DELETE("/lists/:id/todos/completed", todoHandler.ClearCompleted)
		api.PATCH("/todos/:id", todoHandler.Update)
		api.DELETE("/todos/:id", todoHandler.Delete)

		// 自然语言指令
		api.POST("/lists/:id/instruct", aiHandler.Instruct)

		// 背景图
		api.GET("/images/:id", imageHandler.Get)

		// 清单变更订阅
		api.GET("/ws/lists/:id", wsHandler.Subscribe)
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &HTTPServer{
		router:   router,
		httpPort: serverCfg.HTTPPort,
		logger:   logger,
	}
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:    s.httpPort,
		Handler: s.router,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	return s.server.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
