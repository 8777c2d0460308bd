package wire

import (
	"database/sql"
	"errors"
	"net/http"

	"log/slog"

	"github.com/listwise/backend/internal/infrastructure/config"
	applog "github.com/listwise/backend/internal/infrastructure/log"
	"github.com/listwise/backend/internal/infrastructure/websocket"
	httpServer "github.com/listwise/backend/internal/interfaces/http"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *httpServer.HTTPServer
	wsHub      *websocket.Hub
	cfgWatcher *config.Watcher
	db         *sql.DB
	logger     *slog.Logger
}

// NewApp 创建应用实例
func NewApp(
	server *httpServer.HTTPServer,
	wsHub *websocket.Hub,
	cfgWatcher *config.Watcher,
	db *sql.DB,
) *App {
	return &App{
		HTTPServer: server,
		wsHub:      wsHub,
		cfgWatcher: cfgWatcher,
		db:         db,
		logger:     applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting listwise backend application")

	// 配置热更新
	if a.cfgWatcher != nil {
		if err := a.cfgWatcher.Start(); err != nil {
			a.logger.Error("Failed to start config watcher", "error", err)
		}
	}

	// 启动 WebSocket Hub
	a.wsHub.Start()

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Failed to start HTTP server", "error", err)
		}
	}()

	a.logger.Info("Listwise backend application started successfully")
	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	if a.cfgWatcher != nil {
		if err := a.cfgWatcher.Stop(); err != nil {
			a.logger.Warn("Error stopping config watcher", "error", err)
		}
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Warn("Error stopping HTTP server", "error", err)
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Error closing database", "error", err)
		}
	}
	return nil
}
