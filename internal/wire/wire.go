//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/listwise/backend/internal/application"
	"github.com/listwise/backend/internal/infrastructure"
	httpServer "github.com/listwise/backend/internal/interfaces/http"
)

// InitializeAll 初始化所有服务
func InitializeAll() (*App, error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		application.ProviderSet,    // 应用层
		httpServer.ProviderSet,     // 接口层
		NewApp,                     // 组合所有服务的应用结构
	)
	return nil, nil
}
