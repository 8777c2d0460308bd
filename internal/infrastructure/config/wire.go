package config

import "github.com/google/wire"

// ProviderSet Config 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewConfig,
	NewServerConfig,
	NewDatabaseConfig,
	NewAuthConfig,
	NewWatcher,
)
