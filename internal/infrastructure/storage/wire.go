package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	OpenDB,            // 数据库连接 + 表结构初始化
	NewTodoRepository, // 待办事项仓储
	NewListRepository, // 清单仓储
	NewUserRepository, // 用户仓储
	NewBlobStore,      // 二进制对象存储
)
