package todo

import (
	"github.com/google/wire"
	"github.com/listwise/backend/internal/infrastructure/openai"
)

// ProvideTokenCounter 提供 Token 估算器
// 编码文件加载失败时返回 nil，解释器退化为字符估算
func ProvideTokenCounter() TokenCounter {
	estimator, err := openai.GetTokenEstimator()
	if err != nil {
		return nil
	}
	return estimator
}

// ProviderSet Todo 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewAccessResolver,
	NewInterpreter,
	NewOrchestrator,
	NewImageService,
	NewService,
	NewListService,
	ProvideTokenCounter,
	// 模型服务的三个上游能力都由同一个 OpenAI 客户端承担
	wire.Bind(new(ChatClient), new(*openai.Client)),
	wire.Bind(new(Moderator), new(*openai.Client)),
	wire.Bind(new(ImageGenerator), new(*openai.Client)),
)
