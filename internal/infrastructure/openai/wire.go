package openai

import "github.com/google/wire"

// ProviderSet OpenAI 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewClient,
)
