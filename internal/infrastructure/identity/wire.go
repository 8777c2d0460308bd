package identity

import (
	"github.com/google/wire"
	"github.com/listwise/backend/internal/infrastructure/config"
)

// ProvideVerifier 基于配置密钥创建身份校验器
func ProvideVerifier(cfg *config.AuthConfig) Verifier {
	return NewHMACVerifier(cfg.Secret)
}

// ProviderSet Identity 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideVerifier,
)
