package infrastructure

import (
	"github.com/google/wire"
	"github.com/listwise/backend/internal/infrastructure/config"
	"github.com/listwise/backend/internal/infrastructure/identity"
	"github.com/listwise/backend/internal/infrastructure/openai"
	"github.com/listwise/backend/internal/infrastructure/storage"
	"github.com/listwise/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	openai.ProviderSet,
	identity.ProviderSet,
	websocket.ProviderSet,
)
