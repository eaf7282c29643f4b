package chat

import (
	"github.com/healthsync/backend/internal/chat/repository"
	"github.com/healthsync/backend/internal/chat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chat.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
