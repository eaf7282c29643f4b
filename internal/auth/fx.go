package auth

import (
	"github.com/healthsync/backend/internal/auth/repository"
	"github.com/healthsync/backend/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
