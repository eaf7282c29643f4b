package community

import (
	"github.com/healthsync/backend/internal/community/repository"
	"github.com/healthsync/backend/internal/community/service"
	"go.uber.org/fx"
)

var Module = fx.Module("community.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
