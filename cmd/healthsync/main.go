package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/healthsync/backend/internal/auth"
	"github.com/healthsync/backend/internal/chat"
	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/internal/community"
	"github.com/healthsync/backend/internal/config"
	"github.com/healthsync/backend/internal/identity"
	"github.com/healthsync/backend/internal/logger"
	"github.com/healthsync/backend/internal/metrics"
	"github.com/healthsync/backend/internal/migration"
	"github.com/healthsync/backend/internal/ratelimit"
	"github.com/healthsync/backend/internal/server"
	"github.com/healthsync/backend/internal/token"
	"github.com/healthsync/backend/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),

		db.Module,
		migration.Module,

		token.Module,
		identity.Module,
		auth.Module,
		chat.Module,
		community.Module,

		ratelimit.Module,
		metrics.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
