package migration

import (
	authdomain "github.com/healthsync/backend/internal/auth/domain"
	chatdomain "github.com/healthsync/backend/internal/chat/domain"
	communitydomain "github.com/healthsync/backend/internal/community/domain"
	"github.com/healthsync/backend/internal/config"
	"github.com/healthsync/backend/internal/seed"
	"github.com/healthsync/backend/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the database setup hook. The connection provider runs it
// against each freshly opened connection, so schema and seed data are ready
// before any repository touches the database.
var Module = fx.Module("migrations",
	fx.Provide(NewSetup),
)

// NewSetup builds the setup hook for the configured dialect.
func NewSetup(cfg config.Config, log *zap.Logger) db.SetupFunc {
	return func(conn *gorm.DB) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			err := conn.AutoMigrate(
				&authdomain.User{},
				&chatdomain.Session{},
				&communitydomain.Post{},
			)
			if err != nil {
				return err
			}
		}

		return seed.EnsureCommunityPosts(conn, log)
	}
}
