package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/healthsync/backend/internal/auth/domain"
	"github.com/healthsync/backend/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	provider *db.Provider
}

func New(provider *db.Provider) domain.Repository {
	return &repo{provider: provider}
}

func (r *repo) Create(ctx context.Context, user *domain.User) error {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return err
	}
	err = conn.WithContext(ctx).Create(user).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrUserExists
	}
	return err
}

func (r *repo) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.findOne(ctx, "external_id = ?", externalID)
}

func (r *repo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *repo) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	var user domain.User
	err = conn.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
