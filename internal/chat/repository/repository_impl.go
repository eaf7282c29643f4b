package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/healthsync/backend/internal/chat/domain"
	"github.com/healthsync/backend/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	provider *db.Provider
}

func New(provider *db.Provider) domain.Repository {
	return &repo{provider: provider}
}

func (r *repo) List(ctx context.Context, ownerID string, limit int) ([]domain.Session, error) {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	var sessions []domain.Session
	err = conn.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) FindByID(ctx context.Context, ownerID string, id snowflake.ID) (*domain.Session, error) {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	var session domain.Session
	err = conn.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) Create(ctx context.Context, session *domain.Session) error {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).Create(session).Error
}

func (r *repo) UpdateFields(ctx context.Context, ownerID string, id snowflake.ID, fields map[string]any) error {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return err
	}
	tx := conn.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, ownerID string, id snowflake.ID) error {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return err
	}
	tx := conn.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Session{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
