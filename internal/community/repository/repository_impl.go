package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/healthsync/backend/internal/community/domain"
	"github.com/healthsync/backend/pkg/db"
)

type repo struct {
	provider *db.Provider
}

func New(provider *db.Provider) domain.Repository {
	return &repo{provider: provider}
}

func (r *repo) ListApproved(ctx context.Context, limit int) ([]domain.Post, error) {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	err = conn.WithContext(ctx).
		Where("approved = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repo) Create(ctx context.Context, post *domain.Post) error {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).Create(post).Error
}

func (r *repo) DeleteOwned(ctx context.Context, ownerID string, id snowflake.ID) error {
	conn, err := r.provider.Get(ctx)
	if err != nil {
		return err
	}
	tx := conn.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Post{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
