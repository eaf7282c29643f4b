package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	ListApproved(ctx context.Context, limit int) ([]Post, error)
	Create(ctx context.Context, post *Post) error
	DeleteOwned(ctx context.Context, ownerID string, id snowflake.ID) error
}
