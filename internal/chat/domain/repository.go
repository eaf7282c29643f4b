package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	List(ctx context.Context, ownerID string, limit int) ([]Session, error)
	FindByID(ctx context.Context, ownerID string, id snowflake.ID) (*Session, error)
	Create(ctx context.Context, session *Session) error
	UpdateFields(ctx context.Context, ownerID string, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, ownerID string, id snowflake.ID) error
}
