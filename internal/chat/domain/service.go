package domain

import "context"

// Service exposes owner-scoped chat session CRUD. Every operation takes the
// caller's owner key; a session belonging to anyone else behaves as absent.
type Service interface {
	List(ctx context.Context, ownerID string) ([]SessionView, error)
	Get(ctx context.Context, ownerID, id string) (*SessionView, error)
	Create(ctx context.Context, ownerID string, req CreateRequest) (*SessionView, error)
	Update(ctx context.Context, ownerID, id string, req UpdateRequest) error
	Delete(ctx context.Context, ownerID, id string) error
}
