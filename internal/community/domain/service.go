package domain

import (
	"context"

	"github.com/healthsync/backend/internal/token"
)

type Service interface {
	// List returns approved posts, newest first. It is public.
	List(ctx context.Context) ([]PostView, error)

	// Create publishes a testimonial under the caller's display identity.
	Create(ctx context.Context, sub token.Subject, req CreateRequest) (*PostView, error)

	// Delete removes the caller's own post; anyone else's behaves as absent.
	Delete(ctx context.Context, ownerID, id string) error
}
