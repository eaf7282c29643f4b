package domain

import (
	"context"

	"github.com/healthsync/backend/internal/token"
)

type Service interface {
	// Bind exchanges a provider ID token for a session token, creating the
	// directory record on signup.
	Bind(ctx context.Context, req BindRequest) (*BindResult, error)

	// CurrentUser resolves a verified session subject to its account.
	CurrentUser(ctx context.Context, sub token.Subject) (*UserView, error)

	// RequestPasswordReset relays a reset request to the identity provider.
	RequestPasswordReset(ctx context.Context, email string) error
}
