// Package identity verifies ID tokens issued by the external identity
// provider. The provider authenticates end users; this package only proves
// that an incoming token really came from it.
package identity

import (
	"context"
	"errors"

	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	// ErrNotConfigured means provider credentials are absent; identity
	// binding is disabled but the process keeps serving public routes.
	ErrNotConfigured = errors.New("identity provider not configured")

	// ErrInvalidIdentityToken covers malformed, forged and expired
	// provider tokens. The caller must re-authenticate with the provider.
	ErrInvalidIdentityToken = errors.New("invalid identity token")
)

// Identity is the verified subject extracted from a provider ID token.
type Identity struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
}

// Verifier validates provider ID tokens and relays provider-side account
// operations.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// NewVerifier builds the provider verifier from configuration. Missing
// credentials yield a disabled verifier rather than a startup failure.
func NewVerifier(cfg config.Config, log *zap.Logger, clk clock.Clock) Verifier {
	if cfg.FirebaseProjectID == "" {
		log.Warn("identity provider credentials not configured, identity binding disabled")
		return disabledVerifier{}
	}
	return newFirebaseVerifier(cfg.FirebaseProjectID, cfg.FirebaseAPIKey, nil, clk)
}

type disabledVerifier struct{}

func (disabledVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	_ = ctx
	_ = idToken
	return nil, ErrNotConfigured
}

func (disabledVerifier) SendPasswordReset(ctx context.Context, email string) error {
	_ = ctx
	_ = email
	return ErrNotConfigured
}

// Module provides the identity provider verifier.
var Module = fx.Module("identity",
	fx.Provide(NewVerifier),
)
