package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/healthsync/backend/internal/auth/domain"
	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/internal/identity"
	"github.com/healthsync/backend/internal/token"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	verifier identity.Verifier
	codec    *token.Codec
	genID    *snowflake.Node
	clk      clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, verifier identity.Verifier, codec *token.Codec, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:      log.Named("auth.service"),
		repo:     repo,
		verifier: verifier,
		codec:    codec,
		genID:    genID,
		clk:      clk,
	}
}

// Bind verifies the provider credential, resolves or creates the directory
// record, and mints a session token for it.
func (s *Service) Bind(ctx context.Context, req domain.BindRequest) (*domain.BindResult, error) {
	intent := req.Intent
	if intent == "" {
		intent = domain.IntentLogin
	}
	if intent != domain.IntentSignup && intent != domain.IntentLogin {
		return nil, domain.ErrInvalidIntent
	}

	ident, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, ident.UID, normalizeEmail(ident.Email))
	switch {
	case err == nil:
		// An existing account satisfies signup too: the provider already
		// authenticated this identity, so re-binding is harmless.
	case errors.Is(err, domain.ErrUserNotFound):
		if intent == domain.IntentLogin {
			return nil, domain.ErrUserNotFound
		}
		user, err = s.create(ctx, ident, req)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	raw, expiresAt, err := s.codec.Issue(token.Subject{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	return &domain.BindResult{
		Token:     raw,
		ExpiresAt: expiresAt,
		User:      viewOf(user),
	}, nil
}

// CurrentUser resolves the session subject to its directory record, trying
// the stable id first and the email as a fallback.
func (s *Service) CurrentUser(ctx context.Context, sub token.Subject) (*domain.UserView, error) {
	if id, err := snowflake.ParseString(sub.UserID); err == nil && sub.UserID != "" {
		user, err := s.repo.FindByID(ctx, id)
		if err == nil {
			view := viewOf(user)
			return &view, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	email := normalizeEmail(sub.Email)
	if email == "" {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	view := viewOf(user)
	return &view, nil
}

// RequestPasswordReset relays to the provider. The caller must not reveal
// the outcome to the client; failures are for logs only.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	return s.verifier.SendPasswordReset(ctx, email)
}

// lookup resolves an identity to its account by external id, then by email
// for accounts bound before the external id was recorded.
func (s *Service) lookup(ctx context.Context, externalID, email string) (*domain.User, error) {
	user, err := s.repo.FindByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if email == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByEmail(ctx, email)
}

func (s *Service) create(ctx context.Context, ident *identity.Identity, req domain.BindRequest) (*domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleDoctor
	}

	rawProfile := req.Profile
	if len(rawProfile) == 0 && ident.Name != "" && role == domain.RoleDoctor {
		// Provider display name seeds the profile when the client sent none.
		seeded, err := json.Marshal(domain.DoctorProfile{Name: ident.Name})
		if err != nil {
			return nil, err
		}
		rawProfile = seeded
	}

	profile, err := domain.ParseProfile(role, rawProfile)
	if err != nil {
		return nil, err
	}
	stored, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	user := &domain.User{
		ID:         s.genID.Generate(),
		ExternalID: ident.UID,
		Email:      normalizeEmail(ident.Email),
		Role:       role,
		Profile:    datatypes.JSON(stored),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// Lost a race with a concurrent bind for the same identity;
			// the winner's record is the account.
			return s.lookup(ctx, ident.UID, user.Email)
		}
		return nil, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func viewOf(user *domain.User) domain.UserView {
	profile := json.RawMessage(user.Profile)
	if len(profile) == 0 {
		profile = json.RawMessage(`{}`)
	}
	return domain.UserView{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      user.Role,
		Profile:   profile,
		CreatedAt: user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
