package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/healthsync/backend/internal/auth/domain"
	"github.com/healthsync/backend/internal/auth/repository"
	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/internal/config"
	"github.com/healthsync/backend/internal/identity"
	"github.com/healthsync/backend/internal/token"
	"github.com/healthsync/backend/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	mu     sync.Mutex
	idents map[string]*identity.Identity
	err    error
	resets []string
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*identity.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	ident, ok := f.idents[idToken]
	if !ok {
		return nil, identity.ErrInvalidIdentityToken
	}
	return ident, nil
}

func (f *fakeVerifier) SendPasswordReset(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, email)
	return nil
}

type fixture struct {
	svc      authdomain.Service
	conn     *gorm.DB
	verifier *fakeVerifier
	codec    *token.Codec
	clk      *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := conn.AutoMigrate(&authdomain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	codec := token.NewCodec(config.Config{AuthJWTSecret: "test-secret", AuthTokenTTL: time.Hour}, clk)
	verifier := &fakeVerifier{idents: map[string]*identity.Identity{
		"good-token": {UID: "uid-1", Email: "Doc@Example.com", Name: "Dr. Jane Doe", EmailVerified: true},
	}}

	repo := repository.New(db.NewTestProvider(conn))
	return &fixture{
		svc:      New(zap.NewNop(), repo, verifier, codec, node, clk),
		conn:     conn,
		verifier: verifier,
		codec:    codec,
		clk:      clk,
	}
}

func (f *fixture) userCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := f.conn.Model(&authdomain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	return count
}

func TestBindSignupCreatesUser(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentSignup,
		Role:    authdomain.RoleDoctor,
		Profile: json.RawMessage(`{"name":"Dr. Jane Doe","specialty":"Cardiology"}`),
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	if res.User.Email != "doc@example.com" {
		t.Fatalf("expected normalized email, got %q", res.User.Email)
	}
	if res.User.Role != authdomain.RoleDoctor {
		t.Fatalf("unexpected role %q", res.User.Role)
	}

	sub, err := f.codec.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if sub.UserID != res.User.ID || sub.Role != "doctor" {
		t.Fatalf("token subject mismatch: %+v vs user %s", sub, res.User.ID)
	}

	if got := f.userCount(t); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}
}

func TestBindSignupIsIdempotent(t *testing.T) {
	f := newFixture(t)
	req := authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentSignup,
		Role:    authdomain.RoleDoctor,
	}

	first, err := f.svc.Bind(context.Background(), req)
	if err != nil {
		t.Fatalf("first bind: %v", err)
	}
	second, err := f.svc.Bind(context.Background(), req)
	if err != nil {
		t.Fatalf("second bind: %v", err)
	}

	if first.User.ID != second.User.ID {
		t.Fatalf("expected same account, got %s and %s", first.User.ID, second.User.ID)
	}
	if got := f.userCount(t); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}
}

func TestBindConcurrentSignupCreatesOneUser(t *testing.T) {
	f := newFixture(t)
	req := authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentSignup,
		Role:    authdomain.RoleDoctor,
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	ids := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Bind(context.Background(), req)
			errs[i] = err
			if err == nil {
				ids[i] = res.User.ID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("bind %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("bind %d resolved to %s, want %s", i, ids[i], ids[0])
		}
	}
	if got := f.userCount(t); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}
}

func TestBindLoginUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentLogin,
	})
	if !errors.Is(err, authdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestBindLoginExistingUser(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentSignup,
		Role:    authdomain.RoleOrganization,
		Profile: json.RawMessage(`{"organization":"Mercy Clinic","admin":"Pat Admin"}`),
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	logged, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentLogin,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.User.ID != created.User.ID {
		t.Fatalf("login resolved to %s, want %s", logged.User.ID, created.User.ID)
	}
}

func TestBindRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentSignup,
		Role:    authdomain.Role("superuser"),
	})
	if !errors.Is(err, authdomain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if got := f.userCount(t); got != 0 {
		t.Fatalf("expected no users, got %d", got)
	}
}

func TestBindRejectsInvalidIntent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.Intent("refresh"),
	})
	if !errors.Is(err, authdomain.ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
}

func TestBindInvalidIdentityToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "bad-token",
		Intent:  authdomain.IntentSignup,
	})
	if !errors.Is(err, identity.ErrInvalidIdentityToken) {
		t.Fatalf("expected ErrInvalidIdentityToken, got %v", err)
	}
}

func TestBindSeedsDoctorProfileFromProviderName(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentSignup,
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	var profile authdomain.DoctorProfile
	if err := json.Unmarshal(res.User.Profile, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Name != "Dr. Jane Doe" {
		t.Fatalf("expected provider name in profile, got %q", profile.Name)
	}
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Bind(context.Background(), authdomain.BindRequest{
		IDToken: "good-token",
		Intent:  authdomain.IntentSignup,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	byID, err := f.svc.CurrentUser(context.Background(), token.Subject{UserID: created.User.ID})
	if err != nil {
		t.Fatalf("current user by id: %v", err)
	}
	if byID.ID != created.User.ID {
		t.Fatalf("resolved %s, want %s", byID.ID, created.User.ID)
	}

	byEmail, err := f.svc.CurrentUser(context.Background(), token.Subject{Email: "doc@example.com"})
	if err != nil {
		t.Fatalf("current user by email: %v", err)
	}
	if byEmail.ID != created.User.ID {
		t.Fatalf("resolved %s, want %s", byEmail.ID, created.User.ID)
	}

	if _, err := f.svc.CurrentUser(context.Background(), token.Subject{UserID: "424242", Email: "ghost@example.com"}); !errors.Is(err, authdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRequestPasswordReset(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.RequestPasswordReset(context.Background(), " Doc@Example.com "); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(f.verifier.resets) != 1 || f.verifier.resets[0] != "doc@example.com" {
		t.Fatalf("unexpected reset relay: %v", f.verifier.resets)
	}

	// Blank emails are dropped without touching the provider.
	if err := f.svc.RequestPasswordReset(context.Background(), "  "); err != nil {
		t.Fatalf("request reset blank: %v", err)
	}
	if len(f.verifier.resets) != 1 {
		t.Fatalf("expected no extra relay, got %v", f.verifier.resets)
	}
}
